package services

import (
	"context"
	"errors"
	"strings"

	"adpay-go/database"
	"adpay-go/models"
	"adpay-go/utils"
)

// AdminCredentials describe the single shared admin identity. PasswordHash is
// a bcrypt hash; Password is the plaintext compatibility option and is only
// consulted when no hash is configured.
type AdminCredentials struct {
	Email        string
	PasswordHash string
	Password     string
}

// Profile is the client view of an account.
type Profile struct {
	*models.User
	AdLimit any `json:"adLimit"`
}

type Session struct {
	Token string   `json:"token"`
	User  *Profile `json:"user,omitempty"`
}

type Auth struct {
	*base
	tokens *utils.TokenManager
	admin  AdminCredentials
}

func (s *base) profile(u *models.User) *Profile {
	p := &Profile{User: s.present(u), AdLimit: "Unlimited"}
	if limit := s.rules.DailyAdLimit(u.UserType); limit > 0 {
		p.AdLimit = limit
	}
	p.User.AdsWatchedToday = s.rules.AdsWatchedToday(u, s.now())
	return p
}

func (s *Auth) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	token, err := s.tokens.Generate(user.ID, user.Email, utils.RoleUser)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: s.profile(user)}, nil
}

func (s *Auth) AdminLogin(email, password string) (*Session, error) {
	if s.admin.Email == "" || !strings.EqualFold(strings.TrimSpace(email), s.admin.Email) {
		return nil, ErrInvalidCredentials
	}

	var ok bool
	switch {
	case s.admin.PasswordHash != "":
		ok = utils.CheckPasswordHash(password, s.admin.PasswordHash)
	case s.admin.Password != "":
		ok = utils.ConstantTimeEquals(password, s.admin.Password)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(0, s.admin.Email, utils.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token}, nil
}

// Me loads the caller's profile. Inactive accounts may read it so they can
// see their activation status.
func (s *Auth) Me(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return s.profile(user), nil
}

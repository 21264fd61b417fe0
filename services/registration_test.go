package services

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"adpay-go/database"
	"adpay-go/models"
	"adpay-go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesInactiveUser(t *testing.T) {
	f := newFixture(t)
	req := f.registerReq(models.TierBasic, "")

	res, err := f.svc.Registration.Register(f.ctx, req)
	require.NoError(t, err)

	u := f.user(res.User.ID)
	assert.False(t, u.IsActive)
	assert.Zero(t, u.Balance)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, u.ReferralCode)
	assert.Contains(t, res.PaymentInstructions, "₦3000")
	assert.NotEmpty(t, res.Token)

	claims, err := f.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, utils.RoleUser, claims.Role)

	tok, err := f.store.GetTokenByCode(f.ctx, req.TokenCode)
	require.NoError(t, err)
	assert.True(t, tok.IsUsed)
	require.NotNil(t, tok.UsedByID)
	assert.Equal(t, u.ID, *tok.UsedByID)

	assert.Len(t, f.notes.Messages(), 1)
}

func TestRegisterAcceptsLowercaseTokenCode(t *testing.T) {
	f := newFixture(t)
	req := f.registerReq(models.TierPremium, "")
	req.TokenCode = "  " + strings.ToLower(req.TokenCode)

	_, err := f.svc.Registration.Register(f.ctx, req)
	assert.NoError(t, err)
}

func TestRegisterRejections(t *testing.T) {
	f := newFixture(t)
	existing := f.register(models.TierBasic, "")

	tests := []struct {
		name   string
		mutate func(*models.RegisterRequest)
		want   error
	}{
		{"unknown token", func(r *models.RegisterRequest) { r.TokenCode = "NOPE0000" }, ErrInvalidToken},
		{"tier mismatch", func(r *models.RegisterRequest) { r.UserType = models.TierPremium }, ErrTokenTypeMismatch},
		{"bad referral code", func(r *models.RegisterRequest) { r.ReferralCode = "ZZZZZZ" }, ErrInvalidReferralCode},
		{"duplicate email", func(r *models.RegisterRequest) { r.Email = existing.Email }, ErrDuplicateIdentity},
		{"duplicate phone", func(r *models.RegisterRequest) { r.Phone = existing.Phone }, ErrDuplicateIdentity},
		{"invalid tier", func(r *models.RegisterRequest) { r.UserType = "gold" }, ErrInvalidTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.registerReq(models.TierBasic, "")
			tt.mutate(&req)
			_, err := f.svc.Registration.Register(f.ctx, req)
			assert.ErrorIs(t, err, tt.want)

			// A rejected registration never consumes the token.
			if tok, err := f.store.GetTokenByCode(f.ctx, req.TokenCode); err == nil {
				assert.False(t, tok.IsUsed)
			}
		})
	}
}

func TestRegisterRejectsUsedToken(t *testing.T) {
	f := newFixture(t)
	req := f.registerReq(models.TierBasic, "")
	_, err := f.svc.Registration.Register(f.ctx, req)
	require.NoError(t, err)

	again := f.registerReq(models.TierBasic, "")
	again.TokenCode = req.TokenCode
	_, err = f.svc.Registration.Register(f.ctx, again)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	req := f.registerReq(models.TierBasic, "")
	f.clock.Set(time.Now().Add(31 * 24 * time.Hour))

	_, err := f.svc.Registration.Register(f.ctx, req)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenConsumedByExactlyOneConcurrentRegistration(t *testing.T) {
	f := newFixture(t)
	code := f.token(models.TierBasic)

	const attempts = 8
	reqs := make([]models.RegisterRequest, attempts)
	for i := range reqs {
		reqs[i] = f.registerReq(models.TierBasic, "")
		reqs[i].TokenCode = code
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(req models.RegisterRequest) {
			defer wg.Done()
			_, err := f.svc.Registration.Register(f.ctx, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidToken):
				failures++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(reqs[i])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, failures)
}

func TestReferralCodesAreUnique(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		u := f.register(models.TierBasic, "")
		assert.False(t, seen[u.ReferralCode], "duplicate referral code %s", u.ReferralCode)
		seen[u.ReferralCode] = true
	}
}

func TestActivateBooksRegistrationFee(t *testing.T) {
	f := newFixture(t)
	u := f.register(models.TierBasic, "")

	res, err := f.svc.Registration.Activate(f.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, res.User.IsActive)
	assert.Zero(t, res.ReferralBonus)

	regs := f.transactions(u.ID, models.TxRegistration)
	require.Len(t, regs, 1)
	assert.Equal(t, int64(3000), regs[0].Amount)
	assert.Equal(t, models.StatusCompleted, regs[0].Status)

	_, bonuses, err := f.store.ListTransactions(f.ctx, database.TransactionFilter{Type: models.TxReferralBonus})
	require.NoError(t, err)
	assert.Zero(t, bonuses)
}

func TestActivatePaysReferrerOnce(t *testing.T) {
	f := newFixture(t)
	referrer := f.activeUser(models.TierBasic)

	basic := f.register(models.TierBasic, referrer.ReferralCode)
	res, err := f.svc.Registration.Activate(f.ctx, basic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.ReferralBonus)
	assert.Equal(t, int64(500), f.user(referrer.ID).Balance)

	_, err = f.svc.Registration.Activate(f.ctx, basic.ID)
	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.Equal(t, int64(500), f.user(referrer.ID).Balance)

	premium := f.register(models.TierPremium, referrer.ReferralCode)
	_, err = f.svc.Registration.Activate(f.ctx, premium.ID)
	require.NoError(t, err)

	got := f.user(referrer.ID)
	assert.Equal(t, int64(1500), got.Balance)
	assert.Zero(t, got.TotalEarned)

	bonuses := f.transactions(referrer.ID, models.TxReferralBonus)
	require.Len(t, bonuses, 2)
	assert.Equal(t, int64(1000), bonuses[0].Amount)
	require.NotNil(t, bonuses[0].Metadata.ReferredUserID)
	assert.Equal(t, premium.ID, *bonuses[0].Metadata.ReferredUserID)
}

func TestActivateErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Registration.Activate(f.ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// An account created without going through Register has no token.
	orphan := &models.User{
		Email:        "orphan@example.com",
		Phone:        "08099999999",
		Password:     "x",
		FullName:     "Orphan",
		UserType:     models.TierBasic,
		ReferralCode: "ORPHAN",
	}
	require.NoError(t, f.store.CreateUser(f.ctx, orphan))
	_, err = f.svc.Registration.Activate(f.ctx, orphan.ID)
	assert.ErrorIs(t, err, ErrNoRegistrationToken)
	assert.False(t, f.user(orphan.ID).IsActive)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	req := f.registerReq(models.TierBasic, "")
	res, err := f.svc.Registration.Register(f.ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Auth.Login(f.ctx, req.Email, req.Password)
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = f.svc.Registration.Activate(f.ctx, res.User.ID)
	require.NoError(t, err)

	_, err = f.svc.Auth.Login(f.ctx, req.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Auth.Login(f.ctx, "missing@example.com", req.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := f.svc.Auth.Login(f.ctx, "  USER"+req.Email[4:], req.Password)
	require.NoError(t, err)
	assert.Equal(t, 50, session.User.AdLimit)
	assert.NotEmpty(t, session.Token)
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.Auth.AdminLogin("Admin@AdPay.test", "admin-pass")
	require.NoError(t, err)
	claims, err := f.tokens.Validate(session.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	_, err = f.svc.Auth.AdminLogin("admin@adpay.test", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Auth.AdminLogin("other@adpay.test", "admin-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	plain := &Auth{base: f.svc.Auth.base, tokens: f.tokens, admin: AdminCredentials{Email: "ops@adpay.test", Password: "letmein"}}
	_, err = plain.AdminLogin("ops@adpay.test", "letmein")
	assert.NoError(t, err)
	_, err = plain.AdminLogin("ops@adpay.test", "letmeout")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	none := &Auth{base: f.svc.Auth.base, tokens: f.tokens, admin: AdminCredentials{Email: "ops@adpay.test"}}
	_, err = none.AdminLogin("ops@adpay.test", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

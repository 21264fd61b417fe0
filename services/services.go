// Package services holds the platform's business rules: registration and
// activation, ad earnings, withdrawals, and admin reporting. Every balance
// mutation is written together with its ledger entry inside one store
// transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adpay-go/database"
	"adpay-go/models"
	"adpay-go/notify"
	"adpay-go/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	referralCodeLength = 6
	tokenCodeLength    = 8
	codeAttempts       = 10
	casAttempts        = 5
)

// StatsCache is an optional read-through cache for the admin dashboard.
type StatsCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Deps struct {
	Store    database.Store
	Rules    Rules
	Tokens   *utils.TokenManager
	Cipher   *utils.Cipher
	Notifier notify.Notifier
	Cache    StatsCache
	CacheTTL time.Duration
	Now      func() time.Time
	Admin    AdminCredentials
}

// Services bundles the workflows handed to the HTTP layer.
type Services struct {
	Auth         *Auth
	Registration *Registration
	Ads          *Ads
	Withdrawals  *Withdrawals
	Accounts     *Accounts
	Tokens       *Tokens
	Reporting    *Reporting
}

func New(d Deps) *Services {
	b := newBase(d)
	return &Services{
		Auth:         &Auth{base: b, tokens: d.Tokens, admin: d.Admin},
		Registration: &Registration{base: b, tokens: d.Tokens},
		Ads:          &Ads{base: b, catalog: DefaultCatalog, pick: randomIndex},
		Withdrawals:  &Withdrawals{base: b},
		Accounts:     &Accounts{base: b},
		Tokens:       &Tokens{base: b},
		Reporting:    &Reporting{base: b},
	}
}

type base struct {
	store    database.Store
	rules    Rules
	cipher   *utils.Cipher
	notifier notify.Notifier
	cache    StatsCache
	cacheTTL time.Duration
	now      func() time.Time
}

func newBase(d Deps) *base {
	b := &base{
		store:    d.Store,
		rules:    d.Rules,
		cipher:   d.Cipher,
		notifier: d.Notifier,
		cache:    d.Cache,
		cacheTTL: d.CacheTTL,
		now:      d.Now,
	}
	if b.notifier == nil {
		b.notifier = notify.Noop{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func newReference(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// notFound maps the store's sentinel to the service one, wrapping anything else.
func notFound(err error, what string) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func (b *base) revealBank(bank models.BankAccount) models.BankAccount {
	if b.cipher == nil || bank.AccountNumber == "" {
		return bank
	}
	plain, err := b.cipher.Decrypt(bank.AccountNumber)
	if err != nil {
		log.WithError(err).Error("Failed to decrypt bank account number")
		bank.AccountNumber = ""
		return bank
	}
	bank.AccountNumber = plain
	return bank
}

func (b *base) sealBank(bank models.BankAccount) (models.BankAccount, error) {
	if b.cipher == nil {
		return bank, nil
	}
	enc, err := b.cipher.Encrypt(bank.AccountNumber)
	if err != nil {
		return bank, err
	}
	bank.AccountNumber = enc
	return bank, nil
}

// present returns a copy of u safe to hand to a client.
func (b *base) present(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Bank = b.revealBank(u.Bank)
	return &out
}

func (b *base) presentTransaction(t models.Transaction) models.Transaction {
	if t.Metadata.BankDetails != nil {
		bank := b.revealBank(*t.Metadata.BankDetails)
		t.Metadata.BankDetails = &bank
	}
	if t.User != nil {
		t.User = b.present(t.User)
	}
	return t
}

func (b *base) invalidateStats(ctx context.Context) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Delete(ctx, dashboardCacheKey); err != nil {
		log.WithError(err).Warn("Failed to invalidate dashboard cache")
	}
}

package database

import (
	"context"
	"errors"
	"time"

	"adpay-go/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Page is a 1-based page request. Zero values fall back to page 1 of 20.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type UserFilter struct {
	Active   *bool
	UserType string
	Page     Page
}

type TokenFilter struct {
	Used *bool
	Page Page
}

type TransactionFilter struct {
	UserID   *uint
	Type     string
	Status   string
	Limit    int
	Offset   int
	WithUser bool
}

// Store is the persistence port used by the service layer. Every method that
// changes a balance or a status is a conditional write reporting whether it
// applied, so callers never read-modify-write shared rows.
type Store interface {
	// WithTx runs fn against a Store bound to a single database transaction.
	// Returning an error from fn rolls back every write made through it.
	WithTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	IdentityTaken(ctx context.Context, email, phone string) (bool, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	CountUsers(ctx context.Context, filter UserFilter) (int64, error)
	ListReferrals(ctx context.Context, referrerID uint) ([]models.User, error)
	ActivateUser(ctx context.Context, id uint) (bool, error)
	CreditBalance(ctx context.Context, id uint, amount int64, countAsEarnings bool) error
	DebitBalance(ctx context.Context, id uint, amount int64) (bool, error)
	RecordAdView(ctx context.Context, id uint, version int64, watchedToday int, earnings int64, at time.Time) (bool, error)
	UpdateBankAccount(ctx context.Context, id uint, bank models.BankAccount) error

	CreateTokens(ctx context.Context, tokens []models.Token) error
	TokenCodeExists(ctx context.Context, code string) (bool, error)
	GetTokenByCode(ctx context.Context, code string) (*models.Token, error)
	GetTokenByUser(ctx context.Context, userID uint) (*models.Token, error)
	TokensForUsers(ctx context.Context, userIDs []uint) ([]models.Token, error)
	ConsumeToken(ctx context.Context, tokenID, userID uint, at time.Time) (bool, error)
	ListTokens(ctx context.Context, filter TokenFilter) ([]models.Token, int64, error)
	PurgeExpiredTokens(ctx context.Context, createdBefore time.Time) (int64, error)

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error)
	SumTransactions(ctx context.Context, txType, status string) (int64, error)
	SetTransactionStatus(ctx context.Context, id uint, from, to string, meta models.TransactionMetadata) (bool, error)

	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, page Page) ([]models.AuditLog, int64, error)
}

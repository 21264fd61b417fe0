package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"adpay-go/database"
	"adpay-go/database/dbtest"
	"adpay-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s database.Store, n int) *models.User {
	t.Helper()
	u := &models.User{
		Email:            fmt.Sprintf("user%d@example.com", n),
		Phone:            fmt.Sprintf("080000000%02d", n),
		Password:         "hash",
		FullName:         fmt.Sprintf("User %d", n),
		UserType:         models.TierBasic,
		ReferralCode:     fmt.Sprintf("REF%03d", n),
		RegistrationDate: time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestCreateUserDuplicate(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)

	dup := *u
	dup.ID = 0
	dup.ReferralCode = "OTHER1"
	err := s.CreateUser(ctx, &dup)
	assert.True(t, errors.Is(err, database.ErrAlreadyExists), "got %v", err)

	taken, err := s.IdentityTaken(ctx, "nobody@example.com", u.Phone)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.IdentityTaken(ctx, "nobody@example.com", "09999999999")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestGetUserNotFound(t *testing.T) {
	s := dbtest.NewStore(t)
	_, err := s.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestActivateUserOnce(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)

	ok, err := s.ActivateUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ActivateUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDebitBalanceNeverGoesNegative(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)

	require.NoError(t, s.CreditBalance(ctx, u.ID, 100, true))

	ok, err := s.DebitBalance(ctx, u.ID, 150)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DebitBalance(ctx, u.ID, 100)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)
	assert.Equal(t, int64(100), got.TotalEarned)
}

func TestRecordAdViewVersionGuard(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)
	now := time.Now()

	ok, err := s.RecordAdView(ctx, u.ID, u.Version, 1, 15, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale version loses.
	ok, err = s.RecordAdView(ctx, u.ID, u.Version, 1, 15, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Balance)
	assert.Equal(t, 1, got.AdsWatchedToday)
	assert.Equal(t, u.Version+1, got.Version)
	require.NotNil(t, got.LastAdDate)
}

func TestConsumeTokenOnce(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	a := seedUser(t, s, 1)
	b := seedUser(t, s, 2)

	tokens := []models.Token{{Code: "ABCD1234", UserType: models.TierBasic, Price: 3000}}
	require.NoError(t, s.CreateTokens(ctx, tokens))
	require.NotZero(t, tokens[0].ID)

	ok, err := s.ConsumeToken(ctx, tokens[0].ID, a.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ConsumeToken(ctx, tokens[0].ID, b.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	tok, err := s.GetTokenByUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", tok.Code)

	_, err = s.GetTokenByUser(ctx, b.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestPurgeExpiredTokensKeepsUsed(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)

	tokens := []models.Token{
		{Code: "OLDUNUSE", UserType: models.TierBasic, Price: 3000},
		{Code: "OLDUSED1", UserType: models.TierBasic, Price: 3000},
		{Code: "FRESH123", UserType: models.TierPremium, Price: 5000},
	}
	require.NoError(t, s.CreateTokens(ctx, tokens))
	_, err := s.ConsumeToken(ctx, tokens[1].ID, u.ID, time.Now())
	require.NoError(t, err)

	purged, err := s.PurgeExpiredTokens(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	exists, err := s.TokenCodeExists(ctx, "OLDUSED1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWithTxRollsBack(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx database.Store) error {
		if err := tx.CreditBalance(ctx, u.ID, 500, false); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)
}

func TestTransactionsSumAndStatus(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := seedUser(t, s, 1)

	for i, status := range []string{models.StatusCompleted, models.StatusCompleted, models.StatusPending} {
		require.NoError(t, s.CreateTransaction(ctx, &models.Transaction{
			UserID:    u.ID,
			Type:      models.TxWithdrawal,
			Amount:    1000,
			Status:    status,
			Reference: fmt.Sprintf("WD-%d", i),
		}))
	}

	sum, err := s.SumTransactions(ctx, models.TxWithdrawal, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), sum)

	pending, total, err := s.ListTransactions(ctx, database.TransactionFilter{Status: models.StatusPending, WithUser: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.NotNil(t, pending[0].User)
	assert.Equal(t, u.Email, pending[0].User.Email)

	ok, err := s.SetTransactionStatus(ctx, pending[0].ID, models.StatusPending, models.StatusFailed,
		models.TransactionMetadata{Reason: "bank rejected"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetTransactionStatus(ctx, pending[0].ID, models.StatusPending, models.StatusCompleted, models.TransactionMetadata{})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetTransaction(ctx, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "bank rejected", got.Metadata.Reason)

	dup := &models.Transaction{UserID: u.ID, Type: models.TxAdView, Amount: 15, Status: models.StatusCompleted, Reference: "WD-0"}
	assert.ErrorIs(t, s.CreateTransaction(ctx, dup), database.ErrAlreadyExists)
}

func TestListUsersFilters(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		u := seedUser(t, s, i)
		if i%2 == 0 {
			_, err := s.ActivateUser(ctx, u.ID)
			require.NoError(t, err)
		}
	}

	active := true
	users, total, err := s.ListUsers(ctx, database.UserFilter{Active: &active, Page: database.Page{Page: 1, Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 1)

	n, err := s.CountUsers(ctx, database.UserFilter{UserType: models.TierPremium})
	require.NoError(t, err)
	assert.Zero(t, n)
}

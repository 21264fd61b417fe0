package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"adpay-go/database"
	"adpay-go/database/dbtest"
	"adpay-go/models"
	"adpay-go/utils"

	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "AdPayGo2025SecureKey123456789012"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]any
	hits    int
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	*(dst.(*DashboardStats)) = *(v.(*DashboardStats))
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *database.GormStore
	clock  *fakeClock
	notes  *recordingNotifier
	cache  *memoryCache
	svc    *Services
	tokens *utils.TokenManager
	seq    atomic.Int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tm, err := utils.NewTokenManager("services-test-secret-services-test", time.Hour)
	require.NoError(t, err)
	cipher, err := utils.NewCipher(testEncryptionKey)
	require.NoError(t, err)
	adminHash, err := utils.HashPassword("admin-pass")
	require.NoError(t, err)

	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  dbtest.NewStore(t),
		clock:  &fakeClock{now: time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)},
		notes:  &recordingNotifier{},
		cache:  &memoryCache{entries: map[string]any{}},
		tokens: tm,
	}
	f.svc = New(Deps{
		Store:    f.store,
		Rules:    DefaultRules(),
		Tokens:   tm,
		Cipher:   cipher,
		Notifier: f.notes,
		Cache:    f.cache,
		CacheTTL: time.Minute,
		Now:      f.clock.Now,
		Admin:    AdminCredentials{Email: "admin@adpay.test", PasswordHash: adminHash},
	})
	return f
}

func (f *fixture) token(tier string) string {
	f.t.Helper()
	tokens, err := f.svc.Tokens.Generate(f.ctx, tier, 1)
	require.NoError(f.t, err)
	return tokens[0].Code
}

func (f *fixture) registerReq(tier, referral string) models.RegisterRequest {
	n := f.seq.Add(1)
	return models.RegisterRequest{
		FullName:     fmt.Sprintf("Test User %d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		Phone:        fmt.Sprintf("0801%07d", n),
		Password:     "secret123",
		UserType:     tier,
		TokenCode:    f.token(tier),
		ReferralCode: referral,
	}
}

func (f *fixture) register(tier, referral string) *models.User {
	f.t.Helper()
	res, err := f.svc.Registration.Register(f.ctx, f.registerReq(tier, referral))
	require.NoError(f.t, err)
	return res.User.User
}

func (f *fixture) activeUser(tier string) *models.User {
	f.t.Helper()
	u := f.register(tier, "")
	_, err := f.svc.Registration.Activate(f.ctx, u.ID)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) user(id uint) *models.User {
	f.t.Helper()
	u, err := f.store.GetUser(f.ctx, id)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) transactions(userID uint, txType string) []models.Transaction {
	f.t.Helper()
	txns, _, err := f.store.ListTransactions(f.ctx, database.TransactionFilter{UserID: &userID, Type: txType})
	require.NoError(f.t, err)
	return txns
}

func (f *fixture) fund(userID uint, amount int64) {
	f.t.Helper()
	require.NoError(f.t, f.store.CreditBalance(f.ctx, userID, amount, true))
}

func (f *fixture) setBank(userID uint) {
	f.t.Helper()
	_, err := f.svc.Accounts.UpdateBankDetails(f.ctx, userID, models.BankDetailsRequest{
		BankName:      "First Bank",
		AccountNumber: "0123456789",
		AccountName:   "Test User",
	})
	require.NoError(f.t, err)
}

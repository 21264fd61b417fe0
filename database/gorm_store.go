package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adpay-go/models"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists
	default:
		return err
	}
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) IdentityTaken(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone = ?", email, phone).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("referral_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) userQuery(ctx context.Context, filter UserFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if filter.UserType != "" {
		q = q.Where("user_type = ?", filter.UserType)
	}
	return q
}

func (s *GormStore) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	var total int64
	if err := s.userQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var users []models.User
	err := s.userQuery(ctx, filter).
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *GormStore) CountUsers(ctx context.Context, filter UserFilter) (int64, error) {
	var count int64
	err := s.userQuery(ctx, filter).Count(&count).Error
	return count, err
}

func (s *GormStore) ListReferrals(ctx context.Context, referrerID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("referred_by_id = ?", referrerID).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (s *GormStore) ActivateUser(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, false).
		Update("is_active", true)
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) CreditBalance(ctx context.Context, id uint, amount int64, countAsEarnings bool) error {
	updates := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
		"version": gorm.Expr("version + 1"),
	}
	if countAsEarnings {
		updates["total_earned"] = gorm.Expr("total_earned + ?", amount)
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DebitBalance(ctx context.Context, id uint, amount int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance - ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) RecordAdView(ctx context.Context, id uint, version int64, watchedToday int, earnings int64, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"balance":           gorm.Expr("balance + ?", earnings),
			"total_earned":      gorm.Expr("total_earned + ?", earnings),
			"ads_watched_today": watchedToday,
			"last_ad_date":      at,
			"version":           gorm.Expr("version + 1"),
		})
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) UpdateBankAccount(ctx context.Context, id uint, bank models.BankAccount) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"bank_bank_name":      bank.BankName,
			"bank_account_number": bank.AccountNumber,
			"bank_account_name":   bank.AccountName,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Tokens

func (s *GormStore) CreateTokens(ctx context.Context, tokens []models.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&tokens).Error; err != nil {
		return fmt.Errorf("create tokens: %w", translate(err))
	}
	return nil
}

func (s *GormStore) TokenCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Token{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (s *GormStore) GetTokenByCode(ctx context.Context, code string) (*models.Token, error) {
	var token models.Token
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (s *GormStore) GetTokenByUser(ctx context.Context, userID uint) (*models.Token, error) {
	var token models.Token
	if err := s.db.WithContext(ctx).Where("used_by_id = ?", userID).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (s *GormStore) TokensForUsers(ctx context.Context, userIDs []uint) ([]models.Token, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []models.Token
	err := s.db.WithContext(ctx).Where("used_by_id IN ?", userIDs).Find(&tokens).Error
	return tokens, err
}

func (s *GormStore) ConsumeToken(ctx context.Context, tokenID, userID uint, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Token{}).
		Where("id = ? AND is_used = ?", tokenID, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_by_id": userID,
			"used_at":    at,
		})
	return res.RowsAffected == 1, res.Error
}

func (s *GormStore) tokenQuery(ctx context.Context, filter TokenFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Token{})
	if filter.Used != nil {
		q = q.Where("is_used = ?", *filter.Used)
	}
	return q
}

func (s *GormStore) ListTokens(ctx context.Context, filter TokenFilter) ([]models.Token, int64, error) {
	var total int64
	if err := s.tokenQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var tokens []models.Token
	err := s.tokenQuery(ctx, filter).
		Preload("UsedBy").
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&tokens).Error
	if err != nil {
		return nil, 0, err
	}
	return tokens, total, nil
}

func (s *GormStore) PurgeExpiredTokens(ctx context.Context, createdBefore time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_used = ? AND created_at < ?", false, createdBefore).
		Delete(&models.Token{})
	return res.RowsAffected, res.Error
}

// Transactions

func (s *GormStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("create transaction: %w", translate(err))
	}
	return nil
}

func (s *GormStore) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

func (s *GormStore) transactionQuery(ctx context.Context, filter TransactionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

func (s *GormStore) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error) {
	var total int64
	if err := s.transactionQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := s.transactionQuery(ctx, filter)
	if filter.WithUser {
		q = q.Preload("User")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var txns []models.Transaction
	if err := q.Order("created_at DESC").Order("id DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func (s *GormStore) SumTransactions(ctx context.Context, txType, status string) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (s *GormStore) SetTransactionStatus(ctx context.Context, id uint, from, to string, meta models.TransactionMetadata) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Select("Status", "Metadata").
		Updates(&models.Transaction{Status: to, Metadata: meta})
	return res.RowsAffected == 1, res.Error
}

// Audit

func (s *GormStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) ListAuditLogs(ctx context.Context, page Page) ([]models.AuditLog, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

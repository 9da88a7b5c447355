package repository

import (
	"context"
	"time"

	"propzy/internal/domain"

	"gorm.io/gorm"
)

// PasswordResetRepository provides DB access for password reset tokens.
type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, p *domain.PasswordReset) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PasswordResetRepository) GetByHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	var p domain.PasswordReset
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkUsed consumes the token. It reports false if the token was already used.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	return tx.RowsAffected == 1, tx.Error
}

// InvalidateForUser consumes every open token of the user.
func (r *PasswordResetRepository) InvalidateForUser(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", at).Error
}

// CountStale counts tokens that are expired or already used.
func (r *PasswordResetRepository) CountStale(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Count(&n).Error
	return n, err
}

// DeleteStale removes tokens that are expired or already used.
func (r *PasswordResetRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&domain.PasswordReset{})
	return tx.RowsAffected, tx.Error
}

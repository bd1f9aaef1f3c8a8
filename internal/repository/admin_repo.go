package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shecare/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminAccountRepository struct {
	db *gorm.DB
}

func NewAdminAccountRepository(db *gorm.DB) *AdminAccountRepository {
	return &AdminAccountRepository{db: db}
}

type adminAccountModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	ProviderName string    `gorm:"column:provider_name;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (adminAccountModel) TableName() string { return "admin_accounts" }

func toDomainAdminAccount(m adminAccountModel) *domain.AdminAccount {
	return &domain.AdminAccount{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		ProviderName: m.ProviderName,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *AdminAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	var m adminAccountModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin %q: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("admin_accounts: get: %w", err)
	}
	return toDomainAdminAccount(m), nil
}

// Upsert creates the account or replaces its password hash and provider.
func (r *AdminAccountRepository) Upsert(ctx context.Context, acc *domain.AdminAccount) error {
	now := time.Now().UTC()
	m := adminAccountModel{
		Email:        acc.Email,
		PasswordHash: acc.PasswordHash,
		ProviderName: acc.ProviderName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "provider_name", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("admin_accounts: upsert: %w", err)
	}

	stored, err := r.GetByEmail(ctx, acc.Email)
	if err != nil {
		return err
	}
	*acc = *stored
	return nil
}

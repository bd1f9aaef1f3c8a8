package admin

import (
	"context"

	"shecare/internal/domain"
)

type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)
	Upsert(ctx context.Context, acc *domain.AdminAccount) error
}

type TokenIssuer interface {
	GenerateToken(email, role, providerName string) (string, error)
}

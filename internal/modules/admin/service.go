package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"shecare/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// compared against when the email is unknown so both failure paths cost a
// bcrypt round
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shecare-dummy-password"), bcrypt.DefaultCost)

type Service struct {
	accounts AccountRepository
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewService(accounts AccountRepository, tokens TokenIssuer, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{accounts: accounts, tokens: tokens, tokenTTL: tokenTTL, logger: logger}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("admin login failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(acc.Email, domain.RoleAdmin, acc.ProviderName)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in", zap.String("email", acc.Email), zap.String("provider_name", acc.ProviderName))
	return &LoginResponse{
		Token:        token,
		ExpiresIn:    int64(s.tokenTTL.Seconds()),
		Email:        acc.Email,
		ProviderName: acc.ProviderName,
	}, nil
}

// EnsureAccount creates or refreshes an admin account. Calling it again with
// the same email rotates the password and provider.
func (s *Service) EnsureAccount(ctx context.Context, email, password, providerName string) (*domain.AdminAccount, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" || strings.TrimSpace(providerName) == "" {
		return nil, ErrInvalidAccount
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	acc := &domain.AdminAccount{
		Email:        email,
		PasswordHash: hash,
		ProviderName: providerName,
	}
	if err := s.accounts.Upsert(ctx, acc); err != nil {
		return nil, err
	}
	s.logger.Info("admin account ensured", zap.String("email", email), zap.String("provider_name", providerName))
	return acc, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

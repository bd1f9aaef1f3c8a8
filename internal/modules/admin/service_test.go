package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shecare/internal/domain"
	"shecare/internal/middleware"
	"shecare/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

/* ==================== MOCKS ==================== */

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminAccount), args.Error(1)
}

func (m *MockAccountRepository) Upsert(ctx context.Context, acc *domain.AdminAccount) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

/* ==================== TESTS ==================== */

func TestService_Login_Success(t *testing.T) {
	repo := new(MockAccountRepository)
	j := jwt.New("secret", time.Hour)
	svc := NewService(repo, j, time.Hour, nil)

	repo.On("GetByEmail", mock.Anything, "admin@clinic.test").Return(&domain.AdminAccount{
		Email: "admin@clinic.test", PasswordHash: hashed(t, "s3cret!"), ProviderName: "Clinic A",
	}, nil)

	res, err := svc.Login(context.Background(), LoginRequest{Email: " Admin@Clinic.test ", Password: "s3cret!"})

	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "Clinic A", res.ProviderName)

	claims, err := j.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "Clinic A", claims.ProviderName)
}

func TestService_Login_WrongPassword(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := NewService(repo, jwt.New("secret", time.Hour), time.Hour, nil)

	repo.On("GetByEmail", mock.Anything, "admin@clinic.test").Return(&domain.AdminAccount{
		Email: "admin@clinic.test", PasswordHash: hashed(t, "right"), ProviderName: "Clinic A",
	}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@clinic.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := NewService(repo, jwt.New("secret", time.Hour), time.Hour, nil)

	repo.On("GetByEmail", mock.Anything, "ghost@clinic.test").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@clinic.test", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_StoreError(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := NewService(repo, jwt.New("secret", time.Hour), time.Hour, nil)

	boom := errors.New("db down")
	repo.On("GetByEmail", mock.Anything, "admin@clinic.test").Return(nil, boom)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@clinic.test", Password: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestService_EnsureAccount(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := NewService(repo, jwt.New("secret", time.Hour), time.Hour, nil)

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(acc *domain.AdminAccount) bool {
		return acc.Email == "admin@clinic.test" &&
			acc.ProviderName == "Clinic A" &&
			bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("pw")) == nil
	})).Return(nil)

	acc, err := svc.EnsureAccount(context.Background(), "ADMIN@clinic.test", "pw", "Clinic A")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", acc.PasswordHash)
	repo.AssertExpectations(t)

	_, err = svc.EnsureAccount(context.Background(), "admin@clinic.test", "", "Clinic A")
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestHandler_LoginAndMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(MockAccountRepository)
	j := jwt.New("secret", time.Hour)
	h := NewHandler(NewService(repo, j, time.Hour, nil))

	repo.On("GetByEmail", mock.Anything, "admin@clinic.test").Return(&domain.AdminAccount{
		Email: "admin@clinic.test", PasswordHash: hashed(t, "pw"), ProviderName: "Clinic A",
	}, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	adminGroup := v1.Group("/admin", middleware.JWTAuth(j), middleware.AdminOnly())
	h.RegisterRoutes(v1, adminGroup)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"email":"admin@clinic.test","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Clinic A")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

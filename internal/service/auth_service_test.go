package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type authRepoStub struct {
	users         map[string]models.User
	refreshTokens map[string]models.RefreshToken
	logs          []*models.AuditLog
	revokedUsers  []string
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		users:         make(map[string]models.User),
		refreshTokens: make(map[string]models.RefreshToken),
	}
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.refreshTokens[token.Token] = *token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.refreshTokens[token]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for key, t := range s.refreshTokens {
		if t.ID == id {
			t.Revoked = true
			s.refreshTokens[key] = t
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func authFixture(t *testing.T) (*AuthService, *authRepoStub) {
	t.Helper()
	repo := newAuthRepoStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["u-1"] = models.User{
		ID:           "u-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Roles:        models.RoleList{models.RoleProgramAdmin, models.RoleInstructor},
		PrimaryRole:  models.RoleProgramAdmin,
		Active:       true,
	}
	service := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "test",
	})
	return service, repo
}

func TestLoginIssuesTokensWithRoleSet(t *testing.T) {
	service, repo := authFixture(t)

	resp, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Len(t, repo.refreshTokens, 1)

	claims, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleProgramAdmin, claims.PrimaryRole)
	assert.True(t, claims.Roles.HasAny(models.RoleInstructor))
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := authFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	service, repo := authFixture(t)
	u := repo.users["u-1"]
	u.Active = false
	repo.users["u-1"] = u

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	service, repo := authFixture(t)

	login, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := service.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
}

func TestRefreshTokenRevokedRejected(t *testing.T) {
	service, repo := authFixture(t)

	login, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	stored := repo.refreshTokens[login.RefreshToken]
	stored.Revoked = true
	repo.refreshTokens[login.RefreshToken] = stored

	_, err = service.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	service, repo := authFixture(t)

	err := service.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedUsers, "u-1")

	// old password no longer matches
	err = service.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "another",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service, _ := authFixture(t)
	other := NewAuthService(newAuthRepoStub(), nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Minute,
	})

	login, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

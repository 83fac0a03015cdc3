package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type assignmentRepoStub struct {
	assignments []models.ProgramAssignment
	err         error
}

func (s *assignmentRepoStub) ListActiveByUser(ctx context.Context, userID string) ([]models.ProgramAssignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assignments, nil
}

func scopedClaims(userID string, roles ...models.Role) *models.JWTClaims {
	primary := models.RoleProgramAdmin
	if len(roles) > 0 {
		primary = roles[0]
	}
	return &models.JWTClaims{
		UserID:      userID,
		Roles:       models.RoleList(roles),
		PrimaryRole: primary,
	}
}

func TestResolveFilterSuperAdminBypassIsUnrestricted(t *testing.T) {
	service := NewScopeService(&assignmentRepoStub{}, nil)
	claims := scopedClaims("u-1", models.RoleSuperAdmin)

	filter, err := service.ResolveFilter(context.Background(), claims, "", true)
	require.NoError(t, err)
	assert.True(t, filter.Unrestricted)
	assert.Equal(t, "", filter.ProgramScope())
}

func TestResolveFilterSuperAdminWithoutBypassNeedsContext(t *testing.T) {
	service := NewScopeService(&assignmentRepoStub{}, nil)
	claims := scopedClaims("u-1", models.RoleSuperAdmin)

	_, err := service.ResolveFilter(context.Background(), claims, "", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingContext.Code, appErrors.FromError(err).Code)
}

func TestResolveFilterBypassIgnoredForScopedRoles(t *testing.T) {
	repo := &assignmentRepoStub{assignments: []models.ProgramAssignment{
		{UserID: "u-2", ProgramID: "prog-a"},
	}}
	service := NewScopeService(repo, nil)
	claims := scopedClaims("u-2", models.RoleProgramAdmin)

	// The bypass header from a non-super-admin must not widen access.
	filter, err := service.ResolveFilter(context.Background(), claims, "prog-a", true)
	require.NoError(t, err)
	assert.False(t, filter.Unrestricted)
	assert.Equal(t, "prog-a", filter.ProgramScope())
}

func TestResolveFilterMissingContextFailsFast(t *testing.T) {
	repo := &assignmentRepoStub{assignments: []models.ProgramAssignment{
		{UserID: "u-2", ProgramID: "prog-a", IsDefault: true},
	}}
	service := NewScopeService(repo, nil)
	claims := scopedClaims("u-2", models.RoleProgramAdmin)

	// Even with a default assignment on file, no requested context means
	// a 400, never a silent fallback.
	_, err := service.ResolveFilter(context.Background(), claims, "", false)
	require.Error(t, err)
	parsed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingContext.Code, parsed.Code)
	assert.Equal(t, 400, parsed.Status)
}

func TestResolveFilterUnassignedProgramIsForbidden(t *testing.T) {
	repo := &assignmentRepoStub{assignments: []models.ProgramAssignment{
		{UserID: "u-2", ProgramID: "prog-a"},
	}}
	service := NewScopeService(repo, nil)
	claims := scopedClaims("u-2", models.RoleProgramAdmin)

	_, err := service.ResolveFilter(context.Background(), claims, "prog-b", false)
	require.Error(t, err)
	parsed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, parsed.Code)
	assert.Equal(t, 403, parsed.Status)
	// The message must not reveal whether prog-b exists at all.
	assert.NotContains(t, parsed.Message, "prog-b")
}

func TestResolveFilterMatchesActiveAssignment(t *testing.T) {
	repo := &assignmentRepoStub{assignments: []models.ProgramAssignment{
		{UserID: "u-3", ProgramID: "prog-a"},
		{UserID: "u-3", ProgramID: "prog-b"},
	}}
	service := NewScopeService(repo, nil)
	claims := scopedClaims("u-3", models.RoleProgramCoordinator)

	filter, err := service.ResolveFilter(context.Background(), claims, "prog-b", false)
	require.NoError(t, err)
	assert.Equal(t, "prog-b", filter.ProgramID)
	assert.False(t, filter.Unrestricted)
}

func TestResolveFilterNilClaims(t *testing.T) {
	service := NewScopeService(&assignmentRepoStub{}, nil)
	_, err := service.ResolveFilter(context.Background(), nil, "prog-a", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestResolveFilterRepositoryFailure(t *testing.T) {
	service := NewScopeService(&assignmentRepoStub{err: errors.New("db down")}, nil)
	claims := scopedClaims("u-4", models.RoleInstructor)
	_, err := service.ResolveFilter(context.Background(), claims, "prog-a", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestRequireRoleSuperAdminPassesEveryCheck(t *testing.T) {
	service := NewScopeService(&assignmentRepoStub{}, nil)
	claims := scopedClaims("u-1", models.RoleSuperAdmin)
	assert.NoError(t, service.RequireRole(claims, models.RoleProgramAdmin))
	assert.NoError(t, service.RequireRole(claims))
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	service := NewScopeService(&assignmentRepoStub{}, nil)
	claims := scopedClaims("u-2", models.RoleInstructor)
	err := service.RequireRole(claims, models.RoleProgramAdmin, models.RoleProgramCoordinator)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDefaultProgramReturnsFlaggedAssignment(t *testing.T) {
	repo := &assignmentRepoStub{assignments: []models.ProgramAssignment{
		{UserID: "u-5", ProgramID: "prog-a"},
		{UserID: "u-5", ProgramID: "prog-c", IsDefault: true},
	}}
	service := NewScopeService(repo, nil)

	programID, found, err := service.DefaultProgram(context.Background(), "u-5")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "prog-c", programID)
}

func TestDefaultProgramNoneFlagged(t *testing.T) {
	repo := &assignmentRepoStub{assignments: []models.ProgramAssignment{
		{UserID: "u-6", ProgramID: "prog-a"},
	}}
	service := NewScopeService(repo, nil)

	_, found, err := service.DefaultProgram(context.Background(), "u-6")
	require.NoError(t, err)
	assert.False(t, found)
}

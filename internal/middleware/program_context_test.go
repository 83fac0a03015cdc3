package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/service"
)

type assignmentStub struct {
	assignments []models.ProgramAssignment
}

func (s *assignmentStub) ListActiveByUser(ctx context.Context, userID string) ([]models.ProgramAssignment, error) {
	return s.assignments, nil
}

func runProgramScope(t *testing.T, claims *models.JWTClaims, programHeader, bypassHeader string, assignments []models.ProgramAssignment) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses", nil)
	if programHeader != "" {
		c.Request.Header.Set(HeaderProgramContext, programHeader)
	}
	if bypassHeader != "" {
		c.Request.Header.Set(HeaderBypassFilter, bypassHeader)
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	scope := service.NewScopeService(&assignmentStub{assignments: assignments}, nil)
	ProgramScope(scope)(c)
	return w, c
}

func TestProgramScopeResolvesAssignedProgram(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Roles: models.RoleList{models.RoleProgramAdmin}, PrimaryRole: models.RoleProgramAdmin}
	assignments := []models.ProgramAssignment{{UserID: "u-1", ProgramID: "prog-a"}}

	w, c := runProgramScope(t, claims, "prog-a", "", assignments)

	assert.Equal(t, http.StatusOK, w.Code)
	filter, ok := FilterFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "prog-a", filter.ProgramID)
	assert.False(t, filter.Unrestricted)
}

func TestProgramScopeMissingHeaderIsBadRequest(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Roles: models.RoleList{models.RoleProgramAdmin}, PrimaryRole: models.RoleProgramAdmin}
	assignments := []models.ProgramAssignment{{UserID: "u-1", ProgramID: "prog-a", IsDefault: true}}

	w, c := runProgramScope(t, claims, "", "", assignments)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, string(body["error"]), "MISSING_PROGRAM_CONTEXT")
}

func TestProgramScopeUnassignedProgramIsForbidden(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Roles: models.RoleList{models.RoleProgramAdmin}, PrimaryRole: models.RoleProgramAdmin}
	assignments := []models.ProgramAssignment{{UserID: "u-1", ProgramID: "prog-a"}}

	w, c := runProgramScope(t, claims, "prog-b", "", assignments)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

func TestProgramScopeSuperAdminBypass(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Roles: models.RoleList{models.RoleSuperAdmin}, PrimaryRole: models.RoleSuperAdmin}

	w, c := runProgramScope(t, claims, "", "true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	filter, ok := FilterFromContext(c)
	require.True(t, ok)
	assert.True(t, filter.Unrestricted)
}

func TestProgramScopeBypassCaseInsensitive(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1", Roles: models.RoleList{models.RoleSuperAdmin}, PrimaryRole: models.RoleSuperAdmin}

	w, _ := runProgramScope(t, claims, "", "TRUE", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProgramScopeWithoutClaimsIsUnauthorized(t *testing.T) {
	w, c := runProgramScope(t, nil, "prog-a", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireRolesInsufficientRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses", nil)
	c.Set(ContextUserKey, &models.JWTClaims{
		UserID:      "u-1",
		Roles:       models.RoleList{models.RoleInstructor},
		PrimaryRole: models.RoleInstructor,
	})

	RequireRoles(models.RoleProgramAdmin)(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireSuperAdminPassesOnlySuperAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/programs/prog-a", nil)
	c.Set(ContextUserKey, &models.JWTClaims{
		UserID:      "u-1",
		Roles:       models.RoleList{models.RoleSuperAdmin},
		PrimaryRole: models.RoleSuperAdmin,
	})
	RequireSuperAdmin()(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/programs/prog-a", nil)
	c.Set(ContextUserKey, &models.JWTClaims{
		UserID:      "u-2",
		Roles:       models.RoleList{models.RoleProgramAdmin},
		PrimaryRole: models.RoleProgramAdmin,
	})
	RequireSuperAdmin()(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

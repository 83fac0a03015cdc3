package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type scopeAssignmentRepository interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.ProgramAssignment, error)
}

// ScopeFilter is the access guard's verdict for one request. An unrestricted
// filter carries an empty ProgramID; repositories interpret the empty string
// as "no program constraint".
type ScopeFilter struct {
	ProgramID    string
	Unrestricted bool
}

// ProgramScope returns the program id restriction to pass to repositories,
// empty when unrestricted.
func (f ScopeFilter) ProgramScope() string {
	if f.Unrestricted {
		return ""
	}
	return f.ProgramID
}

// ScopeService is the program access guard. Every program-sensitive request
// resolves its effective program filter through ResolveFilter exactly once;
// no endpoint invents its own fallback behaviour.
type ScopeService struct {
	assignments scopeAssignmentRepository
	logger      *zap.Logger
}

// NewScopeService constructs the guard.
func NewScopeService(assignments scopeAssignmentRepository, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{assignments: assignments, logger: logger}
}

// ResolveFilter maps (principal, requested context, bypass flag) to the
// filter applied to every subsequent lookup in the request.
//
// Only a super admin with the bypass flag gets unrestricted access. A scoped
// principal without a requested context fails immediately; there is no
// implicit default-program fallback here. A requested context outside the
// principal's active assignments fails without revealing whether the program
// exists.
func (s *ScopeService) ResolveFilter(ctx context.Context, claims *models.JWTClaims, requestedProgramID string, bypassRequested bool) (ScopeFilter, error) {
	if claims == nil {
		return ScopeFilter{}, appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication")
	}

	if claims.PrimaryRole == models.RoleSuperAdmin && bypassRequested {
		return ScopeFilter{Unrestricted: true}, nil
	}

	if requestedProgramID == "" {
		return ScopeFilter{}, appErrors.ErrMissingContext
	}

	assignments, err := s.assignments.ListActiveByUser(ctx, claims.UserID)
	if err != nil {
		return ScopeFilter{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program assignments")
	}
	for _, a := range assignments {
		if a.ProgramID == requestedProgramID {
			return ScopeFilter{ProgramID: requestedProgramID}, nil
		}
	}

	s.logger.Info("program context rejected",
		zap.String("user_id", claims.UserID),
		zap.String("requested_program", requestedProgramID))
	return ScopeFilter{}, appErrors.Clone(appErrors.ErrForbidden, "not authorized for the requested program")
}

// RequireRole gates an operation on role membership. A super admin passes
// every check through the HasAny short-circuit; allowed sets never list
// SUPER_ADMIN explicitly.
func (s *ScopeService) RequireRole(claims *models.JWTClaims, allowed ...models.Role) error {
	if claims == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication")
	}
	if claims.Roles.HasAny(allowed...) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "insufficient role for this operation")
}

// DefaultProgram returns the principal's default assignment when one exists.
// Callers that want a "use my default program" experience resolve it here
// explicitly before invoking ResolveFilter.
func (s *ScopeService) DefaultProgram(ctx context.Context, userID string) (string, bool, error) {
	assignments, err := s.assignments.ListActiveByUser(ctx, userID)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program assignments")
	}
	for _, a := range assignments {
		if a.IsDefault {
			return a.ProgramID, true, nil
		}
	}
	return "", false, nil
}

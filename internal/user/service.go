package user

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/financeops/finance-management/internal"
	"github.com/financeops/finance-management/internal/auth"
	"github.com/financeops/finance-management/internal/core/events"
	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// Repository is the persistence contract for the identity directory.
// Lookups return (nil, nil) when no identity matches.
type Repository interface {
	GetByID(id int64) (*coreuser.User, error)
	GetByUsername(username string) (*coreuser.User, error)
	GetByEmail(email string) (*coreuser.User, error)
	List(offset, limit int) ([]*coreuser.User, error)
	DirectSubordinates(managerID int64) ([]*coreuser.User, error)
	Create(u *coreuser.User) error
	Update(id int64, patch map[string]interface{}) error
	Delete(id int64) error
}

// Service is the identity directory plus the policy decisions that guard
// every mutation. It exclusively owns persistence of identities.
type Service struct {
	repo   Repository
	hasher *auth.PasswordHasher
	bus    *events.EventBus
	authz  *Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, hasher *auth.PasswordHasher, bus *events.EventBus, logger *slog.Logger) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		bus:    bus,
		logger: logger,
	}
	s.authz = NewAuthorizer(s)
	return s
}

// Authorizer exposes the policy core for other modules to compose with.
func (s *Service) Authorizer() *Authorizer {
	return s.authz
}

// ---------------------------------------------------------------------
// Directory lookups
// ---------------------------------------------------------------------

func (s *Service) GetByID(id int64) (*coreuser.User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) GetByUsername(username string) (*coreuser.User, error) {
	return s.repo.GetByUsername(username)
}

func (s *Service) GetByEmail(email string) (*coreuser.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *Service) DirectSubordinates(managerID int64) ([]*coreuser.User, error) {
	return s.repo.DirectSubordinates(managerID)
}

// FullHierarchy returns every transitive subordinate of root, excluding
// root itself. The traversal is breadth-first over manager edges with a
// visited set, so it terminates even if the stored data contains a cycle.
func (s *Service) FullHierarchy(rootID int64) ([]*coreuser.User, error) {
	visited := map[int64]bool{rootID: true}
	var result []*coreuser.User

	queue := []int64{rootID}
	for len(queue) > 0 {
		managerID := queue[0]
		queue = queue[1:]

		subs, err := s.repo.DirectSubordinates(managerID)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			if visited[sub.ID] {
				continue
			}
			visited[sub.ID] = true
			result = append(result, sub)
			queue = append(queue, sub.ID)
		}
	}

	return result, nil
}

// Authenticate looks up by username and verifies the password. Both a
// lookup miss and a verification failure return absent.
func (s *Service) Authenticate(username, password string) (*coreuser.User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

// ---------------------------------------------------------------------
// Guarded operations
// ---------------------------------------------------------------------

// ListUsers enumerates identities, minimum rank manager.
func (s *Service) ListUsers(actor *coreuser.User, offset, limit int) ([]*coreuser.User, error) {
	if err := s.authz.RequireMinRole(actor, coreuser.RoleManager); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(offset, limit)
}

// GetUser reads one identity by id under the read-by-id visibility rule.
func (s *Service) GetUser(actor *coreuser.User, targetID int64) (*coreuser.User, error) {
	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.ErrUserNotFound
	}
	if err := s.authz.CanReadUser(actor, targetID); err != nil {
		return nil, err
	}
	return target, nil
}

// CreateUser is the base creation path.
func (s *Service) CreateUser(ctx context.Context, actor *coreuser.User, dto CreateUserDTO) (*coreuser.User, error) {
	if err := s.authz.RequireMinRole(actor, coreuser.RoleAdmin); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := coreuser.Role(dto.Role)
	managerID, authErr := s.authz.CanCreate(actor, role, dto.ManagerID)
	if authErr != nil {
		return nil, authErr
	}

	return s.create(ctx, actor, dto, role, managerID)
}

// CreateSubordinate is the subordinate-creation path: managers create
// accountants and employees under themselves, admins create managers.
func (s *Service) CreateSubordinate(ctx context.Context, actor *coreuser.User, dto CreateUserDTO) (*coreuser.User, error) {
	if err := s.authz.RequireMinRole(actor, coreuser.RoleManager); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := coreuser.Role(dto.Role)
	managerID, authErr := s.authz.CanCreateSubordinate(actor, role, dto.ManagerID)
	if authErr != nil {
		return nil, authErr
	}

	return s.create(ctx, actor, dto, role, managerID)
}

func (s *Service) create(ctx context.Context, actor *coreuser.User, dto CreateUserDTO, role coreuser.Role, managerID *int64) (*coreuser.User, error) {
	if existing, err := s.repo.GetByEmail(dto.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.ErrDuplicateEmail
	}
	if existing, err := s.repo.GetByUsername(dto.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	u := &coreuser.User{
		Email:        dto.Email,
		Username:     dto.Username,
		PasswordHash: hash,
		FullName:     dto.FullName,
		Phone:        dto.Phone,
		Department:   dto.Department,
		Role:         role,
		IsActive:     true,
		IsVerified:   true,
		ManagerID:    managerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(u); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewUserCreatedEvent(u.ID, u.Username, string(u.Role), actor.ID))
	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "created_by", actor.ID)
	return u, nil
}

// UpdateSelf lets an identity patch its own record, except for its role and
// active flag, which only an admin-initiated update may touch.
func (s *Service) UpdateSelf(actor *coreuser.User, dto UpdateUserDTO) (*coreuser.User, error) {
	if dto.Has("role") {
		return nil, errors.NewForbiddenError("cannot change your own role", errors.ErrCodeInsufficientPrivilege)
	}
	if dto.Has("is_active") {
		return nil, errors.NewForbiddenError("cannot change your own active status", errors.ErrCodeInsufficientPrivilege)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	return s.applyPatch(actor.ID, dto)
}

// UpdateUser is the admin-initiated update path.
func (s *Service) UpdateUser(actor *coreuser.User, targetID int64, dto UpdateUserDTO) (*coreuser.User, error) {
	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.ErrUserNotFound
	}
	if authErr := s.authz.CanModify(actor, target); authErr != nil {
		return nil, authErr
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	return s.applyPatch(targetID, dto)
}

func (s *Service) applyPatch(targetID int64, dto UpdateUserDTO) (*coreuser.User, error) {
	patch := dto.Patch()
	if len(patch) == 0 {
		return s.mustGet(targetID)
	}

	if dto.Has("manager_id") && dto.ManagerID != nil {
		if err := s.checkManagerEdge(targetID, *dto.ManagerID); err != nil {
			return nil, err
		}
	}

	if email, ok := patch["email"].(string); ok {
		if existing, err := s.repo.GetByEmail(email); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != targetID {
			return nil, errors.ErrDuplicateEmail
		}
	}
	if username, ok := patch["username"].(string); ok {
		if existing, err := s.repo.GetByUsername(username); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != targetID {
			return nil, errors.ErrDuplicateUsername
		}
	}

	patch["updated_at"] = time.Now()
	if err := s.repo.Update(targetID, patch); err != nil {
		return nil, err
	}

	return s.mustGet(targetID)
}

// checkManagerEdge rejects a manager assignment that would make the forest
// cyclic: the new manager must exist and must not be the identity itself or
// one of its own descendants.
func (s *Service) checkManagerEdge(userID, managerID int64) error {
	if managerID == userID {
		return errors.ErrHierarchyCycle
	}

	manager, err := s.repo.GetByID(managerID)
	if err != nil {
		return err
	}
	if manager == nil {
		return errors.NewValidationError("manager_id must reference a valid manager", errors.ErrCodeInvalidManager)
	}

	descendants, err := s.FullHierarchy(userID)
	if err != nil {
		return err
	}
	for _, d := range descendants {
		if d.ID == managerID {
			return errors.ErrHierarchyCycle
		}
	}
	return nil
}

// DeactivateUser soft-disables an identity; reversible.
func (s *Service) DeactivateUser(ctx context.Context, actor *coreuser.User, targetID int64) error {
	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errors.ErrUserNotFound
	}
	if authErr := s.authz.CanDeactivate(actor, target); authErr != nil {
		return authErr
	}

	if err := s.repo.Update(targetID, map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	}); err != nil {
		return err
	}

	s.publish(ctx, events.NewUserStatusEvent(events.UserDeactivated, targetID, actor.ID))
	s.logger.Info("user deactivated", "user_id", targetID, "actor_id", actor.ID)
	return nil
}

// ActivateUser re-enables an identity.
func (s *Service) ActivateUser(ctx context.Context, actor *coreuser.User, targetID int64) error {
	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errors.ErrUserNotFound
	}
	if authErr := s.authz.CanActivate(actor); authErr != nil {
		return authErr
	}

	if err := s.repo.Update(targetID, map[string]interface{}{
		"is_active":  true,
		"updated_at": time.Now(),
	}); err != nil {
		return err
	}

	s.publish(ctx, events.NewUserStatusEvent(events.UserActivated, targetID, actor.ID))
	s.logger.Info("user activated", "user_id", targetID, "actor_id", actor.ID)
	return nil
}

// DeleteUser permanently removes an identity. Dependent records are the
// caller's responsibility.
func (s *Service) DeleteUser(ctx context.Context, actor *coreuser.User, targetID int64) error {
	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errors.ErrUserNotFound
	}
	if authErr := s.authz.CanDelete(actor, target); authErr != nil {
		return authErr
	}

	if err := s.repo.Delete(targetID); err != nil {
		return err
	}

	s.publish(ctx, events.NewUserDeletedEvent(targetID, actor.ID))
	s.logger.Info("user deleted", "user_id", targetID, "actor_id", actor.ID)
	return nil
}

func (s *Service) mustGet(id int64) (*coreuser.User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event_type", event.EventType(), "error", err)
	}
}

package user

import (
	errors "github.com/financeops/finance-management/internal"
	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// Directory is the slice of the identity directory the resolver consults
// for hierarchy membership and manager validation.
type Directory interface {
	GetByID(id int64) (*coreuser.User, error)
	DirectSubordinates(managerID int64) ([]*coreuser.User, error)
	FullHierarchy(rootID int64) ([]*coreuser.User, error)
}

// Authorizer is the policy core. Every decision is allow (nil) or a typed
// denial; denials carry only the category, never the underlying reason.
type Authorizer struct {
	dir Directory
}

func NewAuthorizer(dir Directory) *Authorizer {
	return &Authorizer{dir: dir}
}

// RequireMinRole is the generic rank guard beneath every other check.
func (a *Authorizer) RequireMinRole(actor *coreuser.User, min coreuser.Role) *errors.AppError {
	if actor == nil || !actor.Role.AtLeast(min) {
		return errors.ErrInsufficientPrivilege
	}
	return nil
}

// CanAccessUserData is the generic visibility guard: self-access, a manager
// over a *direct* subordinate, or admin rank and above. Managers do not see
// their transitive hierarchy through this check; read-by-id does
// (CanReadUser), and the two are intentionally separate operations.
func (a *Authorizer) CanAccessUserData(actor *coreuser.User, targetID int64) *errors.AppError {
	if actor.ID == targetID {
		return nil
	}

	if actor.Role == coreuser.RoleManager {
		subs, err := a.dir.DirectSubordinates(actor.ID)
		if err != nil {
			return errors.NewInternalError("failed to resolve subordinates", err)
		}
		for _, s := range subs {
			if s.ID == targetID {
				return nil
			}
		}
	}

	if actor.Role.AtLeast(coreuser.RoleAdmin) {
		return nil
	}

	return errors.ErrInsufficientPrivilege
}

// CanReadUser gates read-by-id. A manager may read anyone in their full
// transitive hierarchy.
func (a *Authorizer) CanReadUser(actor *coreuser.User, targetID int64) *errors.AppError {
	if actor.ID == targetID {
		return nil
	}

	if actor.Role == coreuser.RoleManager {
		subs, err := a.dir.FullHierarchy(actor.ID)
		if err != nil {
			return errors.NewInternalError("failed to resolve hierarchy", err)
		}
		for _, s := range subs {
			if s.ID == targetID {
				return nil
			}
		}
		return errors.ErrInsufficientPrivilege
	}

	if actor.Role.AtLeast(coreuser.RoleAdmin) {
		return nil
	}

	return errors.ErrInsufficientPrivilege
}

// validateManagerRef checks that a caller-supplied manager reference points
// at an existing identity whose role is exactly manager.
func (a *Authorizer) validateManagerRef(managerID int64) *errors.AppError {
	manager, err := a.dir.GetByID(managerID)
	if err != nil {
		return errors.NewInternalError("failed to look up manager", err)
	}
	if manager == nil || manager.Role != coreuser.RoleManager {
		return errors.NewValidationError("manager_id must reference a valid manager", errors.ErrCodeInvalidManager)
	}
	return nil
}

// CanCreate is the base creation policy. It returns the manager reference
// the new identity must be persisted with, which may differ from the
// caller-supplied one.
func (a *Authorizer) CanCreate(actor *coreuser.User, requested coreuser.Role, managerID *int64) (*int64, *errors.AppError) {
	switch {
	case actor.Role == coreuser.RoleSuperAdmin:
		return managerID, nil

	case actor.Role == coreuser.RoleAdmin:
		if requested != coreuser.RoleManager && requested != coreuser.RoleAccountant && requested != coreuser.RoleEmployee {
			return nil, errors.ErrInsufficientPrivilege
		}
		if managerID != nil {
			if err := a.validateManagerRef(*managerID); err != nil {
				return nil, err
			}
		}
		return managerID, nil

	default:
		return nil, errors.ErrInsufficientPrivilege
	}
}

// CanCreateSubordinate is the subordinate-creation policy. A manager may
// create accountants and employees, and the new identity reports to the
// creating manager regardless of any caller-supplied reference. An admin
// may create managers through this path with the usual manager validation.
func (a *Authorizer) CanCreateSubordinate(actor *coreuser.User, requested coreuser.Role, managerID *int64) (*int64, *errors.AppError) {
	switch actor.Role {
	case coreuser.RoleManager:
		if requested != coreuser.RoleAccountant && requested != coreuser.RoleEmployee {
			return nil, errors.ErrInsufficientPrivilege
		}
		forced := actor.ID
		return &forced, nil

	case coreuser.RoleAdmin:
		if requested != coreuser.RoleManager {
			return nil, errors.ErrInsufficientPrivilege
		}
		if managerID != nil {
			if err := a.validateManagerRef(*managerID); err != nil {
				return nil, err
			}
		}
		return managerID, nil

	default:
		return nil, errors.ErrInsufficientPrivilege
	}
}

// CanModify gates updates to another identity: admin rank required, and a
// super admin can only be touched by another super admin.
func (a *Authorizer) CanModify(actor *coreuser.User, target *coreuser.User) *errors.AppError {
	if err := a.RequireMinRole(actor, coreuser.RoleAdmin); err != nil {
		return err
	}
	if target.Role == coreuser.RoleSuperAdmin && actor.Role != coreuser.RoleSuperAdmin {
		return errors.ErrInsufficientPrivilege
	}
	return nil
}

// CanDeactivate additionally forbids self-deactivation.
func (a *Authorizer) CanDeactivate(actor *coreuser.User, target *coreuser.User) *errors.AppError {
	if err := a.CanModify(actor, target); err != nil {
		return err
	}
	if target.ID == actor.ID {
		return errors.ErrInsufficientPrivilege
	}
	return nil
}

// CanActivate requires admin rank only. Re-enabling a super admin is not
// guarded the way deactivation is; the asymmetry matches observed behavior
// and is a candidate fix.
func (a *Authorizer) CanActivate(actor *coreuser.User) *errors.AppError {
	return a.RequireMinRole(actor, coreuser.RoleAdmin)
}

// CanDelete reserves irreversible deletion for the top rank and forbids
// self-deletion.
func (a *Authorizer) CanDelete(actor *coreuser.User, target *coreuser.User) *errors.AppError {
	if err := a.RequireMinRole(actor, coreuser.RoleSuperAdmin); err != nil {
		return err
	}
	if target.ID == actor.ID {
		return errors.ErrInsufficientPrivilege
	}
	return nil
}

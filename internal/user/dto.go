package user

import (
	"encoding/json"

	errors "github.com/financeops/finance-management/internal"
	"github.com/financeops/finance-management/internal/core/common/validation"
	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// CreateUserDTO is the transport shape for both creation paths.
type CreateUserDTO struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Role       string `json:"role"`
	ManagerID  *int64 `json:"manager_id"`
}

func (d *CreateUserDTO) Validate() *errors.AppError {
	if d.Role == "" {
		d.Role = string(coreuser.RoleEmployee)
	}

	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(254)
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(64)
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(200)
	v.Field("role", d.Role).ValidRole()
	return v.Validate()
}

// UpdateUserDTO applies patch semantics: only fields present in the request
// body are touched, and an explicit null is distinguishable from an absent
// field (used to clear manager_id).
type UpdateUserDTO struct {
	Email      *string `json:"email"`
	Username   *string `json:"username"`
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
	IsActive   *bool   `json:"is_active"`
	ManagerID  *int64  `json:"manager_id"`

	present map[string]bool
}

func (d *UpdateUserDTO) UnmarshalJSON(data []byte) error {
	type alias UpdateUserDTO
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = UpdateUserDTO(a)
	d.present = make(map[string]bool, len(raw))
	for key := range raw {
		d.present[key] = true
	}
	return nil
}

// Has reports whether the field appeared in the request body, even as null.
func (d *UpdateUserDTO) Has(field string) bool {
	return d.present[field]
}

func (d *UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Has("email") {
		if d.Email == nil {
			return errors.NewValidationFieldError("email", "email cannot be null", errors.ErrCodeInvalidEmail)
		}
		v.Field("email", *d.Email).Required().Email().MaxLength(254)
	}
	if d.Has("username") {
		if d.Username == nil {
			return errors.NewValidationFieldError("username", "username cannot be null", errors.ErrCodeValidationFailed)
		}
		v.Field("username", *d.Username).Required().MinLength(3).MaxLength(64)
	}
	if d.Has("role") {
		if d.Role == nil {
			return errors.NewValidationFieldError("role", "role cannot be null", errors.ErrCodeInvalidRole)
		}
		v.Field("role", *d.Role).ValidRole()
	}
	if d.Has("is_active") && d.IsActive == nil {
		return errors.NewValidationFieldError("is_active", "is_active cannot be null", errors.ErrCodeValidationFailed)
	}
	return v.Validate()
}

// Patch converts the present fields into column updates. A present-but-null
// manager_id clears the manager reference.
func (d *UpdateUserDTO) Patch() map[string]interface{} {
	patch := make(map[string]interface{})

	if d.Has("email") && d.Email != nil {
		patch["email"] = *d.Email
	}
	if d.Has("username") && d.Username != nil {
		patch["username"] = *d.Username
	}
	if d.Has("full_name") && d.FullName != nil {
		patch["full_name"] = *d.FullName
	}
	if d.Has("phone") && d.Phone != nil {
		patch["phone"] = *d.Phone
	}
	if d.Has("department") && d.Department != nil {
		patch["department"] = *d.Department
	}
	if d.Has("role") && d.Role != nil {
		patch["role"] = *d.Role
	}
	if d.Has("is_active") && d.IsActive != nil {
		patch["is_active"] = *d.IsActive
	}
	if d.Has("manager_id") {
		if d.ManagerID != nil {
			patch["manager_id"] = *d.ManagerID
		} else {
			patch["manager_id"] = nil
		}
	}

	return patch
}

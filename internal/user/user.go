package user

import (
	"time"

	userDatamodel "github.com/financeops/finance-management/internal/core/datamodel/user"
	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// UserOut is the API-ready view of an identity. The password hash and OTP
// secret never leave the directory.
type UserOut struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone,omitempty"`
	Department string     `json:"department,omitempty"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	ManagerID  *int64     `json:"manager_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func ToV1(u *coreuser.User) UserOut {
	return UserOut{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Department: u.Department,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		ManagerID:  u.ManagerID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		LastLogin:  u.LastLogin,
	}
}

func ToV1List(users []*coreuser.User) []UserOut {
	out := make([]UserOut, 0, len(users))
	for _, u := range users {
		out = append(out, ToV1(u))
	}
	return out
}

func ToDataModel(u *coreuser.User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Phone:        u.Phone,
		Department:   u.Department,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		ManagerID:    u.ManagerID,
		OTPSecret:    u.OTPSecret,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin,
	}
}

func FromDataModel(m *userDatamodel.User) *coreuser.User {
	return &coreuser.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		Phone:        m.Phone,
		Department:   m.Department,
		Role:         coreuser.Role(m.Role),
		IsActive:     m.IsActive,
		IsVerified:   m.IsVerified,
		ManagerID:    m.ManagerID,
		OTPSecret:    m.OTPSecret,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		LastLogin:    m.LastLogin,
	}
}

package user

import "time"

// User is the core identity shared by the auth and directory modules.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	FullName     string
	Phone        string
	Department   string
	Role         Role
	IsActive     bool
	IsVerified   bool
	ManagerID    *int64
	OTPSecret    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

func (u *User) IsAdminOrAbove() bool {
	return u.Role.AtLeast(RoleAdmin)
}

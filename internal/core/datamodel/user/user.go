package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Username     string     `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FullName     string     `gorm:"column:full_name"`
	Phone        string     `gorm:"column:phone"`
	Department   string     `gorm:"column:department"`
	Role         string     `gorm:"column:role;not null;default:employee"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	IsVerified   bool       `gorm:"column:is_verified;default:false"`
	ManagerID    *int64     `gorm:"column:manager_id"`
	OTPSecret    string     `gorm:"column:otp_secret"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;default:now()"`
	LastLogin    *time.Time `gorm:"column:last_login"`
}

func (User) TableName() string {
	return "users"
}

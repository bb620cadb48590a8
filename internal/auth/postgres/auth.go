package postgres

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	coreuser "github.com/financeops/finance-management/internal/core/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var errUserNotFound = errors.New("user not found")

// GetCredentials fetches the stored hash for a username. The active flag is
// returned alongside so the caller can verify the password before deciding
// which failure to surface.
func (r *Repository) GetCredentials(username string) (string, int64, bool, error) {
	var (
		passwordHash string
		userID       int64
		isActive     bool
	)
	query := `SELECT id, password_hash, is_active FROM users WHERE username = ?`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash, &isActive); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, false, errUserNotFound
		}
		return "", 0, false, err
	}
	return passwordHash, userID, isActive, nil
}

// GetSessionUser loads the identity a verified token refers to. The password
// hash is deliberately not selected.
func (r *Repository) GetSessionUser(userID int64) (*coreuser.User, error) {
	var u coreuser.User
	var role string

	query := `SELECT id, email, username, full_name, phone, department, role, is_active, is_verified, manager_id
	          FROM users WHERE id = ?`

	row := r.db.Raw(query, userID).Row()
	var managerID sql.NullInt64
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.Phone, &u.Department,
		&role, &u.IsActive, &u.IsVerified, &managerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errUserNotFound
		}
		return nil, err
	}

	u.Role = coreuser.Role(role)
	if managerID.Valid {
		u.ManagerID = &managerID.Int64
	}
	return &u, nil
}

func (r *Repository) GetOTPSecret(userID int64) (string, error) {
	var secret sql.NullString
	row := r.db.Raw(`SELECT otp_secret FROM users WHERE id = ?`, userID).Row()
	if err := row.Scan(&secret); err != nil {
		if err == sql.ErrNoRows {
			return "", errUserNotFound
		}
		return "", err
	}
	return secret.String, nil
}

func (r *Repository) SetOTPSecret(userID int64, secret string) error {
	return r.db.Exec(`UPDATE users SET otp_secret = ?, updated_at = now() WHERE id = ?`, secret, userID).Error
}

func (r *Repository) TouchLastLogin(userID int64) error {
	return r.db.Exec(`UPDATE users SET last_login = ? WHERE id = ?`, time.Now(), userID).Error
}

package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/financeops/finance-management/internal"
	userDatamodel "github.com/financeops/finance-management/internal/core/datamodel/user"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/financeops/finance-management/internal/user"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*coreuser.User, error) {
	return r.getOne("id = ?", id)
}

func (r *UserRepository) GetByUsername(username string) (*coreuser.User, error) {
	return r.getOne("username = ?", username)
}

func (r *UserRepository) GetByEmail(email string) (*coreuser.User, error) {
	return r.getOne("email = ?", email)
}

func (r *UserRepository) getOne(query string, arg interface{}) (*coreuser.User, error) {
	var m userDatamodel.User
	err := r.db.Where(query, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&m), nil
}

// List enumerates identities in stable id order.
func (r *UserRepository) List(offset, limit int) ([]*coreuser.User, error) {
	var models []*userDatamodel.User
	err := r.db.Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

func (r *UserRepository) DirectSubordinates(managerID int64) ([]*coreuser.User, error) {
	var models []*userDatamodel.User
	err := r.db.Where("manager_id = ?", managerID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

// Create persists a new identity. A uniqueness violation raced past the
// pre-checks is reported as the matching duplicate error, not as a generic
// storage failure.
func (r *UserRepository) Create(u *coreuser.User) error {
	m := user.ToDataModel(u)
	if err := r.db.Create(m).Error; err != nil {
		return translateDuplicate(err)
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *UserRepository) Update(id int64, patch map[string]interface{}) error {
	err := r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(patch).Error
	if err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
}

func fromDataModels(models []*userDatamodel.User) []*coreuser.User {
	out := make([]*coreuser.User, 0, len(models))
	for _, m := range models {
		out = append(out, user.FromDataModel(m))
	}
	return out
}

func translateDuplicate(err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) && !strings.Contains(err.Error(), "duplicate key") {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "email") {
		return apperrors.ErrDuplicateEmail
	}
	if strings.Contains(msg, "username") {
		return apperrors.ErrDuplicateUsername
	}
	return err
}

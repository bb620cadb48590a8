package user_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/financeops/finance-management/internal"
	"github.com/financeops/finance-management/internal/auth"
	"github.com/financeops/finance-management/internal/core/events"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/financeops/finance-management/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Module Suite")
}

// Mock repository backed by in-memory maps
type mockUserRepository struct {
	users  map[int64]*coreuser.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*coreuser.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) add(u *coreuser.User) *coreuser.User {
	if u.ID == 0 {
		u.ID = m.nextID
	}
	if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepository) GetByID(id int64) (*coreuser.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) GetByUsername(username string) (*coreuser.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*coreuser.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) List(offset, limit int) ([]*coreuser.User, error) {
	var out []*coreuser.User
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	if offset >= len(out) {
		return []*coreuser.User{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *mockUserRepository) DirectSubordinates(managerID int64) ([]*coreuser.User, error) {
	var out []*coreuser.User
	for id := int64(1); id < m.nextID; id++ {
		u, ok := m.users[id]
		if ok && u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) Create(u *coreuser.User) error {
	m.add(u)
	return nil
}

func (m *mockUserRepository) Update(id int64, patch map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	for key, value := range patch {
		switch key {
		case "email":
			u.Email = value.(string)
		case "username":
			u.Username = value.(string)
		case "full_name":
			u.FullName = value.(string)
		case "phone":
			u.Phone = value.(string)
		case "department":
			u.Department = value.(string)
		case "role":
			u.Role = coreuser.Role(value.(string))
		case "is_active":
			u.IsActive = value.(bool)
		case "manager_id":
			if value == nil {
				u.ManagerID = nil
			} else {
				mid := value.(int64)
				u.ManagerID = &mid
			}
		}
	}
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	delete(m.users, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func decodeUpdateDTO(body string) user.UpdateUserDTO {
	var dto user.UpdateUserDTO
	Expect(json.Unmarshal([]byte(body), &dto)).To(Succeed())
	return dto
}

var _ = Describe("UserService", func() {
	var (
		service    *user.Service
		mockRepo   *mockUserRepository
		hasher     *auth.PasswordHasher
		ctx        context.Context
		superAdmin *coreuser.User
		admin      *coreuser.User
		manager    *coreuser.User
		accountant *coreuser.User
		employee   *coreuser.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		hasher = auth.NewPasswordHasher(4)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, hasher, events.NewEventBus(logger), logger)

		superAdmin = mockRepo.add(&coreuser.User{ID: 1, Username: "root", Email: "root@corp.test", Role: coreuser.RoleSuperAdmin, IsActive: true})
		admin = mockRepo.add(&coreuser.User{ID: 2, Username: "admin", Email: "admin@corp.test", Role: coreuser.RoleAdmin, IsActive: true})
		manager = mockRepo.add(&coreuser.User{ID: 3, Username: "manager", Email: "manager@corp.test", Role: coreuser.RoleManager, IsActive: true})
		accountant = mockRepo.add(&coreuser.User{ID: 4, Username: "accountant", Email: "acct@corp.test", Role: coreuser.RoleAccountant, IsActive: true, ManagerID: ptr(int64(3))})
		employee = mockRepo.add(&coreuser.User{ID: 5, Username: "employee", Email: "emp@corp.test", Role: coreuser.RoleEmployee, IsActive: true, ManagerID: ptr(int64(4))})
	})

	Describe("FullHierarchy", func() {
		It("should return the transitive chain below a manager", func() {
			subs, err := service.FullHierarchy(manager.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(subs).To(HaveLen(2))
			ids := []int64{subs[0].ID, subs[1].ID}
			Expect(ids).To(ContainElements(accountant.ID, employee.ID))
		})

		It("should exclude the root itself", func() {
			subs, err := service.FullHierarchy(manager.ID)

			Expect(err).NotTo(HaveOccurred())
			for _, s := range subs {
				Expect(s.ID).NotTo(Equal(manager.ID))
			}
		})

		It("should terminate on cyclic manager data", func() {
			// corrupt the stored data into a cycle
			manager.ManagerID = ptr(employee.ID)

			subs, err := service.FullHierarchy(manager.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(subs).To(HaveLen(2))
		})

		It("should be empty for a leaf", func() {
			subs, err := service.FullHierarchy(employee.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(subs).To(BeEmpty())
		})
	})

	Describe("ListUsers", func() {
		It("should require manager rank", func() {
			_, err := service.ListUsers(accountant, 0, 10)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should clamp oversized limits", func() {
			users, err := service.ListUsers(manager, 0, 100000)

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(5))
		})
	})

	Describe("GetUser", func() {
		It("should let anyone read themselves", func() {
			u, err := service.GetUser(employee, employee.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal(employee.ID))
		})

		It("should let a manager read a transitive subordinate", func() {
			u, err := service.GetUser(manager, employee.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal(employee.ID))
		})

		It("should deny a manager reading outside their hierarchy", func() {
			_, err := service.GetUser(manager, admin.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should deny an employee reading a peer", func() {
			_, err := service.GetUser(employee, accountant.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should report not found for a missing id", func() {
			_, err := service.GetUser(admin, 999)

			Expect(err).To(MatchError(apperrors.ErrUserNotFound))
		})
	})

	Describe("CreateUser", func() {
		var dto user.CreateUserDTO

		BeforeEach(func() {
			dto = user.CreateUserDTO{
				Email:    "new@corp.test",
				Username: "newuser",
				Password: "password123",
				Role:     string(coreuser.RoleEmployee),
			}
		})

		It("should let an admin create an employee", func() {
			created, err := service.CreateUser(ctx, admin, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Role).To(Equal(coreuser.RoleEmployee))
			Expect(created.IsActive).To(BeTrue())
			Expect(created.IsVerified).To(BeTrue())
		})

		It("should default a blank role to employee", func() {
			dto.Role = ""
			created, err := service.CreateUser(ctx, admin, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Role).To(Equal(coreuser.RoleEmployee))
		})

		It("should deny an admin creating an admin or super admin", func() {
			dto.Role = string(coreuser.RoleAdmin)
			_, err := service.CreateUser(ctx, admin, dto)
			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))

			dto.Role = string(coreuser.RoleSuperAdmin)
			_, err = service.CreateUser(ctx, admin, dto)
			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should let a super admin create any role", func() {
			dto.Role = string(coreuser.RoleAdmin)
			created, err := service.CreateUser(ctx, superAdmin, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Role).To(Equal(coreuser.RoleAdmin))
		})

		It("should deny a manager on the base creation path", func() {
			_, err := service.CreateUser(ctx, manager, dto)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should reject a manager reference that is not a manager", func() {
			dto.ManagerID = ptr(accountant.ID)
			_, err := service.CreateUser(ctx, admin, dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidManager))
		})

		It("should accept a valid manager reference", func() {
			dto.ManagerID = ptr(manager.ID)
			created, err := service.CreateUser(ctx, admin, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.ManagerID).NotTo(BeNil())
			Expect(*created.ManagerID).To(Equal(manager.ID))
		})

		It("should reject a duplicate email", func() {
			dto.Email = employee.Email
			_, err := service.CreateUser(ctx, admin, dto)

			Expect(err).To(MatchError(apperrors.ErrDuplicateEmail))
		})

		It("should reject a duplicate username", func() {
			dto.Username = employee.Username
			_, err := service.CreateUser(ctx, admin, dto)

			Expect(err).To(MatchError(apperrors.ErrDuplicateUsername))
		})

		It("should store a bcrypt hash, never the password", func() {
			created, err := service.CreateUser(ctx, admin, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.PasswordHash).NotTo(Equal(dto.Password))
			Expect(hasher.Verify(dto.Password, created.PasswordHash)).To(BeTrue())
		})
	})

	Describe("CreateSubordinate", func() {
		It("should force the creating manager as the new identity's manager", func() {
			dto := user.CreateUserDTO{
				Email:     "sub@corp.test",
				Username:  "subordinate",
				Password:  "password123",
				Role:      string(coreuser.RoleEmployee),
				ManagerID: ptr(admin.ID), // caller-supplied reference is ignored
			}

			created, err := service.CreateSubordinate(ctx, manager, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.ManagerID).NotTo(BeNil())
			Expect(*created.ManagerID).To(Equal(manager.ID))
		})

		It("should deny a manager creating another manager", func() {
			dto := user.CreateUserDTO{
				Email:    "m2@corp.test",
				Username: "manager2",
				Password: "password123",
				Role:     string(coreuser.RoleManager),
			}

			_, err := service.CreateSubordinate(ctx, manager, dto)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should let an admin create a manager through the subordinate path", func() {
			dto := user.CreateUserDTO{
				Email:    "m2@corp.test",
				Username: "manager2",
				Password: "password123",
				Role:     string(coreuser.RoleManager),
			}

			created, err := service.CreateSubordinate(ctx, admin, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Role).To(Equal(coreuser.RoleManager))
		})

		It("should deny an admin creating an employee through the subordinate path", func() {
			dto := user.CreateUserDTO{
				Email:    "e2@corp.test",
				Username: "employee2",
				Password: "password123",
				Role:     string(coreuser.RoleEmployee),
			}

			_, err := service.CreateSubordinate(ctx, admin, dto)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should deny an accountant entirely", func() {
			dto := user.CreateUserDTO{
				Email:    "x@corp.test",
				Username: "someone",
				Password: "password123",
			}

			_, err := service.CreateSubordinate(ctx, accountant, dto)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})
	})

	Describe("UpdateSelf", func() {
		It("should apply only the fields present in the body", func() {
			dto := decodeUpdateDTO(`{"full_name":"New Name"}`)

			updated, err := service.UpdateSelf(employee, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FullName).To(Equal("New Name"))
			Expect(updated.Email).To(Equal("emp@corp.test"))
		})

		It("should deny changing your own role", func() {
			dto := decodeUpdateDTO(`{"role":"admin"}`)

			_, err := service.UpdateSelf(employee, dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("should deny changing your own active status even to the same value", func() {
			dto := decodeUpdateDTO(`{"is_active":true}`)

			_, err := service.UpdateSelf(employee, dto)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateUser", func() {
		It("should deny below admin rank", func() {
			dto := decodeUpdateDTO(`{"full_name":"X"}`)

			_, err := service.UpdateUser(manager, employee.ID, dto)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should deny an admin touching a super admin", func() {
			dto := decodeUpdateDTO(`{"full_name":"X"}`)

			_, err := service.UpdateUser(admin, superAdmin.ID, dto)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should clear manager_id on an explicit null", func() {
			dto := decodeUpdateDTO(`{"manager_id":null}`)

			updated, err := service.UpdateUser(admin, accountant.ID, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ManagerID).To(BeNil())
		})

		It("should leave manager_id alone when the field is absent", func() {
			dto := decodeUpdateDTO(`{"full_name":"Renamed"}`)

			updated, err := service.UpdateUser(admin, accountant.ID, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ManagerID).NotTo(BeNil())
		})

		It("should reject a self-referential manager edge", func() {
			dto := decodeUpdateDTO(`{"manager_id":4}`)

			_, err := service.UpdateUser(admin, accountant.ID, dto)

			Expect(err).To(MatchError(apperrors.ErrHierarchyCycle))
		})

		It("should reject a manager edge that closes a cycle through a descendant", func() {
			// employee reports to accountant; making accountant report to
			// employee would close the loop
			dto := decodeUpdateDTO(`{"manager_id":5}`)

			_, err := service.UpdateUser(admin, accountant.ID, dto)

			Expect(err).To(MatchError(apperrors.ErrHierarchyCycle))
		})

		It("should reject a duplicate email on change", func() {
			dto := decodeUpdateDTO(`{"email":"admin@corp.test"}`)

			_, err := service.UpdateUser(admin, employee.ID, dto)

			Expect(err).To(MatchError(apperrors.ErrDuplicateEmail))
		})

		It("should allow re-submitting the identity's own email", func() {
			dto := decodeUpdateDTO(`{"email":"emp@corp.test"}`)

			_, err := service.UpdateUser(admin, employee.ID, dto)

			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("DeactivateUser and ActivateUser", func() {
		It("should let an admin deactivate an employee", func() {
			Expect(service.DeactivateUser(ctx, admin, employee.ID)).To(Succeed())
			Expect(mockRepo.users[employee.ID].IsActive).To(BeFalse())
		})

		It("should deny deactivating a super admin below super admin rank", func() {
			err := service.DeactivateUser(ctx, admin, superAdmin.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should deny self-deactivation", func() {
			err := service.DeactivateUser(ctx, admin, admin.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should let an admin reactivate any identity, super admins included", func() {
			superAdmin.IsActive = false

			Expect(service.ActivateUser(ctx, admin, superAdmin.ID)).To(Succeed())
			Expect(mockRepo.users[superAdmin.ID].IsActive).To(BeTrue())
		})

		It("should deny activation below admin rank", func() {
			err := service.ActivateUser(ctx, manager, employee.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})
	})

	Describe("DeleteUser", func() {
		It("should reserve deletion for super admins", func() {
			err := service.DeleteUser(ctx, admin, employee.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should let a super admin delete an identity", func() {
			Expect(service.DeleteUser(ctx, superAdmin, employee.ID)).To(Succeed())
			Expect(mockRepo.users[employee.ID]).To(BeNil())
		})

		It("should deny self-deletion", func() {
			err := service.DeleteUser(ctx, superAdmin, superAdmin.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should report not found for a missing id", func() {
			err := service.DeleteUser(ctx, superAdmin, 999)

			Expect(err).To(MatchError(apperrors.ErrUserNotFound))
		})
	})
})

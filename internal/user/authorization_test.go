package user_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/financeops/finance-management/internal"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/financeops/finance-management/internal/user"
)

// Mock directory with a fixed reporting chain:
// manager(3) -> accountant(4) -> employee(5)
type mockDirectory struct {
	users map[int64]*coreuser.User
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		users: map[int64]*coreuser.User{
			1: {ID: 1, Role: coreuser.RoleSuperAdmin},
			2: {ID: 2, Role: coreuser.RoleAdmin},
			3: {ID: 3, Role: coreuser.RoleManager},
			4: {ID: 4, Role: coreuser.RoleAccountant, ManagerID: ptr(int64(3))},
			5: {ID: 5, Role: coreuser.RoleEmployee, ManagerID: ptr(int64(4))},
			6: {ID: 6, Role: coreuser.RoleEmployee},
		},
	}
}

func (m *mockDirectory) GetByID(id int64) (*coreuser.User, error) {
	return m.users[id], nil
}

func (m *mockDirectory) DirectSubordinates(managerID int64) ([]*coreuser.User, error) {
	var out []*coreuser.User
	for id := int64(1); id <= 6; id++ {
		u := m.users[id]
		if u != nil && u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockDirectory) FullHierarchy(rootID int64) ([]*coreuser.User, error) {
	var out []*coreuser.User
	queue := []int64{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		subs, _ := m.DirectSubordinates(id)
		for _, s := range subs {
			out = append(out, s)
			queue = append(queue, s.ID)
		}
	}
	return out, nil
}

var _ = Describe("Authorizer", func() {
	var (
		authz      *user.Authorizer
		dir        *mockDirectory
		superAdmin *coreuser.User
		admin      *coreuser.User
		manager    *coreuser.User
		accountant *coreuser.User
		employee   *coreuser.User
		outsider   *coreuser.User
	)

	BeforeEach(func() {
		dir = newMockDirectory()
		authz = user.NewAuthorizer(dir)
		superAdmin = dir.users[1]
		admin = dir.users[2]
		manager = dir.users[3]
		accountant = dir.users[4]
		employee = dir.users[5]
		outsider = dir.users[6]
	})

	Describe("RequireMinRole", func() {
		It("should allow equal and higher ranks", func() {
			Expect(authz.RequireMinRole(manager, coreuser.RoleManager)).To(BeNil())
			Expect(authz.RequireMinRole(admin, coreuser.RoleManager)).To(BeNil())
		})

		It("should deny lower ranks and nil actors", func() {
			Expect(authz.RequireMinRole(accountant, coreuser.RoleManager)).NotTo(BeNil())
			Expect(authz.RequireMinRole(nil, coreuser.RoleEmployee)).NotTo(BeNil())
		})
	})

	Describe("CanAccessUserData", func() {
		It("should always allow self-access", func() {
			Expect(authz.CanAccessUserData(employee, employee.ID)).To(BeNil())
		})

		It("should allow a manager over a direct subordinate", func() {
			Expect(authz.CanAccessUserData(manager, accountant.ID)).To(BeNil())
		})

		It("should deny a manager over a transitive subordinate", func() {
			// employee reports to the accountant, not to the manager directly
			Expect(authz.CanAccessUserData(manager, employee.ID)).NotTo(BeNil())
		})

		It("should allow admin rank over anyone", func() {
			Expect(authz.CanAccessUserData(admin, outsider.ID)).To(BeNil())
			Expect(authz.CanAccessUserData(superAdmin, outsider.ID)).To(BeNil())
		})

		It("should deny peers", func() {
			Expect(authz.CanAccessUserData(employee, outsider.ID)).NotTo(BeNil())
		})
	})

	Describe("CanReadUser", func() {
		It("should allow a manager over their full transitive hierarchy", func() {
			Expect(authz.CanReadUser(manager, accountant.ID)).To(BeNil())
			Expect(authz.CanReadUser(manager, employee.ID)).To(BeNil())
		})

		It("should deny a manager outside their hierarchy", func() {
			Expect(authz.CanReadUser(manager, outsider.ID)).NotTo(BeNil())
			Expect(authz.CanReadUser(manager, admin.ID)).NotTo(BeNil())
		})

		It("should allow self and admin rank", func() {
			Expect(authz.CanReadUser(employee, employee.ID)).To(BeNil())
			Expect(authz.CanReadUser(admin, outsider.ID)).To(BeNil())
		})
	})

	Describe("CanCreate", func() {
		It("should pass the caller-supplied manager through for a super admin without validation", func() {
			bogus := ptr(int64(999))
			managerID, err := authz.CanCreate(superAdmin, coreuser.RoleAdmin, bogus)

			Expect(err).To(BeNil())
			Expect(managerID).To(Equal(bogus))
		})

		It("should validate the manager reference for an admin", func() {
			_, err := authz.CanCreate(admin, coreuser.RoleEmployee, ptr(accountant.ID))

			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(apperrors.ErrCodeInvalidManager))
		})

		It("should cap the roles an admin may create", func() {
			_, err := authz.CanCreate(admin, coreuser.RoleAdmin, nil)
			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))

			_, err = authz.CanCreate(admin, coreuser.RoleManager, nil)
			Expect(err).To(BeNil())
		})

		It("should deny manager rank and below", func() {
			_, err := authz.CanCreate(manager, coreuser.RoleEmployee, nil)
			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))

			_, err = authz.CanCreate(employee, coreuser.RoleEmployee, nil)
			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})
	})

	Describe("CanCreateSubordinate", func() {
		It("should force the manager's own id regardless of the supplied reference", func() {
			managerID, err := authz.CanCreateSubordinate(manager, coreuser.RoleEmployee, ptr(admin.ID))

			Expect(err).To(BeNil())
			Expect(managerID).NotTo(BeNil())
			Expect(*managerID).To(Equal(manager.ID))
		})

		It("should limit managers to accountants and employees", func() {
			_, err := authz.CanCreateSubordinate(manager, coreuser.RoleManager, nil)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should limit admins to managers on this path", func() {
			_, err := authz.CanCreateSubordinate(admin, coreuser.RoleManager, nil)
			Expect(err).To(BeNil())

			_, err = authz.CanCreateSubordinate(admin, coreuser.RoleEmployee, nil)
			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})
	})

	Describe("CanDeactivate and CanActivate", func() {
		It("should block deactivating a super admin below super admin rank", func() {
			Expect(authz.CanDeactivate(admin, superAdmin)).NotTo(BeNil())
			Expect(authz.CanDeactivate(superAdmin, superAdmin)).NotTo(BeNil()) // self
		})

		It("should not guard activation beyond admin rank", func() {
			Expect(authz.CanActivate(admin)).To(BeNil())
			Expect(authz.CanActivate(manager)).NotTo(BeNil())
		})

		It("should block self-deactivation but allow peers otherwise", func() {
			Expect(authz.CanDeactivate(admin, admin)).NotTo(BeNil())
			Expect(authz.CanDeactivate(admin, employee)).To(BeNil())
		})
	})

	Describe("CanDelete", func() {
		It("should reserve deletion for super admins and forbid self-deletion", func() {
			Expect(authz.CanDelete(admin, employee)).NotTo(BeNil())
			Expect(authz.CanDelete(superAdmin, employee)).To(BeNil())
			Expect(authz.CanDelete(superAdmin, superAdmin)).NotTo(BeNil())
		})
	})
})

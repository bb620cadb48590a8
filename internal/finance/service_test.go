package finance_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/financeops/finance-management/internal"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/financeops/finance-management/internal/finance"
)

func TestFinance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Finance Module Suite")
}

// Mock repository keyed by kind and id
type mockEntryRepository struct {
	entries map[finance.EntryKind]map[int64]*finance.Entry
	nextID  int64
}

func newMockEntryRepository() *mockEntryRepository {
	return &mockEntryRepository{
		entries: map[finance.EntryKind]map[int64]*finance.Entry{
			finance.KindRevenue: {},
			finance.KindExpense: {},
		},
		nextID: 1,
	}
}

func (m *mockEntryRepository) Create(entry *finance.Entry) error {
	entry.ID = m.nextID
	m.nextID++
	m.entries[entry.Kind][entry.ID] = entry
	return nil
}

func (m *mockEntryRepository) GetByID(kind finance.EntryKind, id int64) (*finance.Entry, error) {
	return m.entries[kind][id], nil
}

func (m *mockEntryRepository) List(kind finance.EntryKind, offset, limit int) ([]*finance.Entry, error) {
	var out []*finance.Entry
	for id := int64(1); id < m.nextID; id++ {
		if e, ok := m.entries[kind][id]; ok {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return []*finance.Entry{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *mockEntryRepository) ListByCreator(kind finance.EntryKind, creatorID int64, offset, limit int) ([]*finance.Entry, error) {
	all, err := m.List(kind, 0, int(m.nextID))
	if err != nil {
		return nil, err
	}
	var out []*finance.Entry
	for _, e := range all {
		if e.CreatedByID == creatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntryRepository) Update(entry *finance.Entry) error {
	m.entries[entry.Kind][entry.ID] = entry
	return nil
}

func (m *mockEntryRepository) Delete(kind finance.EntryKind, id int64) error {
	delete(m.entries[kind], id)
	return nil
}

var _ = Describe("FinanceService", func() {
	var (
		service    *finance.Service
		mockRepo   *mockEntryRepository
		admin      *coreuser.User
		manager    *coreuser.User
		accountant *coreuser.User
		employee   *coreuser.User
	)

	validDTO := func() finance.CreateEntryDTO {
		return finance.CreateEntryDTO{
			Title:     "Office rent",
			Amount:    1500.00,
			Category:  "facilities",
			EntryDate: time.Now().AddDate(0, 0, -1),
		}
	}

	BeforeEach(func() {
		mockRepo = newMockEntryRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = finance.NewService(mockRepo, logger)

		admin = &coreuser.User{ID: 2, Role: coreuser.RoleAdmin, IsActive: true}
		manager = &coreuser.User{ID: 3, Role: coreuser.RoleManager, IsActive: true}
		accountant = &coreuser.User{ID: 4, Role: coreuser.RoleAccountant, IsActive: true}
		employee = &coreuser.User{ID: 5, Role: coreuser.RoleEmployee, IsActive: true}
	})

	Describe("CreateEntry", func() {
		It("should let an accountant record an expense entry", func() {
			entry, err := service.CreateEntry(accountant, finance.KindExpense, validDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.ID).To(BeNumerically(">", 0))
			Expect(entry.Kind).To(Equal(finance.KindExpense))
			Expect(entry.CreatedByID).To(Equal(accountant.ID))
			Expect(entry.IsApproved).To(BeFalse())
		})

		It("should deny an employee", func() {
			_, err := service.CreateEntry(employee, finance.KindRevenue, validDTO())

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should default the category", func() {
			dto := validDTO()
			dto.Category = ""
			entry, err := service.CreateEntry(accountant, finance.KindRevenue, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Category).To(Equal("other"))
		})

		It("should reject a non-positive amount", func() {
			dto := validDTO()
			dto.Amount = 0
			_, err := service.CreateEntry(accountant, finance.KindRevenue, dto)

			Expect(err).To(HaveOccurred())
		})

		It("should reject a future entry date", func() {
			dto := validDTO()
			dto.EntryDate = time.Now().AddDate(0, 0, 2)
			_, err := service.CreateEntry(accountant, finance.KindRevenue, dto)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetEntry and ListEntries", func() {
		var entry *finance.Entry

		BeforeEach(func() {
			var err error
			entry, err = service.CreateEntry(accountant, finance.KindExpense, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should let the creator read their own entry", func() {
			got, err := service.GetEntry(accountant, finance.KindExpense, entry.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(entry.ID))
		})

		It("should let manager rank read any entry", func() {
			_, err := service.GetEntry(manager, finance.KindExpense, entry.ID)

			Expect(err).NotTo(HaveOccurred())
		})

		It("should deny another accountant reading it", func() {
			other := &coreuser.User{ID: 40, Role: coreuser.RoleAccountant}
			_, err := service.GetEntry(other, finance.KindExpense, entry.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should keep the two ledgers separate", func() {
			_, err := service.GetEntry(manager, finance.KindRevenue, entry.ID)

			Expect(err).To(MatchError(apperrors.ErrEntryNotFound))
		})

		It("should scope the listing to the creator below manager rank", func() {
			other := &coreuser.User{ID: 40, Role: coreuser.RoleAccountant}
			_, err := service.CreateEntry(other, finance.KindExpense, validDTO())
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.ListEntries(accountant, finance.KindExpense, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			all, err := service.ListEntries(manager, finance.KindExpense, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})

	Describe("ApproveEntry", func() {
		var entry *finance.Entry

		BeforeEach(func() {
			var err error
			entry, err = service.CreateEntry(accountant, finance.KindRevenue, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should stamp the approver and the approval time", func() {
			approved, err := service.ApproveEntry(manager, finance.KindRevenue, entry.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(approved.IsApproved).To(BeTrue())
			Expect(approved.ApprovedByID).NotTo(BeNil())
			Expect(*approved.ApprovedByID).To(Equal(manager.ID))
			Expect(approved.ApprovedAt).NotTo(BeNil())
		})

		It("should deny accountant rank", func() {
			_, err := service.ApproveEntry(accountant, finance.KindRevenue, entry.ID)

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})

		It("should reject approving twice", func() {
			_, err := service.ApproveEntry(manager, finance.KindRevenue, entry.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveEntry(admin, finance.KindRevenue, entry.ID)
			Expect(err).To(MatchError(apperrors.ErrEntryApproved))
		})
	})

	Describe("UpdateEntry", func() {
		var entry *finance.Entry

		BeforeEach(func() {
			var err error
			entry, err = service.CreateEntry(accountant, finance.KindExpense, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should let the creator amend an unapproved entry", func() {
			amount := 1750.50
			updated, err := service.UpdateEntry(accountant, finance.KindExpense, entry.ID, finance.UpdateEntryDTO{Amount: &amount})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Amount).To(Equal(amount))
		})

		It("should lock the entry to the creator once approved", func() {
			_, err := service.ApproveEntry(manager, finance.KindExpense, entry.ID)
			Expect(err).NotTo(HaveOccurred())

			amount := 99.0
			_, err = service.UpdateEntry(accountant, finance.KindExpense, entry.ID, finance.UpdateEntryDTO{Amount: &amount})
			Expect(err).To(MatchError(apperrors.ErrEntryApproved))
		})

		It("should still let admin rank amend an approved entry", func() {
			_, err := service.ApproveEntry(manager, finance.KindExpense, entry.ID)
			Expect(err).NotTo(HaveOccurred())

			amount := 99.0
			updated, err := service.UpdateEntry(admin, finance.KindExpense, entry.ID, finance.UpdateEntryDTO{Amount: &amount})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Amount).To(Equal(amount))
		})

		It("should deny a non-creator below admin rank", func() {
			other := &coreuser.User{ID: 40, Role: coreuser.RoleAccountant}
			amount := 10.0
			_, err := service.UpdateEntry(other, finance.KindExpense, entry.ID, finance.UpdateEntryDTO{Amount: &amount})

			Expect(err).To(MatchError(apperrors.ErrInsufficientPrivilege))
		})
	})

	Describe("DeleteEntry", func() {
		var entry *finance.Entry

		BeforeEach(func() {
			var err error
			entry, err = service.CreateEntry(accountant, finance.KindRevenue, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should require admin rank", func() {
			Expect(service.DeleteEntry(manager, finance.KindRevenue, entry.ID)).To(MatchError(apperrors.ErrInsufficientPrivilege))
			Expect(service.DeleteEntry(admin, finance.KindRevenue, entry.ID)).To(Succeed())
		})

		It("should report not found for a missing entry", func() {
			err := service.DeleteEntry(admin, finance.KindRevenue, 999)

			Expect(err).To(MatchError(apperrors.ErrEntryNotFound))
		})
	})
})

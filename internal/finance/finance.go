package finance

import (
	"time"

	financeDatamodel "github.com/financeops/finance-management/internal/core/datamodel/finance"
)

// EntryKind selects which ledger a record belongs to.
type EntryKind string

const (
	KindRevenue EntryKind = "revenue"
	KindExpense EntryKind = "expense"
)

func (k EntryKind) Valid() bool {
	return k == KindRevenue || k == KindExpense
}

// Entry is a single revenue or expense record. Counterparty is the revenue
// source or the expense vendor depending on the kind.
type Entry struct {
	ID                 int64      `json:"id"`
	Kind               EntryKind  `json:"kind"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Amount             float64    `json:"amount"`
	Category           string     `json:"category"`
	Counterparty       string     `json:"counterparty,omitempty"`
	EntryDate          time.Time  `json:"entry_date"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurringFrequency string     `json:"recurring_frequency,omitempty"`
	IsApproved         bool       `json:"is_approved"`
	ApprovedByID       *int64     `json:"approved_by_id,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CreatedByID        int64      `json:"created_by_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (e *Entry) CanBeApproved() bool {
	return !e.IsApproved
}

func (e *Entry) Approve(approverID int64) {
	now := time.Now()
	e.IsApproved = true
	e.ApprovedByID = &approverID
	e.ApprovedAt = &now
	e.UpdatedAt = now
}

func ToRevenueDataModel(e *Entry) *financeDatamodel.RevenueEntry {
	return &financeDatamodel.RevenueEntry{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		Amount:             e.Amount,
		Category:           e.Category,
		Source:             e.Counterparty,
		EntryDate:          e.EntryDate,
		IsRecurring:        e.IsRecurring,
		RecurringFrequency: e.RecurringFrequency,
		IsApproved:         e.IsApproved,
		ApprovedByID:       e.ApprovedByID,
		ApprovedAt:         e.ApprovedAt,
		CreatedByID:        e.CreatedByID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromRevenueDataModel(m *financeDatamodel.RevenueEntry) *Entry {
	return &Entry{
		ID:                 m.ID,
		Kind:               KindRevenue,
		Title:              m.Title,
		Description:        m.Description,
		Amount:             m.Amount,
		Category:           m.Category,
		Counterparty:       m.Source,
		EntryDate:          m.EntryDate,
		IsRecurring:        m.IsRecurring,
		RecurringFrequency: m.RecurringFrequency,
		IsApproved:         m.IsApproved,
		ApprovedByID:       m.ApprovedByID,
		ApprovedAt:         m.ApprovedAt,
		CreatedByID:        m.CreatedByID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func ToExpenseDataModel(e *Entry) *financeDatamodel.ExpenseEntry {
	return &financeDatamodel.ExpenseEntry{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		Amount:             e.Amount,
		Category:           e.Category,
		Vendor:             e.Counterparty,
		EntryDate:          e.EntryDate,
		IsRecurring:        e.IsRecurring,
		RecurringFrequency: e.RecurringFrequency,
		IsApproved:         e.IsApproved,
		ApprovedByID:       e.ApprovedByID,
		ApprovedAt:         e.ApprovedAt,
		CreatedByID:        e.CreatedByID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromExpenseDataModel(m *financeDatamodel.ExpenseEntry) *Entry {
	return &Entry{
		ID:                 m.ID,
		Kind:               KindExpense,
		Title:              m.Title,
		Description:        m.Description,
		Amount:             m.Amount,
		Category:           m.Category,
		Counterparty:       m.Vendor,
		EntryDate:          m.EntryDate,
		IsRecurring:        m.IsRecurring,
		RecurringFrequency: m.RecurringFrequency,
		IsApproved:         m.IsApproved,
		ApprovedByID:       m.ApprovedByID,
		ApprovedAt:         m.ApprovedAt,
		CreatedByID:        m.CreatedByID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

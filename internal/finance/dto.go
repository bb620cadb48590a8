package finance

import (
	"time"

	errors "github.com/financeops/finance-management/internal"
	"github.com/financeops/finance-management/internal/core/common/validation"
)

type CreateEntryDTO struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Amount             float64   `json:"amount"`
	Category           string    `json:"category"`
	Counterparty       string    `json:"counterparty"`
	EntryDate          time.Time `json:"entry_date"`
	IsRecurring        bool      `json:"is_recurring"`
	RecurringFrequency string    `json:"recurring_frequency"`
}

func (d *CreateEntryDTO) Validate() *errors.AppError {
	if d.Category == "" {
		d.Category = "other"
	}

	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("description", d.Description).MaxLength(2000)
	v.Field("amount", d.Amount).Required().PositiveAmount()
	v.Field("entry_date", d.EntryDate).NotFuture()
	return v.Validate()
}

type UpdateEntryDTO struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	Amount             *float64   `json:"amount"`
	Category           *string    `json:"category"`
	Counterparty       *string    `json:"counterparty"`
	EntryDate          *time.Time `json:"entry_date"`
	IsRecurring        *bool      `json:"is_recurring"`
	RecurringFrequency *string    `json:"recurring_frequency"`
}

func (d *UpdateEntryDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(200)
	}
	if d.Amount != nil {
		v.Field("amount", *d.Amount).Required().PositiveAmount()
	}
	if d.EntryDate != nil {
		v.Field("entry_date", *d.EntryDate).NotFuture()
	}
	return v.Validate()
}

// Apply copies the set fields onto the entry.
func (d *UpdateEntryDTO) Apply(e *Entry) {
	if d.Title != nil {
		e.Title = *d.Title
	}
	if d.Description != nil {
		e.Description = *d.Description
	}
	if d.Amount != nil {
		e.Amount = *d.Amount
	}
	if d.Category != nil {
		e.Category = *d.Category
	}
	if d.Counterparty != nil {
		e.Counterparty = *d.Counterparty
	}
	if d.EntryDate != nil {
		e.EntryDate = *d.EntryDate
	}
	if d.IsRecurring != nil {
		e.IsRecurring = *d.IsRecurring
	}
	if d.RecurringFrequency != nil {
		e.RecurringFrequency = *d.RecurringFrequency
	}
	e.UpdatedAt = time.Now()
}

package finance

import "time"

type RevenueEntry struct {
	ID                 int64      `gorm:"primaryKey"`
	Title              string     `gorm:"column:title;not null"`
	Description        string     `gorm:"column:description"`
	Amount             float64    `gorm:"column:amount;not null"`
	Category           string     `gorm:"column:category;default:other"`
	Source             string     `gorm:"column:source"`
	EntryDate          time.Time  `gorm:"column:entry_date;not null"`
	IsRecurring        bool       `gorm:"column:is_recurring;default:false"`
	RecurringFrequency string     `gorm:"column:recurring_frequency"`
	IsApproved         bool       `gorm:"column:is_approved;default:false"`
	ApprovedByID       *int64     `gorm:"column:approved_by_id"`
	ApprovedAt         *time.Time `gorm:"column:approved_at"`
	CreatedByID        int64      `gorm:"column:created_by_id;not null"`
	CreatedAt          time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;default:now()"`
}

func (RevenueEntry) TableName() string {
	return "revenue_entries"
}

type ExpenseEntry struct {
	ID                 int64      `gorm:"primaryKey"`
	Title              string     `gorm:"column:title;not null"`
	Description        string     `gorm:"column:description"`
	Amount             float64    `gorm:"column:amount;not null"`
	Category           string     `gorm:"column:category;default:other"`
	Vendor             string     `gorm:"column:vendor"`
	EntryDate          time.Time  `gorm:"column:entry_date;not null"`
	IsRecurring        bool       `gorm:"column:is_recurring;default:false"`
	RecurringFrequency string     `gorm:"column:recurring_frequency"`
	IsApproved         bool       `gorm:"column:is_approved;default:false"`
	ApprovedByID       *int64     `gorm:"column:approved_by_id"`
	ApprovedAt         *time.Time `gorm:"column:approved_at"`
	CreatedByID        int64      `gorm:"column:created_by_id;not null"`
	CreatedAt          time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;default:now()"`
}

func (ExpenseEntry) TableName() string {
	return "expense_entries"
}

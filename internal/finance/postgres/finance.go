package postgres

import (
	"errors"

	"gorm.io/gorm"

	financeDatamodel "github.com/financeops/finance-management/internal/core/datamodel/finance"
	"github.com/financeops/finance-management/internal/finance"
)

// EntryRepository implements finance.Repository over the two ledger tables.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) finance.Repository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(entry *finance.Entry) error {
	if entry.Kind == finance.KindRevenue {
		m := finance.ToRevenueDataModel(entry)
		if err := r.db.Create(m).Error; err != nil {
			return err
		}
		entry.ID = m.ID
		return nil
	}
	m := finance.ToExpenseDataModel(entry)
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	entry.ID = m.ID
	return nil
}

func (r *EntryRepository) GetByID(kind finance.EntryKind, id int64) (*finance.Entry, error) {
	if kind == finance.KindRevenue {
		var m financeDatamodel.RevenueEntry
		if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return finance.FromRevenueDataModel(&m), nil
	}
	var m financeDatamodel.ExpenseEntry
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return finance.FromExpenseDataModel(&m), nil
}

func (r *EntryRepository) List(kind finance.EntryKind, offset, limit int) ([]*finance.Entry, error) {
	return r.list(kind, offset, limit, "", nil)
}

func (r *EntryRepository) ListByCreator(kind finance.EntryKind, creatorID int64, offset, limit int) ([]*finance.Entry, error) {
	return r.list(kind, offset, limit, "created_by_id = ?", creatorID)
}

func (r *EntryRepository) list(kind finance.EntryKind, offset, limit int, query string, arg interface{}) ([]*finance.Entry, error) {
	q := r.db.Order("entry_date DESC, id DESC").Limit(limit).Offset(offset)
	if query != "" {
		q = q.Where(query, arg)
	}

	if kind == finance.KindRevenue {
		var models []*financeDatamodel.RevenueEntry
		if err := q.Find(&models).Error; err != nil {
			return nil, err
		}
		out := make([]*finance.Entry, 0, len(models))
		for _, m := range models {
			out = append(out, finance.FromRevenueDataModel(m))
		}
		return out, nil
	}

	var models []*financeDatamodel.ExpenseEntry
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*finance.Entry, 0, len(models))
	for _, m := range models {
		out = append(out, finance.FromExpenseDataModel(m))
	}
	return out, nil
}

func (r *EntryRepository) Update(entry *finance.Entry) error {
	if entry.Kind == finance.KindRevenue {
		return r.db.Save(finance.ToRevenueDataModel(entry)).Error
	}
	return r.db.Save(finance.ToExpenseDataModel(entry)).Error
}

func (r *EntryRepository) Delete(kind finance.EntryKind, id int64) error {
	if kind == finance.KindRevenue {
		return r.db.Where("id = ?", id).Delete(&financeDatamodel.RevenueEntry{}).Error
	}
	return r.db.Where("id = ?", id).Delete(&financeDatamodel.ExpenseEntry{}).Error
}

package finance

import (
	"log/slog"
	"time"

	errors "github.com/financeops/finance-management/internal"
	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// Repository is the persistence contract for ledger entries.
type Repository interface {
	Create(entry *Entry) error
	GetByID(kind EntryKind, id int64) (*Entry, error)
	List(kind EntryKind, offset, limit int) ([]*Entry, error)
	ListByCreator(kind EntryKind, creatorID int64, offset, limit int) ([]*Entry, error)
	Update(entry *Entry) error
	Delete(kind EntryKind, id int64) error
}

// Service handles ledger business logic behind the role gates: accountant
// rank writes entries, manager rank approves them, admin rank deletes.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateEntry records a new revenue or expense entry.
func (s *Service) CreateEntry(actor *coreuser.User, kind EntryKind, dto CreateEntryDTO) (*Entry, error) {
	if !actor.Role.AtLeast(coreuser.RoleAccountant) {
		return nil, errors.ErrInsufficientPrivilege
	}
	if err := dto.Validate(); err != nil {
		s.logger.Warn("entry validation failed", "kind", kind, "user_id", actor.ID, "error", err)
		return nil, err
	}

	now := time.Now()
	entry := &Entry{
		Kind:               kind,
		Title:              dto.Title,
		Description:        dto.Description,
		Amount:             dto.Amount,
		Category:           dto.Category,
		Counterparty:       dto.Counterparty,
		EntryDate:          dto.EntryDate,
		IsRecurring:        dto.IsRecurring,
		RecurringFrequency: dto.RecurringFrequency,
		CreatedByID:        actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to create entry", "kind", kind, "user_id", actor.ID, "error", err)
		return nil, err
	}

	s.logger.Info("entry created", "kind", kind, "entry_id", entry.ID, "user_id", actor.ID, "amount", entry.Amount)
	return entry, nil
}

// GetEntry reads one entry: creators see their own, manager rank and above
// see everything.
func (s *Service) GetEntry(actor *coreuser.User, kind EntryKind, id int64) (*Entry, error) {
	entry, err := s.repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.ErrEntryNotFound
	}
	if entry.CreatedByID != actor.ID && !actor.Role.AtLeast(coreuser.RoleManager) {
		return nil, errors.ErrInsufficientPrivilege
	}
	return entry, nil
}

// ListEntries enumerates entries. Below manager rank only the actor's own
// entries are returned.
func (s *Service) ListEntries(actor *coreuser.User, kind EntryKind, offset, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	if actor.Role.AtLeast(coreuser.RoleManager) {
		return s.repo.List(kind, offset, limit)
	}
	return s.repo.ListByCreator(kind, actor.ID, offset, limit)
}

// UpdateEntry lets the creator amend an unapproved entry; admin rank may
// amend anything.
func (s *Service) UpdateEntry(actor *coreuser.User, kind EntryKind, id int64, dto UpdateEntryDTO) (*Entry, error) {
	entry, err := s.repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.ErrEntryNotFound
	}

	if !actor.Role.AtLeast(coreuser.RoleAdmin) {
		if entry.CreatedByID != actor.ID {
			return nil, errors.ErrInsufficientPrivilege
		}
		if entry.IsApproved {
			return nil, errors.ErrEntryApproved
		}
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dto.Apply(entry)
	if err := s.repo.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ApproveEntry marks an entry approved and stamps the approver.
func (s *Service) ApproveEntry(actor *coreuser.User, kind EntryKind, id int64) (*Entry, error) {
	if !actor.Role.AtLeast(coreuser.RoleManager) {
		return nil, errors.ErrInsufficientPrivilege
	}

	entry, err := s.repo.GetByID(kind, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.ErrEntryNotFound
	}
	if !entry.CanBeApproved() {
		return nil, errors.ErrEntryApproved
	}

	entry.Approve(actor.ID)
	if err := s.repo.Update(entry); err != nil {
		return nil, err
	}

	s.logger.Info("entry approved", "kind", kind, "entry_id", id, "approver_id", actor.ID)
	return entry, nil
}

// DeleteEntry removes an entry, admin rank required.
func (s *Service) DeleteEntry(actor *coreuser.User, kind EntryKind, id int64) error {
	if !actor.Role.AtLeast(coreuser.RoleAdmin) {
		return errors.ErrInsufficientPrivilege
	}

	entry, err := s.repo.GetByID(kind, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return errors.ErrEntryNotFound
	}

	if err := s.repo.Delete(kind, id); err != nil {
		return err
	}

	s.logger.Info("entry deleted", "kind", kind, "entry_id", id, "actor_id", actor.ID)
	return nil
}

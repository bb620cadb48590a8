package finance

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/financeops/finance-management/internal"
	"github.com/financeops/finance-management/internal/auth"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/financeops/finance-management/internal/transport"
	"github.com/financeops/finance-management/pkg/logger"
)

type ServiceAPI interface {
	CreateEntry(actor *coreuser.User, kind EntryKind, dto CreateEntryDTO) (*Entry, error)
	GetEntry(actor *coreuser.User, kind EntryKind, id int64) (*Entry, error)
	ListEntries(actor *coreuser.User, kind EntryKind, offset, limit int) ([]*Entry, error)
	UpdateEntry(actor *coreuser.User, kind EntryKind, id int64, dto UpdateEntryDTO) (*Entry, error)
	ApproveEntry(actor *coreuser.User, kind EntryKind, id int64) (*Entry, error)
	DeleteEntry(actor *coreuser.User, kind EntryKind, id int64) error
}

// Handler serves both ledgers; the entry kind is fixed per route when the
// handler is mounted.
type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Kind    EntryKind
}

func NewHandler(svc ServiceAPI, kind EntryKind) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Kind:        kind,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) *coreuser.User {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	return u
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := errors.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	h.Logger.Error("unexpected service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return 0, false
	}
	return id, true
}

// CreateEntry handles POST /{kind}
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	var dto CreateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.CreateEntry(actor, h.Kind, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry)
}

// ListEntries handles GET /{kind}
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.Service.ListEntries(actor, h.Kind, offset, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

// GetEntry handles GET /{kind}/{id}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.GetEntry(actor, h.Kind, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

// UpdateEntry handles PUT /{kind}/{id}
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	var dto UpdateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.UpdateEntry(actor, h.Kind, id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

// ApproveEntry handles POST /{kind}/{id}/approve
func (h *Handler) ApproveEntry(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.ApproveEntry(actor, h.Kind, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /{kind}/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(w, r)
	if actor == nil {
		return
	}
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteEntry(actor, h.Kind, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "entry deleted successfully"})
}

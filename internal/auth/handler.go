package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/financeops/finance-management/internal/transport"
	"github.com/financeops/finance-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "username", dto.Username, "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "incorrect username or password")
		case ErrUserInactive:
			h.WriteError(w, http.StatusForbidden, "user account is inactive")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout validates the presented token and returns 204. Tokens are
// stateless, so logout is a client-side discard.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateOTP provisions a TOTP secret for the current user on first call
// and returns the code for the current time step.
func (h *Handler) GenerateOTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code, err := h.Service.EnsureOTPSecret(user.ID)
	if err != nil {
		h.Logger.Error("otp generation failed", "user_id", user.ID, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"otp_code": code,
		"message":  "OTP generated",
	})
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto VerifyOTPDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.VerifyUserOTP(user.ID, dto.OTPCode); err != nil {
		switch err {
		case ErrOTPNotConfigured:
			h.WriteError(w, http.StatusBadRequest, "OTP not configured")
		case ErrInvalidOTP:
			h.WriteError(w, http.StatusBadRequest, "invalid OTP")
		default:
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "OTP verified"})
}

// AuthMiddleware is the per-request authentication pipeline: extract the
// bearer token, verify it, resolve the identity, reject disabled accounts,
// and hand the identity to downstream handlers via context. Token failures
// surface uniformly regardless of cause.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}

		uid, err := claims.SubjectID()
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}

		sessionUser, err := h.Service.GetSessionUser(uid)
		if err != nil {
			h.Logger.Warn("session identity lookup failed", "user_id", uid, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}

		if !sessionUser.IsActive {
			h.WriteError(w, http.StatusForbidden, "user account is inactive")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserKey, sessionUser)
		ctx = logger.With(ctx, "user_id", sessionUser.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

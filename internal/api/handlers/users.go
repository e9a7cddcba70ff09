// internal/api/handlers/users.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/baharkarakas/campus-registration/internal/api/httpx"
	"github.com/baharkarakas/campus-registration/internal/api/validate"
	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/logger"
	"github.com/baharkarakas/campus-registration/internal/metrics"
	"github.com/baharkarakas/campus-registration/internal/middleware"
	"github.com/baharkarakas/campus-registration/internal/models"
)

const msgMalformedBody = "malformed request body"

type UserService interface {
	Register(ctx context.Context, role models.Role, c models.Candidate) (models.Principal, error)
	Login(ctx context.Context, role models.Role, email, password string) (models.Principal, error)
	FindByID(ctx context.Context, role models.Role, id string) (models.Principal, error)
}

type TokenIssuer interface {
	Issue(p models.Principal) (string, time.Time, error)
}

type Auditor interface {
	Record(role models.Role, entityID string, action models.AuditAction, details map[string]any)
}

// UsersHandler serves registration, login and the current principal for one role.
type UsersHandler struct {
	role   models.Role
	svc    UserService
	tokens TokenIssuer
	audit  Auditor
	header string
	prefix string
	log    *slog.Logger
}

// TokenHeader names the response header the login token is written to.
type TokenHeader struct {
	Name   string
	Prefix string
}

func NewUsersHandler(role models.Role, svc UserService, tokens TokenIssuer, audit Auditor, th TokenHeader, log *slog.Logger) *UsersHandler {
	return &UsersHandler{
		role:   role,
		svc:    svc,
		tokens: tokens,
		audit:  audit,
		header: th.Name,
		prefix: th.Prefix,
		log:    log,
	}
}

func (h *UsersHandler) logFor(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("role", h.role.String()),
		slog.String("request_id", chimw.GetReqID(r.Context())),
	)
}

// Register answers 201 with the new principal, 400 on bad input, 409 on a store conflict.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r, "handlers.users.Register")

	var c models.Candidate
	if err := render.DecodeJSON(r.Body, &c); err != nil {
		log.Info("decode registration", logger.Err(err))
		metrics.Registrations.WithLabelValues(h.role.String(), "rejected").Inc()
		httpx.WriteError(w, r, http.StatusBadRequest, msgMalformedBody)
		return
	}

	p, err := h.svc.Register(r.Context(), h.role, c)
	if err != nil {
		result := "error"
		switch {
		case errors.Is(err, apperr.ErrStoreConflict):
			result = "conflict"
		case apperr.Public(err):
			result = "rejected"
		}
		metrics.Registrations.WithLabelValues(h.role.String(), result).Inc()
		if result != "error" {
			h.audit.Record(h.role, "", models.ActionRegisterRejected, map[string]any{"reason": apperr.Message(err)})
		}
		httpx.WriteServiceError(w, r, log, err)
		return
	}

	metrics.Registrations.WithLabelValues(h.role.String(), "ok").Inc()
	h.audit.Record(h.role, p.ID, models.ActionRegisterOK, map[string]any{"email": p.Email})
	log.Info("registered", slog.String("id", p.ID))
	httpx.WriteJSON(w, r, http.StatusCreated, p)
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login answers with the principal and puts a signed token in the configured header.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r, "handlers.users.Login")

	var req loginReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("decode login", logger.Err(err))
		httpx.WriteError(w, r, http.StatusBadRequest, msgMalformedBody)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Login(r.Context(), h.role, req.Email, req.Password)
	if err != nil {
		if apperr.Public(err) {
			metrics.Logins.WithLabelValues(h.role.String(), "failed").Inc()
			h.audit.Record(h.role, "", models.ActionLoginFailed, map[string]any{"email": req.Email})
		} else {
			metrics.Logins.WithLabelValues(h.role.String(), "error").Inc()
		}
		httpx.WriteServiceError(w, r, log, err)
		return
	}

	tok, exp, err := h.tokens.Issue(p)
	if err != nil {
		metrics.Logins.WithLabelValues(h.role.String(), "error").Inc()
		httpx.WriteServiceError(w, r, log, err)
		return
	}

	metrics.Logins.WithLabelValues(h.role.String(), "ok").Inc()
	h.audit.Record(h.role, p.ID, models.ActionLoginOK, map[string]any{"expires_at": exp.UTC().Format(time.RFC3339)})
	w.Header().Set(h.header, h.prefix+tok)
	httpx.WriteJSON(w, r, http.StatusOK, p)
}

// Me resolves the principal named by the verified token. Mount behind RequireRole.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logFor(r, "handlers.users.Me")

	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteServiceError(w, r, log, apperr.NotAuthenticatedAs(h.role.String()))
		return
	}
	p, err := h.svc.FindByID(r.Context(), h.role, claims.Subject)
	if err != nil {
		httpx.WriteServiceError(w, r, log, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, p)
}

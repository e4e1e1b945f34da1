package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"credo/cmd/internal/auth"
)

// Handler serves the /api/auth routes plus the authenticated profile route.
type Handler struct {
	svc     *auth.Service
	mw      *Middleware
	log     *slog.Logger
	metrics *Metrics
	maxBody int64
}

func NewHandler(svc *auth.Service, mw *Middleware, log *slog.Logger, metrics *Metrics) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		svc:     svc,
		mw:      mw,
		log:     log,
		metrics: metrics,
		maxBody: DefaultMaxBodyBytes,
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.signup)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/refresh", h.refresh)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.Handle("POST /api/auth/logout_all", h.mw.Require(http.HandlerFunc(h.logoutAll)))
	mux.Handle("GET /api/me", h.mw.Require(http.HandlerFunc(h.me)))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			envelope: envelope{Success: false, Message: "validation failed"},
			Errors:   problems,
		})
		return
	}

	_, pair, err := h.svc.Signup(r.Context(), req.Email, req.FullName, req.Password)
	switch {
	case err == nil:
		h.metrics.Signups.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusCreated, h.tokens(pair, "user registered successfully"))
	case errors.Is(err, auth.ErrEmailTaken):
		h.metrics.Signups.WithLabelValues("conflict").Inc()
		writeError(w, http.StatusConflict, "email already registered")
	default:
		h.metrics.Signups.WithLabelValues("error").Inc()
		h.serverError(w, r, "signup", err)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.metrics.Logins.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, h.tokens(pair, "login successful"))
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.metrics.Logins.WithLabelValues("denied").Inc()
		writeError(w, http.StatusUnauthorized, "incorrect email or password")
	default:
		h.metrics.Logins.WithLabelValues("error").Inc()
		h.serverError(w, r, "login", err)
	}
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	switch {
	case err == nil:
		h.metrics.Refreshes.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, h.tokens(pair, "token refreshed successfully"))
	case errors.Is(err, auth.ErrSessionRevoked):
		// Revocations and lost races share one counter: both mean the token
		// was superseded, which is the signal worth alerting on.
		h.metrics.Refreshes.WithLabelValues("revoked").Inc()
		h.metrics.RotationConflicts.Inc()
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
	case errors.Is(err, auth.ErrSessionExpired):
		h.metrics.Refreshes.WithLabelValues("expired").Inc()
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		h.metrics.Refreshes.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
	default:
		h.metrics.Refreshes.WithLabelValues("error").Inc()
		h.serverError(w, r, "refresh", err)
	}
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		h.serverError(w, r, "logout", err)
		return
	}
	h.metrics.Logouts.Inc()
	writeJSON(w, http.StatusOK, ok("logged out successfully"))
}

func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	id, authed := IdentityFrom(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	n, err := h.svc.LogoutAll(r.Context(), id.UserID)
	if err != nil {
		h.serverError(w, r, "logout_all", err)
		return
	}
	h.metrics.Logouts.Inc()
	writeJSON(w, http.StatusOK, logoutAllResponse{
		envelope:        ok("logged out everywhere"),
		RevokedSessions: n,
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, authed := IdentityFrom(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	u, err := h.svc.User(r.Context(), id.UserID)
	if err != nil {
		h.serverError(w, r, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		envelope:  ok("ok"),
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	})
}

func (h *Handler) tokens(pair auth.TokenPair, message string) tokenResponse {
	return tokenResponse{
		envelope:     ok(message),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
		TokenType:    "bearer",
		ExpiresIn:    int64(time.Until(pair.AccessExpiresAt).Seconds()),
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.ErrorContext(r.Context(), "request failed", "op", op, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

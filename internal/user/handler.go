// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vBaustad/tripplannerhq/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
	logger    *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/subscription", h.RefreshSubscription)
		r.Patch("/", h.UpdateProfile)
		r.Patch("/stripe-customer", h.UpdateStripeCustomer)
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownEmail):
			core.Unauthorized(w, "No account found for that email.")
		case errors.Is(err, ErrWrongPassword):
			core.Unauthorized(w, "Incorrect password.")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, UserResponse{User: u.Sanitize()})
}

func (h *Handler) RefreshSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	u, summary, err := h.service.RefreshSubscription(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "User")
		case errors.Is(err, core.ErrUpstream):
			h.logger.Error("subscription refresh failed", "error", err)
			core.BadGateway(w, "Unable to refresh subscription")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, SubscriptionResponse{User: u.Sanitize(), Subscription: summary})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), id, req)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, UserResponse{User: u.Sanitize()})
}

func (h *Handler) UpdateStripeCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateStripeCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.SetStripeCustomerID(r.Context(), id, req.StripeCustomerID)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, UserResponse{User: u.Sanitize()})
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.BadRequest(w, "Invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, invalidInputMessage(err))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "User")
	default:
		core.InternalServerError(w, err)
	}
}

func invalidInputMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

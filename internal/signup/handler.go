// AngelaMos | 2026
// handler.go

package signup

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vBaustad/tripplannerhq/internal/core"
)

type Handler struct {
	service        *Service
	publishableKey string
	validator      *validator.Validate
	logger         *slog.Logger
}

func NewHandler(service *Service, publishableKey string, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		publishableKey: publishableKey,
		validator:      validator.New(),
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signup", h.Start)
	r.Post("/auth/activate", h.Activate)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Start(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			core.Conflict(w, "An account with that email already exists.")
		case errors.Is(err, ErrPlanNotAllowed):
			core.BadRequest(w, "Unknown plan.")
		case errors.Is(err, core.ErrUpstream):
			h.logger.Error("signup start failed upstream", "error", err)
			core.BadGateway(w, "Unable to start signup with the payment provider.")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, StartResponse{
		SignupID:       result.SignupID,
		ClientSecret:   result.ClientSecret,
		PublishableKey: h.publishableKey,
		PlanPriceID:    result.PlanPriceID,
	})
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	signupID, err := uuid.Parse(req.SignupID)
	if err != nil {
		core.BadRequest(w, "Invalid signup id")
		return
	}

	result, err := h.service.Activate(r.Context(), signupID, req.SetupIntentID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "Signup session")
		case errors.Is(err, ErrSessionExpired):
			core.Gone(w, "Signup session has expired. Please sign up again.")
		case errors.Is(err, ErrSetupIntentMismatch):
			core.BadRequest(w, "Setup intent does not match this signup session.")
		case errors.Is(err, ErrPaymentNotConfirmed):
			core.Conflict(w, "Payment method has not been confirmed yet.")
		case errors.Is(err, ErrPlanNotAllowed),
			errors.Is(err, ErrMissingPaymentMethod),
			errors.Is(err, ErrMissingCustomer):
			h.logger.Error("signup activation failed", "error", err)
			core.WriteJSON(w, http.StatusInternalServerError, core.ErrorResponse{
				Error: "Unable to activate subscription.",
			})
		case errors.Is(err, core.ErrUpstream):
			h.logger.Error("signup activation failed upstream", "error", err)
			core.BadGateway(w, "Unable to activate subscription with the payment provider.")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	body := ActivateResponse{User: result.User.Sanitize()}
	if result.Created {
		core.Created(w, body)
		return
	}
	core.OK(w, body)
}

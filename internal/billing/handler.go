// AngelaMos | 2026
// handler.go

package billing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vBaustad/tripplannerhq/internal/core"
)

type CreateCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=200"`
}

type CreateCustomerResponse struct {
	CustomerID string `json:"customerId"`
}

type CreateCheckoutSessionRequest struct {
	PriceID       string `json:"priceId" validate:"omitempty,max=255"`
	CustomerID    string `json:"customerId" validate:"omitempty,max=255"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email"`
}

type CreateCheckoutSessionResponse struct {
	URL        string `json:"url"`
	CustomerID string `json:"customerId,omitempty"`
}

type CreatePortalSessionRequest struct {
	CustomerID string `json:"customerId" validate:"required,max=255"`
}

type CreatePortalSessionResponse struct {
	URL string `json:"url"`
}

type PlansResponse struct {
	Plans []Plan `json:"plans"`
}

type Handler struct {
	processor      Processor
	catalog        *Catalog
	defaultPriceID string
	clientURL      string
	validator      *validator.Validate
	logger         *slog.Logger
}

func NewHandler(
	processor Processor,
	catalog *Catalog,
	defaultPriceID string,
	clientURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		processor:      processor,
		catalog:        catalog,
		defaultPriceID: defaultPriceID,
		clientURL:      strings.TrimRight(clientURL, "/"),
		validator:      validator.New(),
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-customer", h.CreateCustomer)
	r.Post("/create-checkout-session", h.CreateCheckoutSession)
	r.Post("/create-customer-portal-session", h.CreatePortalSession)
	r.Get("/plans", h.ListPlans)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	customerID, err := h.processor.EnsureCustomer(
		r.Context(),
		strings.ToLower(strings.TrimSpace(req.Email)),
		strings.TrimSpace(req.Name),
	)
	if err != nil {
		h.logger.Error("create customer failed", "error", err)
		core.BadGateway(w, "Unable to create billing customer")
		return
	}

	core.OK(w, CreateCustomerResponse{CustomerID: customerID})
}

func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	priceID := strings.TrimSpace(req.PriceID)
	if priceID == "" {
		priceID = h.defaultPriceID
	}
	if priceID == "" {
		core.BadRequest(w, "A price ID is required")
		return
	}

	sess, err := h.processor.CreateCheckoutSession(r.Context(), CheckoutParams{
		PriceID:       priceID,
		CustomerID:    strings.TrimSpace(req.CustomerID),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		SuccessURL:    h.clientURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     h.clientURL + "/billing/cancel",
	})
	if err != nil {
		h.logger.Error("create checkout session failed", "error", err)
		core.BadGateway(w, "Unable to create checkout session")
		return
	}

	core.OK(w, CreateCheckoutSessionResponse{
		URL:        sess.URL,
		CustomerID: sess.CustomerID,
	})
}

func (h *Handler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	var req CreatePortalSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	url, err := h.processor.CreatePortalSession(
		r.Context(),
		strings.TrimSpace(req.CustomerID),
		h.clientURL+"/account",
	)
	if err != nil {
		if errors.Is(err, core.ErrUpstream) {
			h.logger.Error("create portal session failed", "error", err)
			core.BadGateway(w, "Unable to create portal session")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CreatePortalSessionResponse{URL: url})
}

func (h *Handler) ListPlans(w http.ResponseWriter, _ *http.Request) {
	plans := h.catalog.Plans()
	if plans == nil {
		plans = []Plan{}
	}
	core.OK(w, PlansResponse{Plans: plans})
}

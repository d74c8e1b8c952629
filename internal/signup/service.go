// AngelaMos | 2026
// service.go

package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vBaustad/tripplannerhq/internal/billing"
	"github.com/vBaustad/tripplannerhq/internal/core"
	"github.com/vBaustad/tripplannerhq/internal/user"
)

var (
	ErrEmailTaken           = errors.New("an account with that email already exists")
	ErrPlanNotAllowed       = errors.New("plan is not allowed")
	ErrSessionExpired       = errors.New("signup session has expired")
	ErrSetupIntentMismatch  = errors.New("setup intent does not match session")
	ErrPaymentNotConfirmed  = errors.New("payment method is not confirmed")
	ErrMissingPaymentMethod = errors.New("setup intent has no payment method")
	ErrMissingCustomer      = errors.New("no billing customer resolved")
)

// UserProvider is the slice of the user service the signup flow depends on.
type UserProvider interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Promote(ctx context.Context, params user.PromoteParams) (*user.User, bool, error)
}

var _ UserProvider = (*user.Service)(nil)

type StartResult struct {
	SignupID     uuid.UUID
	ClientSecret string
	PlanPriceID  string
}

type ActivateResult struct {
	User    *user.User
	Created bool
}

type Service struct {
	repo            Repository
	users           UserProvider
	processor       billing.Processor
	catalog         *billing.Catalog
	hashCost        int
	sessionTTL      time.Duration
	trialPeriodDays int
	logger          *slog.Logger
	now             func() time.Time
}

func NewService(
	repo Repository,
	users UserProvider,
	processor billing.Processor,
	catalog *billing.Catalog,
	hashCost int,
	sessionTTLMinutes int,
	trialPeriodDays int,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:            repo,
		users:           users,
		processor:       processor,
		catalog:         catalog,
		hashCost:        hashCost,
		sessionTTL:      time.Duration(sessionTTLMinutes) * time.Minute,
		trialPeriodDays: trialPeriodDays,
		logger:          logger,
		now:             time.Now,
	}
}

// Start stages a signup: rejects emails that already have an account, ensures
// a billing customer, upserts the session keyed by email and issues a
// payment-method setup intent. Repeated calls for the same email replace the
// staged data instead of duplicating it.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	email := user.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	planPriceID := strings.TrimSpace(req.PlanPriceID)

	if !s.catalog.IsSupportedPriceID(planPriceID) {
		return nil, fmt.Errorf("plan %q: %w", planPriceID, ErrPlanNotAllowed)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := core.HashPassword(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	customerID, err := s.processor.EnsureCustomer(ctx, email, name)
	if err != nil {
		return nil, err
	}

	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	session, err := s.repo.UpsertByEmail(ctx, UpsertParams{
		Email:            email,
		Name:             namePtr,
		PasswordHash:     hash,
		PlanPriceID:      planPriceID,
		StripeCustomerID: customerID,
		ExpiresUTC:       s.now().Add(s.sessionTTL).UTC(),
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.processor.CreateSetupIntent(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// Some processor responses omit the client secret on create; fetch the
	// intent again before giving up.
	if intent.ClientSecret == "" {
		intent, err = s.processor.GetSetupIntent(ctx, intent.ID)
		if err != nil {
			return nil, err
		}
		if intent.ClientSecret == "" {
			return nil, fmt.Errorf(
				"setup intent %s has no client secret: %w",
				intent.ID,
				core.ErrUpstream,
			)
		}
	}

	if err := s.repo.SetSetupIntentID(ctx, session.ID, intent.ID); err != nil {
		return nil, err
	}

	return &StartResult{
		SignupID:     session.ID,
		ClientSecret: intent.ClientSecret,
		PlanPriceID:  planPriceID,
	}, nil
}

// Activate exchanges a confirmed setup intent for a live subscription and a
// durable account, then deletes the staged session. When the processor-side
// subscription is created but local promotion fails, the subscription is
// cancelled best-effort so no orphaned subscription outlives the failure.
func (s *Service) Activate(
	ctx context.Context,
	signupID uuid.UUID,
	setupIntentID string,
) (*ActivateResult, error) {
	session, err := s.repo.GetByID(ctx, signupID)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		s.deleteSession(ctx, session.ID)
		return nil, ErrSessionExpired
	}

	if session.SetupIntentID == nil || *session.SetupIntentID != setupIntentID {
		return nil, ErrSetupIntentMismatch
	}

	if !s.catalog.IsSupportedPriceID(session.PlanPriceID) {
		return nil, fmt.Errorf("plan %q: %w", session.PlanPriceID, ErrPlanNotAllowed)
	}

	intent, err := s.processor.GetSetupIntent(ctx, setupIntentID)
	if err != nil {
		return nil, err
	}

	if intent.Status != billing.SetupIntentStatusSucceeded {
		return nil, fmt.Errorf(
			"setup intent status %q: %w",
			intent.Status,
			ErrPaymentNotConfirmed,
		)
	}

	if intent.PaymentMethodID == "" {
		return nil, ErrMissingPaymentMethod
	}

	customerID := intent.CustomerID
	if customerID == "" {
		customerID = session.StripeCustomerID
	}
	if customerID == "" {
		return nil, ErrMissingCustomer
	}

	sub, err := s.processor.CreateSubscription(ctx, billing.SubscriptionParams{
		CustomerID:      customerID,
		PriceID:         session.PlanPriceID,
		PaymentMethodID: intent.PaymentMethodID,
		TrialPeriodDays: s.trialPeriodDays,
		Metadata: map[string]string{
			"signupId": session.ID.String(),
			"email":    session.Email,
		},
	})
	if err != nil {
		return nil, err
	}

	promoted, created, err := s.users.Promote(ctx, user.PromoteParams{
		Email:                        session.Email,
		Name:                         session.Name,
		PasswordHash:                 session.PasswordHash,
		StripeCustomerID:             customerID,
		SubscriptionID:               sub.ID,
		SubscriptionPriceID:          sub.PriceID,
		SubscriptionStatus:           sub.Status,
		SubscriptionCurrentPeriodEnd: sub.CurrentPeriodEnd,
	})
	if err != nil {
		s.cancelSubscription(ctx, sub.ID)
		return nil, fmt.Errorf("promote signup %s: %w", session.ID, err)
	}

	s.deleteSession(ctx, session.ID)

	return &ActivateResult{User: promoted, Created: created}, nil
}

func (s *Service) deleteSession(ctx context.Context, id uuid.UUID) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("signup session delete failed",
			"session_id", id,
			"error", err,
		)
	}
}

func (s *Service) cancelSubscription(ctx context.Context, id string) {
	if err := s.processor.CancelSubscription(ctx, id); err != nil {
		s.logger.Error("compensating subscription cancel failed",
			"subscription_id", id,
			"error", err,
		)
	}
}

// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vBaustad/tripplannerhq/internal/billing"
	"github.com/vBaustad/tripplannerhq/internal/core"
)

var (
	ErrUnknownEmail  = errors.New("no account found for that email")
	ErrWrongPassword = errors.New("incorrect password")
)

// subscriptionListLimit bounds the refresh lookup; the newest subscription is
// picked from this window.
const subscriptionListLimit = 5

type Service struct {
	repo      Repository
	processor billing.Processor
	hashCost  int
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	processor billing.Processor,
	hashCost int,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		processor: processor,
		hashCost:  hashCost,
		logger:    logger,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the credentials and returns the account. The password check
// runs even when no account exists so both failure paths cost the same.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	var hash *string
	if u != nil {
		hash = &u.PasswordHash
	}

	valid, err := core.VerifyPasswordTimingSafe(password, hash)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnknownEmail
	}
	if !valid {
		return nil, ErrWrongPassword
	}

	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, NormalizeEmail(email))
}

// UpdateProfile patches the display name and home currency. A blank display
// name clears the stored value; the currency is trimmed and uppercased and
// must be exactly three characters.
func (s *Service) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	req UpdateProfileRequest,
) (*User, error) {
	var update ProfileUpdate

	if req.DisplayName != nil {
		update.SetName = true
		if trimmed := strings.TrimSpace(*req.DisplayName); trimmed != "" {
			update.Name = &trimmed
		}
	}

	if req.HomeCurrency != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.HomeCurrency))
		if len(code) != 3 {
			return nil, fmt.Errorf(
				"%w: homeCurrency must be a 3-letter code",
				core.ErrInvalidInput,
			)
		}
		update.SetCurrency = true
		update.HomeCurrency = &code
	}

	if !update.SetName && !update.SetCurrency {
		return nil, fmt.Errorf("%w: nothing to update", core.ErrInvalidInput)
	}

	return s.repo.UpdateProfile(ctx, id, update)
}

// SetStripeCustomerID links the account to a processor customer. Nil or a
// blank id unlinks it.
func (s *Service) SetStripeCustomerID(
	ctx context.Context,
	id uuid.UUID,
	customerID *string,
) (*User, error) {
	if customerID != nil {
		trimmed := strings.TrimSpace(*customerID)
		if trimmed == "" {
			customerID = nil
		} else {
			customerID = &trimmed
		}
	}
	return s.repo.SetStripeCustomerID(ctx, id, customerID)
}

func (s *Service) Promote(
	ctx context.Context,
	params PromoteParams,
) (*User, bool, error) {
	params.Email = NormalizeEmail(params.Email)
	return s.repo.PromoteFromSignup(ctx, params)
}

// RefreshSubscription re-reads the customer's subscriptions from the payment
// processor and mirrors the newest one onto the local record, clearing the
// mirrored fields when none remain. Users with no billing customer are
// returned unchanged.
func (s *Service) RefreshSubscription(
	ctx context.Context,
	id uuid.UUID,
) (*User, *SubscriptionSummary, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if u.StripeCustomerID == nil || *u.StripeCustomerID == "" {
		return u, nil, nil
	}

	subs, err := s.processor.ListSubscriptions(
		ctx,
		*u.StripeCustomerID,
		subscriptionListLimit,
	)
	if err != nil {
		return nil, nil, err
	}

	newest := newestSubscription(subs)

	var fields SubscriptionFields
	var summary *SubscriptionSummary
	if newest != nil {
		fields = SubscriptionFields{
			SubscriptionID:               &newest.ID,
			SubscriptionPriceID:          &newest.PriceID,
			SubscriptionStatus:           &newest.Status,
			SubscriptionCurrentPeriodEnd: newest.CurrentPeriodEnd,
		}
		summary = &SubscriptionSummary{
			ID:               newest.ID,
			Status:           newest.Status,
			PriceID:          newest.PriceID,
			CurrentPeriodEnd: newest.CurrentPeriodEnd,
		}
	}

	updated, err := s.repo.UpdateSubscriptionFields(ctx, id, fields)
	if err != nil {
		return nil, nil, err
	}
	return updated, summary, nil
}

func newestSubscription(subs []billing.Subscription) *billing.Subscription {
	var newest *billing.Subscription
	for i := range subs {
		if newest == nil || subs[i].Created.After(newest.Created) {
			newest = &subs[i]
		}
	}
	return newest
}

// CreateAdmin hashes the password and upserts an administrator account. Used
// by the seeding command, not exposed over HTTP.
func (s *Service) CreateAdmin(
	ctx context.Context,
	email, name, password string,
) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf(
			"%w: email and password are required",
			core.ErrInvalidInput,
		)
	}

	hash, err := core.HashPassword(password, s.hashCost)
	if err != nil {
		return nil, err
	}

	var namePtr *string
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		namePtr = &trimmed
	}

	return s.repo.UpsertAdmin(ctx, email, namePtr, hash)
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.CountUsers(ctx)
}

// HashPassword exposes hashing at the configured cost for collaborating
// services that stage credentials before an account exists.
func (s *Service) HashPassword(password string) (string, error) {
	return core.HashPassword(password, s.hashCost)
}

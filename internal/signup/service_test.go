// AngelaMos | 2026
// service_test.go

package signup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vBaustad/tripplannerhq/internal/billing"
	"github.com/vBaustad/tripplannerhq/internal/config"
	"github.com/vBaustad/tripplannerhq/internal/core"
	"github.com/vBaustad/tripplannerhq/internal/user"
)

type fakeRepository struct {
	UpsertByEmailFn    func(ctx context.Context, params UpsertParams) (*SignupSession, error)
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*SignupSession, error)
	SetSetupIntentIDFn func(ctx context.Context, id uuid.UUID, setupIntentID string) error
	DeleteFn           func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeRepository) UpsertByEmail(ctx context.Context, params UpsertParams) (*SignupSession, error) {
	return f.UpsertByEmailFn(ctx, params)
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*SignupSession, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeRepository) SetSetupIntentID(ctx context.Context, id uuid.UUID, setupIntentID string) error {
	if f.SetSetupIntentIDFn == nil {
		return nil
	}
	return f.SetSetupIntentIDFn(ctx, id, setupIntentID)
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if f.DeleteFn == nil {
		return nil
	}
	return f.DeleteFn(ctx, id)
}

func (f *fakeRepository) CountSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeUsers struct {
	ExistsByEmailFn func(ctx context.Context, email string) (bool, error)
	PromoteFn       func(ctx context.Context, params user.PromoteParams) (*user.User, bool, error)
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.ExistsByEmailFn(ctx, email)
}

func (f *fakeUsers) Promote(ctx context.Context, params user.PromoteParams) (*user.User, bool, error) {
	return f.PromoteFn(ctx, params)
}

type fakeProcessor struct {
	EnsureCustomerFn     func(ctx context.Context, email, name string) (string, error)
	CreateSetupIntentFn  func(ctx context.Context, customerID string) (*billing.SetupIntent, error)
	GetSetupIntentFn     func(ctx context.Context, id string) (*billing.SetupIntent, error)
	CreateSubscriptionFn func(ctx context.Context, params billing.SubscriptionParams) (*billing.Subscription, error)
	CancelSubscriptionFn func(ctx context.Context, id string) error
}

func (f *fakeProcessor) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	return f.EnsureCustomerFn(ctx, email, name)
}

func (f *fakeProcessor) CreateSetupIntent(ctx context.Context, customerID string) (*billing.SetupIntent, error) {
	return f.CreateSetupIntentFn(ctx, customerID)
}

func (f *fakeProcessor) GetSetupIntent(ctx context.Context, id string) (*billing.SetupIntent, error) {
	return f.GetSetupIntentFn(ctx, id)
}

func (f *fakeProcessor) CreateSubscription(ctx context.Context, params billing.SubscriptionParams) (*billing.Subscription, error) {
	return f.CreateSubscriptionFn(ctx, params)
}

func (f *fakeProcessor) ListSubscriptions(ctx context.Context, customerID string, limit int) ([]billing.Subscription, error) {
	return nil, nil
}

func (f *fakeProcessor) CancelSubscription(ctx context.Context, id string) error {
	if f.CancelSubscriptionFn == nil {
		return nil
	}
	return f.CancelSubscriptionFn(ctx, id)
}

func (f *fakeProcessor) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error) {
	return nil, nil
}

func (f *fakeProcessor) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func testCatalog() *billing.Catalog {
	return billing.NewCatalog(&config.StripeConfig{
		PlanExplorerID: "price_explorer",
	})
}

func newTestService(repo Repository, users UserProvider, processor billing.Processor) *Service {
	return NewService(repo, users, processor, testCatalog(), 4, 2880, 14, testLogger())
}

func validStartRequest() StartRequest {
	return StartRequest{
		Name:        "Ada",
		Email:       "Ada@Example.com",
		Password:    "longenough",
		PlanPriceID: "price_explorer",
	}
}

func TestServiceStart(t *testing.T) {
	t.Run("stages session and returns client secret", func(t *testing.T) {
		sessionID := uuid.New()
		var upserted UpsertParams
		var storedIntentID string

		repo := &fakeRepository{
			UpsertByEmailFn: func(_ context.Context, params UpsertParams) (*SignupSession, error) {
				upserted = params
				return &SignupSession{ID: sessionID, Email: params.Email}, nil
			},
			SetSetupIntentIDFn: func(_ context.Context, id uuid.UUID, setupIntentID string) error {
				assert.Equal(t, sessionID, id)
				storedIntentID = setupIntentID
				return nil
			},
		}
		users := &fakeUsers{
			ExistsByEmailFn: func(_ context.Context, email string) (bool, error) {
				assert.Equal(t, "ada@example.com", email)
				return false, nil
			},
		}
		processor := &fakeProcessor{
			EnsureCustomerFn: func(_ context.Context, email, name string) (string, error) {
				assert.Equal(t, "ada@example.com", email)
				assert.Equal(t, "Ada", name)
				return "cus_1", nil
			},
			CreateSetupIntentFn: func(_ context.Context, customerID string) (*billing.SetupIntent, error) {
				assert.Equal(t, "cus_1", customerID)
				return &billing.SetupIntent{ID: "seti_1", ClientSecret: "seti_1_secret"}, nil
			},
		}

		svc := newTestService(repo, users, processor)
		result, err := svc.Start(context.Background(), validStartRequest())

		require.NoError(t, err)
		assert.Equal(t, sessionID, result.SignupID)
		assert.Equal(t, "seti_1_secret", result.ClientSecret)
		assert.Equal(t, "price_explorer", result.PlanPriceID)
		assert.Equal(t, "seti_1", storedIntentID)

		assert.Equal(t, "ada@example.com", upserted.Email)
		assert.Equal(t, "cus_1", upserted.StripeCustomerID)
		assert.NotEqual(t, "longenough", upserted.PasswordHash)
		assert.True(t, upserted.ExpiresUTC.After(time.Now()))
	})

	t.Run("rejects existing account", func(t *testing.T) {
		users := &fakeUsers{
			ExistsByEmailFn: func(_ context.Context, _ string) (bool, error) {
				return true, nil
			},
		}

		svc := newTestService(&fakeRepository{}, users, &fakeProcessor{})
		_, err := svc.Start(context.Background(), validStartRequest())

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects plan outside the allow-list", func(t *testing.T) {
		svc := newTestService(&fakeRepository{}, &fakeUsers{}, &fakeProcessor{})

		req := validStartRequest()
		req.PlanPriceID = "price_unknown"
		_, err := svc.Start(context.Background(), req)

		assert.ErrorIs(t, err, ErrPlanNotAllowed)
	})

	t.Run("refetches intent when create omits the client secret", func(t *testing.T) {
		repo := &fakeRepository{
			UpsertByEmailFn: func(_ context.Context, params UpsertParams) (*SignupSession, error) {
				return &SignupSession{ID: uuid.New(), Email: params.Email}, nil
			},
		}
		users := &fakeUsers{
			ExistsByEmailFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		}
		processor := &fakeProcessor{
			EnsureCustomerFn: func(_ context.Context, _, _ string) (string, error) {
				return "cus_1", nil
			},
			CreateSetupIntentFn: func(_ context.Context, _ string) (*billing.SetupIntent, error) {
				return &billing.SetupIntent{ID: "seti_1"}, nil
			},
			GetSetupIntentFn: func(_ context.Context, id string) (*billing.SetupIntent, error) {
				assert.Equal(t, "seti_1", id)
				return &billing.SetupIntent{ID: "seti_1", ClientSecret: "recovered_secret"}, nil
			},
		}

		svc := newTestService(repo, users, processor)
		result, err := svc.Start(context.Background(), validStartRequest())

		require.NoError(t, err)
		assert.Equal(t, "recovered_secret", result.ClientSecret)
	})

	t.Run("surfaces upstream customer failure", func(t *testing.T) {
		users := &fakeUsers{
			ExistsByEmailFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		}
		processor := &fakeProcessor{
			EnsureCustomerFn: func(_ context.Context, _, _ string) (string, error) {
				return "", core.ErrUpstream
			},
		}

		svc := newTestService(&fakeRepository{}, users, processor)
		_, err := svc.Start(context.Background(), validStartRequest())

		assert.ErrorIs(t, err, core.ErrUpstream)
	})
}

func activatableSession(id uuid.UUID) *SignupSession {
	intentID := "seti_1"
	name := "Ada"
	return &SignupSession{
		ID:               id,
		Email:            "ada@example.com",
		Name:             &name,
		PasswordHash:     "$2a$04$hash",
		PlanPriceID:      "price_explorer",
		StripeCustomerID: "cus_1",
		SetupIntentID:    &intentID,
		ExpiresUTC:       time.Now().Add(time.Hour),
	}
}

func TestServiceActivate(t *testing.T) {
	t.Run("promotes a new account on confirmed payment", func(t *testing.T) {
		sessionID := uuid.New()
		deleted := false

		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, id uuid.UUID) (*SignupSession, error) {
				assert.Equal(t, sessionID, id)
				return activatableSession(sessionID), nil
			},
			DeleteFn: func(_ context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}

		periodEnd := time.Now().Add(14 * 24 * time.Hour).UTC()
		processor := &fakeProcessor{
			GetSetupIntentFn: func(_ context.Context, id string) (*billing.SetupIntent, error) {
				return &billing.SetupIntent{
					ID:              id,
					Status:          billing.SetupIntentStatusSucceeded,
					CustomerID:      "cus_1",
					PaymentMethodID: "pm_1",
				}, nil
			},
			CreateSubscriptionFn: func(_ context.Context, params billing.SubscriptionParams) (*billing.Subscription, error) {
				assert.Equal(t, "cus_1", params.CustomerID)
				assert.Equal(t, "price_explorer", params.PriceID)
				assert.Equal(t, "pm_1", params.PaymentMethodID)
				assert.Equal(t, 14, params.TrialPeriodDays)
				assert.Equal(t, sessionID.String(), params.Metadata["signupId"])
				return &billing.Subscription{
					ID:               "sub_1",
					Status:           "trialing",
					PriceID:          "price_explorer",
					CurrentPeriodEnd: &periodEnd,
				}, nil
			},
		}

		users := &fakeUsers{
			PromoteFn: func(_ context.Context, params user.PromoteParams) (*user.User, bool, error) {
				assert.Equal(t, "ada@example.com", params.Email)
				assert.Equal(t, "sub_1", params.SubscriptionID)
				assert.Equal(t, "trialing", params.SubscriptionStatus)
				return &user.User{ID: uuid.New(), Email: params.Email}, true, nil
			},
		}

		svc := newTestService(repo, users, processor)
		result, err := svc.Activate(context.Background(), sessionID, "seti_1")

		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Equal(t, "ada@example.com", result.User.Email)
		assert.True(t, deleted)
	})

	t.Run("unknown session returns not found", func(t *testing.T) {
		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				return nil, core.ErrNotFound
			},
		}

		svc := newTestService(repo, &fakeUsers{}, &fakeProcessor{})
		_, err := svc.Activate(context.Background(), uuid.New(), "seti_1")

		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("expired session is rejected and deleted", func(t *testing.T) {
		sessionID := uuid.New()
		deleted := false

		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				session := activatableSession(sessionID)
				session.ExpiresUTC = time.Now().Add(-time.Minute)
				return session, nil
			},
			DeleteFn: func(_ context.Context, id uuid.UUID) error {
				assert.Equal(t, sessionID, id)
				deleted = true
				return nil
			},
		}

		svc := newTestService(repo, &fakeUsers{}, &fakeProcessor{})
		_, err := svc.Activate(context.Background(), sessionID, "seti_1")

		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.True(t, deleted)
	})

	t.Run("mismatched setup intent leaves the session alone", func(t *testing.T) {
		sessionID := uuid.New()

		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				return activatableSession(sessionID), nil
			},
			DeleteFn: func(_ context.Context, _ uuid.UUID) error {
				t.Fatal("session must not be deleted on mismatch")
				return nil
			},
		}

		svc := newTestService(repo, &fakeUsers{}, &fakeProcessor{})
		_, err := svc.Activate(context.Background(), sessionID, "seti_other")

		assert.ErrorIs(t, err, ErrSetupIntentMismatch)
	})

	t.Run("unconfirmed payment returns a retryable conflict", func(t *testing.T) {
		sessionID := uuid.New()

		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				return activatableSession(sessionID), nil
			},
		}
		processor := &fakeProcessor{
			GetSetupIntentFn: func(_ context.Context, id string) (*billing.SetupIntent, error) {
				return &billing.SetupIntent{ID: id, Status: billing.SetupIntentStatusProcessing}, nil
			},
		}

		svc := newTestService(repo, &fakeUsers{}, processor)
		_, err := svc.Activate(context.Background(), sessionID, "seti_1")

		assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	})

	t.Run("promotion failure cancels the fresh subscription", func(t *testing.T) {
		sessionID := uuid.New()
		cancelled := ""

		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				return activatableSession(sessionID), nil
			},
		}
		processor := &fakeProcessor{
			GetSetupIntentFn: func(_ context.Context, id string) (*billing.SetupIntent, error) {
				return &billing.SetupIntent{
					ID:              id,
					Status:          billing.SetupIntentStatusSucceeded,
					CustomerID:      "cus_1",
					PaymentMethodID: "pm_1",
				}, nil
			},
			CreateSubscriptionFn: func(_ context.Context, _ billing.SubscriptionParams) (*billing.Subscription, error) {
				return &billing.Subscription{ID: "sub_1", Status: "trialing"}, nil
			},
			CancelSubscriptionFn: func(_ context.Context, id string) error {
				cancelled = id
				return nil
			},
		}
		users := &fakeUsers{
			PromoteFn: func(_ context.Context, _ user.PromoteParams) (*user.User, bool, error) {
				return nil, false, errors.New("database unavailable")
			},
		}

		svc := newTestService(repo, users, processor)
		_, err := svc.Activate(context.Background(), sessionID, "seti_1")

		require.Error(t, err)
		assert.Equal(t, "sub_1", cancelled)
	})
}

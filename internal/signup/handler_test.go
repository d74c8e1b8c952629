// AngelaMos | 2026
// handler_test.go

package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vBaustad/tripplannerhq/internal/billing"
	"github.com/vBaustad/tripplannerhq/internal/core"
	"github.com/vBaustad/tripplannerhq/internal/user"
)

func doRequest(h *Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router := chi.NewRouter()
	h.RegisterRoutes(router)
	router.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp core.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHandlerStart(t *testing.T) {
	t.Run("returns 201 with signup payload", func(t *testing.T) {
		sessionID := uuid.New()
		repo := &fakeRepository{
			UpsertByEmailFn: func(_ context.Context, params UpsertParams) (*SignupSession, error) {
				return &SignupSession{ID: sessionID, Email: params.Email}, nil
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
				return &billing.SetupIntent{ID: "seti_1", ClientSecret: "secret_1"}, nil
			},
		}

		h := NewHandler(newTestService(repo, users, processor), "pk_test_123", testLogger())
		rr := doRequest(h, "/auth/signup", validStartRequest())

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp StartResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, sessionID, resp.SignupID)
		assert.Equal(t, "secret_1", resp.ClientSecret)
		assert.Equal(t, "pk_test_123", resp.PublishableKey)
		assert.Equal(t, "price_explorer", resp.PlanPriceID)
	})

	t.Run("short password is rejected before any processor call", func(t *testing.T) {
		h := NewHandler(newTestService(&fakeRepository{}, &fakeUsers{}, &fakeProcessor{}), "pk", testLogger())

		req := validStartRequest()
		req.Password = "short"
		rr := doRequest(h, "/auth/signup", req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("intent with no client secret maps to 502", func(t *testing.T) {
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
				return &billing.SetupIntent{ID: id}, nil
			},
		}
		h := NewHandler(newTestService(repo, users, processor), "pk", testLogger())

		rr := doRequest(h, "/auth/signup", validStartRequest())

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("existing account maps to 409", func(t *testing.T) {
		users := &fakeUsers{
			ExistsByEmailFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
		}
		h := NewHandler(newTestService(&fakeRepository{}, users, &fakeProcessor{}), "pk", testLogger())

		rr := doRequest(h, "/auth/signup", validStartRequest())

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "An account with that email already exists.", errorMessage(t, rr))
	})
}

func TestHandlerActivate(t *testing.T) {
	activateBody := func(id uuid.UUID) ActivateRequest {
		return ActivateRequest{SignupID: id.String(), SetupIntentID: "seti_1"}
	}

	t.Run("expired session maps to 410", func(t *testing.T) {
		sessionID := uuid.New()
		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				session := activatableSession(sessionID)
				session.ExpiresUTC = time.Now().Add(-time.Minute)
				return session, nil
			},
		}
		h := NewHandler(newTestService(repo, &fakeUsers{}, &fakeProcessor{}), "pk", testLogger())

		rr := doRequest(h, "/auth/activate", activateBody(sessionID))

		assert.Equal(t, http.StatusGone, rr.Code)
	})

	t.Run("mismatched intent maps to 400", func(t *testing.T) {
		sessionID := uuid.New()
		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				return activatableSession(sessionID), nil
			},
		}
		h := NewHandler(newTestService(repo, &fakeUsers{}, &fakeProcessor{}), "pk", testLogger())

		body := activateBody(sessionID)
		body.SetupIntentID = "seti_other"
		rr := doRequest(h, "/auth/activate", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Setup intent does not match this signup session.", errorMessage(t, rr))
	})

	t.Run("unconfirmed payment maps to 409", func(t *testing.T) {
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
		h := NewHandler(newTestService(repo, &fakeUsers{}, processor), "pk", testLogger())

		rr := doRequest(h, "/auth/activate", activateBody(sessionID))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("deleted session maps to 404", func(t *testing.T) {
		repo := &fakeRepository{
			GetByIDFn: func(_ context.Context, _ uuid.UUID) (*SignupSession, error) {
				return nil, core.ErrNotFound
			},
		}
		h := NewHandler(newTestService(repo, &fakeUsers{}, &fakeProcessor{}), "pk", testLogger())

		rr := doRequest(h, "/auth/activate", activateBody(uuid.New()))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("existing account activation returns 200 with the user", func(t *testing.T) {
		sessionID := uuid.New()
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
				return &billing.Subscription{ID: "sub_1", Status: "trialing", PriceID: "price_explorer"}, nil
			},
		}
		users := &fakeUsers{
			PromoteFn: func(_ context.Context, params user.PromoteParams) (*user.User, bool, error) {
				return &user.User{ID: uuid.New(), Email: params.Email}, false, nil
			},
		}
		h := NewHandler(newTestService(repo, users, processor), "pk", testLogger())

		rr := doRequest(h, "/auth/activate", activateBody(sessionID))

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp ActivateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ada@example.com", resp.User.Email)
	})
}

// AngelaMos | 2026
// entity.go

package signup

import (
	"time"

	"github.com/google/uuid"
)

// SignupSession stages a prospective account between signup initiation and
// payment confirmation. One session exists per email; activation promotes it
// into a user and deletes it.
type SignupSession struct {
	ID               uuid.UUID `db:"id"`
	Email            string    `db:"email"`
	Name             *string   `db:"name"`
	PasswordHash     string    `db:"password_hash"`
	PlanPriceID      string    `db:"plan_price_id"`
	StripeCustomerID string    `db:"stripe_customer_id"`
	SetupIntentID    *string   `db:"setup_intent_id"`
	ExpiresUTC       time.Time `db:"expires_utc"`
	CreatedUTC       time.Time `db:"created_utc"`
	UpdatedUTC       time.Time `db:"updated_utc"`
}

// Expired reports whether the session may no longer be activated. A session
// is already expired at the exact expiry instant.
func (s *SignupSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresUTC)
}

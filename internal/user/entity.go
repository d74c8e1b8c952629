// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                           uuid.UUID  `db:"id"`
	Email                        string     `db:"email"`
	Name                         *string    `db:"name"`
	PasswordHash                 string     `db:"password_hash"`
	IsAdmin                      bool       `db:"is_admin"`
	HomeCurrency                 *string    `db:"home_currency"`
	StripeCustomerID             *string    `db:"stripe_customer_id"`
	SubscriptionID               *string    `db:"subscription_id"`
	SubscriptionPriceID          *string    `db:"subscription_price_id"`
	SubscriptionStatus           *string    `db:"subscription_status"`
	SubscriptionCurrentPeriodEnd *time.Time `db:"subscription_current_period_end"`
	CreatedUTC                   time.Time  `db:"created_utc"`
	UpdatedUTC                   time.Time  `db:"updated_utc"`
}

// Sanitize strips the credential material and produces the external
// representation of the account. The name falls back to the email so
// clients always have something to display.
func (u *User) Sanitize() SanitizedUser {
	name := u.Email
	if u.Name != nil && *u.Name != "" {
		name = *u.Name
	}
	return SanitizedUser{
		ID:                           u.ID,
		Name:                         name,
		Email:                        u.Email,
		StripeCustomerID:             u.StripeCustomerID,
		SubscriptionPriceID:          u.SubscriptionPriceID,
		SubscriptionStatus:           u.SubscriptionStatus,
		SubscriptionCurrentPeriodEnd: u.SubscriptionCurrentPeriodEnd,
		HomeCurrency:                 u.HomeCurrency,
		CreatedUTC:                   u.CreatedUTC,
		UpdatedUTC:                   u.UpdatedUTC,
	}
}

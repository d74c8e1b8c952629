// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/google/uuid"
)

type SanitizedUser struct {
	ID                           uuid.UUID  `json:"id"`
	Name                         string     `json:"name"`
	Email                        string     `json:"email"`
	StripeCustomerID             *string    `json:"stripeCustomerId"`
	SubscriptionPriceID          *string    `json:"subscriptionPriceId"`
	SubscriptionStatus           *string    `json:"subscriptionStatus"`
	SubscriptionCurrentPeriodEnd *time.Time `json:"subscriptionCurrentPeriodEnd"`
	HomeCurrency                 *string    `json:"homeCurrency"`
	CreatedUTC                   time.Time  `json:"createdUtc"`
	UpdatedUTC                   time.Time  `json:"updatedUtc"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	User SanitizedUser `json:"user"`
}

// UpdateProfileRequest patches the display name and home currency. A present
// but blank displayName clears the stored name.
type UpdateProfileRequest struct {
	DisplayName  *string `json:"displayName" validate:"omitempty,max=200"`
	HomeCurrency *string `json:"homeCurrency" validate:"omitempty,max=10"`
}

// UpdateStripeCustomerRequest links or unlinks the processor customer; null
// or a blank string clears the stored id.
type UpdateStripeCustomerRequest struct {
	StripeCustomerID *string `json:"stripeCustomerId" validate:"omitempty,max=255"`
}

// SubscriptionSummary mirrors the fields copied onto the user record during a
// refresh. A nil summary means the customer has no subscriptions at all.
type SubscriptionSummary struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	PriceID          string     `json:"priceId"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
}

type SubscriptionResponse struct {
	User         SanitizedUser        `json:"user"`
	Subscription *SubscriptionSummary `json:"subscription"`
}

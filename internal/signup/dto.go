// AngelaMos | 2026
// dto.go

package signup

import (
	"github.com/google/uuid"

	"github.com/vBaustad/tripplannerhq/internal/user"
)

type StartRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PlanPriceID string `json:"planPriceId" validate:"required,max=255"`
}

type StartResponse struct {
	SignupID       uuid.UUID `json:"signupId"`
	ClientSecret   string    `json:"clientSecret"`
	PublishableKey string    `json:"publishableKey"`
	PlanPriceID    string    `json:"planPriceId"`
}

type ActivateRequest struct {
	SignupID      string `json:"signupId" validate:"required,uuid"`
	SetupIntentID string `json:"setupIntentId" validate:"required,max=255"`
}

type ActivateResponse struct {
	User user.SanitizedUser `json:"user"`
}

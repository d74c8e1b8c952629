// AngelaMos | 2026
// plans.go

package billing

import (
	"strings"

	"github.com/vBaustad/tripplannerhq/internal/config"
)

type Plan struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	PriceID     string `json:"priceId"`
	PriceLabel  string `json:"priceLabel"`
	Description string `json:"description"`
}

// Catalog maps configured Stripe price IDs onto the marketed plan tiers.
// Tiers without a configured price ID are omitted, and an empty catalog
// disables the activation allow-list entirely.
type Catalog struct {
	plans []Plan
}

func NewCatalog(cfg *config.StripeConfig) *Catalog {
	tiers := []Plan{
		{
			Key:         "explorer",
			Name:        "Explorer",
			PriceID:     cfg.PlanExplorerID,
			PriceLabel:  "$9.99/mo",
			Description: "Plan a single trip with shared itineraries and a travel budget.",
		},
		{
			Key:         "adventurer",
			Name:        "Adventurer",
			PriceID:     cfg.PlanAdventurerID,
			PriceLabel:  "$19.99/mo",
			Description: "Unlimited trips, collaborative planning and currency tracking.",
		},
		{
			Key:         "globetrotter",
			Name:        "Globetrotter",
			PriceID:     cfg.PlanGlobetrotterID,
			PriceLabel:  "$39.99/mo",
			Description: "Everything in Adventurer plus concierge support and priority features.",
		},
	}

	c := &Catalog{}
	for _, tier := range tiers {
		tier.PriceID = strings.TrimSpace(tier.PriceID)
		if tier.PriceID == "" {
			continue
		}
		c.plans = append(c.plans, tier)
	}
	return c
}

func (c *Catalog) Plans() []Plan {
	return c.plans
}

// IsSupportedPriceID reports whether a price ID may be used for activation.
// With no configured plans every non-empty ID is accepted.
func (c *Catalog) IsSupportedPriceID(priceID string) bool {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return false
	}
	if len(c.plans) == 0 {
		return true
	}
	for _, plan := range c.plans {
		if plan.PriceID == priceID {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"campscout/config"
)

// BillingService checks premium entitlements against the billing provider.
// Any failure degrades to the free tier rather than blocking the caller.
type BillingService struct {
	client *resty.Client
}

func NewBillingService(cfg config.BillingConfig) *BillingService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &BillingService{client: client}
}

type subscriptionResponse struct {
	CustomerID string `json:"customer_id"`
	Plan       string `json:"plan"`
	Active     bool   `json:"active"`
}

// IsPremium reports whether the billing customer holds an active premium
// subscription.
func (b *BillingService) IsPremium(ctx context.Context, customerID string) bool {
	var sub subscriptionResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetResult(&sub).
		SetPathParam("customer", customerID).
		Get("/v1/customers/{customer}/subscription")
	if err != nil {
		log.Printf("Warning: billing check failed for %s: %v", customerID, err)
		return false
	}
	if resp.IsError() {
		log.Printf("Warning: billing check for %s returned %d", customerID, resp.StatusCode())
		return false
	}
	return sub.Active && sub.Plan == "premium"
}

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"campscout/config"
)

func TestIsPremium(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/customers/cus_premium/subscription":
			w.Write([]byte(`{"customer_id":"cus_premium","plan":"premium","active":true}`))
		case "/v1/customers/cus_lapsed/subscription":
			w.Write([]byte(`{"customer_id":"cus_lapsed","plan":"premium","active":false}`))
		case "/v1/customers/cus_basic/subscription":
			w.Write([]byte(`{"customer_id":"cus_basic","plan":"basic","active":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewBillingService(config.BillingConfig{BaseURL: srv.URL})
	ctx := context.Background()

	if !svc.IsPremium(ctx, "cus_premium") {
		t.Fatal("active premium subscription should report premium")
	}
	if svc.IsPremium(ctx, "cus_lapsed") {
		t.Fatal("inactive subscription must not report premium")
	}
	if svc.IsPremium(ctx, "cus_basic") {
		t.Fatal("basic plan must not report premium")
	}
	// Provider errors degrade to the free tier.
	if svc.IsPremium(ctx, "cus_unknown") {
		t.Fatal("provider error must degrade to free")
	}
}

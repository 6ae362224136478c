package main

import (
	"testing"

	"campscout/config"
)

func TestAdminPrincipal(t *testing.T) {
	cfg := &config.Config{AdminEmails: []string{"ops@example.com", "lead@example.com"}}

	p, err := adminPrincipal(cfg, "Lead@Example.com")
	if err != nil {
		t.Fatalf("allowlisted email rejected: %v", err)
	}
	if !p.Admin || p.Email != "lead@example.com" {
		t.Fatalf("unexpected principal %+v", p)
	}

	// No -as falls back to the first allowlist entry.
	p, err = adminPrincipal(cfg, "")
	if err != nil {
		t.Fatalf("default operator rejected: %v", err)
	}
	if p.Email != "ops@example.com" {
		t.Fatalf("expected first allowlist entry, got %q", p.Email)
	}

	if _, err := adminPrincipal(cfg, "intruder@example.com"); err == nil {
		t.Fatal("unlisted email must be rejected")
	}
	if _, err := adminPrincipal(&config.Config{}, ""); err == nil {
		t.Fatal("empty allowlist must reject everyone")
	}
}

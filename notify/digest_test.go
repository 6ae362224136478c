package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"campscout/models"
)

func TestBuildDigest(t *testing.T) {
	city := &models.City{Name: "Portland", BrandName: "PDX Camp Finder", FromAddress: "hello@pdxcamps.example"}
	family := &models.Family{Name: "Rivera"}
	start := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	items := []models.DigestItem{
		{
			SessionID:   uuid.New(),
			SessionName: "Pottery Week",
			Type:        models.NotifyLowAvailability,
			StartDate:   start,
			EndDate:     end,
			SpotsLeft:   2,
		},
		{
			SessionID:   uuid.New(),
			SessionName: "Robotics Week",
			CampName:    "Tech Camp",
			Type:        models.NotifyRegistrationOpened,
			StartDate:   start,
			EndDate:     end,
			DetailURL:   "https://example.com/register",
		},
	}

	subject, text, html := BuildDigest(city, family, items)
	if !strings.Contains(subject, "PDX Camp Finder") {
		t.Fatalf("subject missing brand: %q", subject)
	}
	if !strings.Contains(subject, "2 camp updates") {
		t.Fatalf("subject missing count: %q", subject)
	}

	// Reopened sessions sort ahead of low-availability ones.
	reopenIdx := strings.Index(text, "Robotics Week")
	lowIdx := strings.Index(text, "Pottery Week")
	if reopenIdx < 0 || lowIdx < 0 {
		t.Fatalf("text missing sessions:\n%s", text)
	}
	if reopenIdx > lowIdx {
		t.Fatal("reopened session should come first")
	}

	if !strings.Contains(text, "2 spots left") {
		t.Fatalf("text missing spots: %s", text)
	}
	if !strings.Contains(text, "Tech Camp: Robotics Week") {
		t.Fatalf("text missing camp prefix: %s", text)
	}
	if !strings.Contains(html, `href="https://example.com/register"`) {
		t.Fatalf("html missing register link: %s", html)
	}
}

func TestBuildDigest_SingularSubject(t *testing.T) {
	city := &models.City{Name: "Portland"}
	family := &models.Family{Name: "Chen"}
	items := []models.DigestItem{{
		SessionName: "Pottery Week",
		Type:        models.NotifyLowAvailability,
		StartDate:   time.Now(),
		EndDate:     time.Now(),
		SpotsLeft:   1,
	}}

	subject, text, _ := BuildDigest(city, family, items)
	if !strings.Contains(subject, "1 camp update") || strings.Contains(subject, "updates") {
		t.Fatalf("expected singular subject, got %q", subject)
	}
	if !strings.Contains(text, "1 spot left") {
		t.Fatalf("expected singular spot, got %s", text)
	}
}

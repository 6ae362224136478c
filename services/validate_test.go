package services

import (
	"testing"
	"time"

	"campscout/models"
)

func TestValidateRaw_FullRecord(t *testing.T) {
	raw := &models.RawSession{
		Name:            "Wilderness Explorers",
		Description:     "Hiking and orienteering",
		StartDate:       "2026-07-06",
		EndDate:         "2026-07-10",
		DropOff:         "8:30 AM",
		PickUp:          "3:30 PM",
		Price:           "$425",
		Ages:            "Ages 8-12",
		LocationName:    "Pine Ridge Park",
		RegistrationURL: "https://example.com/register",
	}

	c, fieldErrors := ValidateRaw(raw, 2026)
	if len(fieldErrors) != 0 {
		t.Fatalf("expected no field errors, got %v", fieldErrors)
	}
	if !c.StartDate.Equal(time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date %v", c.StartDate)
	}
	if c.PriceCents != 42500 {
		t.Fatalf("expected 42500 cents, got %d", c.PriceCents)
	}
	if c.AgeMin != 8 || c.AgeMax != 12 {
		t.Fatalf("expected ages 8-12, got %d-%d", c.AgeMin, c.AgeMax)
	}
	if c.DropOff != "08:30" || c.PickUp != "15:30" {
		t.Fatalf("expected 08:30/15:30, got %s/%s", c.DropOff, c.PickUp)
	}
	if c.Completeness != 100 {
		t.Fatalf("expected completeness 100, got %d", c.Completeness)
	}
}

func TestValidateRaw_MonthDayAssumesSeason(t *testing.T) {
	raw := &models.RawSession{Name: "Art Camp", StartDate: "July 14", EndDate: "July 18"}

	c, _ := ValidateRaw(raw, 2026)
	if c.StartDate.Year() != 2026 || c.StartDate.Month() != time.July || c.StartDate.Day() != 14 {
		t.Fatalf("unexpected start date %v", c.StartDate)
	}
}

func TestValidateRaw_EndBeforeStart(t *testing.T) {
	raw := &models.RawSession{Name: "Art Camp", StartDate: "2026-07-10", EndDate: "2026-07-06"}

	c, fieldErrors := ValidateRaw(raw, 2026)
	if !c.EndDate.IsZero() {
		t.Fatalf("expected end date cleared, got %v", c.EndDate)
	}
	found := false
	for _, fe := range fieldErrors {
		if fe.Field == "end_date" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected end_date field error, got %v", fieldErrors)
	}
}

func TestValidateRaw_BadPriceRecorded(t *testing.T) {
	raw := &models.RawSession{Name: "Art Camp", StartDate: "2026-07-06", EndDate: "2026-07-10", Price: "call us"}

	c, fieldErrors := ValidateRaw(raw, 2026)
	if c.PriceCents != 0 {
		t.Fatalf("expected zero price, got %d", c.PriceCents)
	}
	found := false
	for _, fe := range fieldErrors {
		if fe.Field == "price" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected price field error, got %v", fieldErrors)
	}
}

func TestValidateRaw_SpotsLeftZeroPreserved(t *testing.T) {
	raw := &models.RawSession{Name: "Art Camp", StartDate: "2026-07-06", EndDate: "2026-07-10", SpotsLeft: "0 spots"}

	c, _ := ValidateRaw(raw, 2026)
	if c.SpotsLeft == nil || *c.SpotsLeft != 0 {
		t.Fatalf("expected spots left 0, got %v", c.SpotsLeft)
	}
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"$425", 42500},
		{"425.50", 42550},
		{"$1,250.00", 125000},
		{"Price: $99", 9900},
	}
	for _, tc := range cases {
		got, err := ParsePriceCents(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %d, got %d", tc.in, tc.want, got)
		}
	}

	if _, err := ParsePriceCents("free-form text"); err == nil {
		t.Fatal("expected error for unparseable price")
	}
}

func TestParseAgeRange(t *testing.T) {
	min, max, err := parseAgeRange("ages 6 to 10")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if min != 6 || max != 10 {
		t.Fatalf("expected 6-10, got %d-%d", min, max)
	}

	min, max, err = parseAgeRange("age 7+")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if min != 7 || max != 7 {
		t.Fatalf("expected 7-7, got %d-%d", min, max)
	}

	if _, _, err := parseAgeRange("12-8"); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9:00 AM", "09:00"},
		{"3:30 PM", "15:30"},
		{"15:04", "15:04"},
		{"9:00", "09:00"},
		{"noonish", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseClockTime(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

package scraper

import "testing"

const eventJSONLD = `[
  {
    "@type": "Event",
    "name": "Forest Explorers Camp",
    "description": "Outdoor adventures",
    "startDate": "2026-07-06T09:00:00-07:00",
    "endDate": "2026-07-10T15:00:00-07:00",
    "url": "https://camps.example/forest",
    "location": {"@type": "Place", "name": "Forest Park"},
    "offers": {"price": "395"}
  },
  {
    "@type": "Organization",
    "name": "Camps Inc"
  }
]`

func TestEventsFromJSONLD(t *testing.T) {
	sessions := eventsFromJSONLD(eventJSONLD)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 event (organization skipped), got %d", len(sessions))
	}

	s := sessions[0]
	if s.Name != "Forest Explorers Camp" {
		t.Fatalf("unexpected name %q", s.Name)
	}
	if s.StartDate != "2026-07-06" || s.EndDate != "2026-07-10" {
		t.Fatalf("time component not stripped: %q / %q", s.StartDate, s.EndDate)
	}
	if s.LocationName != "Forest Park" {
		t.Fatalf("unexpected location %q", s.LocationName)
	}
	if s.Price != "395" {
		t.Fatalf("unexpected price %q", s.Price)
	}
}

func TestEventsFromJSONLD_SingleObject(t *testing.T) {
	blob := `{"@type": "Event", "name": "Art Camp", "startDate": "2026-07-06", "location": "Studio B"}`
	sessions := eventsFromJSONLD(blob)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sessions))
	}
	if sessions[0].LocationName != "Studio B" {
		t.Fatalf("string location not handled: %q", sessions[0].LocationName)
	}
}

func TestEventsFromJSONLD_Garbage(t *testing.T) {
	if got := eventsFromJSONLD("not json at all"); got != nil {
		t.Fatalf("expected nil for garbage, got %v", got)
	}
}

func TestNewRoutineExtractor_Unknown(t *testing.T) {
	if _, err := NewRoutineExtractor("no_such_routine", nil); err == nil {
		t.Fatal("expected error for unknown routine")
	}
}

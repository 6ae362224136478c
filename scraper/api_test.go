package scraper

import (
	"encoding/json"
	"testing"
)

func TestItemsAtPath(t *testing.T) {
	var payload interface{}
	blob := `{"data": {"sessions": [{"name": "A"}, {"name": "B"}]}}`
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	items, err := itemsAtPath(payload, "data.sessions")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if _, err := itemsAtPath(payload, "data.missing"); err == nil {
		t.Fatal("expected error for missing path")
	}
	if _, err := itemsAtPath(payload, "data.sessions.name"); err == nil {
		t.Fatal("expected error when path descends into array")
	}
}

func TestItemsAtPath_RootArray(t *testing.T) {
	var payload interface{}
	if err := json.Unmarshal([]byte(`[{"name": "A"}]`), &payload); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	items, err := itemsAtPath(payload, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestStringAtPath(t *testing.T) {
	item := map[string]interface{}{
		"title": "Art Camp",
		"price": 425.0,
		"details": map[string]interface{}{
			"ages": "6-10",
		},
	}

	if got := stringAtPath(item, "title"); got != "Art Camp" {
		t.Fatalf("expected Art Camp, got %q", got)
	}
	if got := stringAtPath(item, "price"); got != "425" {
		t.Fatalf("numbers should stringify plainly, got %q", got)
	}
	if got := stringAtPath(item, "details.ages"); got != "6-10" {
		t.Fatalf("nested path failed, got %q", got)
	}
	if got := stringAtPath(item, "missing.deep"); got != "" {
		t.Fatalf("expected empty for missing path, got %q", got)
	}
}

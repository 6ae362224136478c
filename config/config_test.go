package config

import "testing"

func TestParseFeeds(t *testing.T) {
	data := []byte(`
seattle:
  - https://example.com/events.rss
  - https://example.com/blog/feed
portland:
  - https://example.org/feed.xml
`)
	feeds, err := parseFeeds(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(feeds["seattle"]) != 2 {
		t.Fatalf("expected 2 seattle feeds, got %d", len(feeds["seattle"]))
	}
	if feeds["portland"][0] != "https://example.org/feed.xml" {
		t.Fatalf("unexpected portland feed %q", feeds["portland"][0])
	}
	if _, ok := feeds["boise"]; ok {
		t.Fatal("unexpected entry for unlisted city")
	}
}

func TestParseFeedsRejectsMalformed(t *testing.T) {
	if _, err := parseFeeds([]byte("seattle: {nested: wrong}")); err == nil {
		t.Fatal("expected error for non-list feed value")
	}
}

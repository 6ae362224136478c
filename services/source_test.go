package services

import "testing"

func TestNormalizeSourceURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"HTTPS://WWW.Example.com/Camps/", "https://www.example.com/Camps"},
		{"https://example.com/camps#section", "https://example.com/camps"},
		{"  https://example.com  ", "https://example.com"},
	}
	for _, tc := range cases {
		got, err := normalizeSourceURL(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeSourceURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a url", "/relative/path"} {
		if _, err := normalizeSourceURL(in); err == nil {
			t.Fatalf("%q: expected validation error", in)
		}
	}
}

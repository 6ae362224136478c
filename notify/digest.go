package notify

import (
	"fmt"
	"sort"
	"strings"

	"campscout/models"
)

// BuildDigest renders one family's digest email, branded for their city.
// Items are grouped by kind with reopened sessions first, since those are
// the time-critical ones.
func BuildDigest(city *models.City, family *models.Family, items []models.DigestItem) (subject, text, html string) {
	sorted := make([]models.DigestItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type == models.NotifyRegistrationOpened
		}
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	brand := city.BrandName
	if brand == "" {
		brand = city.Name
	}
	subject = fmt.Sprintf("%s: %d camp update%s", brand, len(items), plural(len(items)))

	var tb, hb strings.Builder
	fmt.Fprintf(&tb, "Hi %s,\n\nUpdates on camps you're watching:\n\n", family.Name)
	fmt.Fprintf(&hb, "<h2>%s</h2><p>Hi %s, updates on camps you're watching:</p><ul>", brand, family.Name)

	for _, item := range sorted {
		line := digestLine(item)
		fmt.Fprintf(&tb, "- %s\n", line)
		if item.DetailURL != "" {
			fmt.Fprintf(&hb, `<li>%s <a href="%s">Register</a></li>`, line, item.DetailURL)
		} else {
			fmt.Fprintf(&hb, "<li>%s</li>", line)
		}
	}

	fmt.Fprintf(&tb, "\n%s\n", brand)
	hb.WriteString("</ul>")
	return subject, tb.String(), hb.String()
}

func digestLine(item models.DigestItem) string {
	name := item.SessionName
	if item.CampName != "" && item.CampName != item.SessionName {
		name = item.CampName + ": " + name
	}
	dates := fmt.Sprintf("%s to %s", item.StartDate.Format("Jan 2"), item.EndDate.Format("Jan 2"))

	switch item.Type {
	case models.NotifyRegistrationOpened:
		return fmt.Sprintf("%s (%s) just reopened for registration", name, dates)
	case models.NotifyLowAvailability:
		return fmt.Sprintf("%s (%s) is almost full, %d spot%s left", name, dates, item.SpotsLeft, plural(item.SpotsLeft))
	default:
		return fmt.Sprintf("%s (%s)", name, dates)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

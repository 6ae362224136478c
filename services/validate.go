package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"campscout/models"
)

// dateLayouts are tried in order when parsing scraped dates.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

var (
	priceRegex = regexp.MustCompile(`(\d[\d,]*)(?:\.(\d{2}))?`)
	ageRegex   = regexp.MustCompile(`(\d{1,2})\s*(?:-|to|–)\s*(\d{1,2})`)
	intRegex   = regexp.MustCompile(`\d+`)
	timeRegex  = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// ValidateRaw parses a raw scraped record into a candidate and collects
// per-field errors. The candidate is always returned; callers decide whether
// its completeness clears the import threshold.
func ValidateRaw(raw *models.RawSession, year int) (*models.CandidateSession, []models.FieldError) {
	var fieldErrors []models.FieldError
	c := &models.CandidateSession{
		Name:            strings.TrimSpace(raw.Name),
		Description:     strings.TrimSpace(raw.Description),
		LocationName:    strings.TrimSpace(raw.LocationName),
		RegistrationURL: strings.TrimSpace(raw.RegistrationURL),
		ImageURL:        strings.TrimSpace(raw.ImageURL),
		Raw:             raw.Data,
	}

	if c.Name == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "name", Message: "missing"})
	}

	start, err := parseDate(raw.StartDate, year)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "start_date", Message: err.Error()})
	} else {
		c.StartDate = start
	}

	end, err := parseDate(raw.EndDate, year)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "end_date", Message: err.Error()})
	} else {
		c.EndDate = end
	}

	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "end_date", Message: "before start date"})
		c.EndDate = time.Time{}
	}

	if raw.Price != "" {
		cents, err := ParsePriceCents(raw.Price)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "price", Message: err.Error()})
		} else {
			c.PriceCents = cents
		}
	}

	if raw.Ages != "" {
		min, max, err := parseAgeRange(raw.Ages)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "ages", Message: err.Error()})
		} else {
			c.AgeMin, c.AgeMax = min, max
		}
	}

	c.DropOff = parseClockTime(raw.DropOff)
	c.PickUp = parseClockTime(raw.PickUp)

	if raw.Capacity != "" {
		if n := firstInt(raw.Capacity); n > 0 {
			c.Capacity = n
		}
	}
	if raw.SpotsLeft != "" {
		if m := intRegex.FindString(raw.SpotsLeft); m != "" {
			n, _ := strconv.Atoi(m)
			c.SpotsLeft = &n
		}
	}

	c.Completeness, c.MissingFields = ScoreCompleteness(c)
	return c, fieldErrors
}

func parseDate(s string, year int) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Month-day without a year ("July 14") is common on camp pages; assume
	// the season being scraped.
	for _, layout := range []string{"January 2", "Jan 2", "1/2", "01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ParsePriceCents converts a scraped price string ("$425", "1,250.50") to
// integer cents.
func ParsePriceCents(s string) (int64, error) {
	m := priceRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unparseable price %q", s)
	}

	dollars, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q", s)
	}

	cents := dollars * 100
	if m[2] != "" {
		frac, _ := strconv.ParseInt(m[2], 10, 64)
		cents += frac
	}
	return cents, nil
}

func parseAgeRange(s string) (int, int, error) {
	if m := ageRegex.FindStringSubmatch(s); m != nil {
		min, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		if min > max {
			return 0, 0, fmt.Errorf("inverted age range %q", s)
		}
		return min, max, nil
	}
	if n := firstInt(s); n > 0 {
		return n, n, nil
	}
	return 0, 0, fmt.Errorf("unparseable age range %q", s)
}

// parseClockTime normalizes "9:00", "09:00" or "9:00 AM" to 24h "HH:MM",
// returning "" when the input is unusable.
func parseClockTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	upper := strings.ToUpper(s)
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format("15:04")
		}
	}
	if timeRegex.MatchString(s) {
		if len(s) == 4 {
			return "0" + s
		}
		return s
	}
	return ""
}

func firstInt(s string) int {
	if m := intRegex.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

package parse

import (
	"regexp"
	"strings"
	"time"
)

const (
	prefixDue            = "Due on "
	prefixAvailableOn    = "Available on "
	prefixAvailableUntil = "Available until "
)

var dateLayouts = []string{
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"Jan 2, 2006 3:04PM",
	"Mon, Jan 2, 2006 3:04 PM",
	"Monday, January 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04",
}

var (
	dateInText = regexp.MustCompile(
		`(?:(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*,\s+)?` +
			`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},\s+\d{4}` +
			`(?:\s+\d{1,2}:\d{2}\s*[AaPp][Mm])?`,
	)
	spaces = regexp.MustCompile(`\s+`)
)

// ParseDate parses a single UI formatted date in loc, nil is returned when
// the text is not a date.
func ParseDate(text string, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.UTC
	}
	text = spaces.ReplaceAllString(strings.TrimSpace(text), " ")
	text = strings.Replace(text, ".", "", 1)
	text = strings.ReplaceAll(text, " am", " AM")
	text = strings.ReplaceAll(text, " pm", " PM")
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, text, loc)
		if err == nil {
			return &t
		}
	}
	return nil
}

// FindDate parses the first date found anywhere in text.
func FindDate(text string, loc *time.Location) *time.Time {
	m := dateInText.FindString(text)
	if m == "" {
		return nil
	}
	return ParseDate(m, loc)
}

func dateAfter(text, prefix string, loc *time.Location) *time.Time {
	i := strings.Index(text, prefix)
	if i < 0 {
		return nil
	}
	rest := text[i+len(prefix):]
	loc0 := dateInText.FindStringIndex(rest)
	if loc0 == nil || strings.TrimSpace(rest[:loc0[0]]) != "" {
		return nil
	}
	return ParseDate(rest[loc0[0]:loc0[1]], loc)
}

// DueDate parses the date following "Due on ".
func DueDate(text string, loc *time.Location) *time.Time {
	return dateAfter(normalizeSpace(text), prefixDue, loc)
}

// Availability parses the "Available on <start> until <end>" and
// "Available until <end>" forms.
func Availability(text string, loc *time.Location) (start, end *time.Time) {
	text = normalizeSpace(text)
	if i := strings.Index(text, prefixAvailableUntil); i >= 0 {
		return nil, dateAfter(text[i:], prefixAvailableUntil, loc)
	}
	i := strings.Index(text, prefixAvailableOn)
	if i < 0 {
		return nil, nil
	}
	rest := text[i:]
	start = dateAfter(rest, prefixAvailableOn, loc)
	end = dateAfter(rest, " until ", loc)
	return start, end
}

func normalizeSpace(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return spaces.ReplaceAllString(text, " ")
}

package parse

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// goToHandler matches the inline handlers the LMS uses to navigate to an
// item, eg. `QuizSummary.GoToQuiz( 64024 ); return false;`.
var goToHandler = regexp.MustCompile(`[Gg]o[Tt]o[A-Za-z]*\(\s*'?(\d+)`)

// IdFromHandler extracts the numeric id from a GoTo... inline handler.
func IdFromHandler(handler string) string {
	m := goToHandler.FindStringSubmatch(handler)
	if m == nil {
		return ""
	}
	return m[1]
}

// QueryParam reads a query parameter out of a (possibly relative) url,
// keys are matched case-insensitively.
func QueryParam(link, key string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	values := u.Query()
	if v := values.Get(key); v != "" {
		return v
	}
	for k, v := range values {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// LastSegment returns the last path segment of a url.
func LastSegment(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

var (
	fraction   = regexp.MustCompile(`(-?[\d.,]+)\s*/\s*([\d.,]+)`)
	percentage = regexp.MustCompile(`(-?[\d.,]+)\s*%`)
)

func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Fraction parses the first "x / y" in text.
func Fraction(text string) (num, den *float64) {
	m := fraction.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return parseNumber(m[1]), parseNumber(m[2])
}

// Percentage parses the first "x %" in text.
func Percentage(text string) *float64 {
	m := percentage.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parseNumber(m[1])
}

// Score parses the "8 / 10 - 80 %" form, the percentage is derived from
// the points when the text does not carry one.
func Score(text string) (points, total, percent *float64) {
	points, total = Fraction(text)
	percent = Percentage(text)
	if percent == nil && points != nil && total != nil && *total > 0 {
		p := *points / *total * 100
		percent = &p
	}
	return points, total, percent
}

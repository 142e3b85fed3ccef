package parse

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func document(raw string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(raw))
}

var xsrfSetter = regexp.MustCompile(`localStorage\.setItem\(\s*['"]XSRF\.Token['"]\s*,\s*['"]([^'"]+)['"]\s*\)`)

// XsrfToken finds the inline script storing the XSRF token and returns the
// stored value.
func XsrfToken(raw string) (string, bool) {
	doc, err := document(raw)
	if err != nil {
		return "", false
	}
	token := ""
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := xsrfSetter.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		token = m[1]
		return false
	})
	return token, token != ""
}

type timezoneAttr struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// Timezone reads the `data-timezone` attribute of the root element, it may
// either be a json object with an identifier or a bare IANA name.
func Timezone(raw string) (*time.Location, bool) {
	doc, err := document(raw)
	if err != nil {
		return nil, false
	}
	attr, ok := doc.Find("[data-timezone]").First().Attr("data-timezone")
	if !ok {
		return nil, false
	}
	attr = strings.TrimSpace(attr)

	identifier := attr
	if strings.HasPrefix(attr, "{") {
		var tz timezoneAttr
		err := json.Unmarshal([]byte(attr), &tz)
		if err != nil {
			return nil, false
		}
		identifier = tz.Identifier
	}
	if identifier == "" {
		return nil, false
	}
	loc, err := time.LoadLocation(identifier)
	if err != nil {
		return nil, false
	}
	return loc, true
}

type globalContext struct {
	UserId json.Number `json:"userId"`
}

var userIdInScript = regexp.MustCompile(`['"]?[Uu]serId['"]?\s*:\s*['"]?(\d+)`)

// EnrollmentMarkers reads the user id and the enrollments api url out of
// the home document.
func EnrollmentMarkers(raw string) (userId string, enrollmentsUrl string, err error) {
	doc, err := document(raw)
	if err != nil {
		return "", "", parseError(ErrEnrollmentUrl, "", err)
	}

	enrollmentsUrl, _ = doc.Find("[enrollments-url]").First().Attr("enrollments-url")
	enrollmentsUrl = strings.TrimSpace(enrollmentsUrl)
	if enrollmentsUrl == "" {
		return "", "", parseError(ErrEnrollmentUrl, "", nil)
	}

	if attr, ok := doc.Find("[data-global-context]").First().Attr("data-global-context"); ok {
		var gc globalContext
		if json.Unmarshal([]byte(attr), &gc) == nil && gc.UserId.String() != "" {
			userId = gc.UserId.String()
		}
	}
	if userId == "" {
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			m := userIdInScript.FindStringSubmatch(s.Text())
			if m == nil {
				return true
			}
			userId = m[1]
			return false
		})
	}
	if userId == "" {
		return "", "", parseError(ErrUserId, "", nil)
	}
	return userId, enrollmentsUrl, nil
}

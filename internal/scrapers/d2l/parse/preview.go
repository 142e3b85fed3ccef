package parse

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrPreview = errors.New("could not find document in preview")

// FilePreviewUrl finds the url of the rendered document on an office file
// preview page.
func FilePreviewUrl(raw string) (string, error) {
	doc, err := document(raw)
	if err != nil {
		return "", err
	}
	candidates := []struct {
		selector string
		attr     string
	}{
		{"[data-location]", "data-location"},
		{"d2l-pdf-viewer[src]", "src"},
		{"iframe[src]", "src"},
		{"embed[src]", "src"},
		{`a[href*="DirectFileTopicDownload"]`, "href"},
		{"a[download][href]", "href"},
	}
	for _, c := range candidates {
		found := ""
		doc.Find(c.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v := strings.TrimSpace(s.AttrOr(c.attr, ""))
			if v == "" || v == "about:blank" {
				return true
			}
			found = v
			return false
		})
		if found != "" {
			return found, nil
		}
	}
	return "", parseError(ErrPreview, "", nil)
}

package parse

import (
	"strconv"
	"strings"
	"time"

	"valence/internal/components/telemetry"
	"valence/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Category selects one of the activity feeds.
type Category int

const (
	// CategoryUpdates carries announcements, grades, feedback and content.
	CategoryUpdates Category = 1
	// CategorySubscriptions carries discussion subscriptions.
	CategorySubscriptions Category = 2
)

// Alerts parses the html of an activity feed partial. Every list item
// with a link is an alert, items without a timestamp are dropped.
func Alerts(tel telemetry.API, raw string, loc *time.Location) ([]Alert, error) {
	doc, err := document(raw)
	if err != nil {
		return nil, err
	}

	out := []Alert{}
	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		if item.Find("li").Length() > 0 {
			return
		}
		link := item.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")

		alert := Alert{
			Title: htmlutil.SelectionText(link),
			Link:  href,
		}
		if alt, ok := item.Find("img[alt]").First().Attr("alt"); ok {
			alert.Icon = alt
		}

		var details []string
		item.Find(".d2l-textblock").Each(func(i int, block *goquery.Selection) {
			text := htmlutil.SelectionText(block)
			if text == "" {
				return
			}
			if alert.Course == "" && (block.HasClass("d2l-textblock-secondary") || i == 0) {
				alert.Course = text
				return
			}
			details = append(details, text)
		})
		alert.Details = strings.Join(details, "\n")

		timestamp, ok := alertTimestamp(item, loc)
		if !ok {
			tel.ReportWarning(report_parse_alerts, "alert without a timestamp", alert.Title)
			return
		}
		alert.Timestamp = timestamp
		out = append(out, alert)
	})
	return out, nil
}

func alertTimestamp(item *goquery.Selection, loc *time.Location) (time.Time, bool) {
	date := item.Find("[data-date]").First()
	if raw, ok := date.Attr("data-date"); ok {
		ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err == nil {
			return time.UnixMilli(ms), true
		}
	}
	fuzzy := item.Find(".d2l-fuzzydate, abbr[title], time").First()
	if title, ok := fuzzy.Attr("title"); ok {
		if t := FindDate(title, loc); t != nil {
			return *t, true
		}
	}
	if datetime, ok := fuzzy.Attr("datetime"); ok {
		if t := isoDate(&datetime); t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

package parse

import (
	"regexp"
	"strings"
	"time"

	"valence/internal/components/telemetry"
	"valence/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var (
	newsViewLink = regexp.MustCompile(`/d2l/le/news/(\d+)/(\d+)/view`)
	postedBy     = regexp.MustCompile(`(?i)\bby\s+(.+?)\s*$`)
)

const attachmentLinks = `a[href*="/attachments/"], a[href*="viewFile"], a[href*="DirectFileTopicDownload"]`

// Announcements parses the news list of a course. A news item may span
// two table rows, rows are classified as:
//
//  1. contains a link to a news item                          -> starts an item
//  2. no news link, has an html block, follows an item         -> body continuation
//  3. anything else                                            -> skip, ends the item
//
// Items without any body are kept with an empty body.
func Announcements(tel telemetry.API, raw string, loc *time.Location) ([]Announcement, error) {
	doc, err := document(raw)
	if err != nil {
		return nil, err
	}

	out := []Announcement{}
	var current *Announcement

	containers := doc.Find("table tr")
	if containers.Length() == 0 {
		containers = doc.Find(".d2l-datalist-item, article")
	}
	containers.Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			return newsViewLink.MatchString(href)
		}).First()

		switch {
		case link.Length() > 0:
			href, _ := link.Attr("href")
			m := newsViewLink.FindStringSubmatch(href)
			out = append(out, Announcement{
				Id:          m[2],
				CourseId:    m[1],
				Title:       htmlutil.SelectionText(link),
				Attachments: []Attachment{},
			})
			current = &out[len(out)-1]
			fillAnnouncement(current, row, loc)
		case current != nil && row.Find(".d2l-htmlblock").Length() > 0:
			fillAnnouncement(current, row, loc)
		default:
			current = nil
		}
	})

	for _, a := range out {
		if a.Title == "" {
			tel.ReportWarning(report_parse_news, "announcement without a title", a.Id)
		}
	}
	return out, nil
}

func fillAnnouncement(a *Announcement, row *goquery.Selection, loc *time.Location) {
	body := row.Find(".d2l-htmlblock").First()
	if body.Length() > 0 && a.Body.Html == "" {
		html, err := body.Html()
		if err == nil {
			a.Body.Html = strings.TrimSpace(html)
		}
		a.Body.Text = htmlutil.SelectionText(body)
	}

	row.Find(attachmentLinks).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		a.Attachments = append(a.Attachments, Attachment{
			Name: htmlutil.SelectionText(s),
			Url:  href,
		})
	})

	posted := row.Find(".d2l-news-posted, .d2l-fuzzydate, .d2l-textblock-secondary").First()
	if posted.Length() == 0 {
		return
	}
	postedText := htmlutil.SelectionText(posted)
	if a.StartDate == nil {
		if title, ok := posted.Attr("title"); ok {
			a.StartDate = FindDate(title, loc)
		}
		if a.StartDate == nil {
			a.StartDate = FindDate(postedText, loc)
		}
	}
	if a.Author == "" {
		if m := postedBy.FindStringSubmatch(postedText); m != nil {
			a.Author = m[1]
		}
	}
}

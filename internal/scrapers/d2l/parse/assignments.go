package parse

import (
	"strings"
	"time"

	"valence/internal/components/telemetry"
	"valence/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_parse_assignments = "parse.assignments"
	report_parse_quizzes     = "parse.quizzes"
	report_parse_grades      = "parse.grades"
	report_parse_submissions = "parse.quiz-submissions"
	report_parse_news        = "parse.announcements"
	report_parse_alerts      = "parse.alerts"
	report_parse_calendar    = "parse.calendar"
)

type rowKind int

const (
	rowSkip rowKind = iota
	rowCategory
	rowAttachment
	rowItem
)

const (
	folderSubmitPath   = "folder_submit_files.d2l"
	folderFeedbackPath = "folder_user_view_feedback.d2l"
)

// classifyAssignmentRow decides what an assignment table row holds, the
// first matching predicate wins:
//
//  1. no cells, or only column headers                   -> skip
//  2. no submission folder link and a file link            -> attachment continuation, skip
//  3. a single cell spanning the table (th/td colspan)     -> category, its text becomes a tag
//  4. first cell has a name                                -> assignment
//  5. anything else                                        -> skip
func classifyAssignmentRow(row *goquery.Selection) rowKind {
	cells := row.ChildrenFiltered("th, td")
	if cells.Length() == 0 {
		return rowSkip
	}
	if cells.Length() == cells.Filter(`th[scope="col"]`).Length() {
		return rowSkip
	}
	if row.Find(`a[href*="`+folderSubmitPath+`"]`).Length() == 0 &&
		row.Find(`a[href*="viewFile"], a[href*="/attachments/"], .d2l-fileviewer`).Length() > 0 {
		return rowAttachment
	}
	if cells.Length() == 1 {
		if _, ok := cells.Attr("colspan"); ok {
			return rowCategory
		}
	}
	if assignmentName(cells.First()) != "" {
		return rowItem
	}
	return rowSkip
}

func assignmentName(cell *goquery.Selection) string {
	link := cell.Find(`a[href*="` + folderSubmitPath + `"]`).First()
	if link.Length() > 0 {
		return htmlutil.SelectionText(link)
	}
	for _, sel := range []string{"strong", ".d2l-foldername", "label", "span"} {
		name := htmlutil.SelectionText(cell.Find(sel).First())
		if name != "" {
			return name
		}
	}
	return ""
}

// Assignments parses the submission folder list of a course. Rows are
// classified with classifyAssignmentRow, categories become tags of the
// assignments following them. The status is inferred with the following
// precedence:
//
//  1. a feedback link                            -> returned
//  2. row text contains "Submission"              -> submitted
//  3. otherwise                                   -> not-submitted
//
// This is a heuristic over observed markup, not an authoritative field.
func Assignments(tel telemetry.API, raw string, loc *time.Location) ([]Assignment, error) {
	doc, err := document(raw)
	if err != nil {
		return nil, err
	}

	out := []Assignment{}
	var category string
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		switch classifyAssignmentRow(row) {
		case rowCategory:
			category = htmlutil.SelectionText(row)
		case rowItem:
			a := assignmentFromRow(row, loc)
			if category != "" {
				a.Tags = append(a.Tags, category)
			}
			if a.Id == "" {
				tel.ReportDebug("assignment without folder id", a.Name)
			}
			out = append(out, a)
		case rowAttachment, rowSkip:
		}
	})
	if len(out) == 0 && doc.Find("table").Length() == 0 {
		tel.ReportWarning(report_parse_assignments, "no assignment table in document")
	}
	return out, nil
}

func assignmentFromRow(row *goquery.Selection, loc *time.Location) Assignment {
	cells := row.ChildrenFiltered("th, td")
	first := cells.First()

	a := Assignment{
		Name:   assignmentName(first),
		Tags:   []string{},
		Status: AssignmentNotSubmitted,
	}

	if link, ok := first.Find(`a[href*="` + folderSubmitPath + `"]`).First().Attr("href"); ok {
		a.Id = QueryParam(link, "db")
		grp := QueryParam(link, "grpid")
		if grp != "" && grp != "0" {
			a.GroupId = grp
		}
	}

	nameText := htmlutil.SelectionText(first)
	a.DueDate = DueDate(nameText, loc)
	a.StartDate, a.EndDate = Availability(nameText, loc)
	first.Find(".d2l-folderdates-wrapper, .d2l-textblock, .di_s").Each(func(_ int, s *goquery.Selection) {
		text := htmlutil.SelectionText(s)
		if a.AccessNote != "" || text == "" {
			return
		}
		if strings.Contains(text, prefixDue) || strings.Contains(text, "Available ") {
			return
		}
		if strings.Contains(strings.ToLower(text), "restrict") || strings.Contains(strings.ToLower(text), "access") {
			a.AccessNote = text
		}
	})

	rest := cells.Slice(1, cells.Length())
	rest.Each(func(_ int, cell *goquery.Selection) {
		text := htmlutil.SelectionText(cell)
		if a.Points == nil {
			points, total, percent := Score(text)
			if points != nil && total != nil {
				a.Points, a.TotalPoints, a.GradePercentage = points, total, percent
			}
		}
		if a.DueDate == nil {
			a.DueDate = FindDate(text, loc)
		}
	})

	rowText := htmlutil.SelectionText(rest)
	feedback := row.Find(`a[href*="` + folderFeedbackPath + `"]`).First()
	switch {
	case feedback.Length() > 0:
		a.Status = AssignmentReturned
		a.FeedbackUrl, _ = feedback.Attr("href")
	case strings.Contains(rowText, "Submission"):
		a.Status = AssignmentSubmitted
	}

	return a
}

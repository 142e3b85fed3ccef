package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"valence/internal/components/telemetry"
	"valence/internal/routes"
	"valence/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var (
	attemptsCell = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+|unlimited)`)
	// inProgressMarker is the icon shown next to a quiz with an open attempt.
	inProgressMarker = `img[src*="inprogress"], img[src*="InProgress"], img[alt*="In Progress"], img[alt*="in progress"], ` +
		`img[title*="In Progress"], d2l-icon[icon*="in-progress"]`
)

func quizId(row *goquery.Selection) string {
	id := ""
	row.Find("a, [onclick]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if handler, ok := s.Attr("onclick"); ok {
			id = IdFromHandler(handler)
			if id != "" {
				return false
			}
		}
		if href, ok := s.Attr("href"); ok {
			id = QueryParam(href, "qi")
			if id != "" {
				return false
			}
			id = IdFromHandler(href)
		}
		return id == ""
	})
	return id
}

func quizName(cell *goquery.Selection) string {
	link := cell.Find("a").First()
	if link.Length() > 0 {
		if name := htmlutil.SelectionText(link); name != "" {
			return name
		}
	}
	return htmlutil.SelectionText(cell.Find("strong, label, span").First())
}

// quizStatus is derived from the feedback cell and the in-progress marker:
//
//	feedback text | in-progress marker | status
//	yes           | yes                | retry-in-progress
//	yes           | no                 | completed
//	no            | yes                | in-progress
//	no            | no, attempts > 0   | completed
//	no            | no                 | not-started
//
// This is a heuristic over observed markup, not an authoritative field.
func quizStatus(feedback, inProgress bool, attempts *int) QuizStatus {
	switch {
	case feedback && inProgress:
		return QuizRetryInProgress
	case feedback:
		return QuizCompleted
	case inProgress:
		return QuizInProgress
	case attempts != nil && *attempts > 0:
		return QuizCompleted
	}
	return QuizNotStarted
}

// Quizzes parses the quiz list of a course. Rows are classified as:
//
//  1. no cells, or only column headers                -> skip, headers name
//     the attempts column
//  2. a single cell spanning the table                 -> category header, skip
//  3. anything with a quiz name                        -> quiz
//
// The quiz id is read from a GoTo... inline handler or the `qi` query
// parameter. Quizzes without an id are dropped with a warning.
func Quizzes(tel telemetry.API, raw string, courseId string, loc *time.Location) ([]Quiz, error) {
	doc, err := document(raw)
	if err != nil {
		return nil, err
	}

	out := []Quiz{}
	attempts := -1
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}
		if cells.Length() == cells.Filter(`th[scope="col"]`).Length() {
			attempts = attemptsColumnOf(cells)
			return
		}
		if cells.Length() == 1 {
			if _, ok := cells.Attr("colspan"); ok {
				return
			}
		}
		name := quizName(cells.First())
		if name == "" {
			return
		}

		q, ok := quizFromRow(row, cells, attempts, name, courseId, loc)
		if !ok {
			tel.ReportWarning(report_parse_quizzes, "quiz without an id was dropped", name)
			return
		}
		out = append(out, q)
	})
	return out, nil
}

// attemptsColumnOf is the index of the attempts column in a header row, or
// -1 when there is none.
func attemptsColumnOf(headers *goquery.Selection) int {
	column := -1
	headers.EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(htmlutil.SelectionText(th)), "attempt") {
			column = i
			return false
		}
		return true
	})
	return column
}

func parseAttempts(q *Quiz, text string) {
	m := attemptsCell.FindStringSubmatch(text)
	if m == nil || strings.Contains(text, "%") {
		return
	}
	attempts, _ := strconv.Atoi(m[1])
	q.Attempts = &attempts
	if allowed, err := strconv.Atoi(m[2]); err == nil {
		q.AttemptsAllowed = &allowed
	}
}

// quizFromRow reads the attempts from the given column, or from the last
// cell when the table has no attempts header.
func quizFromRow(row, cells *goquery.Selection, attemptsColumn int, name, courseId string, loc *time.Location) (Quiz, bool) {
	id := quizId(row)
	if id == "" {
		return Quiz{}, false
	}

	q := Quiz{Name: name, Id: id}

	first := cells.First()
	firstText := htmlutil.SelectionText(first)
	q.DueDate = DueDate(firstText, loc)
	q.StartDate, q.EndDate = Availability(firstText, loc)

	feedback := false
	cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
		if strings.Contains(htmlutil.SelectionText(cell), "Feedback") {
			feedback = true
		}
	})
	if attemptsColumn < 0 {
		attemptsColumn = cells.Length() - 1
	}
	if attemptsColumn > 0 && attemptsColumn < cells.Length() {
		parseAttempts(&q, htmlutil.SelectionText(cells.Eq(attemptsColumn)))
	}
	inProgress := row.Find(inProgressMarker).Length() > 0
	q.Status = quizStatus(feedback, inProgress, q.Attempts)

	if href, ok := row.Find(`a[href*="quiz_submissions"]`).First().Attr("href"); ok {
		q.SubmissionsUrl = href
	} else if courseId != "" {
		q.SubmissionsUrl, _ = routes.ExternalPath(routes.KindQuizSubmissions, routes.Params{
			routes.ParamCourse: courseId,
			routes.ParamQuiz:   id,
		})
	}
	return q, true
}

var attemptLabel = regexp.MustCompile(`(?i)attempt\s+(\d+)`)

// QuizSubmissions parses the attempt history of a quiz in document order.
// A row is an attempt when it contains an "Attempt N" label; the attempt
// id is the `ai` query parameter of the attempt link.
func QuizSubmissions(tel telemetry.API, raw string, quizId string) ([]QuizSubmission, error) {
	doc, err := document(raw)
	if err != nil {
		return nil, err
	}

	out := []QuizSubmission{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		text := htmlutil.SelectionText(row)
		m := attemptLabel.FindStringSubmatch(text)
		if m == nil || row.ChildrenFiltered("td, th").Length() < 2 {
			return
		}
		number, _ := strconv.Atoi(m[1])
		sub := QuizSubmission{
			QuizId:        quizId,
			AttemptNumber: number,
		}

		link := row.Find(`a[href*="ai="]`).First()
		if href, ok := link.Attr("href"); ok {
			sub.AttemptUrl = href
			sub.AttemptId = QueryParam(href, "ai")
		}
		if sub.AttemptId == "" {
			tel.ReportWarning(report_parse_submissions, "quiz attempt without an attempt id", quizId, number)
		}

		row.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			cellText := htmlutil.SelectionText(cell)
			if sub.Points == nil {
				points, total, percent := Score(cellText)
				if points != nil && total != nil {
					sub.Points, sub.TotalPoints, sub.GradePercentage = points, total, percent
				}
			}
			if sub.LateNote == "" && strings.Contains(strings.ToLower(cellText), "late") {
				sub.LateNote = cellText
			}
		})
		out = append(out, sub)
	})
	return out, nil
}

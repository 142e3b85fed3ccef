package parse

import (
	"strings"

	"valence/internal/components/telemetry"
	"valence/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type gradeColumn int

const (
	columnUnknown gradeColumn = iota
	columnPoints
	columnWeight
	columnGrade
)

func gradeColumnOf(header string) gradeColumn {
	header = strings.ToLower(header)
	switch {
	case strings.Contains(header, "weight"):
		return columnWeight
	case strings.Contains(header, "points"):
		return columnPoints
	case strings.Contains(header, "grade") && !strings.Contains(header, "item"):
		return columnGrade
	}
	return columnUnknown
}

// isIndented is true for rows whose first cell is the empty spacer the
// LMS uses to indent items under a category.
func isIndented(row *goquery.Selection) bool {
	first := row.ChildrenFiltered("th, td").First()
	if goquery.NodeName(first) != "td" {
		return false
	}
	return htmlutil.SelectionText(first) == ""
}

func isGradeHeader(row *goquery.Selection) bool {
	cells := row.ChildrenFiltered("th, td")
	return cells.Length() > 0 && cells.Length() == cells.Filter(`th[scope="col"]`).Length()
}

// gradeValueCells are the cells following the name cell of a row.
func gradeValueCells(row *goquery.Selection) *goquery.Selection {
	cells := row.ChildrenFiltered("th, td")
	start := 0
	for start < cells.Length() && goquery.NodeName(cells.Eq(start)) == "td" && htmlutil.SelectionText(cells.Eq(start)) == "" {
		start++
	}
	return cells.Slice(start+1, cells.Length())
}

func gradeName(row *goquery.Selection) string {
	cells := row.ChildrenFiltered("th, td")
	for i := 0; i < cells.Length(); i++ {
		cell := cells.Eq(i)
		text := htmlutil.SelectionText(cell.Find("label, strong").First())
		if text == "" {
			text = htmlutil.SelectionText(cell)
		}
		if text != "" {
			return text
		}
	}
	return ""
}

func gradeId(row *goquery.Selection) string {
	id := ""
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		id = QueryParam(href, "objectId")
		if id == "" {
			id = QueryParam(href, "gradeItemId")
		}
		return id == ""
	})
	if id == "" {
		if rowId, ok := row.Attr("data-objectid"); ok {
			id = rowId
		}
	}
	return id
}

func gradeScore(cells *goquery.Selection, columns []gradeColumn) GradeScore {
	score := GradeScore{}
	useHeaders := len(columns) == cells.Length()
	seenFraction := 0
	cells.Each(func(i int, cell *goquery.Selection) {
		text := htmlutil.SelectionText(cell)
		if text == "" {
			return
		}
		column := columnUnknown
		if useHeaders {
			column = columns[i]
		}
		if column == columnUnknown {
			switch {
			case fraction.MatchString(text) && seenFraction == 0:
				column = columnPoints
			case fraction.MatchString(text):
				column = columnWeight
			case percentage.MatchString(text):
				column = columnGrade
			}
		}
		switch column {
		case columnPoints:
			seenFraction++
			score.Points, score.TotalPoints = Fraction(text)
		case columnWeight:
			seenFraction++
			score.WeightAchieved, score.WeightTotal = Fraction(text)
		case columnGrade:
			score.Percentage = Percentage(text)
		}
	})
	if score.Percentage == nil && score.Points != nil && score.TotalPoints != nil && *score.TotalPoints > 0 {
		p := *score.Points / *score.TotalPoints * 100
		score.Percentage = &p
	}
	return score
}

func isDropped(row *goquery.Selection) bool {
	if strings.Contains(htmlutil.SelectionText(row), "Dropped") {
		return true
	}
	return row.Find(`img[alt*="Dropped"], img[title*="Dropped"], [title*="dropped"]`).Length() > 0
}

// Grades parses the grade table of a course. Rows are classified as:
//
//  1. only column headers                                  -> header, maps value columns
//  2. first cell is the empty indentation spacer           -> item of the current category
//  3. not indented, followed by an indented row            -> category
//  4. not indented otherwise                               -> uncategorized item
//
// A missing grade item id is logged and the item is kept without one.
func Grades(tel telemetry.API, raw string) (Gradebook, error) {
	doc, err := document(raw)
	if err != nil {
		return Gradebook{}, err
	}

	out := Gradebook{
		Categories:    []GradeCategory{},
		Uncategorized: []GradeItem{},
	}
	var columns []gradeColumn
	var current *GradeCategory

	rows := doc.Find("table tr")
	for i := 0; i < rows.Length(); i++ {
		row := rows.Eq(i)
		if isGradeHeader(row) {
			columns = nil
			headers := row.ChildrenFiltered("th")
			headers.Slice(1, headers.Length()).Each(func(_ int, th *goquery.Selection) {
				columns = append(columns, gradeColumnOf(htmlutil.SelectionText(th)))
			})
			continue
		}
		name := gradeName(row)
		if name == "" {
			continue
		}

		item := GradeItem{
			Id:    gradeId(row),
			Name:  name,
			Score: gradeScore(gradeValueCells(row), columns),
		}
		item.Score.IsDropped = isDropped(row)

		indented := isIndented(row)
		nextIndented := i+1 < rows.Length() && isIndented(rows.Eq(i+1))
		switch {
		case indented && current != nil:
			if item.Id == "" {
				tel.ReportWarning(report_parse_grades, "grade item without an id", name)
			}
			current.Items = append(current.Items, item)
		case !indented && nextIndented:
			out.Categories = append(out.Categories, GradeCategory{GradeItem: item, Items: []GradeItem{}})
			current = &out.Categories[len(out.Categories)-1]
		default:
			if item.Id == "" {
				tel.ReportWarning(report_parse_grades, "grade item without an id", name)
			}
			current = nil
			out.Uncategorized = append(out.Uncategorized, item)
		}
	}
	return out, nil
}

var statisticLabels = []struct {
	label string
	field func(*GradeStatistics) **float64
}{
	{"average", func(s *GradeStatistics) **float64 { return &s.Average }},
	{"minimum", func(s *GradeStatistics) **float64 { return &s.Minimum }},
	{"maximum", func(s *GradeStatistics) **float64 { return &s.Maximum }},
	{"mode", func(s *GradeStatistics) **float64 { return &s.Mode }},
	{"median", func(s *GradeStatistics) **float64 { return &s.Median }},
	{"standard deviation", func(s *GradeStatistics) **float64 { return &s.StandardDeviation }},
	{"count", func(s *GradeStatistics) **float64 { return &s.Count }},
	{"number of", func(s *GradeStatistics) **float64 { return &s.Count }},
}

// Statistics parses the class statistics page of a grade item, each row
// is a label cell followed by a value.
func Statistics(raw string) (GradeStatistics, error) {
	doc, err := document(raw)
	if err != nil {
		return GradeStatistics{}, err
	}
	stats := GradeStatistics{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(htmlutil.SelectionText(cells.First()))
		value := htmlutil.SelectionText(cells.Last())
		for _, l := range statisticLabels {
			if !strings.Contains(label, l.label) {
				continue
			}
			field := l.field(&stats)
			if *field != nil {
				return
			}
			v := Percentage(value)
			if v == nil {
				v, _ = Fraction(value)
			}
			if fields := strings.Fields(value); v == nil && len(fields) > 0 {
				v = parseNumber(fields[0])
			}
			*field = v
			return
		}
	})
	return stats, nil
}

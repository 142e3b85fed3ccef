package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/jedib0t/go-pretty/v6/table"
)

var converter = md.NewConverter("", true, nil)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Mon Jan 2 15:04")
}

func formatNumber(value *float64) string {
	if value == nil {
		return "-"
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", *value), "0"), ".")
}

func formatFraction(points, total *float64) string {
	if points == nil && total == nil {
		return "-"
	}
	return fmt.Sprintf("%s/%s", formatNumber(points), formatNumber(total))
}

func formatPercent(value *float64) string {
	if value == nil {
		return "-"
	}
	return formatNumber(value) + "%"
}

// markdown renders an html fragment, falling back to the plain text when
// conversion fails.
func markdown(html, text string) string {
	if html == "" {
		return text
	}
	out, err := converter.ConvertString(html)
	if err != nil {
		return text
	}
	return out
}

package parse

import (
	"strings"
	"time"

	"valence/internal/components/telemetry"
	"valence/internal/routes"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvents parses the LMS calendar subscription feed. Events whose
// start cannot be read are skipped, a missing end falls back to the start.
func CalendarEvents(tel telemetry.API, raw string, loc *time.Location) ([]CalendarEvent, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ics.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	out := []CalendarEvent{}
	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			start, err = event.GetAllDayStartAt()
		}
		if err != nil {
			tel.ReportWarning(report_parse_calendar, "event without a start", event.Id(), err)
			continue
		}
		end, err := event.GetEndAt()
		if err != nil {
			end = start
		}

		ev := CalendarEvent{
			Uid:   event.Id(),
			Start: start.In(loc),
			End:   end.In(loc),
		}
		if p := event.GetProperty(ics.ComponentPropertySummary); p != nil {
			ev.Title = p.Value
		}
		if p := event.GetProperty(ics.ComponentPropertyDescription); p != nil {
			ev.Description = strings.ReplaceAll(p.Value, `\n`, "\n")
		}
		if p := event.GetProperty(ics.ComponentPropertyUrl); p != nil {
			ev.Url = p.Value
			if m, ok := routes.Match(p.Value); ok {
				ev.CourseId = m.Params[routes.ParamCourse]
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

package parse

import (
	"testing"
	"time"

	"valence/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestAlerts(t *testing.T) {
	raw := `<ul class="d2l-datalist">
		<li class="d2l-datalist-item"><div class="d2l-datalist-item-content">
			<img alt="Announcement" src="/d2l/img/lp/news.svg">
			<a class="d2l-link" href="/d2l/le/news/214416/381822/view?ou=214416">Welcome</a>
			<div class="d2l-textblock d2l-textblock-secondary">ECE 150 - Fundamentals</div>
			<div class="d2l-textblock">posted by Jane</div>
			<abbr class="d2l-fuzzydate" data-date="1704463200000" title="January 5, 2024 9:00 AM">2 days ago</abbr>
		</div></li>
		<li class="d2l-datalist-item">
			<a href="/d2l/lms/grades/my_grades/main.d2l?ou=214416">Grade released</a>
			<div class="d2l-textblock">ECE 150</div>
			<abbr class="d2l-fuzzydate" title="Jan 6, 2024 10:00 AM">yesterday</abbr>
		</li>
		<li class="d2l-datalist-item"><a href="/d2l/home">No time</a></li>
	</ul>`

	tel := telemetry.NewRecorder()
	alerts, err := Alerts(tel, raw, testLoc)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	require.True(t, tel.Has("warning", report_parse_alerts))

	require.Equal(t, "Welcome", alerts[0].Title)
	require.Equal(t, "/d2l/le/news/214416/381822/view?ou=214416", alerts[0].Link)
	require.Equal(t, "ECE 150 - Fundamentals", alerts[0].Course)
	require.Equal(t, "posted by Jane", alerts[0].Details)
	require.Equal(t, "Announcement", alerts[0].Icon)
	require.True(t, time.UnixMilli(1704463200000).Equal(alerts[0].Timestamp))

	require.Equal(t, "ECE 150", alerts[1].Course)
	require.Equal(t, "", alerts[1].Details)
	require.True(t, time.Date(2024, 1, 6, 10, 0, 0, 0, testLoc).Equal(alerts[1].Timestamp))
}

package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("EST", -5*60*60)

func requireTime(t *testing.T, expected time.Time, actual *time.Time) {
	t.Helper()
	require.NotNil(t, actual)
	require.True(t, expected.Equal(*actual), "expected %v, got %v", expected, *actual)
}

func TestDueDate(t *testing.T) {
	due := DueDate("Due on Jan 5, 2024 11:59 PM", testLoc)
	requireTime(t, time.Date(2024, 1, 5, 23, 59, 0, 0, testLoc), due)

	due = DueDate("Lab 1   Due on  Feb 12, 2024 9:05 AM  Available on Jan 1, 2024 12:00 AM", testLoc)
	requireTime(t, time.Date(2024, 2, 12, 9, 5, 0, 0, testLoc), due)

	require.Nil(t, DueDate("Due whenever", testLoc))
	require.Nil(t, DueDate("Available until Jan 1, 2024 12:00 AM", testLoc))
}

func TestAvailability(t *testing.T) {
	start, end := Availability("Available on Jan 1, 2024 12:00 AM until Jan 31, 2024 11:59 PM", testLoc)
	requireTime(t, time.Date(2024, 1, 1, 0, 0, 0, 0, testLoc), start)
	requireTime(t, time.Date(2024, 1, 31, 23, 59, 0, 0, testLoc), end)

	start, end = Availability("Available until Feb 2, 2024 5:00 PM", testLoc)
	require.Nil(t, start)
	requireTime(t, time.Date(2024, 2, 2, 17, 0, 0, 0, testLoc), end)

	start, end = Availability("Available on Mar 3, 2024 8:00 AM", testLoc)
	requireTime(t, time.Date(2024, 3, 3, 8, 0, 0, 0, testLoc), start)
	require.Nil(t, end)

	start, end = Availability("Always open", testLoc)
	require.Nil(t, start)
	require.Nil(t, end)
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		text     string
		expected time.Time
	}{
		{text: "Jan 5, 2024 11:59 PM", expected: time.Date(2024, 1, 5, 23, 59, 0, 0, testLoc)},
		{text: "January 5, 2024 11:59 PM", expected: time.Date(2024, 1, 5, 23, 59, 0, 0, testLoc)},
		{text: "Jan 5, 2024", expected: time.Date(2024, 1, 5, 0, 0, 0, 0, testLoc)},
	}
	for _, c := range cases {
		requireTime(t, c.expected, ParseDate(c.text, testLoc))
	}
	require.Nil(t, ParseDate("yesterday", testLoc))
}

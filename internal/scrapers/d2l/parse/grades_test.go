package parse

import (
	"testing"

	"valence/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const gradesFixture = `<html><body>
<table class="d2l-table d2l-grid">
	<tr>
		<th scope="col">Grade Item</th><th scope="col">Points</th>
		<th scope="col">Weight Achieved</th><th scope="col">Grade</th>
	</tr>
	<tr>
		<th scope="row"><label>Assignments</label></th>
		<td></td>
		<td>16 / 20</td>
		<td>80 %</td>
	</tr>
	<tr>
		<td></td>
		<th scope="row">
			<label>Assignment 1</label>
			<a href="/d2l/lms/grades/my_grades/individual_grade_details.d2l?objectId=1001&amp;ou=214416">details</a>
		</th>
		<td>8 / 10</td>
		<td>8 / 10</td>
		<td>80 %</td>
	</tr>
	<tr>
		<td></td>
		<th scope="row"><label>Assignment 2</label> <img src="/d2l/img/dropped.svg" alt="Dropped"></th>
		<td>5 / 10</td>
		<td>0 / 10</td>
		<td>50 %</td>
	</tr>
	<tr>
		<th scope="row">
			<label>Participation</label>
			<a href="/d2l/lms/grades/my_grades/individual_grade_details.d2l?objectId=1003&amp;ou=214416">details</a>
		</th>
		<td>9 / 10</td>
		<td>9 / 10</td>
		<td>90 %</td>
	</tr>
</table>
</body></html>`

func TestGrades(t *testing.T) {
	tel := telemetry.NewRecorder()
	grades, err := Grades(tel, gradesFixture)
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, grades.Categories, 1)
	category := grades.Categories[0]
	require.Equal(t, "Assignments", category.Name)
	require.Nil(t, category.Score.Points)
	require.Equal(t, 16.0, *category.Score.WeightAchieved)
	require.Equal(t, 20.0, *category.Score.WeightTotal)
	require.Equal(t, 80.0, *category.Score.Percentage)

	require.Len(t, category.Items, 2)
	a1 := category.Items[0]
	require.Equal(t, "1001", a1.Id)
	require.Equal(t, "Assignment 1", a1.Name)
	require.Equal(t, 8.0, *a1.Score.Points)
	require.Equal(t, 10.0, *a1.Score.TotalPoints)
	require.Equal(t, 8.0, *a1.Score.WeightAchieved)
	require.Equal(t, 80.0, *a1.Score.Percentage)
	require.False(t, a1.Score.IsDropped)

	a2 := category.Items[1]
	require.Equal(t, "", a2.Id)
	require.True(t, a2.Score.IsDropped)
	require.True(t, tel.Has("warning", report_parse_grades))

	require.Len(t, grades.Uncategorized, 1)
	require.Equal(t, "1003", grades.Uncategorized[0].Id)
	require.Equal(t, 90.0, *grades.Uncategorized[0].Score.Percentage)
}

func TestGradesWithoutHeaders(t *testing.T) {
	grades, err := Grades(telemetry.NewRecorder(), `<table>
		<tr><th scope="row"><label>Quiz</label><a href="x.d2l?objectId=7">d</a></th><td>3 / 4</td><td>75 %</td></tr>
	</table>`)
	require.NoError(t, err)
	require.Empty(t, grades.Categories)
	require.Len(t, grades.Uncategorized, 1)
	item := grades.Uncategorized[0]
	require.Equal(t, 3.0, *item.Score.Points)
	require.Equal(t, 75.0, *item.Score.Percentage)
	require.Nil(t, item.Score.WeightAchieved)
}

func TestStatistics(t *testing.T) {
	stats, err := Statistics(`<table>
		<tr><th>Class Average</th><td>75.5 %</td></tr>
		<tr><th>Minimum</th><td>40 %</td></tr>
		<tr><th>Maximum</th><td>100 %</td></tr>
		<tr><th>Standard Deviation</th><td>12.25</td></tr>
		<tr><th>Number of Users</th><td>120</td></tr>
	</table>`)
	require.NoError(t, err)
	require.Equal(t, 75.5, *stats.Average)
	require.Equal(t, 40.0, *stats.Minimum)
	require.Equal(t, 100.0, *stats.Maximum)
	require.Equal(t, 12.25, *stats.StandardDeviation)
	require.Equal(t, 120.0, *stats.Count)
	require.Nil(t, stats.Median)
}

package parse

import (
	"testing"
	"time"

	"valence/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const assignmentsFixture = `<html><body>
<table class="d2l-table" id="z_b">
	<tr>
		<th scope="col">Folder</th><th scope="col">Completion Status</th><th scope="col">Score</th>
		<th scope="col">Evaluation Status</th><th scope="col">Due Date</th>
	</tr>
	<tr><th scope="row" colspan="5"><strong>Labs</strong></th></tr>
	<tr>
		<th scope="row">
			<div><a class="d2l-link" href="/d2l/lms/dropbox/user/folder_submit_files.d2l?db=95117&amp;grpid=0&amp;isprv=0&amp;bp=0&amp;ou=214416">Lab 1</a></div>
			<div class="d2l-folderdates-wrapper"><span>Available on Jan 1, 2024 12:00 AM until Jan 31, 2024 11:59 PM</span></div>
		</th>
		<td><a href="/d2l/lms/dropbox/user/folder_submit_files.d2l?db=95117&amp;ou=214416">1 Submission, 1 File</a></td>
		<td>8 / 10 - 80 %</td>
		<td><a href="/d2l/lms/dropbox/user/folder_user_view_feedback.d2l?db=95117&amp;grpid=0&amp;isprv=0&amp;bp=0&amp;ou=214416">Read</a></td>
		<td>Jan 5, 2024 11:59 PM</td>
	</tr>
	<tr><td></td><td colspan="4"><a href="/d2l/common/viewFile.d2lfile/Database/123/lab1.pdf">lab1.pdf</a></td></tr>
	<tr>
		<th scope="row">
			<a class="d2l-link" href="/d2l/lms/dropbox/user/folder_submit_files.d2l?db=95118&amp;grpid=42&amp;ou=214416">Lab 2</a>
			<div class="d2l-folderdates-wrapper"><span>Due on Feb 5, 2024 11:59 PM</span></div>
		</th>
		<td><a href="/d2l/lms/dropbox/user/folder_submit_files.d2l?db=95118&amp;ou=214416">1 Submission, 1 File</a></td>
		<td>- / 10</td>
		<td></td>
		<td></td>
	</tr>
	<tr><th scope="row" colspan="5"><strong>Essays</strong></th></tr>
	<tr>
		<th scope="row">
			<strong>Final Submission Essay</strong>
			<div class="d2l-folderdates-wrapper"><span>Access restricted before availability starts</span></div>
		</th>
		<td>Not Submitted</td>
		<td></td>
		<td></td>
		<td></td>
	</tr>
</table>
</body></html>`

func TestAssignments(t *testing.T) {
	tel := telemetry.NewRecorder()
	assignments, err := Assignments(tel, assignmentsFixture, testLoc)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, assignments, 3)

	lab1 := assignments[0]
	require.Equal(t, "Lab 1", lab1.Name)
	require.Equal(t, "95117", lab1.Id)
	require.Equal(t, "", lab1.GroupId)
	require.Equal(t, []string{"Labs"}, lab1.Tags)
	require.Equal(t, AssignmentReturned, lab1.Status)
	require.Contains(t, lab1.FeedbackUrl, "folder_user_view_feedback.d2l?db=95117")
	require.Equal(t, 8.0, *lab1.Points)
	require.Equal(t, 10.0, *lab1.TotalPoints)
	require.Equal(t, 80.0, *lab1.GradePercentage)
	requireTime(t, time.Date(2024, 1, 1, 0, 0, 0, 0, testLoc), lab1.StartDate)
	requireTime(t, time.Date(2024, 1, 31, 23, 59, 0, 0, testLoc), lab1.EndDate)
	requireTime(t, time.Date(2024, 1, 5, 23, 59, 0, 0, testLoc), lab1.DueDate)

	lab2 := assignments[1]
	require.Equal(t, "95118", lab2.Id)
	require.Equal(t, "42", lab2.GroupId)
	require.Equal(t, AssignmentSubmitted, lab2.Status)
	require.Nil(t, lab2.Points)
	requireTime(t, time.Date(2024, 2, 5, 23, 59, 0, 0, testLoc), lab2.DueDate)

	essay := assignments[2]
	require.Equal(t, "Final Submission Essay", essay.Name)
	require.Equal(t, "", essay.Id)
	require.Equal(t, []string{"Essays"}, essay.Tags)
	require.Equal(t, AssignmentNotSubmitted, essay.Status)
	require.Equal(t, "Access restricted before availability starts", essay.AccessNote)
}

func TestAssignmentStatusPrecedence(t *testing.T) {
	cases := []struct {
		name     string
		cells    string
		expected AssignmentStatus
	}{
		{
			name:     "submission text",
			cells:    `<td>2 Submissions, 2 Files</td>`,
			expected: AssignmentSubmitted,
		},
		{
			name:     "feedback link wins over submission text",
			cells:    `<td>1 Submission, 1 File</td><td><a href="folder_user_view_feedback.d2l?db=1&amp;ou=2">Read</a></td>`,
			expected: AssignmentReturned,
		},
		{
			name:     "feedback link alone",
			cells:    `<td>Not Submitted</td><td><a href="folder_user_view_feedback.d2l?db=1&amp;ou=2">Read</a></td>`,
			expected: AssignmentReturned,
		},
		{
			name:     "nothing",
			cells:    `<td>Not Submitted</td>`,
			expected: AssignmentNotSubmitted,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw := `<table><tr><th scope="row"><a href="folder_submit_files.d2l?db=1&amp;ou=2">A</a></th>` + c.cells + `</tr></table>`
			assignments, err := Assignments(telemetry.NewRecorder(), raw, testLoc)
			require.NoError(t, err)
			require.Len(t, assignments, 1)
			require.Equal(t, c.expected, assignments[0].Status)
		})
	}
}

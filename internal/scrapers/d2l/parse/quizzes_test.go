package parse

import (
	"testing"
	"time"

	"valence/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const quizzesFixture = `<html><body>
<table class="d2l-table">
	<tr><th scope="col">Current Quizzes</th><th scope="col">Evaluation Status</th><th scope="col">Attempts</th></tr>
	<tr><th scope="row" colspan="3"><strong>Midterms</strong></th></tr>
	<tr>
		<th scope="row">
			<a class="d2l-link" href="javascript://" onclick="QuizSummary.GoToQuiz( 64024 ); return false;">Quiz 1</a>
			<div><span>Due on Jan 5, 2024 11:59 PM</span></div>
		</th>
		<td><a href="/d2l/lms/quizzing/user/quiz_submissions.d2l?qi=64024&amp;ou=214416">Feedback: On Attempt</a></td>
		<td>1 / 3</td>
	</tr>
	<tr>
		<th scope="row">
			<a class="d2l-link" href="/d2l/lms/quizzing/user/quiz_summary.d2l?qi=64025&amp;ou=214416">Quiz 2</a>
			<img src="/d2l/img/lp/quizzing/inprogress.svg" alt="In Progress">
		</th>
		<td>Not evaluated</td>
		<td>1 / Unlimited</td>
	</tr>
	<tr>
		<th scope="row"><a href="javascript://">Quiz 3</a></th>
		<td></td>
		<td>0 / 1</td>
	</tr>
	<tr>
		<th scope="row"><a href="/d2l/lms/quizzing/user/quiz_summary.d2l?qi=64026&amp;ou=214416">Quiz 4</a></th>
		<td></td>
		<td>0 / 1</td>
	</tr>
</table>
</body></html>`

func TestQuizzes(t *testing.T) {
	tel := telemetry.NewRecorder()
	quizzes, err := Quizzes(tel, quizzesFixture, "214416", testLoc)
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, quizzes, 3, "quizzes without an id are dropped")
	require.True(t, tel.Has("warning", report_parse_quizzes))

	q1 := quizzes[0]
	require.Equal(t, "Quiz 1", q1.Name)
	require.Equal(t, "64024", q1.Id)
	require.Equal(t, QuizCompleted, q1.Status)
	require.Equal(t, 1, *q1.Attempts)
	require.Equal(t, 3, *q1.AttemptsAllowed)
	require.Equal(t, "/d2l/lms/quizzing/user/quiz_submissions.d2l?qi=64024&ou=214416", q1.SubmissionsUrl)
	requireTime(t, time.Date(2024, 1, 5, 23, 59, 0, 0, testLoc), q1.DueDate)

	q2 := quizzes[1]
	require.Equal(t, "64025", q2.Id)
	require.Equal(t, QuizInProgress, q2.Status)
	require.Equal(t, 1, *q2.Attempts)
	require.Nil(t, q2.AttemptsAllowed)
	require.Equal(t, "/d2l/lms/quizzing/user/quiz_submissions.d2l?ou=214416&qi=64025", q2.SubmissionsUrl)

	q4 := quizzes[2]
	require.Equal(t, "64026", q4.Id)
	require.Equal(t, QuizNotStarted, q4.Status)
}

func TestQuizAttemptsColumn(t *testing.T) {
	quiz := `<th scope="row"><a href="/d2l/lms/quizzing/user/quiz_summary.d2l?qi=64024&amp;ou=214416">Quiz 1</a></th>`
	cases := []struct {
		name     string
		table    string
		attempts int
		allowed  int
	}{
		{
			name: "score after attempts",
			table: `<tr><th scope="col">Quiz</th><th scope="col">Attempts</th><th scope="col">Score</th></tr>
				<tr>` + quiz + `<td>1 / 3</td><td>8 / 10</td></tr>`,
			attempts: 1,
			allowed:  3,
		},
		{
			name: "score before attempts",
			table: `<tr><th scope="col">Quiz</th><th scope="col">Score</th><th scope="col">Attempts Used</th></tr>
				<tr>` + quiz + `<td>8 / 10</td><td>2 / 5</td></tr>`,
			attempts: 2,
			allowed:  5,
		},
		{
			name:     "no header",
			table:    `<tr>` + quiz + `<td>8 / 10</td><td>0 / 2</td></tr>`,
			attempts: 0,
			allowed:  2,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			quizzes, err := Quizzes(telemetry.NewRecorder(), "<table>"+test.table+"</table>", "214416", testLoc)
			if err != nil {
				t.Fatal(err)
			}
			require.Len(t, quizzes, 1)
			require.Equal(t, test.attempts, *quizzes[0].Attempts)
			require.Equal(t, test.allowed, *quizzes[0].AttemptsAllowed)
		})
	}
}

func TestQuizStatus(t *testing.T) {
	one := 1
	cases := []struct {
		feedback   bool
		inProgress bool
		attempts   *int
		expected   QuizStatus
	}{
		{feedback: true, inProgress: false, expected: QuizCompleted},
		{feedback: false, inProgress: true, expected: QuizInProgress},
		{feedback: true, inProgress: true, expected: QuizRetryInProgress},
		{feedback: false, inProgress: false, expected: QuizNotStarted},
		{feedback: false, inProgress: false, attempts: &one, expected: QuizCompleted},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, quizStatus(c.feedback, c.inProgress, c.attempts))
	}
}

func TestQuizSubmissions(t *testing.T) {
	raw := `<table>
		<tr><th scope="col">Attempt</th><th scope="col">Score</th><th scope="col">Submitted</th></tr>
		<tr>
			<td><a href="/d2l/lms/quizzing/user/quiz_submissions_attempt.d2l?isprv=&amp;qi=64024&amp;ai=555&amp;ou=214416">Attempt 1</a></td>
			<td>8 / 10 - 80 %</td>
			<td>Jan 5, 2024 10:00 AM</td>
		</tr>
		<tr>
			<td><a href="/d2l/lms/quizzing/user/quiz_submissions_attempt.d2l?isprv=&amp;qi=64024&amp;ai=556&amp;ou=214416">Attempt 2</a></td>
			<td>10 / 10 - 100 %</td>
			<td>Jan 6, 2024 10:00 AM (Submitted 5 minutes late)</td>
		</tr>
	</table>`

	subs, err := QuizSubmissions(telemetry.NewRecorder(), raw, "64024")
	require.NoError(t, err)
	require.Len(t, subs, 2)

	require.Equal(t, 1, subs[0].AttemptNumber)
	require.Equal(t, "555", subs[0].AttemptId)
	require.Equal(t, "64024", subs[0].QuizId)
	require.Equal(t, 80.0, *subs[0].GradePercentage)
	require.Equal(t, "", subs[0].LateNote)

	require.Equal(t, 2, subs[1].AttemptNumber)
	require.Equal(t, "556", subs[1].AttemptId)
	require.Equal(t, 10.0, *subs[1].Points)
	require.Contains(t, subs[1].LateNote, "5 minutes late")
}

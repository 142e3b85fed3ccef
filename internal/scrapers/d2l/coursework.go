package d2l

import (
	"context"
	"fmt"
	"net/url"
	"valence/internal/routes"
	"valence/internal/scrapers/d2l/parse"
)

const (
	report_client_assignments      = "client.assignments"
	report_client_quizzes          = "client.quizzes"
	report_client_quiz_submissions = "client.quiz-submissions"
	report_client_grades           = "client.grades"
	report_client_grade_statistics = "client.grade-statistics"
	report_client_announcements    = "client.announcements"
	report_client_calendar         = "client.calendar"
)

const gradeStatisticsPath = "/d2l/lms/grades/my_grades/ajax/gradeStatistics.d2l"

// page fetches the html of an LMS page identified by its route kind.
func (c *Client) page(ctx context.Context, report string, kind routes.Kind, params routes.Params) (string, error) {
	target, ok := routes.ExternalPath(kind, params)
	if !ok {
		err := fmt.Errorf("cannot build %s url from %v", kind, params)
		c.tel.ReportBroken(report, err)
		return "", err
	}
	res, err := c.get(ctx, target)
	if err != nil {
		c.tel.ReportBroken(report, err)
		return "", err
	}
	return res.String(), nil
}

func (c *Client) Assignments(ctx context.Context, courseId string) ([]parse.Assignment, error) {
	html, err := c.page(ctx, report_client_assignments, routes.KindAssignments, routes.Params{
		routes.ParamCourse: courseId,
	})
	if err != nil {
		return nil, err
	}
	return parse.Assignments(c.tel, html, c.Timezone(ctx))
}

func (c *Client) Quizzes(ctx context.Context, courseId string) ([]parse.Quiz, error) {
	html, err := c.page(ctx, report_client_quizzes, routes.KindQuizzes, routes.Params{
		routes.ParamCourse: courseId,
	})
	if err != nil {
		return nil, err
	}
	return parse.Quizzes(c.tel, html, courseId, c.Timezone(ctx))
}

func (c *Client) QuizSubmissions(ctx context.Context, courseId, quizId string) ([]parse.QuizSubmission, error) {
	html, err := c.page(ctx, report_client_quiz_submissions, routes.KindQuizSubmissions, routes.Params{
		routes.ParamCourse: courseId,
		routes.ParamQuiz:   quizId,
	})
	if err != nil {
		return nil, err
	}
	return parse.QuizSubmissions(c.tel, html, quizId)
}

func (c *Client) Grades(ctx context.Context, courseId string) (parse.Gradebook, error) {
	html, err := c.page(ctx, report_client_grades, routes.KindGrades, routes.Params{
		routes.ParamCourse: courseId,
	})
	if err != nil {
		return parse.Gradebook{}, err
	}
	return parse.Grades(c.tel, html)
}

// GradeStatistics fetches the class statistics of a single grade item.
func (c *Client) GradeStatistics(ctx context.Context, courseId, gradeItemId string) (parse.GradeStatistics, error) {
	query := url.Values{}
	query.Set("ou", courseId)
	query.Set("objectId", gradeItemId)
	res, err := c.get(ctx, gradeStatisticsPath+"?"+query.Encode())
	if err != nil {
		c.tel.ReportBroken(report_client_grade_statistics, err, courseId, gradeItemId)
		return parse.GradeStatistics{}, err
	}
	return parse.Statistics(res.String())
}

func (c *Client) Announcements(ctx context.Context, courseId string) ([]parse.Announcement, error) {
	html, err := c.page(ctx, report_client_announcements, routes.KindAnnouncements, routes.Params{
		routes.ParamCourse: courseId,
	})
	if err != nil {
		return nil, err
	}
	announcements, err := parse.Announcements(c.tel, html, c.Timezone(ctx))
	if err != nil {
		return nil, err
	}
	for i := range announcements {
		announcements[i].CourseId = courseId
	}
	return announcements, nil
}

// Calendar fetches and parses an ics subscription feed, feedUrl may be
// relative to the LMS origin.
func (c *Client) Calendar(ctx context.Context, feedUrl string) ([]parse.CalendarEvent, error) {
	res, err := c.get(ctx, feedUrl)
	if err != nil {
		c.tel.ReportBroken(report_client_calendar, err)
		return nil, err
	}
	return parse.CalendarEvents(c.tel, res.String(), c.Timezone(ctx))
}

package d2l

import (
	"context"
	"net/url"
	"valence/internal/scrapers/d2l/parse"

	"golang.org/x/sync/errgroup"
)

const report_client_enrollments = "client.enrollments"

// maxEnrollmentPages bounds how many "next" links are followed.
const maxEnrollmentPages = 50

func enrollmentError(step EnrollmentStep, target string, err error) *EnrollmentFetchError {
	return &EnrollmentFetchError{Step: step, Url: target, Err: err}
}

func collectionUrl(enrollmentsUrl string) string {
	u, err := url.Parse(enrollmentsUrl)
	if err != nil {
		return enrollmentsUrl
	}
	query := u.Query()
	if query.Get("pageSize") == "" {
		query.Set("pageSize", "100")
	}
	if query.Get("orgUnitTypeId") == "" {
		query.Set("orgUnitTypeId", "3")
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// Enrollments lists the courses the user is enrolled in.
//
// The home document carries the enrollments api url, the collection it
// points to is paged through "next" links, and each enrollment is resolved
// to its organization which holds the course details. Missing markers in
// the home document fail with ErrEnrollmentUrl or ErrUserId, any other
// failure is an *EnrollmentFetchError naming the hop.
func (c *Client) Enrollments(ctx context.Context) ([]parse.Course, error) {
	base, err := c.BaseDocument(ctx)
	if err != nil {
		return nil, enrollmentError(StepBaseDocument, homePath, err)
	}
	userId, enrollmentsUrl, err := parse.EnrollmentMarkers(base)
	if err != nil {
		c.tel.ReportBroken(report_client_enrollments, err)
		return nil, err
	}
	c.tel.ReportDebug("fetch enrollments", userId)

	_, err = c.Session.Token(ctx, false)
	if err != nil {
		return nil, enrollmentError(StepToken, tokenPath, err)
	}

	var enrollments []string
	organizations := map[string]string{}
	next := collectionUrl(enrollmentsUrl)
	for page := 0; next != "" && page < maxEnrollmentPages; page++ {
		res, err := c.getAuthorized(ctx, next)
		if err != nil {
			c.tel.ReportBroken(report_client_enrollments, err)
			return nil, enrollmentError(StepCollection, next, err)
		}
		collection, err := parse.EnrollmentCollection(res.Body())
		if err != nil {
			c.tel.ReportBroken(report_client_enrollments, err)
			return nil, enrollmentError(StepCollection, next, err)
		}
		enrollments = append(enrollments, collection.Enrollments...)
		for k, v := range collection.Organizations {
			organizations[k] = v
		}
		next = collection.Next
	}

	courses := make([]parse.Course, len(enrollments))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for i, enrollment := range enrollments {
		group.Go(func() error {
			course, err := c.organization(groupCtx, enrollment, organizations[enrollment])
			if err != nil {
				return err
			}
			courses[i] = course
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		c.tel.ReportBroken(report_client_enrollments, err)
		return nil, err
	}
	return courses, nil
}

func (c *Client) organization(ctx context.Context, enrollment, organization string) (parse.Course, error) {
	if organization == "" {
		res, err := c.getAuthorized(ctx, enrollment)
		if err != nil {
			return parse.Course{}, enrollmentError(StepEnrollment, enrollment, err)
		}
		organization, err = parse.EnrollmentOrganization(res.Body())
		if err != nil {
			return parse.Course{}, enrollmentError(StepEnrollment, enrollment, err)
		}
	}

	res, err := c.getAuthorized(ctx, organization)
	if err != nil {
		return parse.Course{}, enrollmentError(StepOrganization, organization, err)
	}
	course, err := parse.Organization(res.Body())
	if err != nil {
		return parse.Course{}, enrollmentError(StepOrganization, organization, err)
	}
	return course, nil
}

// ActiveCourses is Enrollments without the courses that are not running
// at the current time.
func (c *Client) ActiveCourses(ctx context.Context) ([]parse.Course, error) {
	courses, err := c.Enrollments(ctx)
	if err != nil {
		return nil, err
	}
	now := c.Session.time.Now()
	out := []parse.Course{}
	for _, course := range courses {
		if course.ActiveAt(now) {
			out = append(out, course)
		}
	}
	return out, nil
}

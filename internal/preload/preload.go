package preload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"valence/internal/cache"
	"valence/internal/components/assert"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("valence.internal.preload")
	meter  = otel.Meter("valence.internal.preload")
)

const (
	report_preloader_enrollments = "preloader.enrollments"
	report_preloader_course      = "preloader.course"
)

// InitialFraction is the share of the progress given to the enrollment
// list, the courses split the rest evenly.
const InitialFraction = 0.1

// Source is where preloaded data comes from, *d2l.Client implements it.
type Source interface {
	Enrollments(ctx context.Context) ([]parse.Course, error)
	ContentTree(ctx context.Context, courseId string) ([]parse.ModuleNode, error)
	Announcements(ctx context.Context, courseId string) ([]parse.Announcement, error)
	Assignments(ctx context.Context, courseId string) ([]parse.Assignment, error)
	Quizzes(ctx context.Context, courseId string) ([]parse.Quiz, error)
	Grades(ctx context.Context, courseId string) (parse.Gradebook, error)
}

type Preloader struct {
	source Source
	cache  *cache.Cache
	tel    telemetry.API

	failedCourses metric.Int64Counter
}

func NewPreloader(source Source, c *cache.Cache, tel telemetry.API) (*Preloader, error) {
	assert.NotNil(source)
	assert.NotNil(c)
	assert.NotNil(tel)

	failedCourses, err := meter.Int64Counter(
		"preload_failed_courses_total",
		metric.WithDescription("The total amount of courses that failed to preload."),
	)
	if err != nil {
		return nil, err
	}
	return &Preloader{
		source:        source,
		cache:         c,
		tel:           telemetry.NewScopedAPI("preload", tel),
		failedCourses: failedCourses,
	}, nil
}

// progress only ever moves forward, every report happens under its lock so
// callers observe a non-decreasing sequence.
type progress struct {
	mu       sync.Mutex
	current  float64
	step     float64
	settled  int
	total    int
	callback func(float64)
}

func (p *progress) report(value float64) {
	if value > 1 {
		value = 1
	}
	if value < p.current {
		value = p.current
	}
	p.current = value
	if p.callback != nil {
		p.callback(value)
	}
}

func (p *progress) start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	if total == 0 {
		p.report(1)
		return
	}
	p.step = (1 - InitialFraction) / float64(total)
	p.report(InitialFraction)
}

func (p *progress) settle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled++
	if p.settled == p.total {
		p.report(1)
		return
	}
	p.report(InitialFraction + float64(p.settled)*p.step)
}

// PreloadAll fills the cache with everything a course view needs.
//
// The enrollment list comes first, then every course is loaded in its own
// goroutine. A course that fails is reported and still advances the
// progress, only a failure to list the enrollments is returned.
func (p *Preloader) PreloadAll(ctx context.Context, onProgress func(float64)) error {
	ctx, span := tracer.Start(ctx, "preload:all")
	defer span.End()

	prog := &progress{callback: onProgress}

	courses, err := cache.Fetch(ctx, p.cache, cache.CoursesKey(), p.source.Enrollments, nil)
	if err != nil {
		p.tel.ReportBroken(report_preloader_enrollments, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list enrollments")
		return fmt.Errorf("preload enrollments: %w", err)
	}
	span.SetAttributes(attribute.Int("courses", len(courses)))
	prog.start(len(courses))

	var wg sync.WaitGroup
	for _, course := range courses {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer prog.settle()

			err := p.PreloadCourse(ctx, course.Id)
			if err != nil {
				p.tel.ReportWarning(report_preloader_course, err, course.Id)
				p.failedCourses.Add(ctx, 1)
			}
		}()
	}
	wg.Wait()
	return nil
}

// PreloadCourse loads every resource of a course, a failing resource does
// not stop the others.
func (p *Preloader) PreloadCourse(ctx context.Context, courseId string) error {
	ctx, span := tracer.Start(ctx, "preload:course")
	defer span.End()
	span.SetAttributes(attribute.String("course_id", courseId))

	var errs []error
	record := func(resource string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", resource, err))
		}
	}

	_, err := cache.Fetch(ctx, p.cache, cache.ContentTreeKey(courseId), func(ctx context.Context) ([]parse.ModuleNode, error) {
		return p.source.ContentTree(ctx, courseId)
	}, nil)
	record("content tree", err)

	_, err = cache.Fetch(ctx, p.cache, cache.AnnouncementsKey(courseId), func(ctx context.Context) ([]parse.Announcement, error) {
		return p.source.Announcements(ctx, courseId)
	}, nil)
	record("announcements", err)

	_, err = cache.Fetch(ctx, p.cache, cache.AssignmentsKey(courseId), func(ctx context.Context) ([]parse.Assignment, error) {
		return p.source.Assignments(ctx, courseId)
	}, nil)
	record("assignments", err)

	_, err = cache.Fetch(ctx, p.cache, cache.QuizzesKey(courseId), func(ctx context.Context) ([]parse.Quiz, error) {
		return p.source.Quizzes(ctx, courseId)
	}, nil)
	record("quizzes", err)

	_, err = cache.Fetch(ctx, p.cache, cache.GradesKey(courseId), func(ctx context.Context) (parse.Gradebook, error) {
		return p.source.Grades(ctx, courseId)
	}, nil)
	record("grades", err)

	err = errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to preload course")
		return fmt.Errorf("preload course %s: %w", courseId, err)
	}
	return nil
}

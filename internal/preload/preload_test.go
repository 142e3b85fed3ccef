package preload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"valence/internal/cache"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
}

func (s *memoryStore) Get(_ context.Context, key string) (cache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return cache.Entry{}, cache.ErrNotFound
	}
	return entry, nil
}

func (s *memoryStore) Put(_ context.Context, entry cache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]cache.Entry{}
	return nil
}

// fakeSource fails every resource of the courses in failing.
type fakeSource struct {
	courses       []parse.Course
	failing       map[string]bool
	enrollmentErr error
}

var errCourse = errors.New("course unavailable")

func (s fakeSource) check(courseId string) error {
	if s.failing[courseId] {
		return errCourse
	}
	return nil
}

func (s fakeSource) Enrollments(context.Context) ([]parse.Course, error) {
	return s.courses, s.enrollmentErr
}

func (s fakeSource) ContentTree(_ context.Context, courseId string) ([]parse.ModuleNode, error) {
	return []parse.ModuleNode{{Id: "m-" + courseId, Title: "Week 1"}}, s.check(courseId)
}

func (s fakeSource) Announcements(_ context.Context, courseId string) ([]parse.Announcement, error) {
	return []parse.Announcement{{Id: "1", CourseId: courseId, Title: "Welcome"}}, s.check(courseId)
}

func (s fakeSource) Assignments(_ context.Context, courseId string) ([]parse.Assignment, error) {
	return []parse.Assignment{{Name: "Lab", Tags: []string{}, Status: parse.AssignmentNotSubmitted}}, s.check(courseId)
}

func (s fakeSource) Quizzes(_ context.Context, courseId string) ([]parse.Quiz, error) {
	return []parse.Quiz{}, s.check(courseId)
}

func (s fakeSource) Grades(_ context.Context, courseId string) (parse.Gradebook, error) {
	return parse.Gradebook{Categories: []parse.GradeCategory{}, Uncategorized: []parse.GradeItem{}}, s.check(courseId)
}

func newCache() *cache.Cache {
	return cache.New(&memoryStore{entries: map[string]cache.Entry{}}, nil, telemetry.NewRecorder())
}

func TestPreloadProgress(t *testing.T) {
	cases := []struct {
		courses int
		failing int
	}{
		{courses: 0},
		{courses: 1},
		{courses: 5},
		{courses: 5, failing: 2},
		{courses: 7, failing: 7},
	}

	for _, test := range cases {
		t.Run(fmt.Sprintf("%d courses %d failing", test.courses, test.failing), func(t *testing.T) {
			source := fakeSource{failing: map[string]bool{}}
			for i := 0; i < test.courses; i++ {
				id := fmt.Sprint(1000 + i)
				source.courses = append(source.courses, parse.Course{Id: id, Name: "Course " + id})
				if i < test.failing {
					source.failing[id] = true
				}
			}

			tel := telemetry.NewRecorder()
			c := newCache()
			preloader, err := NewPreloader(source, c, tel)
			if err != nil {
				t.Fatal(err)
			}

			var steps []float64
			err = preloader.PreloadAll(context.Background(), func(value float64) {
				steps = append(steps, value)
			})
			require.NoError(t, err)

			require.NotEmpty(t, steps)
			for i := 1; i < len(steps); i++ {
				require.GreaterOrEqual(t, steps[i], steps[i-1])
			}
			for _, step := range steps {
				require.True(t, step >= 0 && step <= 1)
			}
			require.InDelta(t, 1, steps[len(steps)-1], 1e-9)
			if test.courses > 0 {
				require.Equal(t, InitialFraction, steps[0])
				require.Len(t, steps, test.courses+1)
			}

			require.Equal(t, test.failing > 0, tel.Has("warning", report_preloader_course))
			for _, course := range source.courses {
				_, ok := cache.Get[[]parse.Assignment](context.Background(), c, cache.AssignmentsKey(course.Id))
				require.Equal(t, !source.failing[course.Id], ok, course.Id)
			}
		})
	}
}

func TestPreloadEnrollmentFailure(t *testing.T) {
	failure := errors.New("session expired")
	preloader, err := NewPreloader(fakeSource{enrollmentErr: failure}, newCache(), telemetry.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}

	var steps []float64
	err = preloader.PreloadAll(context.Background(), func(value float64) {
		steps = append(steps, value)
	})
	require.ErrorIs(t, err, failure)
	require.Empty(t, steps)
}

func TestProgressClamps(t *testing.T) {
	var steps []float64
	p := &progress{callback: func(v float64) { steps = append(steps, v) }}
	p.start(3)
	p.settle()
	p.settle()
	p.settle()
	p.settle()

	require.Equal(t, InitialFraction, steps[0])
	require.InDelta(t, 0.4, steps[1], 1e-9)
	require.InDelta(t, 0.7, steps[2], 1e-9)
	require.Equal(t, 1.0, steps[3])
	require.Equal(t, 1.0, steps[4])
}

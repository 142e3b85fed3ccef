package notifications

import (
	"context"
	"time"
	"valence/internal/routes"
	"valence/internal/scrapers/d2l/parse"
)

type Type string

const (
	TypeAnnouncement Type = "announcement"
	TypeContent      Type = "content"
	TypeGrade        Type = "grade"
	TypeFeedback     Type = "feedback"
	TypeAssignment   Type = "assignment"
	TypeUnknown      Type = "unknown"
)

// Notification is an activity feed entry with its link translated into an
// internal route.
type Notification struct {
	Type     Type   `json:"type"`
	Title    string `json:"title"`
	Course   string `json:"course"`
	CourseId string `json:"courseId,omitempty"`
	// Link is the internal route, it is empty when the LMS link has none.
	Link         string    `json:"link,omitempty"`
	ExternalLink string    `json:"externalLink"`
	Timestamp    time.Time `json:"timestamp"`
	Details      string    `json:"details,omitempty"`
}

func typeOf(kind routes.Kind) Type {
	switch kind {
	case routes.KindAnnouncement, routes.KindAnnouncements:
		return TypeAnnouncement
	case routes.KindTopic, routes.KindModule, routes.KindContent:
		return TypeContent
	case routes.KindGrades:
		return TypeGrade
	case routes.KindAssignmentFeedback:
		return TypeFeedback
	case routes.KindAssignment, routes.KindAssignments,
		routes.KindQuiz, routes.KindQuizzes, routes.KindQuizSubmissions:
		return TypeAssignment
	}
	return TypeUnknown
}

// ModuleLookup finds the module holding a topic.
type ModuleLookup interface {
	ModuleOf(ctx context.Context, courseId, topicId string) (string, bool)
}

// convert maps an alert to a notification. Topic links need the module id
// for their route, it is only looked up when lookup is not nil.
func convert(ctx context.Context, lookup ModuleLookup, alert parse.Alert) Notification {
	n := Notification{
		Type:         TypeUnknown,
		Title:        alert.Title,
		Course:       alert.Course,
		ExternalLink: alert.Link,
		Timestamp:    alert.Timestamp,
		Details:      alert.Details,
	}

	m, ok := routes.Match(alert.Link)
	if !ok {
		return n
	}
	n.Type = typeOf(m.Kind)
	n.CourseId = m.Params[routes.ParamCourse]

	extra := routes.Params{}
	if m.Kind == routes.KindTopic && m.Params[routes.ParamModule] == "" && lookup != nil {
		moduleId, found := lookup.ModuleOf(ctx, n.CourseId, m.Params[routes.ParamTopic])
		if found {
			extra[routes.ParamModule] = moduleId
		}
	}
	n.Link, _ = routes.Remap(alert.Link, m.Kind, extra)
	return n
}

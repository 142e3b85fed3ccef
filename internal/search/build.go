package search

import (
	"context"
	"strings"
	"valence/internal/cache"
	"valence/internal/routes"
	"valence/internal/scrapers/d2l/parse"
)

func path(kind routes.Kind, params routes.Params) string {
	p, _ := routes.Path(kind, params)
	return p
}

// CourseDocuments lists the documents of a single course.
func CourseDocuments(
	course parse.Course,
	tree []parse.ModuleNode,
	assignments []parse.Assignment,
	quizzes []parse.Quiz,
	announcements []parse.Announcement,
) []Document {
	c := routes.Params{routes.ParamCourse: course.Id}
	with := func(key, value string) routes.Params {
		out := routes.Params{key: value}
		for k, v := range c {
			out[k] = v
		}
		return out
	}
	doc := func(kind Kind, title, body, link string) Document {
		return Document{
			Kind:     kind,
			CourseId: course.Id,
			Course:   course.Name,
			Title:    title,
			Body:     body,
			Link:     link,
		}
	}

	out := []Document{
		doc(KindCourse, course.Name, strings.TrimSpace(course.Code+" "+course.Description), path(routes.KindCourse, c)),
	}

	parse.Walk(tree, func(node parse.ModuleNode, _ []string) bool {
		var body string
		if node.Description != nil {
			body = node.Description.Text
		}
		module := with(routes.ParamModule, node.Id)
		out = append(out, doc(KindModule, node.Title, body, path(routes.KindModule, module)))
		for _, topic := range node.Topics {
			params := with(routes.ParamModule, node.Id)
			params[routes.ParamTopic] = topic.Id
			out = append(out, doc(KindTopic, topic.Title, node.Title, path(routes.KindTopic, params)))
		}
		return true
	})

	for _, a := range assignments {
		link := path(routes.KindAssignments, c)
		if a.Id != "" {
			link = path(routes.KindAssignment, with(routes.ParamAssignment, a.Id))
		}
		out = append(out, doc(KindAssignment, a.Name, strings.Join(a.Tags, " "), link))
	}
	for _, q := range quizzes {
		out = append(out, doc(KindQuiz, q.Name, "", path(routes.KindQuiz, with(routes.ParamQuiz, q.Id))))
	}
	for _, a := range announcements {
		out = append(out, doc(KindAnnouncement, a.Title, a.Body.Text, path(routes.KindAnnouncement, with(routes.ParamNews, a.Id))))
	}
	return out
}

// FromCache builds an index out of whatever the cache holds, missing
// entries are skipped.
func FromCache(ctx context.Context, c *cache.Cache) *Index {
	idx := NewIndex()
	courses, _ := cache.Get[[]parse.Course](ctx, c, cache.CoursesKey())
	for _, course := range courses {
		tree, _ := cache.Get[[]parse.ModuleNode](ctx, c, cache.ContentTreeKey(course.Id))
		assignments, _ := cache.Get[[]parse.Assignment](ctx, c, cache.AssignmentsKey(course.Id))
		quizzes, _ := cache.Get[[]parse.Quiz](ctx, c, cache.QuizzesKey(course.Id))
		announcements, _ := cache.Get[[]parse.Announcement](ctx, c, cache.AnnouncementsKey(course.Id))
		idx.Add(CourseDocuments(course, tree, assignments, quizzes, announcements)...)
	}
	return idx
}

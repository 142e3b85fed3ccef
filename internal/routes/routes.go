// Package routes maps LMS urls onto the internal route scheme and back.
//
// Internal paths are only ever built here, see Path.
package routes

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

type Kind string

const (
	KindTopic              Kind = "topic"
	KindModule             Kind = "module"
	KindContent            Kind = "content"
	KindAssignmentFeedback Kind = "assignment-feedback"
	KindAssignment         Kind = "assignment"
	KindAssignments        Kind = "assignments"
	KindQuizSubmissions    Kind = "quiz-submissions"
	KindQuiz               Kind = "quiz"
	KindQuizzes            Kind = "quizzes"
	KindGrades             Kind = "grades"
	KindAnnouncement       Kind = "announcement"
	KindAnnouncements      Kind = "announcements"
	KindCourse             Kind = "course"
	KindHome               Kind = "home"
)

const (
	ParamCourse     = "courseId"
	ParamModule     = "moduleId"
	ParamTopic      = "topicId"
	ParamAssignment = "assignmentId"
	ParamQuiz       = "quizId"
	ParamNews       = "newsId"
)

// Params are the named segments extracted from (or used to build) a url.
type Params map[string]string

func (p Params) merge(other Params) Params {
	out := Params{}
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type Matched struct {
	Kind   Kind
	Params Params
}

type queryParam struct {
	key   string
	param string
	// value, when set, must match the query value and its first group
	// becomes the param.
	value *regexp.Regexp
}

// Pattern is one row of the registry: how to recognize an LMS url of a
// given kind and how to build the internal and external forms of it.
type Pattern struct {
	Kind Kind

	path  *regexp.Regexp
	query []queryParam

	// internal templates are tried in order, the first one with all of its
	// params present wins.
	internal []string
	// internalMatch recognizes internal paths of this kind.
	internalMatch []*regexp.Regexp

	externalPath  string
	externalQuery map[string]string
}

func qp(key, param string) queryParam {
	return queryParam{key: key, param: param}
}

var moduleIdentifier = regexp.MustCompile(`(?i)ModuleCO-(\d+)$`)

// patterns is ordered most specific first, some LMS url shapes are
// prefixes of others (module vs content home).
var patterns = []Pattern{
	{
		Kind:     KindTopic,
		path:     regexp.MustCompile(`(?i)^/d2l/le/content/(?P<courseId>\d+)/viewcontent/(?P<topicId>\d+)/view/?$`),
		internal: []string{"/courses/{courseId}/m/{moduleId}/t/{topicId}", "/courses/{courseId}/t/{topicId}"},
		internalMatch: []*regexp.Regexp{
			regexp.MustCompile(`^/courses/(?P<courseId>\d+)/m/(?P<moduleId>\d+)/t/(?P<topicId>\d+)$`),
			regexp.MustCompile(`^/courses/(?P<courseId>\d+)/t/(?P<topicId>\d+)$`),
		},
		externalPath: "/d2l/le/content/{courseId}/viewContent/{topicId}/View",
	},
	{
		Kind: KindModule,
		path: regexp.MustCompile(`(?i)^/d2l/le/content/(?P<courseId>\d+)/home/?$`),
		query: []queryParam{
			{key: "itemIdentifier", param: ParamModule, value: moduleIdentifier},
		},
		internal:      []string{"/courses/{courseId}/m/{moduleId}"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/m/(?P<moduleId>\d+)$`)},
		externalPath:  "/d2l/le/content/{courseId}/Home",
		externalQuery: map[string]string{"itemIdentifier": "D2L.LE.Content.ContentObject.ModuleCO-{moduleId}"},
	},
	{
		Kind:         KindContent,
		path:         regexp.MustCompile(`(?i)^/d2l/le/content/(?P<courseId>\d+)/home/?$`),
		internal:     []string{"/courses/{courseId}"},
		externalPath: "/d2l/le/content/{courseId}/Home",
	},
	{
		Kind:          KindAssignmentFeedback,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/dropbox/user/folder_user_view_feedback\.d2l$`),
		query:         []queryParam{qp("db", ParamAssignment), qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/coursework/a/{assignmentId}/feedback"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/coursework/a/(?P<assignmentId>\d+)/feedback$`)},
		externalPath:  "/d2l/lms/dropbox/user/folder_user_view_feedback.d2l",
		externalQuery: map[string]string{"db": "{assignmentId}", "ou": "{courseId}"},
	},
	{
		Kind:          KindAssignment,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/dropbox/user/folder_submit_files\.d2l$`),
		query:         []queryParam{qp("db", ParamAssignment), qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/coursework/a/{assignmentId}"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/coursework/a/(?P<assignmentId>\d+)$`)},
		externalPath:  "/d2l/lms/dropbox/user/folder_submit_files.d2l",
		externalQuery: map[string]string{"db": "{assignmentId}", "ou": "{courseId}"},
	},
	{
		Kind:          KindAssignments,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/dropbox/user/folders_list\.d2l$`),
		query:         []queryParam{qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/coursework"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/coursework$`)},
		externalPath:  "/d2l/lms/dropbox/user/folders_list.d2l",
		externalQuery: map[string]string{"ou": "{courseId}"},
	},
	{
		Kind:          KindQuizSubmissions,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/quizzing/user/quiz_submissions\.d2l$`),
		query:         []queryParam{qp("qi", ParamQuiz), qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/coursework/q/{quizId}/submissions"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/coursework/q/(?P<quizId>\d+)/submissions$`)},
		externalPath:  "/d2l/lms/quizzing/user/quiz_submissions.d2l",
		externalQuery: map[string]string{"qi": "{quizId}", "ou": "{courseId}"},
	},
	{
		Kind:          KindQuiz,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/quizzing/user/quiz_summary\.d2l$`),
		query:         []queryParam{qp("qi", ParamQuiz), qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/coursework/q/{quizId}"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/coursework/q/(?P<quizId>\d+)$`)},
		externalPath:  "/d2l/lms/quizzing/user/quiz_summary.d2l",
		externalQuery: map[string]string{"qi": "{quizId}", "ou": "{courseId}"},
	},
	{
		Kind:          KindQuizzes,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/quizzing/user/quizzes_list\.d2l$`),
		query:         []queryParam{qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/coursework/quizzes"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/coursework/quizzes$`)},
		externalPath:  "/d2l/lms/quizzing/user/quizzes_list.d2l",
		externalQuery: map[string]string{"ou": "{courseId}"},
	},
	{
		Kind:          KindGrades,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/grades/my_grades/main\.d2l$`),
		query:         []queryParam{qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/grades"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/grades$`)},
		externalPath:  "/d2l/lms/grades/my_grades/main.d2l",
		externalQuery: map[string]string{"ou": "{courseId}"},
	},
	{
		Kind:          KindAnnouncement,
		path:          regexp.MustCompile(`(?i)^/d2l/le/news/(?P<courseId>\d+)/(?P<newsId>\d+)/view/?$`),
		internal:      []string{"/courses/{courseId}/announcements/{newsId}"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/announcements/(?P<newsId>\d+)$`)},
		externalPath:  "/d2l/le/news/{courseId}/{newsId}/view",
	},
	{
		Kind:          KindAnnouncements,
		path:          regexp.MustCompile(`(?i)^/d2l/lms/news/main\.d2l$`),
		query:         []queryParam{qp("ou", ParamCourse)},
		internal:      []string{"/courses/{courseId}/announcements"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)/announcements$`)},
		externalPath:  "/d2l/lms/news/main.d2l",
		externalQuery: map[string]string{"ou": "{courseId}"},
	},
	{
		Kind:          KindCourse,
		path:          regexp.MustCompile(`(?i)^/d2l/home/(?P<courseId>\d+)/?$`),
		internal:      []string{"/courses/{courseId}"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/courses/(?P<courseId>\d+)$`)},
		externalPath:  "/d2l/home/{courseId}",
	},
	{
		Kind:          KindHome,
		path:          regexp.MustCompile(`(?i)^/d2l/home/?$`),
		internal:      []string{"/"},
		internalMatch: []*regexp.Regexp{regexp.MustCompile(`^/$`)},
		externalPath:  "/d2l/home",
	},
}

// Patterns returns the registry in priority order.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

func lookup(kind Kind) (Pattern, bool) {
	for _, p := range patterns {
		if p.Kind == kind {
			return p, true
		}
	}
	return Pattern{}, false
}

func normalize(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	normalized := purell.NormalizeURL(
		u,
		purell.FlagsSafe|
			purell.FlagRemoveDotSegments|
			purell.FlagRemoveDuplicateSlashes|
			purell.FlagRemoveFragment,
	)
	return url.Parse(normalized)
}

func queryValue(values url.Values, key string) string {
	if v := values.Get(key); v != "" {
		return v
	}
	for k, v := range values {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// extract reads the params of p out of u, ok is false when the path does
// not match or a query param is missing.
func (p Pattern) extract(u *url.URL) (Params, bool) {
	params := Params{}
	ok := true

	groups := p.path.FindStringSubmatch(u.Path)
	if groups == nil {
		ok = false
	} else {
		for i, name := range p.path.SubexpNames() {
			if name != "" {
				params[name] = groups[i]
			}
		}
	}

	values := u.Query()
	for _, q := range p.query {
		v := queryValue(values, q.key)
		if q.value != nil {
			m := q.value.FindStringSubmatch(v)
			if m == nil {
				ok = false
				continue
			}
			v = m[1]
		}
		if v == "" {
			ok = false
			continue
		}
		params[q.param] = v
	}
	return params, ok
}

func fill(template string, params Params) (string, bool) {
	var out strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			out.WriteString(rest)
			return out.String(), true
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			out.WriteString(rest)
			return out.String(), true
		}
		name := rest[start+1 : start+end]
		value := params[name]
		if value == "" {
			return "", false
		}
		out.WriteString(rest[:start])
		out.WriteString(url.PathEscape(value))
		rest = rest[start+end+1:]
	}
}

func (p Pattern) build(params Params) (string, bool) {
	for _, template := range p.internal {
		path, ok := fill(template, params)
		if ok {
			return path, true
		}
	}
	return "", false
}

// Match finds the first pattern matching rawUrl.
func Match(rawUrl string) (Matched, bool) {
	u, err := normalize(rawUrl)
	if err != nil {
		return Matched{}, false
	}
	for _, p := range patterns {
		params, ok := p.extract(u)
		if ok {
			return Matched{Kind: p.Kind, Params: params}, true
		}
	}
	return Matched{}, false
}

// Remap translates an LMS url into an internal path. A non-empty hint
// selects the pattern directly instead of searching the registry, extra
// params are merged over the extracted ones (eg. a module id the url
// itself does not carry).
func Remap(rawUrl string, hint Kind, extra Params) (string, bool) {
	if hint != "" {
		p, ok := lookup(hint)
		if !ok {
			return "", false
		}
		u, err := normalize(rawUrl)
		if err != nil {
			return "", false
		}
		params, _ := p.extract(u)
		return p.build(params.merge(extra))
	}

	m, ok := Match(rawUrl)
	if !ok {
		return "", false
	}
	p, _ := lookup(m.Kind)
	return p.build(m.Params.merge(extra))
}

// Path builds the internal path for kind.
func Path(kind Kind, params Params) (string, bool) {
	p, ok := lookup(kind)
	if !ok {
		return "", false
	}
	return p.build(params)
}

// Parse recognizes an internal path. Paths shared by several kinds
// (`/courses/{id}`) resolve to the first kind that claims them.
func Parse(internalPath string) (Matched, bool) {
	path := internalPath
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, p := range patterns {
		for _, re := range p.internalMatch {
			groups := re.FindStringSubmatch(path)
			if groups == nil {
				continue
			}
			params := Params{}
			for i, name := range re.SubexpNames() {
				if name != "" {
					params[name] = groups[i]
				}
			}
			return Matched{Kind: p.Kind, Params: params}, true
		}
	}
	return Matched{}, false
}

// ExternalPath builds the LMS path (with query) for kind.
func ExternalPath(kind Kind, params Params) (string, bool) {
	p, ok := lookup(kind)
	if !ok {
		return "", false
	}
	path, ok := fill(p.externalPath, params)
	if !ok {
		return "", false
	}
	if len(p.externalQuery) == 0 {
		return path, true
	}
	values := url.Values{}
	for key, template := range p.externalQuery {
		v, ok := fill(template, params)
		if !ok {
			return "", false
		}
		values.Set(key, v)
	}
	return path + "?" + values.Encode(), true
}

// External translates an internal path back into an LMS url relative to
// base (which may be nil, yielding a rooted path).
func External(base *url.URL, internalPath string) (string, bool) {
	m, ok := Parse(internalPath)
	if !ok {
		return "", false
	}
	ext, ok := ExternalPath(m.Kind, m.Params)
	if !ok {
		return "", false
	}
	if base == nil {
		return ext, true
	}
	ref, err := url.Parse(ext)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

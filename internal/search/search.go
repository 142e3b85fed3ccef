package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

type Kind string

const (
	KindCourse       Kind = "course"
	KindModule       Kind = "module"
	KindTopic        Kind = "topic"
	KindAssignment   Kind = "assignment"
	KindQuiz         Kind = "quiz"
	KindAnnouncement Kind = "announcement"
)

// Document is one searchable record, Link is its internal route.
type Document struct {
	Kind     Kind   `json:"kind"`
	CourseId string `json:"courseId"`
	Course   string `json:"course"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Link     string `json:"link"`
}

type Result struct {
	Document
	Score float64 `json:"score"`
}

const (
	// tokens less similar than this do not count as a match at all
	tokenThreshold = 0.8
	// results below this score are dropped
	MinScore = 0.5

	titleSubstringBonus = 0.5
	bodySubstringBonus  = 0.15
	bodyTokenWeight     = 0.6
)

type indexed struct {
	doc         Document
	title       string
	body        string
	titleTokens []string
	bodyTokens  []string
}

// Index is an in memory fuzzy index, it is not safe for concurrent
// writes.
type Index struct {
	docs []indexed
}

func NewIndex(docs ...Document) *Index {
	idx := &Index{}
	idx.Add(docs...)
	return idx
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func dedupe(tokens []string) []string {
	seen := map[string]struct{}{}
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (idx *Index) Add(docs ...Document) {
	for _, doc := range docs {
		idx.docs = append(idx.docs, indexed{
			doc:         doc,
			title:       strings.ToLower(doc.Title),
			body:        strings.ToLower(doc.Body),
			titleTokens: dedupe(tokenize(doc.Title)),
			bodyTokens:  dedupe(tokenize(doc.Body)),
		})
	}
}

func (idx *Index) Len() int {
	return len(idx.docs)
}

func bestSimilarity(token string, candidates []string) float64 {
	var best float64
	for _, c := range candidates {
		if c == token {
			return 1
		}
		similarity := matchr.JaroWinkler(token, c, false)
		if similarity > best {
			best = similarity
		}
	}
	if best < tokenThreshold {
		return 0
	}
	return best
}

func (d indexed) score(query string, tokens []string) float64 {
	var total float64
	for _, token := range tokens {
		title := bestSimilarity(token, d.titleTokens)
		body := bodyTokenWeight * bestSimilarity(token, d.bodyTokens)
		total += max(title, body)
	}
	score := total / float64(len(tokens))

	switch {
	case strings.Contains(d.title, query):
		score += titleSubstringBonus
	case d.body != "" && strings.Contains(d.body, query):
		score += bodySubstringBonus
	}
	return score
}

// Search ranks every document against query. Each query token is matched
// to its most similar title or body token with Jaro-Winkler, the average
// of those similarities plus a bonus for containing the whole query is the
// score. A limit <= 0 returns every result.
func (idx *Index) Search(query string, limit int) []Result {
	tokens := dedupe(tokenize(query))
	if len(tokens) == 0 {
		return nil
	}
	normalized := strings.Join(tokens, " ")

	var results []Result
	for _, d := range idx.docs {
		score := d.score(normalized, tokens)
		if score < MinScore {
			continue
		}
		results = append(results, Result{Document: d.doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Title < results[j].Title
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

package notifications

import (
	"context"
	"time"
	"valence/internal/cache"
	"valence/internal/components/assert"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const report_tree_lookup = "tree-lookup.module-of"

// TreeSource fetches the content tree of a course, *d2l.Client implements
// it.
type TreeSource interface {
	ContentTree(ctx context.Context, courseId string) ([]parse.ModuleNode, error)
}

// TreeLookup answers ModuleOf from content trees, which are kept in an
// in memory LRU in front of the persistent cache in front of the LMS.
//
// A stored tree can predate the topic being looked up, so a miss against
// one refetches the live tree. Each course is refetched at most once per
// ttl.
type TreeLookup struct {
	source    TreeSource
	cache     *cache.Cache
	trees     *expirable.LRU[string, []parse.ModuleNode]
	refreshed *expirable.LRU[string, struct{}]
	tel       telemetry.API
}

// NewTreeLookup creates a TreeLookup, c may be nil.
func NewTreeLookup(source TreeSource, c *cache.Cache, size int, ttl time.Duration, tel telemetry.API) *TreeLookup {
	assert.NotNil(source)
	assert.NotNil(tel)
	assert.Positive(size)
	return &TreeLookup{
		source:    source,
		cache:     c,
		trees:     expirable.NewLRU[string, []parse.ModuleNode](size, nil, ttl),
		refreshed: expirable.NewLRU[string, struct{}](size, nil, ttl),
		tel:       tel,
	}
}

func (l *TreeLookup) stored(ctx context.Context, courseId string) ([]parse.ModuleNode, bool) {
	if tree, ok := l.trees.Get(courseId); ok {
		return tree, true
	}
	if l.cache == nil {
		return nil, false
	}
	tree, ok := cache.Get[[]parse.ModuleNode](ctx, l.cache, cache.ContentTreeKey(courseId))
	if ok {
		l.trees.Add(courseId, tree)
	}
	return tree, ok
}

func (l *TreeLookup) live(ctx context.Context, courseId string) ([]parse.ModuleNode, bool) {
	l.refreshed.Add(courseId, struct{}{})
	tree, err := l.source.ContentTree(ctx, courseId)
	if err != nil {
		l.tel.ReportWarning(report_tree_lookup, err, courseId)
		return nil, false
	}
	l.trees.Add(courseId, tree)
	if l.cache != nil {
		cache.Set(ctx, l.cache, cache.ContentTreeKey(courseId), tree)
	}
	return tree, true
}

func (l *TreeLookup) ModuleOf(ctx context.Context, courseId, topicId string) (string, bool) {
	if courseId == "" || topicId == "" {
		return "", false
	}
	if tree, ok := l.stored(ctx, courseId); ok {
		if module, found := parse.FindModule(tree, topicId); found {
			return module.Id, true
		}
		if l.refreshed.Contains(courseId) {
			return "", false
		}
	}

	tree, ok := l.live(ctx, courseId)
	if !ok {
		return "", false
	}
	module, ok := parse.FindModule(tree, topicId)
	if !ok {
		return "", false
	}
	return module.Id, true
}

package notifications

import (
	"fmt"
	"sync"
	"time"
	"valence/internal/components/assert"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"
)

type feedKey struct {
	courseId string
	category parse.Category
}

// Feeds hands out one Feed per (course, category), feeds are created on
// first use and live as long as the registry.
type Feeds struct {
	source   Source
	lookup   ModuleLookup
	tel      telemetry.API
	interval time.Duration

	mu    sync.Mutex
	feeds map[feedKey]*Feed
}

// NewFeeds creates a registry, lookup may be nil in which case topic links
// are routed without their module.
func NewFeeds(source Source, lookup ModuleLookup, interval time.Duration, tel telemetry.API) *Feeds {
	assert.NotNil(source)
	assert.NotNil(tel)
	if interval <= 0 {
		interval = PollInterval
	}
	return &Feeds{
		source:   source,
		lookup:   lookup,
		tel:      telemetry.NewScopedAPI("notifications", tel),
		interval: interval,
		feeds:    map[feedKey]*Feed{},
	}
}

func (r *Feeds) Get(courseId string, category parse.Category) *Feed {
	key := feedKey{courseId: courseId, category: category}

	r.mu.Lock()
	defer r.mu.Unlock()
	feed, ok := r.feeds[key]
	if !ok {
		feed = newFeed(courseId, category, r.source, r.lookup, r.interval, r.tel)
		r.feeds[key] = feed
		r.tel.ReportDebug(fmt.Sprintf("new feed %s/%d", courseId, category))
	}
	return feed
}

var (
	defaultOnce  sync.Once
	defaultFeeds *Feeds
)

// Default returns the process wide registry. It is built from the
// arguments of the first call, later arguments are ignored.
func Default(source Source, lookup ModuleLookup, tel telemetry.API) *Feeds {
	defaultOnce.Do(func() {
		defaultFeeds = NewFeeds(source, lookup, PollInterval, tel)
	})
	return defaultFeeds
}

package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
	"valence/internal/components/assert"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	"github.com/google/uuid"
)

const (
	report_feed_get_more    = "feed.get-more"
	report_feed_get_newest  = "feed.get-newest"
	report_feed_mark_read   = "feed.mark-all-as-read"
	report_feed_check       = "feed.check-for-updates"
	report_feed_subscribers = "feed.subscribers"
)

// PollInterval is how often subscribed feeds check for new entries.
const PollInterval = 60 * time.Second

const pollTimeout = 30 * time.Second

// ErrFeedLoading is returned by GetMoreFeed while another call is still
// loading.
var ErrFeedLoading = errors.New("feed is already loading")

// Source is the activity feed api, *d2l.Client implements it.
type Source interface {
	Alerts(ctx context.Context, orgUnit string, category parse.Category, before time.Time) ([]parse.Alert, error)
	MarkAlertsRead(ctx context.Context, orgUnit string, category parse.Category) error
	CheckNewAlerts(ctx context.Context, orgUnit string, category parse.Category) (bool, error)
}

// Feed is the activity feed of one course and category. Obtain it through
// Feeds so there is a single Feed per pair.
type Feed struct {
	CourseId string
	Category parse.Category

	source   Source
	lookup   ModuleLookup
	tel      telemetry.API
	interval time.Duration

	mu          sync.Mutex
	loading     bool
	items       []Notification
	subscribers map[uuid.UUID]func()
	stop        chan struct{}
	pollers     sync.WaitGroup
}

func newFeed(courseId string, category parse.Category, source Source, lookup ModuleLookup, interval time.Duration, tel telemetry.API) *Feed {
	assert.NotNil(source)
	assert.Positive(interval)
	return &Feed{
		CourseId:    courseId,
		Category:    category,
		source:      source,
		lookup:      lookup,
		tel:         tel,
		interval:    interval,
		subscribers: map[uuid.UUID]func(){},
	}
}

// Items returns every notification loaded so far, newest first.
func (f *Feed) Items() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

func sameEntry(a, b Notification) bool {
	return a.ExternalLink == b.ExternalLink && a.Timestamp.Equal(b.Timestamp) && a.Title == b.Title
}

// GetMoreFeed loads the page of entries older than the oldest loaded one
// and returns only those. Calls made while a page is loading fail with
// ErrFeedLoading instead of waiting.
func (f *Feed) GetMoreFeed(ctx context.Context) ([]Notification, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil, ErrFeedLoading
	}
	f.loading = true
	var cursor time.Time
	if len(f.items) > 0 {
		cursor = f.items[len(f.items)-1].Timestamp
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	alerts, err := f.source.Alerts(ctx, f.CourseId, f.Category, cursor)
	if err != nil {
		f.tel.ReportWarning(report_feed_get_more, err, f.CourseId, f.Category)
		return nil, err
	}

	fresh := make([]Notification, 0, len(alerts))
	for _, alert := range alerts {
		fresh = append(fresh, convert(ctx, f.lookup, alert))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := fresh[:0]
	for _, n := range fresh {
		duplicate := false
		for _, existing := range f.items {
			if sameEntry(existing, n) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, n)
		}
	}
	f.items = append(f.items, out...)
	return out, nil
}

// GetNewest loads the newest page and returns the entries that are newer
// than every loaded one, newest first. They are added to the front of
// Items.
func (f *Feed) GetNewest(ctx context.Context) ([]Notification, error) {
	alerts, err := f.source.Alerts(ctx, f.CourseId, f.Category, time.Time{})
	if err != nil {
		f.tel.ReportWarning(report_feed_get_newest, err, f.CourseId, f.Category)
		return nil, err
	}

	fresh := make([]Notification, 0, len(alerts))
	for _, alert := range alerts {
		fresh = append(fresh, convert(ctx, f.lookup, alert))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var newest time.Time
	for _, n := range f.items {
		if n.Timestamp.After(newest) {
			newest = n.Timestamp
		}
	}
	out := fresh[:0]
	for _, n := range fresh {
		if len(f.items) > 0 && !n.Timestamp.After(newest) {
			continue
		}
		out = append(out, n)
	}
	items := make([]Notification, 0, len(out)+len(f.items))
	items = append(items, out...)
	f.items = append(items, f.items...)
	return out, nil
}

// MarkAllAsRead reports whether the LMS accepted the request. Callers
// update their view before calling and revert it on false.
func (f *Feed) MarkAllAsRead(ctx context.Context) bool {
	err := f.source.MarkAlertsRead(ctx, f.CourseId, f.Category)
	if err != nil {
		f.tel.ReportWarning(report_feed_mark_read, err, f.CourseId, f.Category)
		return false
	}
	return true
}

func (f *Feed) CheckForUpdates(ctx context.Context) (bool, error) {
	hasNew, err := f.source.CheckNewAlerts(ctx, f.CourseId, f.Category)
	if err != nil {
		f.tel.ReportWarning(report_feed_check, err, f.CourseId, f.Category)
		return false, err
	}
	return hasNew, nil
}

// SubscribeToUpdates calls callback whenever a poll finds new entries.
// The first subscriber starts the polling goroutine, it exits once the
// last one unsubscribes.
func (f *Feed) SubscribeToUpdates(callback func()) (unsubscribe func()) {
	id := uuid.New()

	f.mu.Lock()
	f.subscribers[id] = callback
	if f.stop == nil {
		stop := make(chan struct{})
		f.stop = stop
		f.pollers.Add(1)
		go f.poll(stop)
	}
	count := len(f.subscribers)
	f.mu.Unlock()
	f.tel.ReportDebug(report_feed_subscribers, f.CourseId, f.Category, count)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subscribers, id)
			if len(f.subscribers) == 0 && f.stop != nil {
				close(f.stop)
				f.stop = nil
			}
		})
	}
}

func (f *Feed) callbacks(stop chan struct{}) ([]func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop != stop {
		return nil, false
	}
	out := make([]func(), 0, len(f.subscribers))
	for _, cb := range f.subscribers {
		out = append(out, cb)
	}
	return out, true
}

func (f *Feed) poll(stop chan struct{}) {
	defer f.pollers.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if _, active := f.callbacks(stop); !active {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
		hasNew, err := f.CheckForUpdates(ctx)
		cancel()
		if err != nil || !hasNew {
			continue
		}

		callbacks, active := f.callbacks(stop)
		if !active {
			return
		}
		for _, cb := range callbacks {
			cb()
		}
	}
}

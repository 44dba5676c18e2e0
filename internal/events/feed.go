// Package events keeps a bounded history of minification runs and fans new
// runs out to live subscribers.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/prasenjit/oas-minify/internal/models"
)

// subscriberBuffer is how many runs a slow subscriber may fall behind before
// runs are dropped for it.
const subscriberBuffer = 100

// Feed records runs and notifies subscribers.
type Feed struct {
	mu          sync.RWMutex
	runs        []*models.Run
	maxRuns     int
	subscribers map[string]chan *models.Run
}

// NewFeed creates a feed that remembers at most maxRuns runs.
func NewFeed(maxRuns int) *Feed {
	if maxRuns <= 0 {
		maxRuns = 1000
	}

	return &Feed{
		runs:        make([]*models.Run, 0),
		maxRuns:     maxRuns,
		subscribers: make(map[string]chan *models.Run),
	}
}

// Publish records run and sends it to every subscriber. The rendered
// document is left out so that the history stays small. Sends happen under
// the lock so that Unsubscribe cannot close a channel mid-send.
func (f *Feed) Publish(run *models.Run) {
	event := *run
	event.Output = ""

	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs = append(f.runs, &event)
	if len(f.runs) > f.maxRuns {
		f.runs = f.runs[len(f.runs)-f.maxRuns:]
	}

	// Notify subscribers (non-blocking).
	for _, ch := range f.subscribers {
		select {
		case ch <- &event:
		default:
			// Channel full, skip
		}
	}
}

// Recent returns runs matching filter, newest first.
func (f *Feed) Recent(filter models.RunFilter) []*models.Run {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]*models.Run, 0)
	skipped := 0

	for i := len(f.runs) - 1; i >= 0; i-- {
		run := f.runs[i]

		if filter.SpecID != "" && run.SpecID != filter.SpecID {
			continue
		}
		if filter.Success != nil && run.Success != *filter.Success {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}

		result = append(result, run)

		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}

	return result
}

// Clear forgets every run.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs = make([]*models.Run, 0)
}

// ClearSpec forgets the runs of one spec.
func (f *Feed) ClearSpec(specID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	filtered := make([]*models.Run, 0, len(f.runs))
	for _, run := range f.runs {
		if run.SpecID != specID {
			filtered = append(filtered, run)
		}
	}
	f.runs = filtered
}

// Subscribe creates a subscription for live runs.
func (f *Feed) Subscribe() (string, <-chan *models.Run) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan *models.Run, subscriberBuffer)
	f.subscribers[id] = ch

	return id, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subscribers[id]; ok {
		close(ch)
		delete(f.subscribers, id)
	}
}

// Stats describes the feed.
type Stats struct {
	Runs        int `json:"runs"`
	MaxRuns     int `json:"maxRuns"`
	Subscribers int `json:"subscribers"`
}

// Stats returns the current feed counters.
func (f *Feed) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return Stats{
		Runs:        len(f.runs),
		MaxRuns:     f.maxRuns,
		Subscribers: len(f.subscribers),
	}
}

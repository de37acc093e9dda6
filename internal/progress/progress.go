// Package progress provides adapters for preload notifications: a
// non-blocking queue, a fan-out, a logger and a bounded feed of recent events.
package progress

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Sink has the same method set as service.ProgressSink.
type Sink interface {
	AssetReady(assetID string, ok bool)
	IntervalReady(interval string, ok bool)
}

type Kind string

const (
	KindAsset    Kind = "asset"
	KindInterval Kind = "interval"
)

type Event struct {
	Kind    Kind      `json:"kind"`
	Subject string    `json:"subject"`
	OK      bool      `json:"ok"`
	At      time.Time `json:"at"`
}

func (e Event) deliver(s Sink) {
	switch e.Kind {
	case KindAsset:
		s.AssetReady(e.Subject, e.OK)
	case KindInterval:
		s.IntervalReady(e.Subject, e.OK)
	}
}

var now = time.Now

// Queue forwards events to a target sink from its own goroutine, in the
// order they were received. Producers never block.
type Queue struct {
	target Sink

	mu      sync.Mutex
	cond    *sync.Cond
	pending []Event
	closed  bool
	done    chan struct{}
}

func NewQueue(target Sink) *Queue {
	q := &Queue{target: target, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *Queue) AssetReady(assetID string, ok bool) {
	q.push(Event{Kind: KindAsset, Subject: assetID, OK: ok, At: now()})
}

func (q *Queue) IntervalReady(interval string, ok bool) {
	q.push(Event{Kind: KindInterval, Subject: interval, OK: ok, At: now()})
}

func (q *Queue) push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, e)
	q.cond.Signal()
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, e := range batch {
			e.deliver(q.target)
		}
	}
}

// Close stops accepting events and waits until the queued ones are delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

// Fanout forwards every event to each sink in order.
type Fanout []Sink

func (f Fanout) AssetReady(assetID string, ok bool) {
	for _, s := range f {
		s.AssetReady(assetID, ok)
	}
}

func (f Fanout) IntervalReady(interval string, ok bool) {
	for _, s := range f {
		s.IntervalReady(interval, ok)
	}
}

type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger.WithPrefix("progress")}
}

func (l *LogSink) AssetReady(assetID string, ok bool) {
	if ok {
		l.logger.Info("asset ready", "asset", assetID)
		return
	}
	l.logger.Warn("asset unavailable", "asset", assetID)
}

func (l *LogSink) IntervalReady(interval string, ok bool) {
	if ok {
		l.logger.Info("interval complete", "interval", interval)
		return
	}
	l.logger.Warn("interval incomplete", "interval", interval)
}

// Feed keeps the most recent events in a fixed-size ring.
type Feed struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
	total  int
}

// NewFeed keeps up to capacity events; non-positive capacities keep 100.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{events: make([]Event, capacity)}
}

func (f *Feed) AssetReady(assetID string, ok bool) {
	f.add(Event{Kind: KindAsset, Subject: assetID, OK: ok, At: now()})
}

func (f *Feed) IntervalReady(interval string, ok bool) {
	f.add(Event{Kind: KindInterval, Subject: interval, OK: ok, At: now()})
}

func (f *Feed) add(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[f.next] = e
	f.next = (f.next + 1) % len(f.events)
	if f.next == 0 {
		f.full = true
	}
	f.total++
}

// Recent returns up to limit events, oldest first. A non-positive limit
// returns everything retained.
func (f *Feed) Recent(limit int) []Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var ordered []Event
	if f.full {
		ordered = append(ordered, f.events[f.next:]...)
	}
	ordered = append(ordered, f.events[:f.next]...)

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	out := make([]Event, len(ordered))
	copy(out, ordered)
	return out
}

// Total is the number of events ever recorded.
func (f *Feed) Total() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.total
}

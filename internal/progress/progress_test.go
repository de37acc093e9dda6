package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) AssetReady(assetID string, ok bool) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "asset:"+assetID)
}

func (r *recorder) IntervalReady(interval string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "interval:"+interval)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestQueueDoesNotBlockProducers(t *testing.T) {
	target := &recorder{block: make(chan struct{})}
	q := NewQueue(target)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			q.AssetReady("bitcoin", true)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer blocked on a slow sink")
	}
	close(target.block)
	q.Close()

	if got := len(target.snapshot()); got != 100 {
		t.Fatalf("expected 100 delivered events, got %d", got)
	}
}

func TestQueuePreservesOrder(t *testing.T) {
	target := &recorder{}
	q := NewQueue(target)
	q.AssetReady("bitcoin", true)
	q.IntervalReady("1D", true)
	q.AssetReady("ethereum", true)
	q.Close()

	got := strings.Join(target.snapshot(), ",")
	if got != "asset:bitcoin,interval:1D,asset:ethereum" {
		t.Fatalf("unexpected order: %s", got)
	}

	q.AssetReady("late", true)
	if len(target.snapshot()) != 3 {
		t.Fatal("events after close should be dropped")
	}
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, b}
	f.AssetReady("bitcoin", true)
	f.IntervalReady("1W", false)

	for _, r := range []*recorder{a, b} {
		if got := strings.Join(r.snapshot(), ","); got != "asset:bitcoin,interval:1W" {
			t.Fatalf("unexpected events: %s", got)
		}
	}
}

func TestFeedKeepsMostRecent(t *testing.T) {
	f := NewFeed(3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		f.AssetReady(id, true)
	}

	got := f.Recent(0)
	if len(got) != 3 || got[0].Subject != "c" || got[2].Subject != "e" {
		t.Fatalf("unexpected events: %+v", got)
	}
	if last := f.Recent(1); len(last) != 1 || last[0].Subject != "e" {
		t.Fatalf("unexpected limited events: %+v", last)
	}
	if f.Total() != 5 {
		t.Fatalf("expected total 5, got %d", f.Total())
	}
}

func TestFeedPartiallyFilled(t *testing.T) {
	f := NewFeed(0)
	f.IntervalReady("1D", true)
	got := f.Recent(10)
	if len(got) != 1 || got[0].Kind != KindInterval || !got[0].OK {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(log.New(&buf))
	sink.AssetReady("bitcoin", true)
	sink.IntervalReady("1Y", false)

	out := buf.String()
	if !strings.Contains(out, "asset ready") || !strings.Contains(out, "bitcoin") {
		t.Fatalf("unexpected log output: %s", out)
	}
	if !strings.Contains(out, "interval incomplete") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

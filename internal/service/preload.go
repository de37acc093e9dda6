package service

import (
	"context"
	"time"

	"cryptoboard/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type preloadTask struct {
	assetID   string
	assetName string
	interval  domain.Interval
}

// PreloadReport summarizes one PreloadAll pass.
type PreloadReport struct {
	Assets    int           `json:"assets"`
	Tasks     int           `json:"tasks"`
	Succeeded int           `json:"succeeded"`
	Recovered int           `json:"recovered"`
	Rounds    int           `json:"rounds"`
	Failed    []FailedLoad  `json:"failed"`
	Cancelled bool          `json:"cancelled"`
	Elapsed   time.Duration `json:"elapsed"`
}

// PreloadAll fetches every (asset, interval) pair of the ranked list
// concurrently with one unretried request each, then retries the failures
// in bounded batches. Calls are serialized.
func (s *MarketDataService) PreloadAll(ctx context.Context) PreloadReport {
	s.preloadMu.Lock()
	defer s.preloadMu.Unlock()
	return s.preload(ctx)
}

// RefreshAll clears the cache and runs a full preload.
func (s *MarketDataService) RefreshAll(ctx context.Context) PreloadReport {
	s.preloadMu.Lock()
	defer s.preloadMu.Unlock()
	s.ClearCache(ctx)
	return s.preload(ctx)
}

// StartPreload runs PreloadAll in the background unless one is already
// running. It reports whether a preload was started.
func (s *MarketDataService) StartPreload(ctx context.Context) bool {
	if !s.preloadMu.TryLock() {
		return false
	}
	s.running.Store(true)
	go func() {
		defer s.preloadMu.Unlock()
		s.preload(ctx)
	}()
	return true
}

func (s *MarketDataService) preload(ctx context.Context) PreloadReport {
	s.running.Store(true)
	defer s.running.Store(false)

	ctx, span := s.tracer.Start(ctx, "market-data.preload-all")
	defer span.End()

	start := time.Now()
	assets := s.GetRankedList(ctx)
	report := PreloadReport{Assets: len(assets)}

	s.mu.Lock()
	s.intervalCounts = make(map[string]int, len(s.cfg.Intervals))
	for _, iv := range s.cfg.Intervals {
		s.intervalCounts[iv.Name] = 0
	}
	s.mu.Unlock()

	if len(assets) == 0 {
		s.logger.Warn("no assets to preload")
		report.Elapsed = time.Since(start)
		return report
	}

	tasks := make([]preloadTask, 0, len(assets)*len(s.cfg.Intervals))
	for _, a := range assets {
		for _, iv := range s.cfg.Intervals {
			tasks = append(tasks, preloadTask{assetID: a.ID, assetName: a.Name, interval: iv})
		}
	}
	report.Tasks = len(tasks)
	span.SetAttributes(attribute.Int("assets", len(assets)), attribute.Int("tasks", len(tasks)))
	s.logger.Info("starting preload", "assets", len(assets), "tasks", len(tasks), "concurrency", s.cfg.Concurrency)

	results := s.runTasks(ctx, tasks, s.cfg.Concurrency)
	failed := s.applyResults(ctx, tasks, results, len(assets), false)
	report.Succeeded = len(tasks) - len(failed)
	s.logger.Info("parallel phase complete",
		"succeeded", report.Succeeded, "failed", len(failed), "elapsed", time.Since(start).Round(time.Millisecond))

	sink := s.currentSink()
	counts := s.IntervalCounts()
	for _, iv := range s.cfg.Intervals {
		if counts[iv.Name] == len(assets) && sink != nil {
			sink.IntervalReady(iv.Name, true)
		}
	}

	remaining := failed
	if len(failed) > 0 {
		remaining = s.recoverFailed(ctx, failed, len(assets), &report)
	}
	report.Succeeded = len(tasks) - len(remaining)
	report.Cancelled = ctx.Err() != nil

	if len(remaining) > 0 {
		report.Failed = s.recordPermanentFailures(remaining)
		s.logger.Error("tasks still failing after recovery", "count", len(remaining), "cancelled", report.Cancelled)

		counts = s.IntervalCounts()
		for _, iv := range s.cfg.Intervals {
			if counts[iv.Name] < len(assets) && sink != nil {
				sink.IntervalReady(iv.Name, false)
			}
		}
	}

	report.Elapsed = time.Since(start)
	span.SetAttributes(attribute.Int("failed", len(remaining)), attribute.Int("recovered", report.Recovered))
	s.logger.Info("preload complete",
		"succeeded", report.Succeeded, "recovered", report.Recovered,
		"failed", len(remaining), "elapsed", report.Elapsed.Round(time.Millisecond))
	return report
}

// runTasks performs one fetch per task and returns the results index-aligned
// with tasks. A nil entry is a failed fetch.
func (s *MarketDataService) runTasks(ctx context.Context, tasks []preloadTask, limit int) []domain.Series {
	results := make([]domain.Series, len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, t := range tasks {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			series, err := s.provider.FetchSeries(ctx, t.assetID, t.interval.Selector)
			if err != nil {
				s.logger.Debug("fetch failed", "asset", t.assetID, "interval", t.interval.Name, "err", err)
				return nil
			}
			results[i] = series
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// applyResults writes successes through to the cache, bumps counters and
// notifies the sink. It returns the tasks that failed. During recovery an
// interval is reported as soon as its counter reaches total.
func (s *MarketDataService) applyResults(ctx context.Context, tasks []preloadTask, results []domain.Series, total int, recovering bool) []preloadTask {
	sink := s.currentSink()
	var failed []preloadTask

	for i, t := range tasks {
		series := results[i]
		if len(series) == 0 {
			s.logger.Debug("will retry", "asset", t.assetName, "interval", t.interval.Name)
			failed = append(failed, t)
			continue
		}

		s.putSeries(ctx, t.assetID, t.interval.Selector, series)

		s.mu.Lock()
		s.intervalCounts[t.interval.Name]++
		count := s.intervalCounts[t.interval.Name]
		s.mu.Unlock()

		if sink == nil {
			continue
		}
		if t.interval.Selector == s.defaultSelector() {
			sink.AssetReady(t.assetID, true)
		}
		if recovering && count == total {
			sink.IntervalReady(t.interval.Name, true)
		}
	}
	return failed
}

// recoverFailed retries failed tasks for up to RecoveryRounds rounds in
// batches of BatchSize. It returns the tasks that never succeeded.
func (s *MarketDataService) recoverFailed(ctx context.Context, failed []preloadTask, total int, report *PreloadReport) []preloadTask {
	remaining := failed
	batchSize := s.cfg.BatchSize

	for round := 1; round <= s.cfg.RecoveryRounds && len(remaining) > 0; round++ {
		report.Rounds = round
		s.logger.Info("recovery round", "round", round, "of", s.cfg.RecoveryRounds, "tasks", len(remaining))

		var stillFailed []preloadTask
		for start := 0; start < len(remaining); start += batchSize {
			if ctx.Err() != nil {
				return append(stillFailed, remaining[start:]...)
			}
			end := min(start+batchSize, len(remaining))
			batch := remaining[start:end]

			results := s.runTasks(ctx, batch, 0)
			batchFailed := s.applyResults(ctx, batch, results, total, true)
			report.Recovered += len(batch) - len(batchFailed)
			stillFailed = append(stillFailed, batchFailed...)

			if end < len(remaining) && !sleepCtx(ctx, s.cfg.BatchDelay) {
				return append(stillFailed, remaining[end:]...)
			}
		}
		remaining = stillFailed

		if len(remaining) > 0 && round < s.cfg.RecoveryRounds {
			if !sleepCtx(ctx, s.cfg.RoundDelay) {
				return remaining
			}
		}
	}
	return remaining
}

func (s *MarketDataService) recordPermanentFailures(tasks []preloadTask) []FailedLoad {
	loads := make([]FailedLoad, 0, len(tasks))
	for _, t := range tasks {
		loads = append(loads, FailedLoad{AssetID: t.assetID, Selector: t.interval.Selector, Interval: t.interval.Name})
	}

	s.mu.Lock()
	s.failed = append(s.failed, loads...)
	s.mu.Unlock()

	if sink := s.currentSink(); sink != nil {
		for _, t := range tasks {
			if t.interval.Selector == s.defaultSelector() {
				sink.AssetReady(t.assetID, false)
			}
		}
	}
	return loads
}

func (s *MarketDataService) defaultSelector() string {
	return s.cfg.Intervals[0].Selector
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

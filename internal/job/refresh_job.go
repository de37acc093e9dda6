package job

import (
	"context"
	"time"

	"cryptoboard/internal/service"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
)

type Preloader interface {
	PreloadAll(ctx context.Context) service.PreloadReport
	RefreshAll(ctx context.Context) service.PreloadReport
}

// RefreshJob preloads the market data once and, when an interval is set,
// clears and reloads it on every tick.
type RefreshJob struct {
	tracer    trace.Tracer
	logger    *log.Logger
	preloader Preloader
	interval  time.Duration
}

func NewRefreshJob(tracer trace.Tracer, logger *log.Logger, preloader Preloader, interval time.Duration) *RefreshJob {
	if logger == nil {
		logger = log.Default()
	}
	return &RefreshJob{
		tracer:    tracer,
		logger:    logger.WithPrefix("refresh-job"),
		preloader: preloader,
		interval:  interval,
	}
}

// Start blocks until ctx is cancelled.
func (j *RefreshJob) Start(ctx context.Context) {
	j.logger.Info("starting", "interval", j.interval)

	j.run(ctx, "initial-preload", j.preloader.PreloadAll)

	if j.interval <= 0 {
		<-ctx.Done()
		j.logger.Info("stopped")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("stopped")
			return
		case <-ticker.C:
			j.run(ctx, "refresh", j.preloader.RefreshAll)
		}
	}
}

func (j *RefreshJob) run(ctx context.Context, name string, fn func(context.Context) service.PreloadReport) {
	ctx, span := j.tracer.Start(ctx, "refresh-job."+name)
	defer span.End()

	report := fn(ctx)
	if len(report.Failed) > 0 {
		j.logger.Warn(name+" finished with failures",
			"tasks", report.Tasks, "failed", len(report.Failed), "elapsed", report.Elapsed.Round(time.Millisecond))
		return
	}
	j.logger.Info(name+" finished", "tasks", report.Tasks, "elapsed", report.Elapsed.Round(time.Millisecond))
}

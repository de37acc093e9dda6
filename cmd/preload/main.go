// Command preload fetches the ranked list and every interval of history,
// showing progress in the terminal, then prints the ranked table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cryptoboard/internal/cache"
	"cryptoboard/internal/config"
	"cryptoboard/internal/progress"
	"cryptoboard/internal/provider"
	"cryptoboard/internal/service"
	"cryptoboard/internal/tui"
	"cryptoboard/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer, logger *log.Logger, opts provider.Options) service.Provider {
		return provider.NewCoinGeckoProvider(tracer, logger, opts)
	}
	newProgramFunc = func(m tea.Model) *tea.Program {
		return tea.NewProgram(m)
	}
	stdout io.Writer = os.Stdout
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	logger, closeLog := newLogger(cfg.LogLevel)
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "preload")
	if err != nil {
		fmt.Fprintf(stdout, "failed to initialize tracer: %v\n", err)
		return 1
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", "err", err)
		}
	}()

	var mirror service.Mirror
	redisClient, err := initRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, continuing without mirror", "err", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		mirror = cache.NewRedisMirror(redisClient, cfg.RedisTTL())
	}

	cg := newCoinGeckoProviderFunc(tracer, logger, cfg.Provider())
	market, err := service.NewMarketDataService(tracer, logger, cg, cache.NewMarketCache(), mirror, cfg.Service())
	if err != nil {
		fmt.Fprintf(stdout, "failed to create market data service: %v\n", err)
		return 1
	}

	assets := market.GetRankedList(ctx)
	if len(assets) == 0 {
		fmt.Fprintln(stdout, "No ranked assets available from CoinGecko.")
		return 1
	}

	p := newProgramFunc(tui.NewPreloadModel(assets, market.Config().Intervals))
	queue := progress.NewQueue(progress.Fanout{tui.NewProgramSink(p), progress.NewLogSink(logger)})
	market.SetProgressSink(queue)

	done := make(chan service.PreloadReport, 1)
	go func() {
		report := market.PreloadAll(ctx)
		queue.Close()
		p.Send(tui.PreloadDoneMsg{Report: report})
		done <- report
	}()

	final, err := p.Run()
	if err != nil {
		logger.Error("terminal ui failed", "err", err)
	}
	if m, ok := final.(tui.PreloadModel); ok && m.Aborted() {
		cancel()
		<-done
		fmt.Fprintln(stdout, "Preload aborted.")
		return 130
	}
	report := <-done

	fmt.Fprintln(stdout, tui.AssetTable(market.GetRankedList(ctx)))
	fmt.Fprintln(stdout, tui.FailureSummary(market.FailedLoads()))
	fmt.Fprintf(stdout, "%d of %d series loaded in %s (%d recovered).\n",
		report.Succeeded, report.Tasks, report.Elapsed.Round(time.Millisecond), report.Recovered)

	if report.Cancelled || len(report.Failed) > 0 {
		return 2
	}
	return 0
}

// newLogger writes to PRELOAD_LOG_FILE when set. Otherwise logging is
// discarded so it does not interleave with the progress display.
func newLogger(level log.Level) (*log.Logger, func()) {
	path := strings.TrimSpace(os.Getenv("PRELOAD_LOG_FILE"))
	if path == "" {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(stdout, "cannot open log file %s: %v\n", path, err)
		return log.New(io.Discard), func() {}
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, func() { _ = f.Close() }
}

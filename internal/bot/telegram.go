package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/ta"

	"github.com/charmbracelet/log"
	tele "gopkg.in/telebot.v3"
)

type MarketReader interface {
	GetRankedList(ctx context.Context) []domain.Asset
	GetSeries(ctx context.Context, assetID, selector string) domain.Series
	RankedAsset(assetID string) (domain.Asset, bool)
}

// StartTelegramBot serves /ping, /top and /chart until ctx is cancelled. An
// empty token skips startup.
func StartTelegramBot(ctx context.Context, token string, logger *log.Logger, market MarketReader) error {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("telegram")
	if token == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	cmds := &commands{market: market}
	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/top", func(c tele.Context) error {
		return c.Send(cmds.top(ctx))
	})
	b.Handle("/chart", func(c tele.Context) error {
		return c.Send(cmds.chart(ctx, c.Args()))
	})

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	logger.Info("Telegram bot started")
	go b.Start()
	return nil
}

type commands struct {
	market MarketReader
}

func (c *commands) top(ctx context.Context) string {
	assets := c.market.GetRankedList(ctx)
	if len(assets) == 0 {
		return "Market data is unavailable right now, try again shortly."
	}

	var sb strings.Builder
	for i, a := range assets {
		fmt.Fprintf(&sb, "%d. %s (%s) %s %s\n   Cap %s  Vol %s\n",
			i+1, a.Name, a.Symbol, a.PriceFormatted(), a.ChangeFormatted(), a.MarketCap, a.Volume)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *commands) chart(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /chart bitcoin [" + intervalNames() + "]"
	}

	id := strings.ToLower(strings.TrimSpace(args[0]))
	iv := domain.Intervals[0]
	if len(args) > 1 {
		found, ok := domain.IntervalByName(strings.ToUpper(args[1]))
		if !ok {
			return fmt.Sprintf("Unknown interval: %s\nSupported: %s", args[1], intervalNames())
		}
		iv = found
	}

	series := c.market.GetSeries(ctx, id, iv.Selector)
	title := id
	if a, ok := c.market.RankedAsset(id); ok {
		title = fmt.Sprintf("%s (%s)", a.Name, a.Symbol)
	}
	return summarizeSeries(title, iv, series)
}

func summarizeSeries(title string, iv domain.Interval, series domain.Series) string {
	sum, ok := ta.Summarize(series)
	if !ok {
		return fmt.Sprintf("No %s data for %s.", iv.Name, title)
	}
	window := domain.Asset{Price: sum.Last, Change24h: sum.ChangePct}

	msg := fmt.Sprintf("%s %s (%d points)\nFrom %s to %s\nLast: %s (%s)\nLow: %s  High: %s",
		title, iv.Name, sum.Points,
		sum.From.Format("2006-01-02 15:04"), sum.To.Format("2006-01-02 15:04"),
		window.PriceFormatted(), window.ChangeFormatted(),
		domain.FormatMoneyShort(sum.Low), domain.FormatMoneyShort(sum.High))
	if sum.RSI.Valid {
		msg += fmt.Sprintf("\nRSI(%d): %.1f", ta.RSIPeriod, sum.RSI.Value)
	}
	return msg
}

func intervalNames() string {
	names := make([]string, 0, len(domain.Intervals))
	for _, iv := range domain.Intervals {
		names = append(names, iv.Name)
	}
	return strings.Join(names, "|")
}

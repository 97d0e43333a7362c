// Package collector holds the stages of a collection run.
package collector

import (
	"context"

	"findash/src/chart"
	"findash/src/common"
	"findash/src/config"
	"findash/src/fetcher"
	"findash/src/mirror"
	"findash/src/persist"
	"findash/src/storage"
	"findash/src/table"
)

type EquitySource interface {
	FetchAll(ctx context.Context, symbols []string) []*table.Table
}

type CoinSource interface {
	FetchMarketChart(ctx context.Context, coinID, column string) *table.Table
}

type SentimentSource interface {
	FetchHistory(ctx context.Context) (*table.Table, error)
}

type Saver interface {
	Save(t *table.Table, name string, area storage.Area) error
}

type Charter interface {
	Render(t *table.Table, spec chart.Spec) error
}

// Build wires the stages of a run in execution order.
func Build(cfg *config.Config, root *storage.Root, layout *storage.Layout, date string) []common.Component {
	httpOpts := fetcher.Options{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}
	saver := persist.NewWriter(layout, date)
	charter := chart.NewRenderer(layout.Charts, date, chart.Options{
		DPI:    cfg.Charts.DPI,
		Width:  cfg.Charts.Width,
		Height: cfg.Charts.Height,
		HTML:   cfg.Charts.HTML,
	})

	return []common.Component{
		&Stocks{
			Source: fetcher.NewYahoo(fetcher.YahooOptions{
				Options:    httpOpts,
				BaseURL:    cfg.Stocks.BaseURL,
				HistoryURL: cfg.Stocks.HistURL,
				Pause:      cfg.Stocks.Pause,
			}),
			Symbols:   cfg.Stocks.Symbols,
			RawName:   cfg.Stocks.RawName,
			CloseName: cfg.Stocks.CloseName,
			Saver:     saver,
			Charter:   enabled(cfg.Charts.Stocks, charter),
			Date:      date,
		},
		&Crypto{
			Source: fetcher.NewCoinGecko(fetcher.CoinGeckoOptions{
				Options:     httpOpts,
				BaseURL:     cfg.Crypto.BaseURL,
				Currency:    cfg.Crypto.Currency,
				Days:        cfg.Crypto.Days,
				MaxAttempts: cfg.Crypto.MaxAttempts,
				BaseBackoff: cfg.Crypto.BaseBackoff,
				MaxJitter:   cfg.Crypto.MaxJitter,
			}),
			Coins:    cfg.Crypto.Coins,
			Artifact: cfg.Crypto.Name,
			Saver:    saver,
			Charter:  enabled(cfg.Charts.Crypto, charter),
			Date:     date,
		},
		&Sentiment{
			Source:   fetcher.NewFearGreed(cfg.Sentiment.BaseURL, httpOpts),
			Artifact: cfg.Sentiment.Name,
			Saver:    saver,
			Charter:  enabled(cfg.Charts.Sentiment, charter),
			Date:     date,
		},
		&Sync{Mover: &mirror.Mover{Local: root.Local, Cloud: root.Cloud}},
	}
}

func enabled(on bool, c Charter) Charter {
	if !on {
		return nil
	}
	return c
}

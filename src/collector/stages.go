package collector

import (
	"context"
	"fmt"
	"strings"

	"findash/src/chart"
	"findash/src/common"
	"findash/src/config"
	"findash/src/mirror"
	"findash/src/storage"
	"findash/src/table"
)

// Stocks saves the joined daily bars as raw data and the close prices, one
// column per symbol, as processed data.
type Stocks struct {
	Source    EquitySource
	Symbols   []string
	RawName   string
	CloseName string
	Saver     Saver
	Charter   Charter
	Date      string
}

func (s *Stocks) Name() string { return "stocks" }

func (s *Stocks) Run(ctx context.Context) error {
	tables := s.Source.FetchAll(ctx, s.Symbols)
	if len(tables) == 0 {
		common.Logger.Sugar().Warn("no stock data")
		return nil
	}
	common.Logger.Sugar().Infof("[stocks] fetched %d of %d symbols", len(tables), len(s.Symbols))
	raw, err := table.Join(tables...)
	if err != nil {
		return err
	}
	if err := s.Saver.Save(raw, s.RawName, storage.Raw); err != nil {
		return err
	}

	closes, err := CloseTable(raw)
	if err != nil {
		return err
	}
	if err := s.Saver.Save(closes, s.CloseName, storage.Processed); err != nil {
		return err
	}
	if s.Charter == nil {
		return nil
	}
	return renderPair(s.Charter, closes, "stocks", "MAG7 plus Gold", s.Date)
}

// CloseTable keeps the {symbol}_Close columns renamed to {symbol}.
func CloseTable(raw *table.Table) (*table.Table, error) {
	closes := raw.Select(func(name string) bool { return strings.HasSuffix(name, "_Close") })
	return closes.Rename(func(name string) string { return strings.TrimSuffix(name, "_Close") })
}

// Crypto saves one price column per coin that could be fetched.
type Crypto struct {
	Source   CoinSource
	Coins    []config.Coin
	Artifact string
	Saver    Saver
	Charter  Charter
	Date     string
}

func (c *Crypto) Name() string { return "crypto" }

func (c *Crypto) Run(ctx context.Context) error {
	var series []*table.Table
	for _, coin := range c.Coins {
		if t := c.Source.FetchMarketChart(ctx, coin.ID, coin.Symbol); t != nil {
			series = append(series, t)
		}
	}
	if len(series) == 0 {
		common.Logger.Sugar().Warn("no crypto data")
		return nil
	}
	prices, err := table.Join(series...)
	if err != nil {
		return err
	}
	if err := c.Saver.Save(prices, c.Artifact, storage.Processed); err != nil {
		return err
	}
	if c.Charter == nil {
		return nil
	}
	return renderPair(c.Charter, prices, "crypto", "Crypto "+strings.Join(prices.ColumnNames(), " "), c.Date)
}

// renderPair draws the cumulative return and the close price charts.
func renderPair(c Charter, closes *table.Table, prefix, label, date string) error {
	err := c.Render(closes.CumulativeReturns(), chart.Spec{
		Name:   prefix + "_cumret",
		Title:  fmt.Sprintf("%s cumulative return as of %s", label, date),
		YLabel: "Cumulative return",
	})
	if err != nil {
		return err
	}
	return c.Render(closes, chart.Spec{
		Name:   prefix + "_close",
		Title:  fmt.Sprintf("%s close price as of %s", label, date),
		YLabel: "USD",
	})
}

// Sentiment never fails the run: every error, panics included, is logged and the
// stage ends without output.
type Sentiment struct {
	Source   SentimentSource
	Artifact string
	Saver    Saver
	Charter  Charter
	Date     string
}

func (s *Sentiment) Name() string { return "sentiment" }

func (s *Sentiment) Run(ctx context.Context) error {
	defer common.HandlePanic(s.Name())
	if err := s.run(ctx); err != nil {
		common.Logger.Sugar().Errorf("[FNG] failed %v", err)
	}
	return nil
}

func (s *Sentiment) run(ctx context.Context) error {
	fng, err := s.Source.FetchHistory(ctx)
	if err != nil {
		return err
	}
	if err := s.Saver.Save(fng, s.Artifact, storage.Processed); err != nil {
		return err
	}
	if s.Charter == nil {
		return nil
	}
	return s.Charter.Render(fng, SentimentChart(s.Artifact, s.Date))
}

func SentimentChart(name, date string) chart.Spec {
	return chart.Spec{
		Name:    name,
		Title:   "Crypto Fear and Greed Index as of " + date,
		YLabel:  "Index",
		Columns: []string{"value"},
		Height:  4,
	}
}

type Sync struct {
	Mover *mirror.Mover
}

func (s *Sync) Name() string { return "sync" }

func (s *Sync) Run(context.Context) error {
	s.Mover.Sync()
	return nil
}

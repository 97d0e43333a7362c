package collector

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"findash/src/chart"
	"findash/src/config"
	"findash/src/persist"
	"findash/src/storage"
	"findash/src/table"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 10, d, 0, 0, 0, 0, time.UTC)
}

func bars(t *testing.T, symbol string, days ...int) *table.Table {
	index := make([]time.Time, len(days))
	var cols []*table.Column
	for i, d := range days {
		index[i] = day(d)
	}
	for _, f := range []string{"Open", "High", "Low", "Close", "Volume"} {
		values := make([]float64, len(days))
		for i, d := range days {
			values[i] = float64(d)
		}
		cols = append(cols, table.NewFloatColumn(symbol+"_"+f, values))
	}
	tb, err := table.New("Date", index, cols...)
	require.NoError(t, err)
	return tb
}

func prices(t *testing.T, column string, values ...float64) *table.Table {
	index := make([]time.Time, len(values))
	for i := range values {
		index[i] = day(i + 1)
	}
	tb, err := table.New("timestamp", index, table.NewFloatColumn(column, values))
	require.NoError(t, err)
	return tb
}

type fakeEquity struct{ tables []*table.Table }

func (f *fakeEquity) FetchAll(context.Context, []string) []*table.Table { return f.tables }

type fakeCoins struct {
	data  map[string]*table.Table
	calls []string
}

func (f *fakeCoins) FetchMarketChart(_ context.Context, id, column string) *table.Table {
	f.calls = append(f.calls, id)
	return f.data[id]
}

type fakeSentiment struct {
	t   *table.Table
	err error
}

func (f *fakeSentiment) FetchHistory(context.Context) (*table.Table, error) { return f.t, f.err }

type saved struct {
	name string
	area storage.Area
	t    *table.Table
}

type fakeSaver struct {
	saved []saved
	err   error
}

func (f *fakeSaver) Save(t *table.Table, name string, area storage.Area) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, saved{name: name, area: area, t: t})
	return nil
}

type fakeCharter struct {
	specs []chart.Spec
	err   error
	panic bool
}

func (f *fakeCharter) Render(_ *table.Table, spec chart.Spec) error {
	if f.panic {
		panic("boom")
	}
	f.specs = append(f.specs, spec)
	return f.err
}

func TestStocks(t *testing.T) {
	saver := &fakeSaver{}
	charter := &fakeCharter{}
	s := &Stocks{
		Source:    &fakeEquity{tables: []*table.Table{bars(t, "PLTR", 1, 2), bars(t, "GC=F", 2, 3)}},
		Symbols:   []string{"PLTR", "TSLA", "GC=F"},
		RawName:   "mag7_gold",
		CloseName: "mag7_gold_close",
		Saver:     saver,
		Charter:   charter,
		Date:      "2025-10-19",
	}
	require.NoError(t, s.Run(context.Background()))
	require.Len(t, saver.saved, 2)

	raw := saver.saved[0]
	require.Equal(t, "mag7_gold", raw.name)
	require.Equal(t, storage.Raw, raw.area)
	require.Equal(t, 3, raw.t.Len())
	require.Len(t, raw.t.Columns, 10)

	closes := saver.saved[1]
	require.Equal(t, "mag7_gold_close", closes.name)
	require.Equal(t, storage.Processed, closes.area)
	require.Equal(t, []string{"PLTR", "GC=F"}, closes.t.ColumnNames())
	require.True(t, math.IsNaN(closes.t.Column("PLTR").Floats[2]))

	require.Len(t, charter.specs, 2)
	require.Equal(t, "stocks_cumret", charter.specs[0].Name)
	require.Equal(t, "stocks_close", charter.specs[1].Name)
}

func TestStocksNoData(t *testing.T) {
	saver := &fakeSaver{}
	s := &Stocks{Source: &fakeEquity{}, Saver: saver}
	require.NoError(t, s.Run(context.Background()))
	require.Empty(t, saver.saved)
}

func TestStocksWriteFailureIsFatal(t *testing.T) {
	s := &Stocks{
		Source: &fakeEquity{tables: []*table.Table{bars(t, "PLTR", 1)}},
		Saver:  &fakeSaver{err: errors.New("disk full")},
	}
	require.Error(t, s.Run(context.Background()))
}

func TestCrypto(t *testing.T) {
	coins := &fakeCoins{data: map[string]*table.Table{
		"bitcoin": prices(t, "BTC", 1, 2, 3),
		"solana":  prices(t, "SOL", 4, 5),
	}}
	saver := &fakeSaver{}
	c := &Crypto{
		Source: coins,
		Coins: []config.Coin{
			{ID: "bitcoin", Symbol: "BTC"},
			{ID: "ethereum", Symbol: "ETH"},
			{ID: "solana", Symbol: "SOL"},
		},
		Artifact: "crypto_prices",
		Saver:    saver,
	}
	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, []string{"bitcoin", "ethereum", "solana"}, coins.calls)
	require.Len(t, saver.saved, 1)
	require.Equal(t, "crypto_prices", saver.saved[0].name)
	require.Equal(t, storage.Processed, saver.saved[0].area)
	require.Equal(t, []string{"BTC", "SOL"}, saver.saved[0].t.ColumnNames())
	require.Equal(t, 3, saver.saved[0].t.Len())
}

func TestCryptoNoData(t *testing.T) {
	saver := &fakeSaver{}
	c := &Crypto{Source: &fakeCoins{}, Coins: []config.Coin{{ID: "bitcoin", Symbol: "BTC"}}, Saver: saver}
	require.NoError(t, c.Run(context.Background()))
	require.Empty(t, saver.saved)
}

func TestSentiment(t *testing.T) {
	t.Run("Saved", func(t *testing.T) {
		saver := &fakeSaver{}
		charter := &fakeCharter{}
		s := &Sentiment{
			Source:   &fakeSentiment{t: prices(t, "value", 40, 50)},
			Artifact: "fear_greed_index",
			Saver:    saver,
			Charter:  charter,
			Date:     "2025-10-19",
		}
		require.NoError(t, s.Run(context.Background()))
		require.Len(t, saver.saved, 1)
		require.Len(t, charter.specs, 1)
		require.Equal(t, "fear_greed_index", charter.specs[0].Name)
		require.Equal(t, []string{"value"}, charter.specs[0].Columns)
		require.Equal(t, "Crypto Fear and Greed Index as of 2025-10-19", charter.specs[0].Title)
	})
	t.Run("FetchFailure", func(t *testing.T) {
		saver := &fakeSaver{}
		s := &Sentiment{Source: &fakeSentiment{err: errors.New("timeout")}, Saver: saver}
		require.NoError(t, s.Run(context.Background()))
		require.Empty(t, saver.saved)
	})
	t.Run("WriteFailureIsSwallowed", func(t *testing.T) {
		s := &Sentiment{Source: &fakeSentiment{t: prices(t, "value", 1)}, Saver: &fakeSaver{err: errors.New("disk full")}}
		require.NoError(t, s.Run(context.Background()))
	})
	t.Run("Panic", func(t *testing.T) {
		s := &Sentiment{
			Source:  &fakeSentiment{t: prices(t, "value", 1)},
			Saver:   &fakeSaver{},
			Charter: &fakeCharter{panic: true},
		}
		require.NotPanics(t, func() { require.NoError(t, s.Run(context.Background())) })
	})
}

func TestBuild(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	root := &storage.Root{Path: t.TempDir(), Local: t.TempDir()}
	components := Build(cfg, root, storage.NewLayout(root.Path), "2025-10-19")

	var names []string
	for _, c := range components {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"stocks", "crypto", "sentiment", "sync"}, names)
	require.Nil(t, components[0].(*Stocks).Charter)
	require.Nil(t, components[1].(*Crypto).Charter)
	require.NotNil(t, components[2].(*Sentiment).Charter)
	require.Equal(t, root.Local, components[3].(*Sync).Mover.Local)
}

func TestReplot(t *testing.T) {
	root := t.TempDir()
	layout := storage.NewLayout(root)
	require.NoError(t, layout.Ensure())
	w := persist.NewWriter(layout, "2025-10-19")
	require.NoError(t, w.Save(prices(t, "value", 10, 20, 30), "fear_greed_index", storage.Processed))
	require.NoError(t, w.Save(prices(t, "BTC", 1, 2), "crypto_prices", storage.Processed))
	require.NoError(t, os.WriteFile(filepath.Join(layout.Processed, "2025-10-18_crypto_prices.csv"), []byte("x"), 0o644))

	charter := &fakeCharter{}
	r := &Replot{Dir: layout.Processed, Date: "2025-10-19", Sentiment: "fear_greed_index", Charter: charter}
	require.NoError(t, r.Run(context.Background()))
	require.Len(t, charter.specs, 2)
	require.Equal(t, "crypto_prices", charter.specs[0].Name)
	require.Equal(t, "fear_greed_index", charter.specs[1].Name)
	require.Equal(t, []string{"value"}, charter.specs[1].Columns)
}

package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"findash/src/common"
	"findash/src/table"
)

const (
	yahooBaseURL    = "https://query1.finance.yahoo.com"
	yahooHistoryURL = "https://query2.finance.yahoo.com"
)

var ohlcvFields = []string{"Open", "High", "Low", "Close", "Volume"}

type YahooOptions struct {
	Options
	BaseURL    string
	HistoryURL string
	// Pause between two symbols of a batch.
	Pause time.Duration
}

// Yahoo fetches one year of auto-adjusted daily bars. The chart range query is
// tried first and the explicit period history query second.
type Yahoo struct {
	requester
	baseURL    string
	historyURL string
	pause      time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
}

func NewYahoo(opts YahooOptions) *Yahoo {
	y := &Yahoo{
		requester:  newRequester("yahoo", opts.Options),
		baseURL:    opts.BaseURL,
		historyURL: opts.HistoryURL,
		pause:      opts.Pause,
		now:        time.Now,
		sleep:      time.Sleep,
	}
	if y.baseURL == "" {
		y.baseURL = yahooBaseURL
	}
	if y.historyURL == "" {
		y.historyURL = yahooHistoryURL
	}
	return y
}

// FetchDaily returns the bars of symbol with columns {symbol}_{Open,High,Low,Close,Volume},
// or nil when both methods failed.
func (y *Yahoo) FetchDaily(ctx context.Context, symbol string) *table.Table {
	t, err := y.download(ctx, symbol)
	if err == nil {
		return t
	}
	common.Logger.Sugar().Warnf("[yahoo] download failed %s: %v  try history fallback", symbol, err)
	t, err = y.history(ctx, symbol)
	if err == nil {
		return t
	}
	common.Logger.Sugar().Errorf("[yahoo] history failed %s: %v", symbol, err)
	return nil
}

// FetchAll fetches every symbol in order and skips the ones without data.
func (y *Yahoo) FetchAll(ctx context.Context, symbols []string) []*table.Table {
	var tables []*table.Table
	for i, symbol := range symbols {
		if i > 0 && y.pause > 0 {
			y.sleep(y.pause)
		}
		if t := y.FetchDaily(ctx, symbol); t != nil {
			tables = append(tables, t)
		}
	}
	return tables
}

func (y *Yahoo) download(ctx context.Context, symbol string) (*table.Table, error) {
	query := url.Values{}
	query.Set("range", "1y")
	query.Set("interval", "1d")
	query.Set("includeAdjustedClose", "true")
	query.Set("events", "div,splits")
	return y.chart(ctx, y.baseURL, symbol, query)
}

func (y *Yahoo) history(ctx context.Context, symbol string) (*table.Table, error) {
	end := y.now()
	query := url.Values{}
	query.Set("period1", strconv.FormatInt(end.AddDate(-1, 0, 0).Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", "1d")
	query.Set("includeAdjustedClose", "true")
	return y.chart(ctx, y.historyURL, symbol, query)
}

func (y *Yahoo) chart(ctx context.Context, base, symbol string, query url.Values) (*table.Table, error) {
	body, err := y.get(ctx, base+"/v8/finance/chart/"+url.PathEscape(symbol), query)
	if err != nil {
		return nil, err
	}
	return parseYahooChart(body, symbol)
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset            int64  `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func parseYahooChart(body []byte, symbol string) (*table.Table, error) {
	var raw yahooChart
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse chart: %v", ErrNoData, err)
	}
	if e := raw.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, e.Code, e.Description)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: empty df", ErrNoData)
	}
	res := raw.Chart.Result[0]
	quote := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}
	loc := exchangeLocation(res.Meta.ExchangeTimezoneName, res.Meta.GMTOffset)

	var index []time.Time
	cols := make([][]float64, len(ohlcvFields))
	for i, ts := range res.Timestamp {
		closePx := at(quote.Close, i)
		if math.IsNaN(closePx) {
			continue
		}
		row := []float64{at(quote.Open, i), at(quote.High, i), at(quote.Low, i), closePx, at(quote.Volume, i)}
		if a := at(adj, i); !math.IsNaN(a) && closePx != 0 {
			ratio := a / closePx
			for f := 0; f < 4; f++ {
				row[f] *= ratio
			}
		}
		local := time.Unix(ts, 0).In(loc)
		index = append(index, time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC))
		for f := range cols {
			cols[f] = append(cols[f], row[f])
		}
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("%w: empty df", ErrNoData)
	}
	columns := make([]*table.Column, len(ohlcvFields))
	for f, field := range ohlcvFields {
		columns[f] = table.NewFloatColumn(symbol+"_"+field, cols[f])
	}
	t, err := table.New("Date", index, columns...)
	if err != nil {
		return nil, err
	}
	return t.Sorted(), nil
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}

func exchangeLocation(name string, offset int64) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", int(offset))
}

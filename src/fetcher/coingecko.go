package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"findash/src/common"
	"findash/src/table"

	"github.com/cenkalti/backoff/v5"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

type CoinGeckoOptions struct {
	Options
	BaseURL     string
	Currency    string
	Days        int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxJitter   time.Duration
}

// CoinGecko fetches daily market_chart prices with a bounded number of attempts.
type CoinGecko struct {
	requester
	baseURL     string
	currency    string
	days        int
	maxAttempts uint
	newBackOff  func() backoff.BackOff
}

func NewCoinGecko(opts CoinGeckoOptions) *CoinGecko {
	c := &CoinGecko{
		requester:   newRequester("coingecko", opts.Options),
		baseURL:     opts.BaseURL,
		currency:    opts.Currency,
		days:        opts.Days,
		maxAttempts: uint(opts.MaxAttempts),
	}
	if c.baseURL == "" {
		c.baseURL = coingeckoBaseURL
	}
	if c.currency == "" {
		c.currency = "usd"
	}
	if c.days == 0 {
		c.days = 365
	}
	if c.maxAttempts == 0 {
		c.maxAttempts = 4
	}
	base, jitter := opts.BaseBackoff, opts.MaxJitter
	if base == 0 {
		base = time.Second
	}
	c.newBackOff = func() backoff.BackOff {
		return &DoublingBackOff{Base: base, MaxJitter: jitter}
	}
	return c
}

// FetchMarketChart returns the price series of coinID as a single column named
// column, or nil once every attempt failed.
func (c *CoinGecko) FetchMarketChart(ctx context.Context, coinID, column string) *table.Table {
	attempt := 0
	operation := func() (*table.Table, error) {
		attempt++
		t, err := c.fetchOnce(ctx, coinID, column)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, ErrNoData) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	notify := func(err error, wait time.Duration) {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.RateLimited() {
			common.Logger.Sugar().Warnf("[CG] 429 %s retry in %.1fs", coinID, wait.Seconds())
			return
		}
		common.Logger.Sugar().Warnf("[CG] error %s attempt %d: %v  retry in %.1fs", coinID, attempt, err, wait.Seconds())
	}

	t, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil {
		common.Logger.Sugar().Errorf("[CG] failed %s after %d attempts: %v", coinID, attempt, err)
		return nil
	}
	return t
}

func (c *CoinGecko) fetchOnce(ctx context.Context, coinID, column string) (*table.Table, error) {
	query := url.Values{}
	query.Set("vs_currency", c.currency)
	query.Set("days", strconv.Itoa(c.days))
	body, err := c.get(ctx, fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, url.PathEscape(coinID)), query)
	if err != nil {
		return nil, err
	}
	return parseMarketChart(body, column)
}

func parseMarketChart(body []byte, column string) (*table.Table, error) {
	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse market chart: %v", ErrNoData, err)
	}
	if len(raw.Prices) == 0 {
		return nil, fmt.Errorf("%w: no prices key", ErrNoData)
	}
	index := make([]time.Time, 0, len(raw.Prices))
	prices := make([]float64, 0, len(raw.Prices))
	for _, pt := range raw.Prices {
		if len(pt) < 2 {
			return nil, fmt.Errorf("%w: price point %v", ErrNoData, pt)
		}
		index = append(index, time.UnixMilli(int64(pt[0])).UTC())
		prices = append(prices, pt[1])
	}
	t, err := table.New("timestamp", index, table.NewFloatColumn(column, prices))
	if err != nil {
		return nil, err
	}
	return t.Sorted(), nil
}

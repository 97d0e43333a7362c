package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"findash/src/table"
)

const fearGreedBaseURL = "https://api.alternative.me"

type FearGreed struct {
	requester
	baseURL string
}

func NewFearGreed(baseURL string, opts Options) *FearGreed {
	if baseURL == "" {
		baseURL = fearGreedBaseURL
	}
	return &FearGreed{
		requester: newRequester("fear & greed", opts),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// FetchHistory returns the whole index history sorted by timestamp. It makes a
// single attempt.
func (p *FearGreed) FetchHistory(ctx context.Context) (*table.Table, error) {
	query := url.Values{}
	query.Set("limit", "0")
	query.Set("format", "json")
	body, err := p.get(ctx, p.baseURL+"/fng/", query)
	if err != nil {
		return nil, err
	}
	return parseFearGreed(body)
}

func parseFearGreed(body []byte) (*table.Table, error) {
	var payload struct {
		Data []struct {
			Value           string `json:"value"`
			Classification  string `json:"value_classification"`
			Timestamp       string `json:"timestamp"`
			TimeUntilUpdate string `json:"time_until_update"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode fear & greed response: %v", ErrNoData, err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("%w: fear & greed response has no rows", ErrNoData)
	}

	n := len(payload.Data)
	index := make([]time.Time, n)
	values := make([]float64, n)
	classes := make([]string, n)
	untilUpdate := make([]float64, n)
	for i, row := range payload.Data {
		ts, err := strconv.ParseInt(strings.TrimSpace(row.Timestamp), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parse fear & greed timestamp: %v", ErrNoData, err)
		}
		if ts > 1_000_000_000_000 {
			ts = ts / 1000
		}
		index[i] = time.Unix(ts, 0).UTC()
		values[i] = coerceFloat(row.Value)
		classes[i] = row.Classification
		untilUpdate[i] = coerceFloat(row.TimeUntilUpdate)
	}
	t, err := table.New("timestamp", index,
		table.NewFloatColumn("value", values),
		table.NewTextColumn("value_classification", classes),
		table.NewFloatColumn("time_until_update", untilUpdate),
	)
	if err != nil {
		return nil, err
	}
	return t.Sorted(), nil
}

// coerceFloat maps anything that is not a number to NaN.
func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

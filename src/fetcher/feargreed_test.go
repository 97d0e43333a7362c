package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFearGreedFetchHistory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fng/", r.URL.Path)
			require.Equal(t, "0", r.URL.Query().Get("limit"))
			require.Equal(t, "json", r.URL.Query().Get("format"))
			fmt.Fprint(w, `{"name":"Fear and Greed Index","data":[
				{"value":"63","value_classification":"Greed","timestamp":"1771009800","time_until_update":"1111"},
				{"value":"n/a","value_classification":"Neutral","timestamp":"1770923400"},
				{"value":"20","value_classification":"Extreme Fear","timestamp":"1770837000000"}
			]}`)
		}))
		defer srv.Close()

		tb, err := NewFearGreed(srv.URL+"/", Options{}).FetchHistory(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"value", "value_classification", "time_until_update"}, tb.ColumnNames())
		require.Equal(t, []time.Time{
			time.Unix(1770837000, 0).UTC(),
			time.Unix(1770923400, 0).UTC(),
			time.Unix(1771009800, 0).UTC(),
		}, tb.Index)
		values := tb.Column("value").Floats
		require.Equal(t, 20.0, values[0])
		require.True(t, math.IsNaN(values[1]))
		require.Equal(t, 63.0, values[2])
		require.Equal(t, []string{"Extreme Fear", "Neutral", "Greed"}, tb.Column("value_classification").Strings)
		require.Equal(t, 1111.0, tb.Column("time_until_update").Floats[2])
		require.True(t, math.IsNaN(tb.Column("time_until_update").Floats[0]))
	})

	t.Run("SingleAttempt", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewFearGreed(srv.URL, Options{}).FetchHistory(context.Background())
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		require.EqualValues(t, 1, calls.Load())
	})

	for name, body := range map[string]string{
		"Malformed":    `<html>`,
		"NoRows":       `{"data":[]}`,
		"BadTimestamp": `{"data":[{"value":"1","timestamp":"yesterday"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			tb, err := NewFearGreed(srv.URL, Options{}).FetchHistory(context.Background())
			require.ErrorIs(t, err, ErrNoData)
			require.Nil(t, tb)
		})
	}
}

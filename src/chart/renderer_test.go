package chart

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"findash/src/table"

	"github.com/stretchr/testify/require"
)

func fearGreed(t *testing.T) *table.Table {
	index := make([]time.Time, 20)
	values := make([]float64, 20)
	labels := make([]string, 20)
	for i := range index {
		index[i] = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		values[i] = float64(30 + i)
		labels[i] = "Fear"
	}
	values[5] = math.NaN()
	tb, err := table.New("timestamp", index,
		table.NewFloatColumn("value", values),
		table.NewTextColumn("value_classification", labels))
	require.NoError(t, err)
	return tb
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, "2025-10-19", Options{HTML: true, Width: 4, Height: 2, DPI: 50})
	err := r.Render(fearGreed(t), Spec{
		Name:    "fear_greed_index",
		Title:   "Crypto Fear and Greed Index as of 2025-10-19",
		YLabel:  "Index",
		Columns: []string{"value"},
	})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "2025-10-19_fear_greed_index.png"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 100, img.Bounds().Dy())

	html, err := os.ReadFile(filepath.Join(dir, "2025-10-19_fear_greed_index.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "Crypto Fear and Greed Index")
}

func TestRenderWithoutHTML(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, "2025-10-19", Options{Width: 2, Height: 1, DPI: 40})
	require.NoError(t, r.Render(fearGreed(t), Spec{Name: "fng"}))
	require.FileExists(t, filepath.Join(dir, "2025-10-19_fng.png"))
	require.NoFileExists(t, filepath.Join(dir, "2025-10-19_fng.html"))
}

func TestRenderNoNumericData(t *testing.T) {
	r := NewRenderer(t.TempDir(), "2025-10-19", Options{})
	err := r.Render(fearGreed(t), Spec{Name: "labels", Columns: []string{"value_classification"}})
	require.Error(t, err)
}

func TestCollect(t *testing.T) {
	got := collect(fearGreed(t), nil)
	require.Len(t, got, 1)
	require.Equal(t, "value", got[0].name)
	require.Len(t, got[0].points, 19)
}

package collector

import (
	"context"
	"path/filepath"
	"strings"

	"findash/src/chart"
	"findash/src/common"
	"findash/src/table"
)

// Replot draws again a chart for every processed CSV of one run date.
type Replot struct {
	Dir       string
	Date      string
	Sentiment string
	Charter   Charter
}

func (r *Replot) Name() string { return "replot" }

func (r *Replot) Run(ctx context.Context) error {
	prefix := r.Date + "_"
	files, err := common.ListFilesWith(r.Dir, prefix, ".csv")
	if err != nil {
		return err
	}
	common.Logger.Sugar().Infof("Replot %d files for %s", len(files), r.Date)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := table.ReadCSVFile(filepath.Join(r.Dir, file))
		if err != nil {
			common.Logger.Sugar().Errorf("Replot read %s error: %v", file, err)
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, prefix), ".csv")
		spec := chart.Spec{
			Name:   name,
			Title:  name + " as of " + r.Date,
			YLabel: "USD",
		}
		if name == r.Sentiment {
			spec = SentimentChart(name, r.Date)
		}
		if err := r.Charter.Render(t, spec); err != nil {
			common.Logger.Sugar().Errorf("Replot render %s error: %v", file, err)
		}
	}
	return nil
}

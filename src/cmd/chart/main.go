package main

import (
	"context"
	"os"
	"time"

	"findash/src/chart"
	"findash/src/collector"
	"findash/src/common"
	"findash/src/config"
	"findash/src/storage"
)

// Redraws the charts of a run date, today by default, from its processed CSV files.
func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		common.Logger.Sugar().Fatalf("Failed to load config: %v", err)
	}
	date := time.Now().In(cfg.Location()).Format(time.DateOnly)
	if len(os.Args) > 1 {
		if _, err := time.Parse(time.DateOnly, os.Args[1]); err != nil {
			common.Logger.Sugar().Fatalf("Invalid date %q: %v", os.Args[1], err)
		}
		date = os.Args[1]
	}

	root := storage.NewResolver(cfg.Storage).Resolve()
	layout := storage.NewLayout(root.Path)

	components := []common.Component{
		&collector.Replot{
			Dir:       layout.Processed,
			Date:      date,
			Sentiment: cfg.Sentiment.Name,
			Charter: chart.NewRenderer(layout.Charts, date, chart.Options{
				DPI:    cfg.Charts.DPI,
				Width:  cfg.Charts.Width,
				Height: cfg.Charts.Height,
				HTML:   cfg.Charts.HTML,
			}),
		},
	}
	for _, component := range components {
		if err := component.Run(context.Background()); err != nil {
			common.Logger.Sugar().Fatalf("Failed to run component: %v", err)
		}
	}
}

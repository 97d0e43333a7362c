package main

import (
	"context"
	"time"

	"findash/src/collector"
	"findash/src/common"
	"findash/src/config"
	"findash/src/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		common.Logger.Sugar().Fatalf("Failed to load config: %v", err)
	}
	common.InitLogger(common.LogOptions{
		Dir:     cfg.Path(cfg.Log.Dir),
		File:    cfg.Log.File,
		Debug:   cfg.Log.Debug,
		MaxSize: cfg.Log.MaxSize,
		MaxAge:  cfg.Log.MaxAge,
	})
	common.Logger = common.Logger.With(zap.String("run", uuid.NewString()))
	defer common.Logger.Sync()

	root := storage.NewResolver(cfg.Storage).Resolve()
	layout := storage.NewLayout(root.Path)
	if err := layout.Ensure(); err != nil {
		common.Logger.Sugar().Fatalf("Failed to create storage directories: %v", err)
	}

	date := time.Now().In(cfg.Location()).Format(time.DateOnly)
	common.Logger.Sugar().Infof("Starting collection for %s", date)
	ctx := context.Background()
	for _, component := range collector.Build(cfg, root, layout, date) {
		if err := component.Run(ctx); err != nil {
			common.Logger.Sugar().Fatalf("Failed to run %s: %v", component.Name(), err)
		}
	}
	common.Logger.Sugar().Info("Collection finished")
}

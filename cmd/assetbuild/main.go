// assetbuild builds every asset named in an asset list.
//
//	assetbuild <assets.yaml> [-jobs N] [-winding forward|mirrored] [-debug]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/assetbuild"
	"github.com/Faultbox/assetforge/internal/config"
	"github.com/Faultbox/assetforge/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := config.ParseFlags(1)
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "assetbuild must be run with a single command line argument which is the path "+
			"to the list of assets to build (got %d)\n", len(args))
		return 1
	}
	listPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(listPath, fmt.Errorf("config: %w", err)))
		return 1
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(listPath, err))
		return 1
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	list, err := assetbuild.LoadList(listPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(listPath, err))
		return 1
	}
	logger.Info("building assets",
		zap.String("list", listPath),
		zap.Int("assets", len(list.Assets)),
		zap.Int("jobs", cfg.Build.Jobs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &assetbuild.Runner{
		Registry: assetbuild.DefaultRegistry(cfg.Build),
		Mapper:   assetbuild.IdentityMapper{},
		Workers:  cfg.Build.Jobs,
	}
	report, err := runner.Run(ctx, list.Assets)
	if err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(listPath, err))
		return 1
	}

	failed := report.Failed()
	for _, res := range failed {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(res.Job.Source, res.Err))
	}
	if len(failed) > 0 {
		return 1
	}
	return 0
}

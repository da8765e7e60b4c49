// meshbuild packs a Lua or YAML mesh asset into the packed mesh binary.
//
//	meshbuild <source> <target> [-winding forward|mirrored] [-debug]
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/assetbuild"
	"github.com/Faultbox/assetforge/internal/config"
	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/internal/meshbuild"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := config.ParseFlags(2)
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, assetbuild.MissingArgumentsMessage(len(args)))
		return 1
	}
	source, target := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(source, fmt.Errorf("config: %w", err)))
		return 1
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(source, err))
		return 1
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)
	if extra := args[2:]; len(extra) > 0 {
		logger.Warn("ignoring unrecognized arguments", zap.Strings("args", extra))
	}

	packer := meshbuild.NewPacker(meshbuild.Options{Mirrored: cfg.Build.Mirrored()})
	if err := packer.BuildFile(nil, source, target); err != nil {
		fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(source, err))
		return 1
	}
	return 0
}

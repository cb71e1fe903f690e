package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	config "github.com/NordCoder/Netprobe/internal/config/netprobe"
	"github.com/NordCoder/Netprobe/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.AsLoggerConfig(version)
	if lc.File != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	return obs.NewLogger(lc)
}

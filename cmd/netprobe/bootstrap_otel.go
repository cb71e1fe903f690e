package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/NordCoder/Netprobe/internal/config/netprobe"
	"github.com/NordCoder/Netprobe/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	oc := cfg.OTEL.AsOTELConfig()
	oc.Version = version
	closer, err := obs.SetupOTel(ctx, oc)
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enable {
		logger.Debug("otel tracing enabled", zap.String("endpoint", cfg.OTEL.OTLPEndpoint))
	}
	return closer.Shutdown, nil
}

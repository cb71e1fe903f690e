package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/Netprobe/internal/config/netprobe"
	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/repository/kafka"
	pg "github.com/NordCoder/Netprobe/internal/repository/postgres"
)

// initSinks connects the optional export sinks. A sink that cannot be set
// up is logged and skipped so the probe run still happens.
func initSinks(ctx context.Context, cfg *config.Config, l *zap.Logger) ([]record.Sink, func()) {
	var (
		sinks   []record.Sink
		closers []func()
	)

	if cfg.Postgres.Enable {
		repo, closeDB, err := initRecordRepo(ctx, cfg, l)
		if err != nil {
			l.Warn("postgres sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, repo)
			closers = append(closers, closeDB)
		}
	}

	if cfg.Kafka.Enable {
		if cfg.Kafka.EnsureTopic {
			tctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := kafka.EnsureTopic(tctx, cfg.Kafka.Brokers, kafka.TopicSpec{Name: cfg.Kafka.Topic}, l); err != nil {
				l.Warn("kafka ensure topic", zap.String("topic", cfg.Kafka.Topic), zap.Error(err))
			}
			cancel()
		}
		prod, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, l)
		if err != nil {
			l.Warn("kafka sink disabled", zap.Error(err))
		} else {
			sink := kafka.NewRecordSink(prod)
			sinks = append(sinks, sink)
			closers = append(closers, func() { _ = sink.Close() })
		}
	}

	return sinks, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func initRecordRepo(ctx context.Context, cfg *config.Config, l *zap.Logger) (*pg.RecordRepo, func(), error) {
	db, err := pg.New(ctx, cfg.Postgres.Config, l)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return pg.NewRecordRepo(db), db.Close, nil
}

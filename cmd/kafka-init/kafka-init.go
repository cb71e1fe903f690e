package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	config "github.com/NordCoder/Netprobe/internal/config/netprobe"
	"github.com/NordCoder/Netprobe/internal/obs"
	"github.com/NordCoder/Netprobe/internal/repository/kafka"
)

// kafka-init creates the record topic ahead of time, for deployments that
// run netprobe with kafka.ensure_topic disabled.
func main() {
	fs := pflag.NewFlagSet("kafka-init", pflag.ExitOnError)
	path := fs.String("config", "", "path to a YAML config file")
	partitions := fs.Int("partitions", 1, "partitions for a new topic")
	rf := fs.Int("replication-factor", 1, "replication factor for a new topic")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*path, nil)
	if err != nil {
		log.Fatal(err)
	}
	l, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "netprobe/kafka-init"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	topic := kafka.TopicSpec{
		Name:              cfg.Kafka.Topic,
		NumPartitions:     *partitions,
		ReplicationFactor: *rf,
		MaxWait:           30 * time.Second,
	}
	if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, topic, l); err != nil {
		l.Fatal("ensure topic", zap.String("topic", topic.Name), zap.Error(err))
	}
	l.Info("kafka-init ok", zap.String("topic", topic.Name))
}

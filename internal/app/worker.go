package app

import (
	"context"
	"errors"

	"go-employee-mgmt/internal/config"
	"go-employee-mgmt/internal/messaging/kafka"
	"go-employee-mgmt/internal/messaging/kafka/producer"
	"go-employee-mgmt/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays committed outbox rows to Kafka until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	_, sqlDB, err := OpenDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.Kafka.PollInterval)

	return nil
}

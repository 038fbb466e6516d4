package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journal-summary/config"
	"journal-summary/eventbus"
)

// retryworker 는 처리에 실패해 DLQ 로 간 배치 요청을 일정 시간 뒤 요청 토픽으로 되돌린다.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers := eventbus.GetBrokers()
	requestTopic := eventbus.NewTopic(cfg.Kafka.RequestTopic)
	if err := eventbus.EnsureTopics(brokers, cfg.Kafka.Partitions, requestTopic); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics for %s: %v", requestTopic.Base(), err)
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	policy := eventbus.ReplayPolicy{
		Delay:      time.Duration(cfg.Kafka.ReplayDelaySeconds) * time.Second,
		MaxReplays: cfg.Kafka.MaxReplays,
	}
	groupID := eventbus.GetGroupID() + "-retry-worker"

	config.Logger.Infof("starting retry worker (delay=%s, max_replays=%d)...", policy.Delay, policy.MaxReplays)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := bus.StartDLQReplayer(ctx, groupID, requestTopic, policy); err != nil && err != context.Canceled {
			config.Logger.Errorf("eventbus dlq replayer error for %s: %v", requestTopic.Base(), err)
		}
	}()

	select {
	case <-sigChan:
		config.Logger.Info("received shutdown signal, shutting down retry worker service...")
	case <-done:
	}

	cancel()
	<-done

	config.Logger.Info("retry worker service stopped")
}

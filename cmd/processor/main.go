package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"journal-summary/cmd/processor/handlers"
	eventServices "journal-summary/cmd/processor/services"
	"journal-summary/config"
	"journal-summary/eventbus"
	"journal-summary/services"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 토큰 버킷은 프로세스 수명 동안 하나만 존재한다.
	summarySvc, err := services.NewSummaryServiceFromConfig(ctx, cfg)
	if err != nil {
		config.Logger.Errorf("failed to initialize summary service: %v", err)
		os.Exit(1)
	}
	defer summarySvc.Close(context.Background())

	// EventBus 초기화 및 토픽 보장
	brokers := eventbus.GetBrokers()
	requestTopic := eventbus.NewTopic(cfg.Kafka.RequestTopic)
	resultTopic := eventbus.NewTopic(cfg.Kafka.ResultTopic)
	if err := eventbus.EnsureTopics(brokers, cfg.Kafka.Partitions, requestTopic, resultTopic); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	eventHandler := handlers.NewEventHandlers(eventServices.NewEventService(bus, resultTopic), summarySvc)

	config.Logger.Info("starting processor service with eventbus...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bus.Subscribe(ctx, eventbus.GetGroupID(), requestTopic, eventHandler.Handle); err != nil && err != context.Canceled {
			config.Logger.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down processor service...")

	cancel()
	wg.Wait()

	config.Logger.Info("processor service stopped")
}

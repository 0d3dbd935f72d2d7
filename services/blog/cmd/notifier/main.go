package main

import (
	"os"
	"os/signal"
	"syscall"

	"advanced-blog/pkg/cache"
	"advanced-blog/pkg/config"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/queue"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithLevel(cfg.LogLevel).With(zap.String("service", "notifier"))
	defer log.Sync()

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	handler := newTaskHandler(redisClient, log)
	if err := queueClient.ConsumeNotificationTasks(handler.Handle); err != nil {
		log.Error("Failed to start consumer: %v", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down notifier...")
}

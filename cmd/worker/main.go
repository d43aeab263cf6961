package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/synthetix/backend/internal/config"
	"github.com/OFFIS-RIT/synthetix/backend/internal/queue"
	"github.com/OFFIS-RIT/synthetix/backend/internal/server"
	mid "github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/internal/storage"
	"github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	s3loader "github.com/OFFIS-RIT/synthetix/backend/pkg/loader/s3"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
		JSON:  util.GetEnv("LOG_FORMAT") == "json",
	})
	logger.Init(consoleLogger)

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	// Init s3 client
	store, err := storage.NewStoreFromEnv(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}

	aiClient, err := mid.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}

	// the worker shares the strategies of the API
	app, err := server.NewApp(cfg, aiClient)
	if err != nil {
		logger.Fatal("Failed to create app", "err", err)
	}

	// Init rabbitmq
	conn, err := queue.Connect(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.ExtractQueue); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	processor, err := queue.NewProcessor(queue.NewProcessorParams{
		Files:      s3loader.NewS3FileLoaderWithClient(store.Bucket(), store.Client()),
		Web:        app.Web,
		Extractors: app.Extractors,
		Engine:     app.Engine,
		Viewport:   app.Viewport,
		Options:    app.Options,
		Store:      store,
		Publisher:  ch,
	})
	if err != nil {
		logger.Fatal("Failed to create processor", "err", err)
	}

	// A separate consumer channel with prefetch=1 so only one job runs at a time
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.ExtractQueue,
		queue.ExtractQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ExtractQueue, "err", err)
	}

	logger.Info("Listening for messages", "strategies", app.Extractors.Names())

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.ExtractQueue)
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.ExtractQueue)

			if err := processor.ProcessExtractMessage(ctx, msg.Body); err != nil {
				logger.Error("Error processing message", "queue", queue.ExtractQueue, "err", err)
				queue.HandleProcessingError(consumerCh, msg, queue.ExtractQueue, err)
			} else {
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", queue.ExtractQueue)
			}

			logMetrics(aiClient, time.Since(startTime))
			logger.Info("Waiting for next message")
		}
	}
}

func logMetrics(aiClient ai.GraphAIClient, processing time.Duration) {
	logger.Info("Processing time", "duration", formatDuration(processing))
	if aiClient == nil {
		return
	}

	metrics := aiClient.GetMetrics()
	logger.Info(
		"AI Metrics",
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration", formatDuration(time.Duration(metrics.DurationMs)*time.Millisecond),
	)
	aiClient.ResetMetrics()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

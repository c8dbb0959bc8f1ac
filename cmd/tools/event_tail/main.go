// event_tail follows the analytics events published by the server and prints
// one JSON line per event.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/events"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/subscriber"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	types := flag.String("types", events.TypeAnomaly+","+events.TypeRecommendation, "Comma-separated event types to follow")
	group := flag.String("group", "event-tail", "Consumer group name")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error: load config: %v", err)
	}

	logger, err := logging.NewFromConfig(config.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     "console",
		OutputPath: "stderr",
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		log.Fatalf("Error: init logger: %v", err)
	}

	sub, err := subscriber.NewSubscriber(cfg.Events, subscriber.Config{
		ConsumerGroup: *group,
		ConsumerID:    *group + "-1",
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("Error: create subscriber: %v", err)
	}
	defer func() { _ = sub.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)
	printEvent := subscriber.Events(func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(event)
	})

	for _, eventType := range strings.Split(*types, ",") {
		eventType = strings.TrimSpace(eventType)
		if eventType == "" {
			continue
		}
		subject := events.Subject(cfg.Events.SubjectPrefix, eventType)
		if err := sub.Subscribe(ctx, subject, printEvent); err != nil {
			log.Fatalf("Error: subscribe %s: %v", subject, err)
		}
		logger.Info("Following events", "subject", subject, "type", cfg.Events.Type)
	}

	<-ctx.Done()
	logger.Info("Stopped")
}

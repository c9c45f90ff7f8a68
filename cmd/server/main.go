package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/classifier/gemini"
	"github.com/nguyentantai21042004/meetsort/internal/classifier/openai"
	"github.com/nguyentantai21042004/meetsort/internal/config"
	"github.com/nguyentantai21042004/meetsort/internal/events"
	"github.com/nguyentantai21042004/meetsort/internal/httpapi"
	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/metrics"
	"github.com/nguyentantai21042004/meetsort/internal/notifier"
	"github.com/nguyentantai21042004/meetsort/internal/processor"
	"github.com/nguyentantai21042004/meetsort/internal/scheduler"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
	"github.com/nguyentantai21042004/meetsort/internal/storage/drive"
	"github.com/nguyentantai21042004/meetsort/internal/storage/objectstore"
)

func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting transcript sorter")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Users: %d, window: %s, min confidence: %.2f", len(cfg.Processing.Users), cfg.Window(), cfg.Classifier.MinConfidence)
	log.Info(ctx, "Storage: %s, classifier: %s (%s)", cfg.Storage.Backend, cfg.Classifier.Provider, cfg.Classifier.Model)

	// Initialize dependencies
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to create storage backend: %v", err)
		os.Exit(1)
	}

	cls, err := newClassifier(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to create classifier: %v", err)
		os.Exit(1)
	}

	notif := notifier.New(notifier.Options{
		WebhookURL: cfg.Notifier.WebhookURL,
		Platform:   cfg.Notifier.Platform,
		Important:  cfg.ImportantCategories(),
		Timeout:    cfg.Notifier.Timeout,
	}, log)

	var validation notifier.Notifier
	if cfg.Notifier.ValidationWebhookURL != "" {
		validation = notifier.New(notifier.Options{
			WebhookURL: cfg.Notifier.ValidationWebhookURL,
			Platform:   cfg.Notifier.Platform,
			Important:  cfg.ValidationCategories(),
			Timeout:    cfg.Notifier.Timeout,
		}, log)
	}

	m := metrics.DefaultMetrics
	publisher := events.New(events.Config{
		Brokers:   cfg.Kafka.Brokers,
		TopicRuns: cfg.Kafka.TopicRuns,
		Principal: cfg.Kafka.Principal,
		Enabled:   cfg.Kafka.Enabled,
	}, m, log)
	defer publisher.Close()

	proc := processor.New(cfg, processor.Dependencies{
		Store:      storage.NewConnector(store, cfg.Routes()),
		Classifier: cls,
		Notifier:   notif,
		Validation: validation,
		Events:     publisher,
		Metrics:    m,
	}, log)

	if *once {
		code := runOnce(ctx, proc, log)
		publisher.Close()
		os.Exit(code)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpapi.NewRouter(proc, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		log.Info(ctx, "HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	schedDone := make(chan struct{})
	if cfg.Server.ScheduleInterval > 0 {
		sched, err := scheduler.New(cfg.Server.ScheduleInterval, func(ctx context.Context) error {
			_, err := proc.Run(ctx)
			return err
		}, log)
		if err != nil {
			log.Error(ctx, "Failed to create scheduler: %v", err)
			os.Exit(1)
		}
		defer sched.Stop()

		go func() {
			defer close(schedDone)
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	} else {
		close(schedDone)
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Server error: %v", err)
	}

	// Graceful shutdown
	log.Info(ctx, "Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "Shutdown error: %v", err)
	}

	// A scheduled run in flight finishes its current file before Start returns.
	select {
	case <-schedDone:
	case <-shutdownCtx.Done():
		log.Warn(ctx, "Scheduled run still in flight at the shutdown deadline")
	}

	log.Info(ctx, "Stopped")
}

func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendObjectStore:
		oc := cfg.Storage.ObjectStore
		return objectstore.New(ctx, objectstore.Options{
			Endpoint:    oc.Endpoint,
			AccessKey:   oc.AccessKey,
			SecretKey:   oc.SecretKey,
			Bucket:      oc.Bucket,
			Region:      oc.Region,
			UseSSL:      oc.UseSSL,
			InboxPrefix: oc.InboxPrefix,
		}, log)
	default:
		return drive.New(ctx, cfg.Storage.Drive.CredentialsFile, log)
	}
}

func newClassifier(ctx context.Context, cfg *config.Config, log logger.Logger) (classifier.Classifier, error) {
	set := cfg.CategorySet()
	switch cfg.Classifier.Provider {
	case config.ProviderOpenAI:
		return openai.New(openai.Options{
			APIKey:     cfg.Classifier.OpenAIAPIKey,
			Model:      cfg.Classifier.Model,
			BaseURL:    cfg.Classifier.OpenAIBaseURL,
			Categories: set,
		}, log), nil
	default:
		return gemini.New(ctx, gemini.Options{
			APIKeys:    cfg.Classifier.GeminiAPIKeys,
			Model:      cfg.Classifier.Model,
			Categories: set,
		}, log)
	}
}

// runOnce performs a single pass, prints the summary and returns the exit code.
func runOnce(ctx context.Context, proc processor.Processor, log logger.Logger) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := proc.Run(ctx)
	if err != nil {
		log.Error(ctx, "Run could not start: %v", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)

	if summary.Status != processor.StatusOK {
		return 1
	}
	return 0
}

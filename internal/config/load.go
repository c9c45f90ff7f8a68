package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration: defaults, then the optional YAML file at
// path, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(c *Config) error {
	envString("PORT", &c.Server.Port)
	if err := envDuration("SCHEDULE_INTERVAL", &c.Server.ScheduleInterval); err != nil {
		return err
	}
	envString("LOG_LEVEL", &c.Logging.Level)
	envString("LOG_FORMAT", &c.Logging.Format)

	envList("USERS_TO_PROCESS", &c.Processing.Users)
	if err := envInt("PROCESSING_WINDOW_HOURS", &c.Processing.WindowHours); err != nil {
		return err
	}
	if v, ok := lookup("FOLDER_MAPPING"); ok {
		var m map[string]string
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return fmt.Errorf("parse FOLDER_MAPPING: %w", err)
		}
		c.Processing.FolderMapping = m
	}

	if err := envBool("APPEND_SUMMARY", &c.Processing.AppendSummary); err != nil {
		return err
	}
	if err := envBool("DEDUPE_TITLES", &c.Processing.DedupeTitles); err != nil {
		return err
	}

	envString("CLASSIFIER_PROVIDER", &c.Classifier.Provider)
	envString("CLASSIFIER_MODEL", &c.Classifier.Model)
	envList("GOOGLE_AI_API_KEY", &c.Classifier.GeminiAPIKeys)
	envString("OPENAI_API_KEY", &c.Classifier.OpenAIAPIKey)
	envString("OPENAI_BASE_URL", &c.Classifier.OpenAIBaseURL)
	envList("CATEGORIES", &c.Classifier.Categories)
	if err := envFloat("MIN_CONFIDENCE_SCORE", &c.Classifier.MinConfidence); err != nil {
		return err
	}

	envString("CHAT_WEBHOOK_URL", &c.Notifier.WebhookURL)
	envString("WEBHOOK_PLATFORM", &c.Notifier.Platform)
	envList("IMPORTANT_CATEGORIES", &c.Notifier.ImportantCategories)
	if err := envBool("NOTIFY_WITH_SUMMARY", &c.Notifier.WithSummary); err != nil {
		return err
	}
	if err := envDuration("WEBHOOK_TIMEOUT", &c.Notifier.Timeout); err != nil {
		return err
	}
	envString("VALIDATION_CHAT_WEBHOOK_URL", &c.Notifier.ValidationWebhookURL)
	envList("VALIDATION_CATEGORIES", &c.Notifier.ValidationCategories)

	envString("STORAGE_BACKEND", &c.Storage.Backend)
	envString("DRIVE_CREDENTIALS_FILE", &c.Storage.Drive.CredentialsFile)
	envString("OBJECTSTORE_ENDPOINT", &c.Storage.ObjectStore.Endpoint)
	envString("OBJECTSTORE_ACCESS_KEY", &c.Storage.ObjectStore.AccessKey)
	envString("OBJECTSTORE_SECRET_KEY", &c.Storage.ObjectStore.SecretKey)
	envString("OBJECTSTORE_BUCKET", &c.Storage.ObjectStore.Bucket)
	envString("OBJECTSTORE_REGION", &c.Storage.ObjectStore.Region)
	envString("OBJECTSTORE_INBOX_PREFIX", &c.Storage.ObjectStore.InboxPrefix)
	if err := envBool("OBJECTSTORE_USE_SSL", &c.Storage.ObjectStore.UseSSL); err != nil {
		return err
	}

	if err := envBool("KAFKA_ENABLED", &c.Kafka.Enabled); err != nil {
		return err
	}
	envList("KAFKA_BROKERS", &c.Kafka.Brokers)
	envString("KAFKA_TOPIC_RUNS", &c.Kafka.TopicRuns)
	envString("KAFKA_PRINCIPAL", &c.Kafka.Principal)
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envList(key string, dst *[]string) {
	if v, ok := lookup(key); ok {
		*dst = cleanList(strings.Split(v, ","))
	}
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = d
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/nguyentantai21042004/meetsort/internal/notifier"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	BackendDrive       = "drive"
	BackendObjectStore = "objectstore"
)

// DefaultValidationCategories receive the user validation summary when no
// validation categories are configured.
var DefaultValidationCategories = []meeting.Category{
	"User Research Meeting",
	"Product Development Meeting",
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Processing ProcessingConfig `yaml:"processing"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Storage    StorageConfig    `yaml:"storage"`
	Kafka      KafkaConfig      `yaml:"kafka"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// ScheduleInterval runs passes in-process. Zero leaves triggering to
	// an external scheduler calling the HTTP endpoint.
	ScheduleInterval time.Duration `yaml:"schedule_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ProcessingConfig struct {
	Users         []string          `yaml:"users"`
	WindowHours   int               `yaml:"window_hours"`
	FolderMapping map[string]string `yaml:"folder_mapping"`

	// AppendSummary appends an AI summary to the transcript document.
	AppendSummary bool `yaml:"append_summary"`

	// DedupeTitles processes one transcript per title per run and flags the
	// other copies sharing that title.
	DedupeTitles bool `yaml:"dedupe_titles"`
}

type ClassifierConfig struct {
	Provider      string            `yaml:"provider"`
	Model         string            `yaml:"model"`
	GeminiAPIKeys []string          `yaml:"gemini_api_keys"`
	OpenAIAPIKey  string            `yaml:"openai_api_key"`
	OpenAIBaseURL string            `yaml:"openai_base_url"`
	MinConfidence float64           `yaml:"min_confidence_score"`
	Categories    []string          `yaml:"categories"`
	CategoryHints map[string]string `yaml:"category_hints"`
}

type NotifierConfig struct {
	WebhookURL          string        `yaml:"webhook_url"`
	Platform            string        `yaml:"platform"`
	ImportantCategories []string      `yaml:"important_categories"`
	WithSummary         bool          `yaml:"with_summary"`
	Timeout             time.Duration `yaml:"timeout"`

	// ValidationWebhookURL receives user validation summaries for
	// ValidationCategories.
	ValidationWebhookURL string   `yaml:"validation_webhook_url"`
	ValidationCategories []string `yaml:"validation_categories"`
}

type StorageConfig struct {
	Backend     string            `yaml:"backend"`
	Drive       DriveConfig       `yaml:"drive"`
	ObjectStore ObjectStoreConfig `yaml:"objectstore"`
}

type DriveConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type ObjectStoreConfig struct {
	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	UseSSL      bool   `yaml:"use_ssl"`
	InboxPrefix string `yaml:"inbox_prefix"`
}

type KafkaConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Brokers   []string `yaml:"brokers"`
	TopicRuns string   `yaml:"topic_runs"`
	Principal string   `yaml:"principal"`
}

// Default returns a Config holding every default value.
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: "8080"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Processing: ProcessingConfig{
			WindowHours:  2,
			DedupeTitles: true,
		},
		Classifier: ClassifierConfig{
			Provider:      ProviderGemini,
			MinConfidence: 0.7,
		},
		Notifier: NotifierConfig{
			Platform:    notifier.PlatformGeneric,
			WithSummary: true,
			Timeout:     15 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     BackendDrive,
			ObjectStore: ObjectStoreConfig{InboxPrefix: "inbox"},
		},
		Kafka: KafkaConfig{
			TopicRuns: "meetsort.runs",
			Principal: "svc-meetsort",
		},
	}
}

func (c *Config) Validate() error {
	c.Processing.Users = cleanList(c.Processing.Users)
	if len(c.Processing.Users) == 0 {
		return fmt.Errorf("processing.users (USERS_TO_PROCESS) is required")
	}
	if len(c.Processing.FolderMapping) == 0 {
		return fmt.Errorf("processing.folder_mapping (FOLDER_MAPPING) is required")
	}
	if c.Processing.WindowHours <= 0 {
		return fmt.Errorf("processing.window_hours must be positive, got %d", c.Processing.WindowHours)
	}
	if c.Classifier.MinConfidence < 0 || c.Classifier.MinConfidence > 1 {
		return fmt.Errorf("classifier.min_confidence_score must be within [0,1], got %v", c.Classifier.MinConfidence)
	}

	c.Classifier.Provider = strings.ToLower(strings.TrimSpace(c.Classifier.Provider))
	c.Classifier.GeminiAPIKeys = cleanList(c.Classifier.GeminiAPIKeys)
	switch c.Classifier.Provider {
	case ProviderGemini:
		if len(c.Classifier.GeminiAPIKeys) == 0 {
			return fmt.Errorf("GOOGLE_AI_API_KEY is required for the gemini classifier")
		}
		if c.Classifier.Model == "" {
			c.Classifier.Model = "gemini-2.0-flash"
		}
	case ProviderOpenAI:
		if c.Classifier.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai classifier")
		}
		if c.Classifier.Model == "" {
			c.Classifier.Model = "gpt-4o-mini"
		}
	default:
		return fmt.Errorf("unknown classifier.provider %q", c.Classifier.Provider)
	}

	set := c.CategorySet()
	mapping := make(map[string]string, len(c.Processing.FolderMapping))
	for label, folder := range c.Processing.FolderMapping {
		cat, ok := set.Lookup(label)
		if !ok {
			return fmt.Errorf("folder_mapping names unknown category %q", label)
		}
		mapping[string(cat)] = strings.TrimSpace(folder)
	}
	c.Processing.FolderMapping = mapping

	for _, label := range cleanList(c.Notifier.ImportantCategories) {
		if _, ok := set.Lookup(label); !ok {
			return fmt.Errorf("important_categories names unknown category %q", label)
		}
	}
	for _, label := range cleanList(c.Notifier.ValidationCategories) {
		if _, ok := set.Lookup(label); !ok {
			return fmt.Errorf("validation_categories names unknown category %q", label)
		}
	}

	c.Notifier.Platform = strings.ToLower(strings.TrimSpace(c.Notifier.Platform))
	switch c.Notifier.Platform {
	case "":
		c.Notifier.Platform = notifier.PlatformGeneric
	case notifier.PlatformGoogleChat, notifier.PlatformSlack, notifier.PlatformDiscord, notifier.PlatformGeneric:
	default:
		return fmt.Errorf("unknown notifier.platform %q", c.Notifier.Platform)
	}
	if c.Notifier.Timeout <= 0 {
		c.Notifier.Timeout = 15 * time.Second
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendDrive:
	case BackendObjectStore:
		if c.Storage.ObjectStore.Endpoint == "" || c.Storage.ObjectStore.Bucket == "" {
			return fmt.Errorf("objectstore endpoint and bucket are required")
		}
		if c.Storage.ObjectStore.InboxPrefix == "" {
			c.Storage.ObjectStore.InboxPrefix = "inbox"
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	c.Kafka.Brokers = cleanList(c.Kafka.Brokers)
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ScheduleInterval < 0 {
		return fmt.Errorf("server.schedule_interval must not be negative")
	}
	return nil
}

// CategorySet returns the closed category set.
func (c *Config) CategorySet() meeting.CategorySet {
	labels := meeting.DefaultCategories
	if names := cleanList(c.Classifier.Categories); len(names) > 0 {
		labels = make([]meeting.Category, 0, len(names))
		for _, n := range names {
			labels = append(labels, meeting.Category(n))
		}
	}
	hints := make(map[meeting.Category]string, len(c.Classifier.CategoryHints))
	for k, v := range c.Classifier.CategoryHints {
		hints[meeting.Category(k)] = v
	}
	return meeting.NewCategorySet(labels, hints)
}

// Routes returns the category to folder mapping. Call after Validate.
func (c *Config) Routes() meeting.Routes {
	r := make(meeting.Routes, len(c.Processing.FolderMapping))
	for label, folder := range c.Processing.FolderMapping {
		r[meeting.Category(label)] = folder
	}
	return r
}

// ImportantCategories returns the categories that trigger notifications.
// Defaults to every category except Other.
func (c *Config) ImportantCategories() []meeting.Category {
	set := c.CategorySet()
	var out []meeting.Category
	if names := cleanList(c.Notifier.ImportantCategories); len(names) > 0 {
		for _, n := range names {
			if cat, ok := set.Lookup(n); ok {
				out = append(out, cat)
			}
		}
		return out
	}
	for _, cat := range set.Categories() {
		if cat != meeting.Other {
			out = append(out, cat)
		}
	}
	return out
}

// ValidationCategories returns the categories whose transcripts get a user
// validation summary. Defaults to DefaultValidationCategories present in the
// category set.
func (c *Config) ValidationCategories() []meeting.Category {
	set := c.CategorySet()
	names := cleanList(c.Notifier.ValidationCategories)
	if len(names) == 0 {
		for _, cat := range DefaultValidationCategories {
			names = append(names, string(cat))
		}
	}

	var out []meeting.Category
	for _, n := range names {
		if cat, ok := set.Lookup(n); ok {
			out = append(out, cat)
		}
	}
	return out
}

// Window returns the processing window.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Processing.WindowHours) * time.Hour
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

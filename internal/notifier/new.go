package notifier

import (
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

const (
	PlatformGoogleChat = "google_chat"
	PlatformSlack      = "slack"
	PlatformDiscord    = "discord"
	PlatformGeneric    = "generic"
)

const defaultTimeout = 15 * time.Second

type Options struct {
	WebhookURL string
	Platform   string
	Important  []meeting.Category
	Timeout    time.Duration
}

type implNotifier struct {
	webhookURL string
	platform   string
	important  map[string]bool
	httpClient *http.Client
	logger     logger.Logger
}

func New(opts Options, log logger.Logger) Notifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	important := make(map[string]bool, len(opts.Important))
	for _, c := range opts.Important {
		important[strings.ToLower(string(c))] = true
	}

	platform := opts.Platform
	if platform == "" {
		platform = PlatformGeneric
	}

	return &implNotifier{
		webhookURL: strings.TrimSpace(opts.WebhookURL),
		platform:   platform,
		important:  important,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

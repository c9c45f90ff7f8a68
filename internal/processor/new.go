package processor

import (
	"sync"

	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/config"
	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/nguyentantai21042004/meetsort/internal/metrics"
	"github.com/nguyentantai21042004/meetsort/internal/notifier"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
)

// Dependencies are the collaborators of a Processor. Validation, Events,
// Metrics and Clock are optional.
type Dependencies struct {
	Store      storage.Connector
	Classifier classifier.Classifier
	Notifier   notifier.Notifier
	// Validation receives user validation summaries.
	Validation notifier.Notifier
	Events     EventPublisher
	Metrics    *metrics.Metrics
	Clock      Clock
}

type implProcessor struct {
	cfg        *config.Config
	routes     meeting.Routes
	store      storage.Connector
	classifier classifier.Classifier
	notifier   notifier.Notifier
	validation notifier.Notifier
	events     EventPublisher
	metrics    *metrics.Metrics
	clock      Clock
	logger     logger.Logger

	running sync.Mutex
	// seenTitles holds the titles handled in the current run. Guarded by running.
	seenTitles map[string]bool
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Dependencies, log logger.Logger) Processor {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &implProcessor{
		cfg:        cfg,
		routes:     cfg.Routes(),
		store:      deps.Store,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		validation: deps.Validation,
		events:     deps.Events,
		metrics:    deps.Metrics,
		clock:      clock,
		logger:     log,
	}
}

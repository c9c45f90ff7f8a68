package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/notifier"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
)

// Run orchestrates one pass over every configured user
func (p *implProcessor) Run(ctx context.Context) (*RunSummary, error) {
	if !p.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.running.Unlock()
	p.seenTitles = make(map[string]bool)

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: p.clock.Now(),
	}
	log := p.logger.With("run_id", summary.RunID)

	log.Info(ctx, "========================================")
	log.Info(ctx, "Starting run for %d users (window %s)", len(p.cfg.Processing.Users), p.cfg.Window())
	log.Info(ctx, "========================================")

	canceled := false
	for _, user := range p.cfg.Processing.Users {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		us, stopped := p.processUser(ctx, user)
		summary.Users = append(summary.Users, us)
		if stopped {
			canceled = true
			break
		}
	}

	summary.finish(p.clock.Now(), canceled)

	t := summary.Totals
	log.Info(ctx, "========================================")
	log.Info(ctx, "Run %s: %d scanned, %d moved, %d processed, %d notified, %d duplicates, %d failed",
		summary.Status, t.Scanned, t.Moved, t.Processed, t.Notified, t.Duplicates, t.Failed)
	log.Info(ctx, "Processing time: %s", summary.Duration())
	log.Info(ctx, "========================================")

	if p.metrics != nil {
		p.metrics.RecordRun(summary.Status, summary.Duration().Seconds(), float64(summary.FinishedAt.Unix()))
	}
	if p.events != nil {
		if err := p.events.PublishRun(context.WithoutCancel(ctx), summary.RunID, summary); err != nil {
			log.Warn(ctx, "Failed to publish run summary: %v", err)
		}
	}

	return summary, nil
}

// processUser handles one user. stopped is true when ctx was canceled mid-user.
func (p *implProcessor) processUser(ctx context.Context, user string) (us UserSummary, stopped bool) {
	us.User = user
	log := p.logger.With("user", user)

	files, err := p.store.ListRecentUnprocessed(ctx, user, p.cfg.Window())
	if err != nil {
		log.Error(ctx, "Failed to list transcripts: %v", err)
		us.ListError = err.Error()
		if p.metrics != nil {
			p.metrics.RecordUserListError(meeting.KindOf(err))
		}
		return us, false
	}

	if len(files) == 0 {
		log.Info(ctx, "No unprocessed transcripts")
		return us, false
	}
	log.Info(ctx, "Found %d unprocessed transcripts", len(files))

	for i, file := range files {
		if ctx.Err() != nil {
			log.Warn(ctx, "Run canceled, %d transcripts left for the next run", len(files)-i)
			return us, true
		}
		us.Scanned++
		log.Info(ctx, "[%d/%d] Processing: %s", i+1, len(files), file.Name)
		p.processFile(ctx, user, file, &us)
	}

	return us, false
}

// processFile moves one transcript through read, classify, move, flag and notify.
func (p *implProcessor) processFile(ctx context.Context, user string, file meeting.TranscriptFile, us *UserSummary) {
	log := p.logger.With("user", user).With("file_id", file.ID)

	// Step 0: Finish files a previous run moved but could not flag
	if category, ok := p.store.Destination(file); ok {
		p.reconcile(ctx, file, category, us)
		return
	}

	if p.cfg.Processing.DedupeTitles {
		if p.seenTitles[file.Name] {
			log.Info(ctx, "Transcript %s already handled in this run, skipping duplicate", file.Name)
			us.Duplicates++
			p.record("duplicate")
			return
		}
		p.seenTitles[file.Name] = true
	}

	// Step 1: Read content
	doc := meeting.Document{Name: file.Name, CreatedAt: file.CreatedAt}
	text, err := p.store.ReadContent(ctx, file)
	switch {
	case errors.Is(err, meeting.ErrNotFound):
		log.Info(ctx, "Transcript %s vanished before reading, skipping", file.Name)
		p.skip(us)
		return
	case err != nil:
		log.Warn(ctx, "Failed to read %s, sorting as %s: %v", file.Name, meeting.Other, err)
	default:
		doc.Text = text
	}

	// Step 2: Classify
	result := meeting.Classification{Category: meeting.Other}
	if strings.TrimSpace(doc.Text) != "" {
		start := time.Now()
		result, err = p.classifier.Classify(ctx, doc)
		if err != nil {
			log.Error(ctx, "Failed to classify %s: %v", file.Name, err)
			p.fail(us, file, StepClassify, ensureKind(err, meeting.ErrClassification))
			return
		}
		us.Classified++
		if p.metrics != nil {
			p.metrics.RecordClassifierCall(time.Since(start).Seconds())
		}
	} else {
		log.Info(ctx, "Transcript %s has no readable text, sorting as %s", file.Name, meeting.Other)
	}

	if result.Category != meeting.Other && result.Confidence < p.cfg.Classifier.MinConfidence {
		log.Info(ctx, "Confidence %.2f for %s below %.2f, downgrading to %s",
			result.Confidence, result.Category, p.cfg.Classifier.MinConfidence, meeting.Other)
		result.Category = meeting.Other
		us.Downgraded++
	}

	// Step 3: Resolve destination
	_, category, fallback, err := p.routes.Resolve(result.Category)
	if err != nil {
		log.Error(ctx, "No destination for %s: %v", file.Name, err)
		p.fail(us, file, StepResolve, err)
		return
	}
	if fallback {
		log.Warn(ctx, "No folder mapped for %s, using the %s folder", result.Category, meeting.Other)
		us.Fallbacks++
	}

	// Step 4: Move
	moved, err := p.store.MoveToCategory(ctx, file, category)
	switch {
	case errors.Is(err, meeting.ErrNotFound):
		log.Info(ctx, "Transcript %s vanished before moving, skipping", file.Name)
		p.skip(us)
		return
	case err != nil:
		log.Error(ctx, "Failed to move %s to %s: %v", file.Name, category, err)
		p.fail(us, file, StepMove, ensureKind(err, meeting.ErrMove))
		return
	}
	us.Moved++
	if p.metrics != nil {
		p.metrics.RecordCategory(string(category))
	}

	// Step 5: Flag
	if !p.flag(ctx, moved, StepFlag, us) {
		return
	}
	p.record("processed")
	log.Info(ctx, "[DONE] %s -> %s (%.2f)", file.Name, category, result.Confidence)

	if p.cfg.Processing.DedupeTitles {
		p.flagCopies(ctx, moved, us)
	}
	if p.cfg.Processing.AppendSummary {
		p.annotate(ctx, moved, doc, us)
	}

	// Step 6: Notify
	final := meeting.Classification{Category: category, Confidence: result.Confidence}
	p.notify(ctx, user, moved, doc, final, us)
	p.notifyValidation(ctx, user, moved, doc, final, us)
}

func (p *implProcessor) reconcile(ctx context.Context, file meeting.TranscriptFile, category meeting.Category, us *UserSummary) {
	p.logger.Info(ctx, "Transcript %s already in the %s folder but unflagged, marking processed", file.Name, category)
	if p.flag(ctx, file, StepReconcile, us) {
		us.Reconciled++
		p.record("reconciled")
	}
}

// flag marks file processed and reports whether the caller should continue.
func (p *implProcessor) flag(ctx context.Context, file meeting.TranscriptFile, step string, us *UserSummary) bool {
	err := p.store.MarkProcessed(ctx, file)
	switch {
	case err == nil:
		us.Processed++
		return true
	case errors.Is(err, meeting.ErrNotFound):
		p.logger.Info(ctx, "Transcript %s vanished before flagging", file.Name)
		p.skip(us)
		return false
	default:
		p.logger.Error(ctx, "moved-but-unflagged: %s (%s) is in its category folder but could not be flagged: %v", file.Name, file.ID, err)
		us.MovedButUnflagged = append(us.MovedButUnflagged, file.ID)
		p.fail(us, file, step, ensureKind(err, meeting.ErrFlag))
		return false
	}
}

// flagCopies marks the other files sharing file's title as processed.
func (p *implProcessor) flagCopies(ctx context.Context, file meeting.TranscriptFile, us *UserSummary) {
	n, err := p.store.MarkTitleProcessed(ctx, file)
	us.CopiesFlagged += n
	switch {
	case errors.Is(err, storage.ErrUnsupported):
		p.logger.Debug(ctx, "Storage cannot flag copies of %s: %v", file.Name, err)
	case err != nil:
		p.logger.Warn(ctx, "Failed to flag some copies of %s: %v", file.Name, err)
	case n > 0:
		p.logger.Info(ctx, "Flagged %d other copies of %s", n, file.Name)
	}
}

// annotate appends a meeting summary to the transcript document.
func (p *implProcessor) annotate(ctx context.Context, file meeting.TranscriptFile, doc meeting.Document, us *UserSummary) {
	if strings.TrimSpace(doc.Text) == "" {
		return
	}

	summary, err := p.classifier.Summarize(ctx, doc, classifier.DocumentSummary)
	if err != nil || strings.TrimSpace(summary) == "" {
		p.logger.Warn(ctx, "No document summary for %s: %v", file.Name, err)
		return
	}

	err = p.store.AppendText(ctx, file, "\n\n=== AI-Generated Summary ===\n"+summary+"\n")
	switch {
	case errors.Is(err, storage.ErrUnsupported):
		p.logger.Debug(ctx, "Storage cannot annotate %s: %v", file.Name, err)
	case err != nil:
		p.logger.Warn(ctx, "Failed to append summary to %s: %v", file.Name, err)
	default:
		us.Annotated++
	}
}

func (p *implProcessor) notify(ctx context.Context, user string, file meeting.TranscriptFile, doc meeting.Document, result meeting.Classification, us *UserSummary) {
	if !p.notifier.Enabled(result.Category) {
		return
	}

	note := notifier.Notification{
		User:       user,
		File:       file,
		Category:   result.Category,
		Confidence: result.Confidence,
	}
	if p.cfg.Notifier.WithSummary && strings.TrimSpace(doc.Text) != "" {
		summary, err := p.classifier.Summarize(ctx, doc, classifier.ChatSummary)
		if err != nil {
			p.logger.Warn(ctx, "Failed to summarize %s, sending a short notification: %v", file.Name, err)
		}
		note.Summary = summary
	}

	err := p.notifier.Notify(ctx, note)
	if p.metrics != nil {
		p.metrics.RecordWebhook(err)
	}
	if err != nil {
		p.logger.Warn(ctx, "Failed to notify for %s: %v", file.Name, err)
		return
	}
	us.Notified++
}

// notifyValidation sends the user validation summary for the validation
// categories. Nothing is sent without a summary.
func (p *implProcessor) notifyValidation(ctx context.Context, user string, file meeting.TranscriptFile, doc meeting.Document, result meeting.Classification, us *UserSummary) {
	if p.validation == nil || !p.validation.Enabled(result.Category) || strings.TrimSpace(doc.Text) == "" {
		return
	}

	summary, err := p.classifier.Summarize(ctx, doc, classifier.ValidationSummary)
	if err != nil || strings.TrimSpace(summary) == "" {
		p.logger.Warn(ctx, "No validation summary for %s: %v", file.Name, err)
		return
	}

	err = p.validation.Notify(ctx, notifier.Notification{
		User:       user,
		File:       file,
		Category:   result.Category,
		Confidence: result.Confidence,
		Summary:    summary,
	})
	if p.metrics != nil {
		p.metrics.RecordWebhook(err)
	}
	if err != nil {
		p.logger.Warn(ctx, "Failed to send validation summary for %s: %v", file.Name, err)
		return
	}
	us.ValidationNotified++
}

func (p *implProcessor) skip(us *UserSummary) {
	us.Skipped++
	p.record("skipped")
}

func (p *implProcessor) fail(us *UserSummary, file meeting.TranscriptFile, step string, err error) {
	us.fail(file, step, err)
	if p.metrics != nil {
		p.metrics.RecordFileError(step, meeting.KindOf(err))
	}
	p.record("failed")
}

func (p *implProcessor) record(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordFile(outcome)
	}
}

// ensureKind wraps err with sentinel unless it already carries a domain kind.
func ensureKind(err error, sentinel error) error {
	if meeting.KindOf(err) != meeting.KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

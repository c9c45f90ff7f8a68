// Package classifier turns transcript text into a meeting category.
package classifier

import (
	"context"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// Classifier assigns a category from the closed set to a transcript.
type Classifier interface {
	// Classify returns the category and confidence for doc. The category is
	// always a member of the configured set. Transport failures are reported
	// as meeting.ErrClassification.
	Classify(ctx context.Context, doc meeting.Document) (meeting.Classification, error)
	// Summarize returns a summary of doc written for kind.
	Summarize(ctx context.Context, doc meeting.Document, kind SummaryKind) (string, error)
}

// SummaryKind selects the summary prompt.
type SummaryKind string

const (
	// ChatSummary is the short team-chat message sent with notifications.
	ChatSummary SummaryKind = "chat"
	// ValidationSummary focuses on user feedback, for research and product meetings.
	ValidationSummary SummaryKind = "validation"
	// DocumentSummary is appended to the transcript document itself.
	DocumentSummary SummaryKind = "document"
)

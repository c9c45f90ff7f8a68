// Package notifier posts classification results to a chat webhook.
package notifier

import (
	"context"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// Notifier delivers notifications for important categories.
type Notifier interface {
	// Enabled reports whether a notification would be sent for category.
	Enabled(category meeting.Category) bool
	// Notify posts n. It is a no-op when Enabled(n.Category) is false.
	Notify(ctx context.Context, n Notification) error
}

// Notification is one classified transcript to announce.
type Notification struct {
	User       string
	File       meeting.TranscriptFile
	Category   meeting.Category
	Confidence float64
	// Summary is optional chat-ready text. A one-line message is used when empty.
	Summary string
}

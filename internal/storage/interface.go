// Package storage abstracts the file-storage service holding meeting transcripts.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// Store is a file-storage backend.
type Store interface {
	// ListRecentUnprocessed returns the user's transcripts created within
	// window whose processed flag is unset, oldest first.
	ListRecentUnprocessed(ctx context.Context, user string, window time.Duration) ([]meeting.TranscriptFile, error)
	// ReadContent returns the transcript as plain text.
	ReadContent(ctx context.Context, file meeting.TranscriptFile) (string, error)
	// MarkProcessed sets the processed flag on the file.
	MarkProcessed(ctx context.Context, file meeting.TranscriptFile) error
	// MoveToFolder relocates the file and returns it as it now exists.
	MoveToFolder(ctx context.Context, file meeting.TranscriptFile, folderID string) (meeting.TranscriptFile, error)
}

// ErrUnsupported is returned by Connector for capabilities the backend lacks.
var ErrUnsupported = errors.New("not supported by this storage backend")

// Annotator is implemented by backends whose transcripts are editable documents.
type Annotator interface {
	// AppendText adds text at the end of the transcript document.
	AppendText(ctx context.Context, file meeting.TranscriptFile, text string) error
}

// TitleMarker is implemented by backends that can flag transcript copies by title.
type TitleMarker interface {
	// MarkTitleProcessed flags every other unprocessed transcript named like
	// file and returns how many were flagged.
	MarkTitleProcessed(ctx context.Context, file meeting.TranscriptFile) (int, error)
}

// Connector is a Store bound to the category routes.
type Connector interface {
	Store
	Annotator
	TitleMarker
	// MoveToCategory moves the file into the folder mapped for category.
	MoveToCategory(ctx context.Context, file meeting.TranscriptFile, category meeting.Category) (meeting.TranscriptFile, error)
	// Destination returns the category whose folder already holds file.
	Destination(file meeting.TranscriptFile) (meeting.Category, bool)
}

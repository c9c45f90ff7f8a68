// Package drive implements storage.Store on Google Drive. Transcripts are
// Google Docs, so summaries are appended through the Docs API.
package drive

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	// DocumentMimeType is the only mime type treated as a transcript.
	DocumentMimeType = "application/vnd.google-apps.document"

	exportMimeType = "text/plain"
	pageSize       = 100
	maxExportBytes = 10 << 20
)

type implStore struct {
	svc  *drive.Service
	docs *docs.Service
	l    logger.Logger
}

// New creates a Drive store. With an empty credentialsFile it uses
// application default credentials.
func New(ctx context.Context, credentialsFile string, l logger.Logger, opts ...option.ClientOption) (storage.Store, error) {
	opts = append([]option.ClientOption{option.WithScopes(drive.DriveScope, docs.DocumentsScope)}, opts...)
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	docsSvc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}

	return NewWithServices(svc, docsSvc, l), nil
}

// NewWithServices wraps existing Drive and Docs services. docsSvc may be
// nil, in which case AppendText reports storage.ErrUnsupported.
func NewWithServices(svc *drive.Service, docsSvc *docs.Service, l logger.Logger) storage.Store {
	return &implStore{
		svc:  svc,
		docs: docsSvc,
		l:    l,
	}
}

// Package objectstore implements storage.Store on an S3-compatible bucket.
//
// Transcripts are uploaded under <inbox>/<user>/. Folders are key prefixes:
// a file moved to folder F lives at F/<user>/<name>.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
)

type Options struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	Region      string
	UseSSL      bool
	InboxPrefix string
}

type implStore struct {
	client *minio.Client
	bucket string
	inbox  string
	now    func() time.Time
	l      logger.Logger
}

// New connects to the bucket described by opts.
func New(ctx context.Context, opts Options, l logger.Logger) (storage.Store, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", opts.Bucket)
	}

	return newStore(cli, opts, l), nil
}

func newStore(cli *minio.Client, opts Options, l logger.Logger) *implStore {
	inbox := opts.InboxPrefix
	if inbox == "" {
		inbox = "inbox"
	}
	return &implStore{
		client: cli,
		bucket: opts.Bucket,
		inbox:  trimSlashes(inbox),
		now:    time.Now,
		l:      l,
	}
}

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
)

const maxObjectBytes = 10 << 20

func (s *implStore) ListRecentUnprocessed(ctx context.Context, user string, window time.Duration) ([]meeting.TranscriptFile, error) {
	since := s.now().Add(-window)
	prefix := s.userPrefix(user)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var files []meeting.TranscriptFile
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w: %w", prefix, meeting.ErrAccess, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") || !obj.LastModified.After(since) {
			continue
		}

		info, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w: %w", obj.Key, meeting.ErrAccess, err)
		}
		if isProcessed(info.UserMetadata) {
			continue
		}

		files = append(files, meeting.TranscriptFile{
			ID:        obj.Key,
			Owner:     user,
			Name:      path.Base(obj.Key),
			MimeType:  info.ContentType,
			CreatedAt: obj.LastModified,
			Parents:   []string{s.inbox},
		})
	}

	storage.SortByCreated(files)
	s.l.Debug(ctx, "objectstore: %d unprocessed transcripts under %s", len(files), prefix)
	return files, nil
}

func (s *implStore) ReadContent(ctx context.Context, file meeting.TranscriptFile) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, file.ID, minio.GetObjectOptions{})
	if err != nil {
		return "", wrap(err, "get "+file.ID, meeting.ErrAccess)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxObjectBytes))
	if err != nil {
		return "", wrap(err, "read "+file.ID, meeting.ErrAccess)
	}
	return string(data), nil
}

func (s *implStore) MarkProcessed(ctx context.Context, file meeting.TranscriptFile) error {
	info, err := s.client.StatObject(ctx, s.bucket, file.ID, minio.StatObjectOptions{})
	if err != nil {
		return wrap(err, "stat "+file.ID, meeting.ErrFlag)
	}

	meta := make(map[string]string, len(info.UserMetadata)+1)
	for k, v := range info.UserMetadata {
		if !strings.EqualFold(k, meeting.ProcessedProperty) {
			meta[k] = v
		}
	}
	meta[meeting.ProcessedProperty] = "true"

	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          s.bucket,
			Object:          file.ID,
			UserMetadata:    meta,
			ReplaceMetadata: true,
			ContentType:     info.ContentType,
		},
		minio.CopySrcOptions{Bucket: s.bucket, Object: file.ID},
	)
	if err != nil {
		return wrap(err, "flag "+file.ID, meeting.ErrFlag)
	}
	return nil
}

func (s *implStore) MoveToFolder(ctx context.Context, file meeting.TranscriptFile, folderID string) (meeting.TranscriptFile, error) {
	dst := destinationKey(folderID, file.Owner, file.ID)
	if dst == file.ID {
		return file, nil
	}

	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucket, Object: file.ID},
	)
	if err != nil {
		return file, wrap(err, "copy "+file.ID, meeting.ErrMove)
	}

	// The source must go, or the next run lists the transcript again.
	if err := s.client.RemoveObject(ctx, s.bucket, file.ID, minio.RemoveObjectOptions{}); err != nil {
		if rbErr := s.client.RemoveObject(context.WithoutCancel(ctx), s.bucket, dst, minio.RemoveObjectOptions{}); rbErr != nil {
			s.l.Error(ctx, "objectstore: could not remove copy %s after failed move: %v", dst, rbErr)
		}
		return file, fmt.Errorf("remove source %s: %w: %w", file.ID, meeting.ErrMove, err)
	}

	file.ID = dst
	file.Parents = []string{trimSlashes(folderID)}
	return file, nil
}

// MarkTitleProcessed flags every other unprocessed inbox object with the
// same base name, across all users.
func (s *implStore) MarkTitleProcessed(ctx context.Context, file meeting.TranscriptFile) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		marked int
		errs   []error
	)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.inbox + "/", Recursive: true}) {
		if obj.Err != nil {
			return marked, fmt.Errorf("list copies of %q: %w: %w", file.Name, meeting.ErrAccess, obj.Err)
		}
		if obj.Key == file.ID || path.Base(obj.Key) != file.Name {
			continue
		}

		info, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			if !isNotFound(err) {
				errs = append(errs, wrap(err, "stat "+obj.Key, meeting.ErrFlag))
			}
			continue
		}
		if isProcessed(info.UserMetadata) {
			continue
		}

		if err := s.MarkProcessed(ctx, meeting.TranscriptFile{ID: obj.Key, Name: file.Name}); err != nil {
			s.l.Warn(ctx, "objectstore: failed to flag copy %s: %v", obj.Key, err)
			errs = append(errs, err)
			continue
		}
		marked++
	}

	s.l.Debug(ctx, "objectstore: flagged %d copies of %q", marked, file.Name)
	return marked, errors.Join(errs...)
}

func (s *implStore) userPrefix(user string) string {
	return s.inbox + "/" + user + "/"
}

func destinationKey(folder, user, key string) string {
	return path.Join(trimSlashes(folder), user, path.Base(key))
}

func isProcessed(meta map[string]string) bool {
	for k, v := range meta {
		if strings.EqualFold(k, meeting.ProcessedProperty) {
			return strings.EqualFold(v, "true")
		}
	}
	return false
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func wrap(err error, op string, kind error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w: %w", op, meeting.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

func trimSlashes(s string) string {
	return strings.Trim(s, "/")
}


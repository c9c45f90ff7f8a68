package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const listFields = "nextPageToken, files(id, name, mimeType, createdTime, properties, parents)"

func (s *implStore) ListRecentUnprocessed(ctx context.Context, user string, window time.Duration) ([]meeting.TranscriptFile, error) {
	since := time.Now().UTC().Add(-window)
	q := listQuery(user, since)

	var files []meeting.TranscriptFile
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(q).
			Fields(listFields).
			Corpora("allDrives").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			PageSize(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list files for %s: %w: %w", user, meeting.ErrAccess, err)
		}

		for _, f := range resp.Files {
			tf := toTranscript(f, user)
			if tf.Processed {
				continue
			}
			files = append(files, tf)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	storage.SortByCreated(files)
	s.l.Debug(ctx, "drive: %d unprocessed transcripts for %s since %s", len(files), user, since.Format(time.RFC3339))
	return files, nil
}

func (s *implStore) ReadContent(ctx context.Context, file meeting.TranscriptFile) (string, error) {
	resp, err := s.svc.Files.Export(file.ID, exportMimeType).Context(ctx).Download()
	if err != nil {
		return "", wrap(err, "export "+file.ID, meeting.ErrAccess)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes))
	if err != nil {
		return "", fmt.Errorf("read export %s: %w: %w", file.ID, meeting.ErrAccess, err)
	}
	return string(data), nil
}

func (s *implStore) MarkProcessed(ctx context.Context, file meeting.TranscriptFile) error {
	update := &drive.File{Properties: map[string]string{meeting.ProcessedProperty: "true"}}
	_, err := s.svc.Files.Update(file.ID, update).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrap(err, "flag "+file.ID, meeting.ErrFlag)
	}
	return nil
}

func (s *implStore) MoveToFolder(ctx context.Context, file meeting.TranscriptFile, folderID string) (meeting.TranscriptFile, error) {
	current, err := s.svc.Files.Get(file.ID).
		Fields("id, parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return file, wrap(err, "get parents "+file.ID, meeting.ErrMove)
	}

	var remove []string
	for _, p := range current.Parents {
		if p != folderID {
			remove = append(remove, p)
		}
	}

	call := s.svc.Files.Update(file.ID, &drive.File{}).
		AddParents(folderID).
		Fields("id, parents").
		SupportsAllDrives(true).
		Context(ctx)
	if len(remove) > 0 {
		call = call.RemoveParents(strings.Join(remove, ","))
	}

	updated, err := call.Do()
	if err != nil {
		return file, wrap(err, "move "+file.ID, meeting.ErrMove)
	}

	file.Parents = updated.Parents
	if len(file.Parents) == 0 {
		file.Parents = []string{folderID}
	}
	return file, nil
}

// AppendText inserts text at the end of the document body.
func (s *implStore) AppendText(ctx context.Context, file meeting.TranscriptFile, text string) error {
	if s.docs == nil {
		return fmt.Errorf("append to %s: %w", file.ID, storage.ErrUnsupported)
	}

	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
				Text:                 text,
			},
		}},
	}
	if _, err := s.docs.Documents.BatchUpdate(file.ID, req).Context(ctx).Do(); err != nil {
		return wrap(err, "append to "+file.ID, meeting.ErrAccess)
	}
	return nil
}

// MarkTitleProcessed flags the other copies of a transcript. Meet creates
// one document per participant, all sharing the same title.
func (s *implStore) MarkTitleProcessed(ctx context.Context, file meeting.TranscriptFile) (int, error) {
	q := titleQuery(file.Name)

	var (
		marked int
		errs   []error
	)
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Q(q).
			Fields("nextPageToken, files(id, name, properties)").
			Corpora("allDrives").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			PageSize(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return marked, fmt.Errorf("list copies of %q: %w: %w", file.Name, meeting.ErrAccess, err)
		}

		for _, f := range resp.Files {
			if f.Id == file.ID || strings.EqualFold(f.Properties[meeting.ProcessedProperty], "true") {
				continue
			}
			if err := s.MarkProcessed(ctx, meeting.TranscriptFile{ID: f.Id, Name: f.Name}); err != nil {
				s.l.Warn(ctx, "drive: failed to flag copy %s of %q: %v", f.Id, file.Name, err)
				errs = append(errs, err)
				continue
			}
			marked++
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	s.l.Debug(ctx, "drive: flagged %d copies of %q", marked, file.Name)
	return marked, errors.Join(errs...)
}

func titleQuery(name string) string {
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escape(name), DocumentMimeType)
}

func listQuery(user string, since time.Time) string {
	return fmt.Sprintf(
		"'%s' in owners and mimeType = '%s' and trashed = false and createdTime > '%s'",
		escape(user), DocumentMimeType, since.Format(time.RFC3339),
	)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func toTranscript(f *drive.File, owner string) meeting.TranscriptFile {
	created, _ := time.Parse(time.RFC3339, f.CreatedTime)
	return meeting.TranscriptFile{
		ID:        f.Id,
		Owner:     owner,
		Name:      f.Name,
		MimeType:  f.MimeType,
		CreatedAt: created,
		Parents:   f.Parents,
		Processed: strings.EqualFold(f.Properties[meeting.ProcessedProperty], "true"),
	}
}

// wrap maps Drive API errors onto the domain sentinels.
func wrap(err error, op string, kind error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %w", op, meeting.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

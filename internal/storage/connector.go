package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

func (c *implConnector) MoveToCategory(ctx context.Context, file meeting.TranscriptFile, category meeting.Category) (meeting.TranscriptFile, error) {
	folder, ok := c.routes.Folder(category)
	if !ok {
		return file, fmt.Errorf("move %s: no folder mapped for %q: %w", file.ID, category, meeting.ErrConfig)
	}
	return c.Store.MoveToFolder(ctx, file, folder)
}

func (c *implConnector) Destination(file meeting.TranscriptFile) (meeting.Category, bool) {
	dest := c.routes.Destinations()
	for _, p := range file.Parents {
		if cat, ok := dest[p]; ok {
			return cat, true
		}
	}
	return "", false
}

func (c *implConnector) AppendText(ctx context.Context, file meeting.TranscriptFile, text string) error {
	a, ok := c.Store.(Annotator)
	if !ok {
		return fmt.Errorf("append to %s: %w", file.ID, ErrUnsupported)
	}
	return a.AppendText(ctx, file, text)
}

func (c *implConnector) MarkTitleProcessed(ctx context.Context, file meeting.TranscriptFile) (int, error) {
	m, ok := c.Store.(TitleMarker)
	if !ok {
		return 0, fmt.Errorf("flag copies of %q: %w", file.Name, ErrUnsupported)
	}
	return m.MarkTitleProcessed(ctx, file)
}

// SortByCreated orders files oldest first, breaking ties by ID.
func SortByCreated(files []meeting.TranscriptFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].ID < files[j].ID
		}
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
}

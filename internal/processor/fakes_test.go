package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/nguyentantai21042004/meetsort/internal/notifier"
	"github.com/nguyentantai21042004/meetsort/internal/storage"
)

const inbox = "inbox"

type memStore struct {
	files   map[string]*meeting.TranscriptFile
	content map[string]string
	listErr map[string]error
	readErr map[string]error
	moveErr map[string]error
	flagErr map[string]error
	moves   []string
	notes   map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		files:   map[string]*meeting.TranscriptFile{},
		content: map[string]string{},
		listErr: map[string]error{},
		readErr: map[string]error{},
		moveErr: map[string]error{},
		flagErr: map[string]error{},
		notes:   map[string]string{},
	}
}

func (s *memStore) add(owner, id, name, text string, created time.Time) {
	s.files[id] = &meeting.TranscriptFile{
		ID:        id,
		Owner:     owner,
		Name:      name,
		CreatedAt: created,
		Parents:   []string{inbox},
	}
	s.content[id] = text
}

func (s *memStore) ListRecentUnprocessed(ctx context.Context, user string, window time.Duration) ([]meeting.TranscriptFile, error) {
	if err := s.listErr[user]; err != nil {
		return nil, err
	}
	var out []meeting.TranscriptFile
	for _, f := range s.files {
		if f.Owner == user && !f.Processed {
			out = append(out, *f)
		}
	}
	storage.SortByCreated(out)
	return out, nil
}

func (s *memStore) ReadContent(ctx context.Context, file meeting.TranscriptFile) (string, error) {
	if err := s.readErr[file.ID]; err != nil {
		return "", err
	}
	return s.content[file.ID], nil
}

func (s *memStore) MarkProcessed(ctx context.Context, file meeting.TranscriptFile) error {
	if err := s.flagErr[file.ID]; err != nil {
		return err
	}
	f, ok := s.files[file.ID]
	if !ok {
		return fmt.Errorf("flag %s: %w", file.ID, meeting.ErrNotFound)
	}
	f.Processed = true
	return nil
}

func (s *memStore) MoveToFolder(ctx context.Context, file meeting.TranscriptFile, folderID string) (meeting.TranscriptFile, error) {
	if err := s.moveErr[file.ID]; err != nil {
		return file, err
	}
	f, ok := s.files[file.ID]
	if !ok {
		return file, fmt.Errorf("move %s: %w", file.ID, meeting.ErrNotFound)
	}
	f.Parents = []string{folderID}
	s.moves = append(s.moves, file.ID+"->"+folderID)
	return *f, nil
}

func (s *memStore) AppendText(ctx context.Context, file meeting.TranscriptFile, text string) error {
	if _, ok := s.files[file.ID]; !ok {
		return fmt.Errorf("append %s: %w", file.ID, meeting.ErrNotFound)
	}
	s.notes[file.ID] += text
	return nil
}

func (s *memStore) MarkTitleProcessed(ctx context.Context, file meeting.TranscriptFile) (int, error) {
	n := 0
	for id, f := range s.files {
		if id == file.ID || f.Name != file.Name || f.Processed {
			continue
		}
		f.Processed = true
		n++
	}
	return n, nil
}

// plainStore hides the optional capabilities of the store it wraps.
type plainStore struct {
	storage.Store
}

func (s *memStore) folderOf(id string) string {
	if f, ok := s.files[id]; ok && len(f.Parents) > 0 {
		return f.Parents[0]
	}
	return ""
}

// fakeClassifier answers with raw model output keyed by document name.
type fakeClassifier struct {
	set       meeting.CategorySet
	answers   map[string]string
	errs      map[string]error
	calls     int
	summaries []classifier.SummaryKind
	noSummary bool
}

func (c *fakeClassifier) Classify(ctx context.Context, doc meeting.Document) (meeting.Classification, error) {
	c.calls++
	if err := c.errs[doc.Name]; err != nil {
		return meeting.Classification{}, err
	}
	return classifier.ParseAnswer(c.answers[doc.Name], c.set), nil
}

func (c *fakeClassifier) Summarize(ctx context.Context, doc meeting.Document, kind classifier.SummaryKind) (string, error) {
	c.summaries = append(c.summaries, kind)
	if c.noSummary {
		return "", nil
	}
	if kind == classifier.ChatSummary {
		return "*Updates*\n- " + doc.Name, nil
	}
	return fmt.Sprintf("%s summary of %s", kind, doc.Name), nil
}

type fakeNotifier struct {
	important map[meeting.Category]bool
	err       error
	sent      []notifier.Notification
}

func (n *fakeNotifier) Enabled(category meeting.Category) bool {
	return n.important[category]
}

func (n *fakeNotifier) Notify(ctx context.Context, note notifier.Notification) error {
	if !n.Enabled(note.Category) {
		return nil
	}
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, note)
	return nil
}

type fakePublisher struct {
	runs []string
}

func (p *fakePublisher) PublishRun(ctx context.Context, runID string, summary any) error {
	p.runs = append(p.runs, runID)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

var errBoom = errors.New("boom")

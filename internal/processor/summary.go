package processor

import (
	"time"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// Processing steps as reported in FileError.Step.
const (
	StepReconcile = "reconcile"
	StepClassify  = "classify"
	StepResolve   = "resolve"
	StepMove      = "move"
	StepFlag      = "flag"
)

// Run statuses.
const (
	StatusOK       = "ok"
	StatusPartial  = "partial"
	StatusCanceled = "canceled"
)

// Counts are the per-file outcome counters.
type Counts struct {
	Scanned    int `json:"scanned"`
	Classified int `json:"classified"`
	Moved      int `json:"moved"`
	Processed  int `json:"processed"`
	Notified   int `json:"notified"`
	Fallbacks  int `json:"fallbacks"`
	Downgraded int `json:"downgraded"`
	Reconciled int `json:"reconciled"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`

	// Duplicates are files skipped because a file with the same title was
	// already handled in this run. CopiesFlagged counts the other files
	// flagged processed alongside a handled title.
	Duplicates    int `json:"duplicates"`
	CopiesFlagged int `json:"copiesFlagged"`

	Annotated          int `json:"annotated"`
	ValidationNotified int `json:"validationNotified"`
}

func (c *Counts) add(o Counts) {
	c.Scanned += o.Scanned
	c.Classified += o.Classified
	c.Moved += o.Moved
	c.Processed += o.Processed
	c.Notified += o.Notified
	c.Fallbacks += o.Fallbacks
	c.Downgraded += o.Downgraded
	c.Reconciled += o.Reconciled
	c.Skipped += o.Skipped
	c.Failed += o.Failed
	c.Duplicates += o.Duplicates
	c.CopiesFlagged += o.CopiesFlagged
	c.Annotated += o.Annotated
	c.ValidationNotified += o.ValidationNotified
}

// FileError describes one failed file.
type FileError struct {
	FileID  string `json:"fileId"`
	Name    string `json:"name"`
	Step    string `json:"step"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// UserSummary is the outcome of one user's pass.
type UserSummary struct {
	User string `json:"user"`
	Counts
	// ListError is set when the user's files could not be listed.
	ListError         string      `json:"listError,omitempty"`
	Errors            []FileError `json:"errors,omitempty"`
	MovedButUnflagged []string    `json:"movedButUnflagged,omitempty"`
}

// RunSummary is the outcome of one pass over every user.
type RunSummary struct {
	RunID      string        `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Status     string        `json:"status"`
	Users      []UserSummary `json:"users"`
	Totals     Counts        `json:"totals"`
}

func (u *UserSummary) fail(file meeting.TranscriptFile, step string, err error) {
	u.Failed++
	u.Errors = append(u.Errors, FileError{
		FileID:  file.ID,
		Name:    file.Name,
		Step:    step,
		Kind:    meeting.KindOf(err),
		Message: err.Error(),
	})
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *RunSummary) finish(at time.Time, canceled bool) {
	s.FinishedAt = at
	s.Totals = Counts{}
	s.Status = StatusOK
	for _, u := range s.Users {
		s.Totals.add(u.Counts)
		if u.ListError != "" || u.Failed > 0 {
			s.Status = StatusPartial
		}
	}
	if canceled {
		s.Status = StatusCanceled
	}
}

package meeting

import "errors"

var (
	// ErrAccess means a user's files could not be listed or read.
	ErrAccess = errors.New("access error")
	// ErrClassification means the AI call failed.
	ErrClassification = errors.New("classification error")
	// ErrConfig means a category has no destination folder.
	ErrConfig = errors.New("config error")
	// ErrNotFound means the file vanished between list and act.
	ErrNotFound = errors.New("not found")
	// ErrMove means the storage move failed.
	ErrMove = errors.New("move failure")
	// ErrFlag means the move succeeded but the processed flag could not be set.
	ErrFlag = errors.New("flag failure")
)

// Error kinds as reported in run summaries and metrics.
const (
	KindAccess         = "access"
	KindClassification = "classification"
	KindConfig         = "config"
	KindNotFound       = "not_found"
	KindMove           = "move"
	KindFlag           = "flag"
	KindUnknown        = "unknown"
)

// KindOf names the error kind of err.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAccess):
		return KindAccess
	case errors.Is(err, ErrClassification):
		return KindClassification
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrMove):
		return KindMove
	case errors.Is(err, ErrFlag):
		return KindFlag
	default:
		return KindUnknown
	}
}

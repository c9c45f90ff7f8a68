// Package meeting holds the domain types shared by the storage, classifier,
// notifier and processor packages.
package meeting

import "time"

// ProcessedProperty is the custom file property marking a transcript as handled.
const ProcessedProperty = "meeting_processed"

// TranscriptFile is a meeting transcript stored in the file-storage service.
type TranscriptFile struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Parents   []string  `json:"parents,omitempty"`
	Processed bool      `json:"processed"`
}

// InFolder reports whether the file currently sits in folderID.
func (f TranscriptFile) InFolder(folderID string) bool {
	for _, p := range f.Parents {
		if p == folderID {
			return true
		}
	}
	return false
}

// Document is the input handed to a classifier.
type Document struct {
	Name      string
	Text      string
	CreatedAt time.Time
}

// Classification is the classifier's answer for one transcript.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

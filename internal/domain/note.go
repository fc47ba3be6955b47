package domain

import "time"

// NoteType classifies uploaded study notes.
type NoteType string

const (
	NoteTypeLecture    NoteType = "lecture"
	NoteTypeExam       NoteType = "exam"
	NoteTypeSummary    NoteType = "summary"
	NoteTypeAssignment NoteType = "assignment"
)

// ValidNoteType reports whether t is a known note type.
func ValidNoteType(t NoteType) bool {
	switch t {
	case NoteTypeLecture, NoteTypeExam, NoteTypeSummary, NoteTypeAssignment:
		return true
	}
	return false
}

// Note is a shared study note. File contents live in external object
// storage and are out of scope; only the metadata is stored here.
type Note struct {
	ID            string
	UploaderID    string
	UniversityID  string
	Subject       string
	NoteType      NoteType
	Title         string
	Description   string
	CourseCode    string
	DownloadCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NoteSummary is the projection returned by search and list endpoints.
type NoteSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject"`
	NoteType         string    `json:"noteType"`
	CourseCode       string    `json:"courseCode,omitempty"`
	UploaderID       string    `json:"uploaderId"`
	UploaderUsername string    `json:"uploaderUsername"`
	UniversityID     string    `json:"universityId"`
	UniversityName   string    `json:"universityName"`
	DownloadCount    int       `json:"downloadCount"`
	CreatedAt        time.Time `json:"createdAt"`
	Score            float64   `json:"score,omitempty"`
}

// NoteDetail is a full note with its display relations resolved.
type NoteDetail struct {
	Note
	UploaderUsername string
	UniversityName   string
}

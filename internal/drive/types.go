// internal/drive/types.go
package drive

import (
	"errors"
	"time"
)

// Google Workspace MIME types the walker knows how to process.
const (
	MimeTypeFolder      = "application/vnd.google-apps.folder"
	MimeTypeDocument    = "application/vnd.google-apps.document"
	MimeTypeSpreadsheet = "application/vnd.google-apps.spreadsheet"

	ExportMimeHTML = "text/html"
)

// Remote failures, classified from API status codes.
var (
	ErrUnauthorized = errors.New("drive: unauthorized")
	ErrForbidden    = errors.New("drive: forbidden")
	ErrNotFound     = errors.New("drive: not found")
	ErrRateLimited  = errors.New("drive: rate limit exceeded")
)

type ItemID string

// Kind is the closed set of item types the walker distinguishes.
type Kind int

const (
	KindUnknown Kind = iota
	KindFolder
	KindDocument
	KindSpreadsheet
)

// KindOf maps a MIME type onto a Kind. Anything unrecognized is KindUnknown.
func KindOf(mimeType string) Kind {
	switch mimeType {
	case MimeTypeFolder:
		return KindFolder
	case MimeTypeDocument:
		return KindDocument
	case MimeTypeSpreadsheet:
		return KindSpreadsheet
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindDocument:
		return "document"
	case KindSpreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

// User is the last modifying user as reported by Drive.
type User struct {
	DisplayName  string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty" yaml:"emailAddress,omitempty"`
	PhotoLink    string `json:"photoLink,omitempty" yaml:"photoLink,omitempty"`
}

type ItemMeta struct {
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedTime       time.Time `json:"createdTime" yaml:"createdTime"`
	ModifiedTime      time.Time `json:"modifiedTime" yaml:"modifiedTime"`
	LastModifyingUser *User     `json:"lastModifyingUser,omitempty" yaml:"lastModifyingUser,omitempty"`
	Version           int64     `json:"version" yaml:"version"`
}

// FileEntry is a folder child. Contents is filled in by the walker once the
// matching processor has run.
type FileEntry struct {
	ID       ItemID   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	MimeType string   `json:"mimeType" yaml:"mimeType"`
	Contents Contents `json:"contents,omitempty" yaml:"contents,omitempty"`
}

// Contents is the processed payload of a FileEntry.
type Contents interface {
	Kind() Kind
}

// FolderContents lists a folder's processed children in listing order.
type FolderContents []*FileEntry

func (FolderContents) Kind() Kind { return KindFolder }

type HTML struct {
	Raw    string `json:"raw" yaml:"raw"`
	Parsed string `json:"parsed" yaml:"parsed"`
}

type DocumentResult struct {
	Meta ItemMeta `json:"meta" yaml:"meta"`
	HTML HTML     `json:"html" yaml:"html"`
}

func (*DocumentResult) Kind() Kind { return KindDocument }

// WorksheetMeta describes one tab; slices of it keep the authored tab order.
type WorksheetMeta struct {
	URL      string `json:"url" yaml:"url"`
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	RowCount int64  `json:"rowCount" yaml:"rowCount"`
	ColCount int64  `json:"colCount" yaml:"colCount"`
}

// RawRow maps raw column headers to formatted cell strings. Keys beginning
// with an underscore are adapter bookkeeping.
type RawRow map[string]string

// RowObject maps camel-cased column keys to nil, float64, bool or string.
type RowObject map[string]any

type Worksheet struct {
	Meta WorksheetMeta `json:"meta" yaml:"meta"`
	Data []RowObject   `json:"data" yaml:"data"`
}

type SpreadsheetResult struct {
	Meta       ItemMeta    `json:"meta" yaml:"meta"`
	Worksheets []Worksheet `json:"worksheets" yaml:"worksheets"`
}

func (*SpreadsheetResult) Kind() Kind { return KindSpreadsheet }

// Credential is a service account key as downloaded from the Cloud console.
type Credential struct {
	Type         string `json:"type,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri,omitempty"`
}

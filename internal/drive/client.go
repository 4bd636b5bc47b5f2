package drive

import "context"

// Client is the narrow Drive surface required by the walker.
type Client interface {
	ListChildren(ctx context.Context, parent ItemID, pageToken string, pageSize int) (ListPage, error)
	GetMeta(ctx context.Context, id ItemID) (ItemMeta, error)
	Export(ctx context.Context, id ItemID, mimeType string) (string, error)
	// OpenSpreadsheet binds a session to one spreadsheet; it performs no remote call.
	OpenSpreadsheet(ctx context.Context, id ItemID) (Spreadsheet, error)
}

// Spreadsheet is a session scoped to a single spreadsheet item.
type Spreadsheet interface {
	Worksheets(ctx context.Context) ([]WorksheetMeta, error)
	Rows(ctx context.Context, ws WorksheetMeta) ([]RawRow, error)
}

// ListPage is one page of a folder listing.
type ListPage struct {
	Files         []FileEntry
	NextPageToken string
}

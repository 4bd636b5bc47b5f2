// internal/runtime/googleapi.go: adapts the Drive and Sheets services to our small interfaces
package runtime

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	dc "github.com/joshsymonds/driveloader/internal/drive"
)

const (
	listFields = "nextPageToken,files(id,name,mimeType)"
	metaFields = "description,createdTime,modifiedTime,lastModifyingUser,version"
	bookFields = "spreadsheetUrl,sheets.properties"
	rowKey     = "_row"
)

type googleClient struct {
	files  *drive.Service
	sheets *sheets.Service
}

func NewGoogleAPIClient(files *drive.Service, sheetsSvc *sheets.Service) *googleClient {
	return &googleClient{files: files, sheets: sheetsSvc}
}

func (g *googleClient) ListChildren(
	ctx context.Context,
	parent dc.ItemID,
	pageToken string,
	pageSize int,
) (dc.ListPage, error) {
	call := g.files.Files.List().
		Q(childrenQuery(parent)).
		PageSize(int64(pageSize)).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return dc.ListPage{}, classify(err)
	}
	page := dc.ListPage{NextPageToken: res.NextPageToken}
	for _, f := range res.Files {
		page.Files = append(page.Files, dc.FileEntry{ID: dc.ItemID(f.Id), Name: f.Name, MimeType: f.MimeType})
	}
	return page, nil
}

func (g *googleClient) GetMeta(ctx context.Context, id dc.ItemID) (dc.ItemMeta, error) {
	f, err := g.files.Files.Get(string(id)).
		Fields(metaFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return dc.ItemMeta{}, classify(err)
	}
	meta := dc.ItemMeta{
		Description:  f.Description,
		CreatedTime:  parseTime(f.CreatedTime),
		ModifiedTime: parseTime(f.ModifiedTime),
		Version:      f.Version,
	}
	if u := f.LastModifyingUser; u != nil {
		meta.LastModifyingUser = &dc.User{
			DisplayName:  u.DisplayName,
			EmailAddress: u.EmailAddress,
			PhotoLink:    u.PhotoLink,
		}
	}
	return meta, nil
}

func (g *googleClient) Export(ctx context.Context, id dc.ItemID, mimeType string) (string, error) {
	resp, err := g.files.Files.Export(string(id), mimeType).Context(ctx).Download()
	if err != nil {
		return "", classify(err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(body), nil
}

func (g *googleClient) OpenSpreadsheet(ctx context.Context, id dc.ItemID) (dc.Spreadsheet, error) {
	_ = ctx
	if id == "" {
		return nil, fmt.Errorf("open spreadsheet: empty id")
	}
	return &spreadsheet{svc: g.sheets, id: string(id)}, nil
}

type spreadsheet struct {
	svc *sheets.Service
	id  string
}

func (s *spreadsheet) Worksheets(ctx context.Context) ([]dc.WorksheetMeta, error) {
	book, err := s.svc.Spreadsheets.Get(s.id).Fields(bookFields).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	out := make([]dc.WorksheetMeta, 0, len(book.Sheets))
	for _, sh := range book.Sheets {
		p := sh.Properties
		if p == nil {
			continue
		}
		meta := dc.WorksheetMeta{
			URL:   worksheetURL(book.SpreadsheetUrl, s.id, p.SheetId),
			ID:    strconv.FormatInt(p.SheetId, 10),
			Title: p.Title,
		}
		if gp := p.GridProperties; gp != nil {
			meta.RowCount = gp.RowCount
			meta.ColCount = gp.ColumnCount
		}
		out = append(out, meta)
	}
	return out, nil
}

func (s *spreadsheet) Rows(ctx context.Context, ws dc.WorksheetMeta) ([]dc.RawRow, error) {
	vr, err := s.svc.Spreadsheets.Values.Get(s.id, quoteSheet(ws.Title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}
	return rowsFromValues(vr.Values), nil
}

// rowsFromValues keys every row after the header row by header text. Fully
// blank rows are skipped, columns without a header are ignored and repeated
// headers get the first free numeric suffix.
func rowsFromValues(values [][]interface{}) []dc.RawRow {
	if len(values) == 0 {
		return []dc.RawRow{}
	}
	headers := headerKeys(values[0])
	rows := make([]dc.RawRow, 0, len(values)-1)
	for i, cells := range values[1:] {
		row := dc.RawRow{}
		blank := true
		for col, key := range headers {
			if key == "" {
				continue
			}
			val := ""
			if col < len(cells) {
				val = cellString(cells[col])
			}
			if val != "" {
				blank = false
			}
			row[key] = val
		}
		if blank {
			continue
		}
		// the header occupies sheet row 1
		row[rowKey] = strconv.Itoa(i + 2)
		rows = append(rows, row)
	}
	return rows
}

func headerKeys(cells []interface{}) []string {
	keys := make([]string, len(cells))
	used := map[string]bool{}
	for i, c := range cells {
		base := strings.TrimLeft(strings.TrimSpace(cellString(c)), "_")
		if base == "" {
			continue
		}
		key := base
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func childrenQuery(parent dc.ItemID) string {
	escaped := strings.ReplaceAll(string(parent), `'`, `\'`)
	return fmt.Sprintf("'%s' in parents and trashed = false", escaped)
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func worksheetURL(bookURL, id string, sheetID int64) string {
	if bookURL == "" {
		bookURL = "https://docs.google.com/spreadsheets/d/" + id + "/edit"
	}
	return fmt.Sprintf("%s#gid=%d", bookURL, sheetID)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

var (
	_ dc.Client      = (*googleClient)(nil)
	_ dc.Spreadsheet = (*spreadsheet)(nil)
)

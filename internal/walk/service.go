// internal/walk/service.go
package walk

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joshsymonds/driveloader/internal/drive"
	"github.com/joshsymonds/driveloader/internal/normalize"
	"github.com/joshsymonds/driveloader/internal/rate"
)

// DefaultPageSize is the Drive listing page size.
const DefaultPageSize = 1000

// Service walks a Drive folder tree. Every remote call goes through Limiter.
type Service struct {
	Client   drive.Client
	Limiter  rate.Limiter
	Logger   *slog.Logger
	PageSize int
	// FanOut bounds concurrent children per folder and worksheets per
	// spreadsheet; zero means unbounded.
	FanOut int
}

// NewService constructs a Service with sane defaults. Progress logging is
// opt-in, so a nil logger discards; callers wanting stderr output pass
// runtime.DefaultLogger.
func NewService(client drive.Client, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if limiter == nil {
		limiter = rate.Unlimited{}
	}
	return &Service{
		Client:   client,
		Limiter:  limiter,
		Logger:   logger,
		PageSize: DefaultPageSize,
	}
}

// Folder lists a folder and processes every recognized child concurrently.
// The result keeps listing order. Any child failure fails the whole folder.
func (s *Service) Folder(ctx context.Context, id drive.ItemID) (drive.FolderContents, error) {
	s.Logger.InfoContext(ctx, "loading folder", "id", id)
	files, err := s.listAll(ctx, id)
	if err != nil {
		return nil, err
	}

	slots := make([]*drive.FileEntry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if s.FanOut > 0 {
		g.SetLimit(s.FanOut)
	}
	for i := range files {
		file := files[i]
		kind := drive.KindOf(file.MimeType)
		if kind == drive.KindUnknown {
			s.Logger.InfoContext(ctx, "skipping unknown mime type", "mime_type", file.MimeType, "name", file.Name)
			continue
		}
		s.Logger.InfoContext(ctx, "found item", "kind", kind, "mime_type", file.MimeType, "name", file.Name)
		g.Go(func() error {
			contents, err := s.process(gctx, kind, file.ID)
			if err != nil {
				return err
			}
			file.Contents = contents
			slots[i] = &file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(drive.FolderContents, 0, len(slots))
	for _, entry := range slots {
		if entry != nil {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *Service) process(ctx context.Context, kind drive.Kind, id drive.ItemID) (drive.Contents, error) {
	switch kind {
	case drive.KindFolder:
		children, err := s.Folder(ctx, id)
		if err != nil {
			return nil, err
		}
		return children, nil
	case drive.KindDocument:
		doc, err := s.Document(ctx, id)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case drive.KindSpreadsheet:
		sheet, err := s.Spreadsheet(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheet, nil
	default:
		return nil, fmt.Errorf("no processor for %s item %s", kind, id)
	}
}

// Document fetches metadata and the HTML export concurrently.
func (s *Service) Document(ctx context.Context, id drive.ItemID) (*drive.DocumentResult, error) {
	var out drive.DocumentResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta, err := s.Meta(gctx, id)
		if err != nil {
			return err
		}
		out.Meta = meta
		return nil
	})
	g.Go(func() error {
		html, err := s.documentHTML(gctx, id)
		if err != nil {
			return err
		}
		out.HTML = html
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) documentHTML(ctx context.Context, id drive.ItemID) (drive.HTML, error) {
	raw, err := rate.Submit(ctx, s.Limiter, func(ctx context.Context) (string, error) {
		return s.Client.Export(ctx, id, drive.ExportMimeHTML)
	})
	if err != nil {
		return drive.HTML{}, fmt.Errorf("export document %s: %w", id, err)
	}
	parsed, err := normalize.ExtractBody(raw)
	if err != nil {
		return drive.HTML{}, fmt.Errorf("extract body of %s: %w", id, err)
	}
	return drive.HTML{Raw: raw, Parsed: parsed}, nil
}

// Spreadsheet fetches metadata concurrently with every worksheet's rows.
func (s *Service) Spreadsheet(ctx context.Context, id drive.ItemID) (*drive.SpreadsheetResult, error) {
	var out drive.SpreadsheetResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta, err := s.Meta(gctx, id)
		if err != nil {
			return err
		}
		out.Meta = meta
		return nil
	})
	g.Go(func() error {
		sheets, err := s.worksheets(gctx, id)
		if err != nil {
			return err
		}
		out.Worksheets = sheets
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) worksheets(ctx context.Context, id drive.ItemID) ([]drive.Worksheet, error) {
	book, err := s.Client.OpenSpreadsheet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", id, err)
	}
	metas, err := rate.Submit(ctx, s.Limiter, book.Worksheets)
	if err != nil {
		return nil, fmt.Errorf("list worksheets of %s: %w", id, err)
	}

	out := make([]drive.Worksheet, len(metas))
	g, gctx := errgroup.WithContext(ctx)
	if s.FanOut > 0 {
		g.SetLimit(s.FanOut)
	}
	for i, meta := range metas {
		g.Go(func() error {
			rows, err := rate.Submit(gctx, s.Limiter, func(ctx context.Context) ([]drive.RawRow, error) {
				return book.Rows(ctx, meta)
			})
			if err != nil {
				return fmt.Errorf("load rows of worksheet %q in %s: %w", meta.Title, id, err)
			}
			out[i] = drive.Worksheet{Meta: meta, Data: normalize.CleanRows(rows)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Meta fetches an item's description, timestamps, last modifier and version.
func (s *Service) Meta(ctx context.Context, id drive.ItemID) (drive.ItemMeta, error) {
	meta, err := rate.Submit(ctx, s.Limiter, func(ctx context.Context) (drive.ItemMeta, error) {
		return s.Client.GetMeta(ctx, id)
	})
	if err != nil {
		return drive.ItemMeta{}, fmt.Errorf("get metadata %s: %w", id, err)
	}
	return meta, nil
}

func (s *Service) listAll(ctx context.Context, id drive.ItemID) ([]drive.FileEntry, error) {
	pageSize := s.PageSize
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	var (
		files []drive.FileEntry
		token string
	)
	for {
		page, err := rate.Submit(ctx, s.Limiter, func(ctx context.Context) (drive.ListPage, error) {
			return s.Client.ListChildren(ctx, id, token, pageSize)
		})
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", id, err)
		}
		files = append(files, page.Files...)
		if page.NextPageToken == "" {
			return files, nil
		}
		token = page.NextPageToken
	}
}

// Package report renders a loaded tree as JSON, YAML or a human outline.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/driveloader/internal/drive"
)

const nameDisplayLimit = 60

// Format selects the machine-readable encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// Summary counts what a load produced.
type Summary struct {
	Folders      int `json:"folders" yaml:"folders"`
	Documents    int `json:"documents" yaml:"documents"`
	Spreadsheets int `json:"spreadsheets" yaml:"spreadsheets"`
	Worksheets   int `json:"worksheets" yaml:"worksheets"`
	Rows         int `json:"rows" yaml:"rows"`
}

// Summarize walks the tree and tallies every kind.
func Summarize(tree drive.FolderContents) Summary {
	var sum Summary
	summarize(tree, &sum)
	return sum
}

func summarize(tree drive.FolderContents, sum *Summary) {
	for _, e := range tree {
		switch c := e.Contents.(type) {
		case drive.FolderContents:
			sum.Folders++
			summarize(c, sum)
		case *drive.DocumentResult:
			sum.Documents++
		case *drive.SpreadsheetResult:
			sum.Spreadsheets++
			sum.Worksheets += len(c.Worksheets)
			for _, ws := range c.Worksheets {
				sum.Rows += len(ws.Data)
			}
		}
	}
}

// Encode writes the tree to w in the requested format.
func Encode(tree drive.FolderContents, format Format, w io.Writer) error {
	if tree == nil {
		tree = drive.FolderContents{}
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush yaml: %w", err)
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	}
	return nil
}

// PrintHuman writes a readable outline of the tree to the provided writer.
func PrintHuman(tree drive.FolderContents, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	var builder strings.Builder
	sum := Summarize(tree)
	fmt.Fprintf(
		&builder,
		"driveloader — %d folders, %d documents, %d spreadsheets (%d worksheets, %d rows)\n",
		sum.Folders,
		sum.Documents,
		sum.Spreadsheets,
		sum.Worksheets,
		sum.Rows,
	)
	outline(&builder, tree, 1)
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write human report: %w", err)
	}
	return nil
}

func outline(b *strings.Builder, tree drive.FolderContents, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range tree {
		kind := drive.KindOf(e.MimeType)
		fmt.Fprintf(b, "%s%-12s %s (%s)\n", indent, kind, truncate(e.Name, nameDisplayLimit), e.ID)
		switch c := e.Contents.(type) {
		case drive.FolderContents:
			outline(b, c, depth+1)
		case *drive.SpreadsheetResult:
			for _, ws := range c.Worksheets {
				fmt.Fprintf(b, "%s  %-12s %s (%d rows)\n", indent, "worksheet", ws.Meta.Title, len(ws.Data))
			}
		}
	}
}

// WriteFile serializes the tree to a path relative to the working directory.
func WriteFile(tree drive.FolderContents, format Format, path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if strings.HasPrefix(clean, "..") {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	return Encode(tree, format, f)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"charm.land/glamour/v2"
	"gopkg.in/yaml.v3"

	"github.com/Gaurav-Gosain/postlinks/extract"
	"github.com/Gaurav-Gosain/postlinks/scraper"
)

// Format names a record export format.
type Format string

const (
	JSONLines Format = "jsonl"
	JSON      Format = "json"
	CSV       Format = "csv"
	YAML      Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jsonl", "jsonlines", "ndjson":
		return JSONLines, nil
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath guesses the format from a file extension, falling back to
// JSON lines.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return JSONLines
	}
	return f
}

// Write encodes records to w.
func Write(w io.Writer, records []extract.Record, format Format) error {
	switch format {
	case JSONLines, "":
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to encode record: %w", err)
			}
		}
		return nil

	case JSON:
		if records == nil {
			records = []extract.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}
		return nil

	case CSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"post_url"})
		for _, r := range records {
			_ = cw.Write([]string{r.PostURL})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil

	case YAML:
		if records == nil {
			records = []extract.Record{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteFile writes records to path, creating parent directories.
func WriteFile(path string, records []extract.Record, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Write(f, records, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Markdown renders records as a markdown list under a heading.
func Markdown(records []extract.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Posts (%d)\n\n", len(records))
	if len(records) == 0 {
		b.WriteString("_No posts found._\n")
		return b.String()
	}
	for _, r := range records {
		fmt.Fprintf(&b, "- `%s`\n", r.PostURL)
	}
	return b.String()
}

// RenderTerminal renders records to stdout using glamour.
func RenderTerminal(records []extract.Record, wordWrap int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	rendered, err := renderer.Render(Markdown(records))
	if err != nil {
		return fmt.Errorf("failed to render records: %w", err)
	}
	fmt.Print(rendered)
	return nil
}

// IsTerminal reports whether stdout is connected to a terminal.
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// ReportErrors prints one line per failed page to w.
func ReportErrors(w io.Writer, pages []scraper.PageResult) {
	for _, p := range pages {
		if p.Err != nil {
			fmt.Fprintf(w, "Error scraping %s: %v\n", p.URL, p.Err)
		}
	}
}

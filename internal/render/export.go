package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

// Format selects an export serializer.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts "md", "markdown", or "pdf".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown export format %q (want md or pdf)", s)
}

// ExportFileName is udemy-summary-<epoch-ms>.<ext>.
func ExportFileName(f Format, now time.Time) string {
	return fmt.Sprintf("udemy-summary-%d.%s", now.UnixMilli(), f)
}

// Encode serializes r in format f.
func Encode(f Format, r summary.Result) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(r)), nil
	case FormatPDF:
		var buf bytes.Buffer
		if err := PDF(r, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// Export writes r into dir under ExportFileName and returns the path.
func Export(dir string, f Format, r summary.Result, now time.Time) (string, error) {
	b, err := Encode(f, r)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(f, now))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	log.Info().Str("path", path).Str("format", string(f)).Int("bytes", len(b)).Msg("exported overview")
	return path, nil
}

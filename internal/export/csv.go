package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kyuscout/kyuscout/internal/types"
)

// utf8BOM makes spreadsheet applications detect the encoding; without it
// Excel renders Japanese CSV content as mojibake.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes each batch to a timestamped CSV file per site.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewCSVWriter creates a CSV writer rooted at dir.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{
		dir:    dir,
		logger: logger.With("component", "export", "format", "csv"),
		now:    time.Now,
	}
}

// Write saves the batch as {siteLabel}_{YYYYMMDD_HHMMSS}.csv with a UTF-8
// BOM and returns the file path.
func (w *CSVWriter) Write(_ context.Context, siteLabel string, records []types.CanonicalRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records to write")
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.csv", sanitizeLabel(siteLabel), w.now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", err
	}

	columns := records[0].Columns()
	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		return "", err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row(columns)); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	w.logger.Info("wrote CSV", "path", path, "records", len(records), "columns", len(columns))
	return path, nil
}

// Close is a no-op; every batch closes its own file.
func (w *CSVWriter) Close(context.Context) error { return nil }

// sanitizeLabel strips filesystem-hostile characters from a site label.
func sanitizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, label)
}

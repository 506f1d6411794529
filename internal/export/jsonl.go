package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kyuscout/kyuscout/internal/types"
)

// JSONLWriter writes each batch as one JSON object per line, convenient for
// piping into jq or downstream loaders.
type JSONLWriter struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewJSONLWriter creates a JSONL writer rooted at dir.
func NewJSONLWriter(dir string, logger *slog.Logger) *JSONLWriter {
	return &JSONLWriter{
		dir:    dir,
		logger: logger.With("component", "export", "format", "jsonl"),
		now:    time.Now,
	}
}

func (w *JSONLWriter) Write(_ context.Context, siteLabel string, records []types.CanonicalRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records to write")
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.jsonl", sanitizeLabel(siteLabel), w.now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec.Fields); err != nil {
			return "", err
		}
	}
	if err := bw.Flush(); err != nil {
		return "", err
	}

	w.logger.Info("wrote JSONL", "path", path, "records", len(records))
	return path, nil
}

// Close is a no-op; every batch closes its own file.
func (w *JSONLWriter) Close(context.Context) error { return nil }

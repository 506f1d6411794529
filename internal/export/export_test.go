package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords() []types.CanonicalRecord {
	fields := map[string]string{
		types.FieldFacilityName:    "渋谷クリニック",
		types.FieldRepresentative:  "",
		types.FieldAddress:         "東京都渋谷区渋谷2-1-1",
		types.FieldWebsiteURL:      "https://example.jp/job/1?a=1&b=2",
		types.FieldPhoneNumber:     "03-1234-5678",
		types.FieldEmail:           "",
		types.FieldBusinessContent: "美容皮膚科",
		types.SourceSiteColumn:     "求人ボックス",
		"title":                    "看護師",
	}
	return []types.CanonicalRecord{{Fields: fields, Extras: []string{"title"}}}
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, discardLogger())
	w.now = func() time.Time {
		return time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
	}

	path, err := w.Write(context.Background(), "求人ボックス", sampleRecords())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := "求人ボックス_20260829_150405.csv"; filepath.Base(path) != want {
		t.Errorf("filename = %q, want %q", filepath.Base(path), want)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("output missing UTF-8 BOM")
	}

	rows, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	header := rows[0]
	if header[0] != types.FieldFacilityName {
		t.Errorf("first column = %q", header[0])
	}
	if header[len(header)-1] != "title" {
		t.Errorf("last column = %q, want the extra", header[len(header)-1])
	}
	if rows[1][0] != "渋谷クリニック" {
		t.Errorf("facility cell = %q", rows[1][0])
	}
}

func TestCSVWriterRejectsEmptyBatch(t *testing.T) {
	w := NewCSVWriter(t.TempDir(), discardLogger())
	if _, err := w.Write(context.Background(), "x", nil); err == nil {
		t.Error("expected error for empty batch")
	}
}

func TestJSONLWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLWriter(dir, discardLogger())
	w.now = func() time.Time {
		return time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
	}

	path, err := w.Write(context.Background(), "求人ボックス", sampleRecords())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(path, ".jsonl") {
		t.Errorf("path = %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	// HTML escaping is off, so URLs stay readable.
	if strings.Contains(lines[0], "u0026") {
		t.Error("URL ampersand was HTML-escaped")
	}
	var obj map[string]string
	if err := json.Unmarshal([]byte(lines[0]), &obj); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if obj[types.FieldFacilityName] != "渋谷クリニック" {
		t.Errorf("facility = %q", obj[types.FieldFacilityName])
	}
}

func TestSanitizeLabel(t *testing.T) {
	if got := sanitizeLabel(`a/b:c d`); got != "a_b_c_d" {
		t.Errorf("sanitizeLabel = %q", got)
	}
}

func TestNewSelectsWriter(t *testing.T) {
	logger := discardLogger()
	if _, err := New(config.StorageConfig{Type: "csv", OutputDir: "."}, logger); err != nil {
		t.Errorf("csv: %v", err)
	}
	if _, err := New(config.StorageConfig{Type: "jsonl", OutputDir: "."}, logger); err != nil {
		t.Errorf("jsonl: %v", err)
	}
	if _, err := New(config.StorageConfig{Type: "parquet"}, logger); err == nil {
		t.Error("unknown storage type accepted")
	}
}

package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

// Writer persists one batch of canonical records and reports where they
// went (a file path or a collection name).
type Writer interface {
	Write(ctx context.Context, siteLabel string, records []types.CanonicalRecord) (string, error)
	Close(ctx context.Context) error
}

// New creates the writer selected by configuration.
func New(cfg config.StorageConfig, logger *slog.Logger) (Writer, error) {
	switch cfg.Type {
	case "csv":
		return NewCSVWriter(cfg.OutputDir, logger), nil
	case "jsonl":
		return NewJSONLWriter(cfg.OutputDir, logger), nil
	case "mongodb":
		return NewMongoWriter(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

// MongoWriter inserts canonical records into a MongoDB collection, for
// deployments that accumulate runs instead of shipping CSV files around.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
	count      int
}

// NewMongoWriter connects to the configured MongoDB instance.
func NewMongoWriter(cfg config.StorageConfig, logger *slog.Logger) (*MongoWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoWriter{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
		logger:     logger.With("component", "export", "format", "mongodb"),
	}, nil
}

func (w *MongoWriter) Write(ctx context.Context, siteLabel string, records []types.CanonicalRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records to write")
	}

	now := time.Now()
	docs := make([]any, len(records))
	for i, rec := range records {
		doc := make(map[string]any, len(rec.Fields)+2)
		for k, v := range rec.Fields {
			doc[k] = v
		}
		doc["_site_label"] = siteLabel
		doc["_collected_at"] = now
		docs[i] = doc
	}

	if _, err := w.collection.InsertMany(ctx, docs); err != nil {
		return "", fmt.Errorf("mongodb insert: %w", err)
	}

	w.count += len(records)
	w.logger.Info("records stored in mongodb",
		"collection", w.collection.Name(), "count", len(records), "total", w.count)
	return w.collection.Name(), nil
}

func (w *MongoWriter) Close(ctx context.Context) error {
	w.logger.Info("mongodb writer closing", "total_records", w.count)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return w.client.Disconnect(ctx)
}

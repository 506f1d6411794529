package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kyuscout/kyuscout/internal/adapter"
	"github.com/kyuscout/kyuscout/internal/client"
	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

// Stats summarizes one enrichment batch.
type Stats struct {
	Attempted int
	Enriched  int
	Skipped   int
	Failed    int
	// BudgetExhausted is set when the batch was cut short because too many
	// detail fetches failed.
	BudgetExhausted bool
}

// Enricher visits each record's detail page and merges the extra fields in
// without overwriting anything collected at listing time.
type Enricher struct {
	cfg      config.EnrichConfig
	fetchers map[string]client.Fetcher
	logger   *slog.Logger
}

// New creates an Enricher. fetchers maps transport names to fetchers, the
// same set the pagination driver uses.
func New(cfg config.EnrichConfig, fetchers map[string]client.Fetcher, logger *slog.Logger) *Enricher {
	return &Enricher{
		cfg:      cfg,
		fetchers: fetchers,
		logger:   logger.With("component", "enrich"),
	}
}

// Run enriches records in place. Records without a detail URL are skipped,
// not failed. The run stops early when the error budget (half the batch,
// capped by configuration) is spent, so a site that starts blocking detail
// requests cannot burn the whole run.
func (e *Enricher) Run(ctx context.Context, site adapter.Adapter, records []*types.Record) (*Stats, error) {
	stats := &Stats{}
	if len(records) == 0 {
		return stats, nil
	}

	budget := len(records) / 2
	if budget < 1 {
		budget = 1
	}
	if budget > e.cfg.ErrorBudgetCap {
		budget = e.cfg.ErrorBudgetCap
	}

	fetcher, ok := e.fetchers[site.FetcherType()]
	if !ok {
		return stats, fmt.Errorf("no fetcher for transport %q", site.FetcherType())
	}

	delay := batchDelay(len(records))
	e.logger.Info("enriching details",
		"site", site.Name(),
		"records", len(records),
		"delay", delay,
		"error_budget", budget)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		req, err := site.DetailRequest(rec)
		if err != nil {
			if errors.Is(err, types.ErrNoDetailURL) {
				stats.Skipped++
				continue
			}
			stats.Failed++
			if stats.Failed >= budget {
				stats.BudgetExhausted = true
				break
			}
			continue
		}

		if i > 0 {
			if err := client.SleepJitter(ctx, delay); err != nil {
				return stats, err
			}
		}
		stats.Attempted++

		resp, err := fetcher.Fetch(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			stats.Failed++
			e.logger.Warn("detail fetch failed",
				"site", site.Name(), "url", req.URLString(), "error", err)
			if stats.Failed >= budget {
				e.logger.Warn("detail error budget exhausted, stopping enrichment",
					"site", site.Name(), "failed", stats.Failed, "budget", budget)
				stats.BudgetExhausted = true
				break
			}
			continue
		}

		fields, err := site.ParseDetail(resp)
		if err != nil {
			stats.Failed++
			e.logger.Warn("detail parse failed",
				"site", site.Name(), "url", req.URLString(), "error", err)
			if stats.Failed >= budget {
				stats.BudgetExhausted = true
				break
			}
			continue
		}

		rec.Merge(fields)
		stats.Enriched++
	}

	e.logger.Info("enrichment finished",
		"site", site.Name(),
		"attempted", stats.Attempted,
		"enriched", stats.Enriched,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

// batchDelay picks the inter-request delay by batch size: small batches can
// afford politeness, large ones trade it for total runtime.
func batchDelay(n int) time.Duration {
	switch {
	case n <= 20:
		return 3 * time.Second
	case n <= 50:
		return 2 * time.Second
	default:
		return 1500 * time.Millisecond
	}
}

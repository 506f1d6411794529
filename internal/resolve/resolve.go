package resolve

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kyuscout/kyuscout/internal/types"
)

// Source looks up contact details for a facility by name. Implementations
// return only the fields they actually found; an empty map with nil error
// means a clean miss.
type Source interface {
	Name() string
	Resolve(ctx context.Context, facility, address string) (map[string]string, error)
}

// Stats summarizes one resolution batch.
type Stats struct {
	Attempted int
	Resolved  int
	Misses    int
	Errors    int
}

// Chain runs contact sources in order for each record still missing a phone
// number. The chain stops at the first source that produces one, so the
// cheap static lookup short-circuits the paid and rate-limited sources
// behind it. All results merge without overwriting scraped fields.
type Chain struct {
	sources []Source
	logger  *slog.Logger
}

// NewChain builds a resolver chain over the given sources, in priority
// order.
func NewChain(logger *slog.Logger, sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		logger:  logger.With("component", "resolve"),
	}
}

// ResolveRecord fills the record's contact fields in place. Records that
// already carry a phone number are left alone.
func (c *Chain) ResolveRecord(ctx context.Context, rec *types.Record) error {
	if rec.Has(types.FieldPhoneNumber) {
		return nil
	}
	facility := rec.Get(types.FieldFacilityName)
	if facility == "" {
		return nil
	}
	address := rec.Get(types.FieldAddress)

	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		fields, err := src.Resolve(ctx, facility, address)
		if err != nil {
			if errors.Is(err, types.ErrRestrictedEnv) {
				c.logger.Debug("source unavailable in this environment", "source", src.Name())
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.logger.Warn("contact source failed",
				"source", src.Name(), "facility", facility, "error", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}

		rec.Merge(fields)
		c.logger.Debug("contact fields resolved",
			"source", src.Name(), "facility", facility, "fields", len(fields))
		if rec.Has(types.FieldPhoneNumber) {
			return nil
		}
	}
	return nil
}

// Run resolves every record in the batch, tallying outcomes.
func (c *Chain) Run(ctx context.Context, records []*types.Record) (*Stats, error) {
	stats := &Stats{}
	for _, rec := range records {
		if rec.Has(types.FieldPhoneNumber) || !rec.Has(types.FieldFacilityName) {
			continue
		}
		stats.Attempted++
		if err := c.ResolveRecord(ctx, rec); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			stats.Errors++
			continue
		}
		if rec.Has(types.FieldPhoneNumber) {
			stats.Resolved++
		} else {
			stats.Misses++
		}
	}
	c.logger.Info("contact resolution finished",
		"attempted", stats.Attempted,
		"resolved", stats.Resolved,
		"misses", stats.Misses,
		"errors", stats.Errors)
	return stats, nil
}

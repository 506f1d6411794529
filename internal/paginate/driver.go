package paginate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kyuscout/kyuscout/internal/adapter"
	"github.com/kyuscout/kyuscout/internal/client"
	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/types"
)

// StopReason records why a pagination run ended.
type StopReason string

const (
	// StopQuota: the requested number of records was collected.
	StopQuota StopReason = "quota_reached"
	// StopNoResults: the first page had no listings at all.
	StopNoResults StopReason = "no_results"
	// StopEmptyPages: too many consecutive pages yielded nothing new.
	StopEmptyPages StopReason = "empty_pages"
	// StopPageCap: the hard page ceiling was hit with quota unmet.
	StopPageCap StopReason = "page_cap"
	// StopNoNext: the board offered no further page link.
	StopNoNext StopReason = "no_next_page"
	// StopFetchError: a page after the first failed terminally; what was
	// collected so far is kept.
	StopFetchError StopReason = "fetch_error"
)

// State is the bookkeeping for one pagination run, returned to the caller
// for logging and summary output.
type State struct {
	Pages            int
	Collected        int
	Duplicates       int
	ConsecutiveEmpty int
	Reason           StopReason
	LastError        error
}

// Driver walks a site's result pages until one of the stop conditions
// fires, in priority order: quota, empty results, page cap, fetch error.
type Driver struct {
	cfg      config.PaginateConfig
	fetchers map[string]client.Fetcher
	logger   *slog.Logger
}

// NewDriver creates a Driver. fetchers maps transport names ("http",
// "browser") to the fetcher serving them.
func NewDriver(cfg config.PaginateConfig, fetchers map[string]client.Fetcher, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:      cfg,
		fetchers: fetchers,
		logger:   logger.With("component", "paginate"),
	}
}

// Fetcher returns the fetcher serving the named transport, or nil.
func (d *Driver) Fetcher(transport string) client.Fetcher {
	return d.fetchers[transport]
}

// Run collects up to the query's quota of unique records from the site.
// A fetch failure on the first page is fatal; on later pages it ends the
// run with everything collected so far.
func (d *Driver) Run(ctx context.Context, site adapter.Adapter, q types.SearchQuery) ([]*types.Record, *State, error) {
	quota := q.Quota
	if quota <= 0 {
		quota = d.cfg.DefaultQuota
	}
	maxPages := site.MaxPages(quota, d.cfg.MaxPages)

	fetcher, ok := d.fetchers[site.FetcherType()]
	if !ok {
		return nil, nil, fmt.Errorf("no fetcher for transport %q", site.FetcherType())
	}

	nextPager, _ := site.(adapter.NextPager)
	dedup := NewDeduplicator(quota)
	state := &State{}
	var records []*types.Record
	var lastResp *types.Response

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return records, state, err
		}

		req, err := d.pageRequest(site, nextPager, q, page, lastResp)
		if err != nil {
			if page == 1 {
				return nil, state, err
			}
			state.Reason = StopFetchError
			state.LastError = err
			break
		}
		if req == nil {
			state.Reason = StopNoNext
			break
		}

		resp, err := fetcher.Fetch(ctx, req)
		if err != nil {
			if page == 1 {
				return nil, state, fmt.Errorf("fetching first page: %w", err)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return records, state, err
			}
			d.logger.Warn("page fetch failed, ending run",
				"site", site.Name(), "page", page, "error", err)
			state.Reason = StopFetchError
			state.LastError = err
			break
		}
		lastResp = resp
		state.Pages = page

		listings, err := site.ParseListings(resp)
		if err != nil {
			if page == 1 {
				return nil, state, fmt.Errorf("parsing first page: %w", err)
			}
			d.logger.Warn("page parse failed, ending run",
				"site", site.Name(), "page", page, "error", err)
			state.Reason = StopFetchError
			state.LastError = err
			break
		}

		fresh := 0
		for _, rec := range listings {
			if !dedup.Admit(rec) {
				state.Duplicates++
				continue
			}
			records = append(records, rec)
			fresh++
			if len(records) >= quota {
				break
			}
		}
		state.Collected = len(records)

		d.logger.Info("page processed",
			"site", site.Name(),
			"page", page,
			"listings", len(listings),
			"fresh", fresh,
			"collected", len(records))

		if len(records) >= quota {
			records = records[:quota]
			state.Collected = quota
			state.Reason = StopQuota
			break
		}

		if fresh == 0 {
			if page == 1 {
				state.Reason = StopNoResults
				break
			}
			state.ConsecutiveEmpty++
			if state.ConsecutiveEmpty >= d.cfg.MaxEmptyPages {
				state.Reason = StopEmptyPages
				break
			}
		} else {
			state.ConsecutiveEmpty = 0
		}

		if page >= maxPages {
			d.logger.Warn("page cap reached before quota",
				"site", site.Name(), "pages", page, "collected", len(records), "quota", quota)
			state.Reason = StopPageCap
			break
		}

		if err := client.SleepJitter(ctx, d.cfg.PageDelay); err != nil {
			return records, state, err
		}
	}

	d.logger.Info("pagination finished",
		"site", site.Name(),
		"pages", state.Pages,
		"collected", state.Collected,
		"duplicates", state.Duplicates,
		"reason", state.Reason)
	return records, state, nil
}

// pageRequest builds the request for the given page, preferring the
// board's own next link when the adapter exposes one.
func (d *Driver) pageRequest(site adapter.Adapter, nextPager adapter.NextPager, q types.SearchQuery, page int, lastResp *types.Response) (*types.Request, error) {
	if page == 1 || nextPager == nil {
		return site.ListingRequest(q, page)
	}
	return nextPager.NextPageRequest(lastResp)
}

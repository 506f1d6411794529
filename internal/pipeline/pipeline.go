package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kyuscout/kyuscout/internal/adapter"
	"github.com/kyuscout/kyuscout/internal/client"
	"github.com/kyuscout/kyuscout/internal/config"
	"github.com/kyuscout/kyuscout/internal/enrich"
	"github.com/kyuscout/kyuscout/internal/export"
	"github.com/kyuscout/kyuscout/internal/normalize"
	"github.com/kyuscout/kyuscout/internal/paginate"
	"github.com/kyuscout/kyuscout/internal/resolve"
	"github.com/kyuscout/kyuscout/internal/types"
)

// Result is everything one run produced, for summary output and embedding
// callers.
type Result struct {
	Site         string
	SiteLabel    string
	Records      []types.CanonicalRecord
	Destination  string
	PageState    *paginate.State
	EnrichStats  *enrich.Stats
	ResolveStats *resolve.Stats
	Duration     time.Duration
}

// Coverage summarizes a collected batch: how varied the facilities and
// addresses are, and how many records ended up with a reachable phone
// number.
type Coverage struct {
	Total              int
	DistinctFacilities int
	DistinctAddresses  int
	WithPhone          int
}

// Coverage computes batch statistics over the normalized records.
func (r *Result) Coverage() Coverage {
	cov := Coverage{Total: len(r.Records)}
	facilities := make(map[string]struct{})
	addresses := make(map[string]struct{})
	for _, rec := range r.Records {
		if v := rec.Fields[types.FieldFacilityName]; v != "" {
			facilities[v] = struct{}{}
		}
		if v := rec.Fields[types.FieldAddress]; v != "" {
			addresses[v] = struct{}{}
		}
		if rec.Fields[types.FieldPhoneNumber] != "" {
			cov.WithPhone++
		}
	}
	cov.DistinctFacilities = len(facilities)
	cov.DistinctAddresses = len(addresses)
	return cov
}

// Pipeline runs the full collection sequence for one site: paginate,
// enrich, resolve, normalize, export. Stages are sequential; politeness
// delays, not throughput, dominate runtime.
type Pipeline struct {
	cfg      *config.Config
	registry *adapter.Registry
	driver   *paginate.Driver
	enricher *enrich.Enricher
	chain    *resolve.Chain
	writer   export.Writer
	closers  []func() error
	logger   *slog.Logger
}

// New wires a Pipeline from configuration: shared HTTP client, lazy browser
// fetcher, adapter registry, the three processing stages and the configured
// export writer.
func New(cfg *config.Config, caps config.Capabilities, logger *slog.Logger) (*Pipeline, error) {
	httpClient, err := client.New(cfg.Client, logger)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	fetchers := map[string]client.Fetcher{"http": httpClient}
	closers := []func() error{httpClient.Close}
	if cfg.Browser.Enabled {
		browser := client.NewBrowserFetcher(cfg.Browser, logger)
		fetchers["browser"] = browser
		closers = append(closers, browser.Close)
	}

	var sources []resolve.Source
	sources = append(sources, resolve.NewKnown())
	if cfg.Resolve.PlacesAPIKey != "" {
		sources = append(sources, resolve.NewPlaces(
			cfg.Resolve.PlacesAPIKey, cfg.Resolve.PlacesEndpoint, httpClient, logger))
	}
	if !cfg.Resolve.DisableWebQuery {
		sources = append(sources, resolve.NewWebSearch(
			cfg.Resolve.SearchEndpoint, cfg.Resolve.SearchVariants, caps.WebSearch, httpClient, logger))
	}

	writer, err := export.New(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		registry: adapter.NewRegistry(logger),
		driver:   paginate.NewDriver(cfg.Paginate, fetchers, logger),
		enricher: enrich.New(cfg.Enrich, fetchers, logger),
		chain:    resolve.NewChain(logger, sources...),
		writer:   writer,
		closers:  closers,
		logger:   logger.With("component", "pipeline"),
	}, nil
}

// Registry exposes the site adapters for listing and option commands.
func (p *Pipeline) Registry() *adapter.Registry { return p.registry }

// Run executes the full sequence for one site. A panic anywhere in the run
// is converted to a PipelineError so an embedding caller survives a bad
// page.
func (p *Pipeline) Run(ctx context.Context, siteName string, q types.SearchQuery) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.PipelineError{Site: siteName, Err: fmt.Errorf("panic: %v", r)}
			p.logger.Error("run panicked", "site", siteName, "panic", r)
		}
	}()

	site, err := p.registry.Get(siteName)
	if err != nil {
		return nil, err
	}
	if site.FetcherType() == "browser" && !p.cfg.Browser.Enabled {
		return nil, fmt.Errorf("site %s needs the browser fetcher; enable browser support in configuration", siteName)
	}
	if q.IsEmpty() {
		return nil, fmt.Errorf("empty query: select at least one search facet")
	}

	start := time.Now()
	result = &Result{Site: site.Name(), SiteLabel: site.Label()}

	records, pageState, err := p.driver.Run(ctx, site, q)
	result.PageState = pageState
	if err != nil {
		return result, &types.PipelineError{Site: siteName, Err: err}
	}
	if len(records) == 0 {
		p.logger.Info("no results", "site", siteName)
		result.Duration = time.Since(start)
		return result, nil
	}

	if q.FetchDetails && p.cfg.Enrich.Enabled {
		stats, err := p.enricher.Run(ctx, site, records)
		result.EnrichStats = stats
		if err != nil {
			return result, &types.PipelineError{Site: siteName, Err: err}
		}
	}

	if q.ResolveContacts && p.cfg.Resolve.Enabled {
		stats, err := p.chain.Run(ctx, records)
		result.ResolveStats = stats
		if err != nil {
			return result, &types.PipelineError{Site: siteName, Err: err}
		}
	}

	result.Records = normalize.Batch(records, site.Label())

	dest, err := p.writer.Write(ctx, site.Label(), result.Records)
	if err != nil {
		return result, &types.PipelineError{Site: siteName, Err: fmt.Errorf("writing output: %w", err)}
	}
	result.Destination = dest
	result.Duration = time.Since(start)

	p.logger.Info("run complete",
		"site", siteName,
		"records", len(result.Records),
		"destination", dest,
		"duration", result.Duration)
	return result, nil
}

// FetchOptions returns a site's live facet options, caching per process.
func (p *Pipeline) FetchOptions(ctx context.Context, siteName string, cache *adapter.OptionCache) ([]adapter.OptionSet, error) {
	site, err := p.registry.Get(siteName)
	if err != nil {
		return nil, err
	}
	provider, ok := site.(adapter.OptionsProvider)
	if !ok {
		return nil, fmt.Errorf("site %s does not publish facet options", siteName)
	}

	if cache != nil {
		if sets, fetchedAt, ok := cache.Get(siteName); ok {
			p.logger.Debug("facet options from cache", "site", siteName, "fetched_at", fetchedAt)
			return sets, nil
		}
	}

	req, err := provider.OptionsRequest()
	if err != nil {
		return nil, err
	}
	httpFetcher := p.fetcherFor("http")
	resp, err := httpFetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching options: %w", err)
	}
	sets, err := provider.ParseOptions(resp)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Put(siteName, sets)
	}
	return sets, nil
}

func (p *Pipeline) fetcherFor(transport string) client.Fetcher {
	return p.driver.Fetcher(transport)
}

// Close releases the pipeline's network resources.
func (p *Pipeline) Close(ctx context.Context) error {
	var firstErr error
	for _, close := range p.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := p.writer.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

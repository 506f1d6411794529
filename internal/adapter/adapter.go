package adapter

import (
	"github.com/kyuscout/kyuscout/internal/types"
)

// Adapter translates between one job board's markup and the shared record
// model. Adapters are pure: they build requests and parse responses but
// never fetch, which keeps them testable against saved fixtures.
type Adapter interface {
	// Name is the machine identifier ("kyujinbox").
	Name() string

	// Label is the human-readable site name used in output filenames.
	Label() string

	// FetcherType selects the transport this site needs: "http" or
	// "browser" for client-rendered boards.
	FetcherType() string

	// ListingRequest builds the request for the given 1-based results page.
	ListingRequest(q types.SearchQuery, page int) (*types.Request, error)

	// ParseListings extracts the records present on a listing page. An
	// empty slice with nil error means the page genuinely has no results.
	ParseListings(resp *types.Response) ([]*types.Record, error)

	// DetailRequest builds the request for a record's detail page, or
	// ErrNoDetailURL when the record carries none.
	DetailRequest(rec *types.Record) (*types.Request, error)

	// ParseDetail extracts supplementary fields from a detail page. The
	// caller merges them without overwriting listing-time values.
	ParseDetail(resp *types.Response) (map[string]string, error)

	// MaxPages bounds pagination for a given quota; configured is the
	// global ceiling from configuration.
	MaxPages(quota, configured int) int
}

// NextPager is implemented by adapters whose boards paginate through a
// "next" link in the markup rather than a page-number URL parameter. The
// pagination driver prefers it over ListingRequest for pages after the
// first.
type NextPager interface {
	// NextPageRequest derives the request for the following page from the
	// current response, or (nil, nil) when there is no next link.
	NextPageRequest(resp *types.Response) (*types.Request, error)
}

// Option is one selectable facet value a site publishes in its search form.
type Option struct {
	Value string
	Label string
}

// OptionSet groups the options of one facet ("prefecture", "qualification").
type OptionSet struct {
	Facet   string
	Options []Option
}

// OptionsProvider is implemented by adapters whose search facets are worth
// listing to the user (coded dropdowns rather than free text).
type OptionsProvider interface {
	OptionsRequest() (*types.Request, error)
	ParseOptions(resp *types.Response) ([]OptionSet, error)
}

// defaultMaxPages is the shared bound used by adapters without a
// site-specific rule: enough pages to cover the quota at the site's page
// size, capped by configuration.
func defaultMaxPages(quota, pageSize, configured int) int {
	if pageSize <= 0 {
		pageSize = 10
	}
	pages := quota/pageSize + 2
	if pages > configured {
		return configured
	}
	return pages
}

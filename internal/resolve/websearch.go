package resolve

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyuscout/kyuscout/internal/client"
	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

// WebSearch resolves contacts by scraping a public search engine's HTML
// results for "{facility} 電話番号 連絡先". It is the last resort in the
// chain: free but noisy, and blocked outright in restricted environments.
type WebSearch struct {
	endpoint string
	variants int
	enabled  bool
	fetcher  client.Fetcher
	logger   *slog.Logger
}

// NewWebSearch creates the search-engine source. enabled comes from the
// environment capability probe; a disabled source stays in the chain but
// reports itself unavailable, keeping the chain order stable across
// environments. variants bounds how many query phrasings are tried before
// giving up on a facility.
func NewWebSearch(endpoint string, variants int, enabled bool, fetcher client.Fetcher, logger *slog.Logger) *WebSearch {
	if variants < 1 {
		variants = 1
	}
	return &WebSearch{
		endpoint: endpoint,
		variants: variants,
		enabled:  enabled,
		fetcher:  fetcher,
		logger:   logger.With("component", "resolve", "source", "websearch"),
	}
}

func (w *WebSearch) Name() string { return "websearch" }

// queryVariants lists the phrasings tried in order. The first targets
// contact listings directly; the second leans on company-profile pages,
// which often carry the switchboard number when the listing does not.
func queryVariants(facility string) []string {
	return []string{
		facility + " 電話番号 連絡先",
		facility + " 会社概要 電話",
	}
}

func (w *WebSearch) Resolve(ctx context.Context, facility, _ string) (map[string]string, error) {
	if !w.enabled {
		return nil, types.ErrRestrictedEnv
	}

	queries := queryVariants(facility)
	if len(queries) > w.variants {
		queries = queries[:w.variants]
	}

	fields := make(map[string]string)
	for _, query := range queries {
		text, err := w.search(ctx, facility, query)
		if err != nil {
			return nil, err
		}
		if phone := extract.FindPhone(text); phone != "" && fields[types.FieldPhoneNumber] == "" {
			fields[types.FieldPhoneNumber] = phone
		}
		if email := extract.FindEmail(text); email != "" && fields[types.FieldEmail] == "" {
			fields[types.FieldEmail] = email
		}
		if fields[types.FieldPhoneNumber] != "" {
			break
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// search fetches one results page and concatenates the top result titles
// and snippets into a text blob for pattern extraction.
func (w *WebSearch) search(ctx context.Context, facility, query string) (string, error) {
	req, err := types.NewRequest(w.endpoint + "?q=" + url.QueryEscape(query))
	if err != nil {
		return "", err
	}
	req.Tag = "search"

	resp, err := w.fetcher.Fetch(ctx, req)
	if err != nil {
		return "", &types.ResolveError{Source: w.Name(), Facility: facility, Err: err}
	}

	doc, err := resp.Document()
	if err != nil {
		return "", &types.ResolveError{Source: w.Name(), Facility: facility, Err: err}
	}

	var parts []string
	collect := func(sel string) {
		doc.Find(sel).EachWithBreak(func(i int, el *goquery.Selection) bool {
			if i >= 5 {
				return false
			}
			if text := extract.CleanText(el.Text()); text != "" {
				parts = append(parts, text)
			}
			return true
		})
	}
	collect("a.result__a")
	collect("a.result__snippet")

	return strings.Join(parts, " "), nil
}

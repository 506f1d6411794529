package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

const indeedBase = "https://jp.indeed.com"

// indeedMosaicMarker is the script assignment that carries the job card
// payload on a rendered results page.
const indeedMosaicMarker = `window.mosaic.providerData["mosaic-provider-jobcards"]=`

// Indeed scrapes jp.indeed.com. The board assembles its result cards client
// side, so listing pages must be fetched through the browser fetcher; the
// rendered page still carries the full card data as an inline mosaic JSON
// payload, with CSS fallbacks when the payload is absent.
type Indeed struct {
	logger *slog.Logger
}

// NewIndeed creates the jp.indeed.com adapter.
func NewIndeed(logger *slog.Logger) *Indeed {
	return &Indeed{logger: logger.With("component", "adapter", "site", "indeed")}
}

func (i *Indeed) Name() string        { return "indeed" }
func (i *Indeed) Label() string       { return "Indeed" }
func (i *Indeed) FetcherType() string { return "browser" }

func (i *Indeed) ListingRequest(q types.SearchQuery, page int) (*types.Request, error) {
	if q.Keyword == "" && q.Area == "" {
		return nil, fmt.Errorf("indeed: keyword or area required")
	}
	params := url.Values{}
	params.Set("q", q.Keyword)
	if q.Area != "" {
		params.Set("l", q.Area)
	}
	if page > 1 {
		params.Set("start", fmt.Sprintf("%d", (page-1)*10))
	}

	req, err := types.NewRequest(indeedBase + "/jobs?" + params.Encode())
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"
	req.FetcherType = "browser"
	return req, nil
}

func (i *Indeed) ParseListings(resp *types.Response) ([]*types.Record, error) {
	if records := i.parseMosaic(resp); len(records) > 0 {
		return records, nil
	}
	return i.parseCards(resp)
}

// parseMosaic decodes the inline mosaic payload and walks to the card list.
func (i *Indeed) parseMosaic(resp *types.Response) []*types.Record {
	raw, err := extract.ScriptJSON(resp.Text(), indeedMosaicMarker)
	if err != nil {
		i.logger.Debug("mosaic payload not found, falling back to markup", "error", err)
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		i.logger.Debug("mosaic payload undecodable", "error", err)
		return nil
	}

	results, ok := digSlice(payload, "metaData", "mosaicProviderJobCardsModel", "results")
	if !ok {
		return nil
	}

	var records []*types.Record
	for _, entry := range results {
		card, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		rec := types.NewRecord(i.Name(), resp.FinalURL)
		rec.Set("title", extract.CleanText(extract.JSONString(card, "title")))
		rec.Set(types.FieldFacilityName, extract.CleanText(extract.JSONString(card, "company")))
		rec.Set(types.FieldAddress, extract.CleanText(extract.JSONString(card, "formattedLocation")))
		rec.Set("payment", extract.JSONString(card, "formattedSalary"))
		rec.Set("employment_type", extract.JSONString(card, "formattedJobType"))
		rec.Set(types.FieldBusinessContent, extract.CleanText(extract.JSONString(card, "snippet")))
		if key := extract.JSONString(card, "jobkey"); key != "" {
			rec.Set("job_key", key)
			rec.Set(types.FieldDetailURL, indeedBase+"/viewjob?jk="+key)
		}
		if rec.Has(types.FieldFacilityName) || rec.Has("title") {
			records = append(records, rec)
		}
	}
	return records
}

var indeedCardRules = extract.RuleSet{
	ItemSelector: "[data-jk]",
	FallbackSelectors: []string{
		".job_seen_beacon",
		".slider_container .slider_item",
		".jobsearch-SerpJobCard",
		`[data-tn-component="organicJob"]`,
		"a[data-jk]",
	},
	Fields: map[string]extract.FieldRule{
		"title":                    {Selector: "h2.jobTitle span"},
		types.FieldFacilityName:    {Selector: `[data-testid="company-name"]`},
		types.FieldAddress:         {Selector: `[data-testid="text-location"]`},
		"payment":                  {Selector: ".salary-snippet-container"},
		types.FieldBusinessContent: {Selector: ".job-snippet"},
	},
}

// parseCards is the markup fallback used when the mosaic payload is missing.
func (i *Indeed) parseCards(resp *types.Response) ([]*types.Record, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var records []*types.Record
	indeedCardRules.Items(doc).Each(func(_ int, card *goquery.Selection) {
		rec := types.NewRecord(i.Name(), resp.FinalURL)
		for name, value := range indeedCardRules.Extract(card) {
			rec.Set(name, value)
		}
		if key, ok := card.Attr("data-jk"); ok && key != "" {
			rec.Set("job_key", key)
			rec.Set(types.FieldDetailURL, indeedBase+"/viewjob?jk="+key)
		}
		if rec.Has(types.FieldFacilityName) || rec.Has("title") {
			records = append(records, rec)
		}
	})
	return records, nil
}

func (i *Indeed) DetailRequest(rec *types.Record) (*types.Request, error) {
	detailURL := rec.Get(types.FieldDetailURL)
	if detailURL == "" {
		return nil, types.ErrNoDetailURL
	}
	req, err := types.NewRequest(detailURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "detail"
	req.FetcherType = "browser"
	return req, nil
}

// ParseDetail scans the rendered job description for contact details the
// card payload never carries.
func (i *Indeed) ParseDetail(resp *types.Response) (map[string]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}
	fields := make(map[string]string)

	if desc := extract.CleanText(doc.Find("#jobDescriptionText").First().Text()); desc != "" {
		fields[types.FieldBusinessContent] = truncateRunes(desc, 500)
	}

	text := doc.Text()
	if phone := extract.FindPhone(text); phone != "" {
		fields[types.FieldPhoneNumber] = phone
	}
	if addr := extract.FindAddress(text); addr != "" {
		fields[types.FieldAddress] = addr
	}
	if email := extract.FindEmail(text); email != "" {
		fields[types.FieldEmail] = email
	}
	return fields, nil
}

func (i *Indeed) MaxPages(quota, configured int) int {
	// Ten cards per page; browser pages are expensive, keep the bound tight.
	return defaultMaxPages(quota, 10, min(configured, 10))
}

// digSlice walks a decoded JSON object along path and returns the slice at
// the leaf.
func digSlice(obj map[string]any, path ...string) ([]any, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	s, ok := cur.([]any)
	return s, ok
}

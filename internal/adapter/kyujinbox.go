package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

const kyujinboxBase = "https://xn--pckua2a7gp15o89zb.com"

// Kyujinbox scrapes the 求人ボックス aggregator. Listings are not rendered
// into markup: each result card carries a two-layer JSON payload in a
// data attribute, so extraction is JSON-first with CSS selectors only for
// locating the cards.
type Kyujinbox struct {
	logger *slog.Logger
	rules  *extract.RuleSet
}

// NewKyujinbox creates the 求人ボックス adapter.
func NewKyujinbox(logger *slog.Logger) *Kyujinbox {
	return &Kyujinbox{
		logger: logger.With("component", "adapter", "site", "kyujinbox"),
		rules: &extract.RuleSet{
			ItemSelector: "section.p-result_card",
			FallbackSelectors: []string{
				"div.p-result_card",
				"article.p-result_card",
				`[class*="result_card"]`,
				"section[data-func-show-arg]",
				"div[data-func-show-arg]",
				"a[data-func-show-arg]",
			},
		},
	}
}

func (k *Kyujinbox) Name() string        { return "kyujinbox" }
func (k *Kyujinbox) Label() string       { return "求人ボックス" }
func (k *Kyujinbox) FetcherType() string { return "http" }

// ListingRequest builds the path-encoded search URL. The board embeds the
// keyword and area in the path ("/{keyword}の仕事-{area}"), with the
// employment type and page number as query parameters.
func (k *Kyujinbox) ListingRequest(q types.SearchQuery, page int) (*types.Request, error) {
	var pathParts []string
	if q.Keyword != "" {
		pathParts = append(pathParts, url.PathEscape(q.Keyword))
	}
	if q.Area != "" {
		pathParts = append(pathParts, url.PathEscape(q.Area))
	}
	if len(pathParts) == 0 {
		return nil, fmt.Errorf("kyujinbox: keyword or area required")
	}

	searchURL := kyujinboxBase + "/" + strings.Join(pathParts, "の仕事-")
	if len(pathParts) == 1 {
		searchURL += "の仕事"
	}

	params := url.Values{}
	if q.EmploymentType != "" {
		params.Set("e", q.EmploymentType)
	}
	if page > 1 {
		params.Set("pg", fmt.Sprintf("%d", page))
	}
	if len(params) > 0 {
		searchURL += "?" + params.Encode()
	}

	req, err := types.NewRequest(searchURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"
	return req, nil
}

// ParseListings decodes the card payloads: an outer JSON object in the
// data-func-show-arg attribute whose "json" key holds a second JSON string
// with the actual listing fields.
func (k *Kyujinbox) ParseListings(resp *types.Response) ([]*types.Record, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var records []*types.Record
	k.rules.Items(doc).Each(func(_ int, card *goquery.Selection) {
		link := card
		if _, ok := card.Attr("data-func-show-arg"); !ok {
			link = card.Find("a[data-func-show-arg]").First()
			if link.Length() == 0 {
				return
			}
		}

		outer, err := extract.AttrJSON(link, "data-func-show-arg")
		if err != nil {
			k.logger.Debug("skipping card with undecodable payload", "error", err)
			return
		}
		job, err := extract.NestedJSON(outer, "json")
		if err != nil {
			k.logger.Debug("skipping card with missing inner payload", "error", err)
			return
		}

		rec := types.NewRecord(k.Name(), resp.FinalURL)
		name := extract.JSONString(job, "company")
		if name == "" {
			name = extract.JSONString(job, "siteName")
		}
		rec.Set(types.FieldFacilityName, extract.CleanText(name))

		title := extract.JSONString(job, "title")
		if title == "" {
			title = extract.JSONString(job, "formatTitle")
		}
		rec.Set("title", extract.CleanText(title))
		rec.Set(types.FieldBusinessContent, extract.CleanText(title))
		rec.Set(types.FieldAddress, extract.CleanText(extract.JSONString(job, "workArea")))
		rec.Set("employment_type", extract.JSONString(job, "employType"))
		rec.Set("payment", extract.JSONString(job, "payment"))
		rec.Set("unique_id", extract.JSONString(job, "uniqueId"))

		rec.Set(types.FieldDetailURL, k.detailURL(job))

		if rec.Has(types.FieldFacilityName) || rec.Has("title") || rec.Has(types.FieldAddress) {
			records = append(records, rec)
		}
	})

	return records, nil
}

// detailURL builds the board's own detail page from rdUrl, falling back to
// the listing's unique ID.
func (k *Kyujinbox) detailURL(job map[string]any) string {
	if rd := extract.JSONString(job, "rdUrl"); rd != "" {
		if strings.HasPrefix(rd, "/") {
			return kyujinboxBase + rd
		}
		return kyujinboxBase + "/jbi/" + rd
	}
	if uid := extract.JSONString(job, "uniqueId"); uid != "" {
		return kyujinboxBase + "/jbi/" + uid
	}
	return ""
}

func (k *Kyujinbox) DetailRequest(rec *types.Record) (*types.Request, error) {
	detailURL := rec.Get(types.FieldDetailURL)
	if detailURL == "" {
		return nil, types.ErrNoDetailURL
	}
	req, err := types.NewRequest(detailURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "detail"
	return req, nil
}

var kyujinboxFacilityRules = extract.RuleSet{
	Fields: map[string]extract.FieldRule{
		types.FieldFacilityName: {
			Selector: "p.p-detail_head_company",
			Pattern:  `(?:会社名|法人名|施設名|病院名|クリニック名|事業所名|企業名|勤務先|運営会社|運営法人)[:：]?\s*(\S[^\n]{1,60})`,
		},
	},
}

// ParseDetail pulls the real employer name plus any contact details from the
// board's detail page. The header company element is authoritative; the
// labeled-text regex covers pages without it.
func (k *Kyujinbox) ParseDetail(resp *types.Response) (map[string]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	fields := kyujinboxFacilityRules.Extract(doc.Selection)

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

// MaxPages assumes at least five listings per page plus slack, bounded by
// a hard ceiling of 30; the configured limit applies when lower.
func (k *Kyujinbox) MaxPages(quota, configured int) int {
	pages := quota/5 + 5
	if pages > 30 {
		pages = 30
	}
	if configured > 0 && pages > configured {
		pages = configured
	}
	return pages
}

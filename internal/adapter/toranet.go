package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

const toranetHost = "https://toranet.jp"

// toranetRegions maps prefecture facets to the regional site roots the
// board actually serves. Unsupported prefectures fall back to Tokyo.
var toranetRegions = map[string]string{
	"13":   "tokyo",
	"14":   "kanagawa",
	"12":   "chiba",
	"11":   "saitama",
	"東京都":  "tokyo",
	"神奈川県": "kanagawa",
	"千葉県":  "chiba",
	"埼玉県":  "saitama",
}

// Toranet scrapes the とらばーゆ regional job board. Listing pages carry no
// structured cards, so listings are harvested as detail links and all real
// field extraction happens on the detail pages.
type Toranet struct {
	logger *slog.Logger
}

// NewToranet creates the とらばーゆ adapter.
func NewToranet(logger *slog.Logger) *Toranet {
	return &Toranet{logger: logger.With("component", "adapter", "site", "toranet")}
}

func (t *Toranet) Name() string        { return "toranet" }
func (t *Toranet) Label() string       { return "とらばーゆ" }
func (t *Toranet) FetcherType() string { return "http" }

func (t *Toranet) ListingRequest(q types.SearchQuery, page int) (*types.Request, error) {
	if q.Keyword == "" {
		return nil, fmt.Errorf("toranet: keyword required")
	}

	region := toranetRegions[q.PrefectureCode]
	if region == "" {
		region = toranetRegions[q.Area]
	}
	if region == "" {
		region = "tokyo"
	}

	searchURL := fmt.Sprintf("%s/prefectures/%s/job_search/kw/%s",
		toranetHost, region, url.PathEscape(q.Keyword))
	if q.Area != "" && toranetRegions[q.Area] == "" {
		// A sub-regional area (city, ward) narrows the search path; a
		// prefecture name already chose the region root above.
		searchURL += "/area/" + url.PathEscape(q.Area)
	}
	if page > 1 {
		searchURL += fmt.Sprintf("/page/%d", page)
	}

	req, err := types.NewRequest(searchURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"
	req.Headers.Set("Referer", toranetHost+"/")
	return req, nil
}

var toranetExcludedPaths = []string{"favorite_jobs", "login", "register", "contact", "about"}

// isJobURL reports whether a harvested link plausibly points at a job
// detail page rather than site chrome.
func isJobURL(href string) bool {
	if href == "" {
		return false
	}
	for _, p := range toranetExcludedPaths {
		if strings.Contains(href, p) {
			return false
		}
	}
	if strings.Contains(href, "job_detail") {
		return true
	}
	return strings.Contains(href, "toranet.jp") &&
		(strings.Contains(href, "job") || strings.Contains(href, "kyujin"))
}

var toranetDetailHint = regexp.MustCompile(`job.*detail|kyujin|recruit`)

// ParseListings harvests job detail links from a search page. Links whose
// anchor text or path marks them as detail pages come first so the quota is
// spent on real listings.
func (t *Toranet) ParseListings(resp *types.Response) ([]*types.Record, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	type harvested struct {
		href   string
		text   string
		strong bool
	}
	var links []harvested
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "/") {
			href = toranetHost + href
		} else if !strings.HasPrefix(href, "http") {
			href = toranetHost + "/" + href
		}
		if !isJobURL(href) || href == resp.FinalURL {
			return
		}
		text := extract.CleanText(a.Text())
		strong := strings.Contains(text, "詳細") || strings.Contains(text, "求人") ||
			toranetDetailHint.MatchString(strings.ToLower(href))
		links = append(links, harvested{href: href, text: text, strong: strong})
	})

	seen := make(map[string]bool)
	var records []*types.Record
	appendLinks := func(strongOnly bool) {
		for _, l := range links {
			if l.strong != strongOnly || seen[l.href] {
				continue
			}
			seen[l.href] = true
			rec := types.NewRecord(t.Name(), resp.FinalURL)
			rec.Set(types.FieldDetailURL, l.href)
			if l.text != "" {
				rec.Set("title", l.text)
			}
			records = append(records, rec)
		}
	}
	appendLinks(true)
	appendLinks(false)
	return records, nil
}

func (t *Toranet) DetailRequest(rec *types.Record) (*types.Request, error) {
	detailURL := rec.Get(types.FieldDetailURL)
	if detailURL == "" {
		return nil, types.ErrNoDetailURL
	}
	req, err := types.NewRequest(detailURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "detail"
	req.Headers.Set("Referer", toranetHost+"/")
	return req, nil
}

var toranetNameSelectors = []string{
	"div.corpNameWrap > span",
	"div.corpName",
	"h1.company-name",
	"div.company-name",
	"h1", "h2",
	".corp-name",
}

// ParseDetail reads the labeled field blocks of a job detail page. The
// board renders each field as an h3 label followed by a styled content
// paragraph; the business content lives in a th/td table instead.
func (t *Toranet) ParseDetail(resp *types.Response) (map[string]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}
	fields := make(map[string]string)

	for _, sel := range toranetNameSelectors {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			if name := extract.CleanFacilityName(el.Text()); name != "" {
				fields[types.FieldFacilityName] = name
				break
			}
		}
	}
	if fields[types.FieldFacilityName] == "" {
		fields[types.FieldFacilityName] = facilityFromTitle(doc)
	}

	if v := labeledContent(doc, "代表者"); v != "" && len([]rune(v)) > 1 {
		fields[types.FieldRepresentative] = v
	}
	if v := labeledContent(doc, "勤務地"); v != "" {
		fields[types.FieldAddress] = extract.CleanAddress(strings.TrimPrefix(v, "勤務地："))
	}
	if v := labeledContent(doc, "電話番号"); v != "" {
		if phone := extract.NormalizePhone(v); phone != "" {
			fields[types.FieldPhoneNumber] = phone
		}
	}

	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		label := th.Text()
		if !strings.Contains(label, "仕事内容") {
			return true
		}
		if td := th.NextFiltered("td"); td.Length() > 0 {
			fields[types.FieldBusinessContent] = extract.CleanText(td.Text())
			return false
		}
		return true
	})

	// Page-text fallbacks for fields the labeled blocks missed.
	text := doc.Text()
	if fields[types.FieldRepresentative] == "" {
		fields[types.FieldRepresentative] = extract.FindRepresentative(text)
	}
	if fields[types.FieldAddress] == "" {
		fields[types.FieldAddress] = extract.FindAddress(text)
	}
	if fields[types.FieldPhoneNumber] == "" {
		fields[types.FieldPhoneNumber] = extract.FindPhone(text)
	}
	return fields, nil
}

// labeledContent returns the styled content paragraph whose preceding h3
// label contains the given text.
func labeledContent(doc *goquery.Document, label string) string {
	var value string
	doc.Find("p[class*='styles_content']").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		h3 := p.PrevAllFiltered("h3").First()
		if h3.Length() == 0 {
			h3 = p.Parent().PrevAllFiltered("h3").First()
		}
		if h3.Length() > 0 && strings.Contains(h3.Text(), label) {
			value = extract.CleanText(p.Text())
			return false
		}
		return true
	})
	return value
}

var titleNoise = regexp.MustCompile(`求人|募集|採用|とらばーゆ|転職`)

// facilityFromTitle recovers a facility name from the page title when the
// markup carries no company element.
func facilityFromTitle(doc *goquery.Document) string {
	title := extract.CleanText(doc.Find("title").Text())
	if title == "" {
		return ""
	}
	for _, part := range strings.FieldsFunc(title, func(r rune) bool {
		return strings.ContainsRune("|｜-：:／/", r)
	}) {
		part = extract.CleanText(part)
		n := len([]rune(part))
		if n > 5 && n < 50 && !titleNoise.MatchString(part) {
			return extract.CleanFacilityName(part)
		}
	}
	return ""
}

func (t *Toranet) MaxPages(quota, configured int) int {
	// Listing harvest yields many links per page; ten pages covers any
	// realistic quota.
	return defaultMaxPages(quota, 10, min(configured, 10))
}

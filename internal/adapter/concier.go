package adapter

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

const (
	concierBase   = "https://www.concier.net"
	concierSearch = "https://www.concier.net/jobs/search"
)

// Concier scrapes the メディカル・コンシェルジュネット agency board. The search
// is a Shift_JIS POST form, results paginate through a "next" link rather
// than a page parameter, and every listing is a self-contained block with
// its own th/td table.
type Concier struct {
	logger *slog.Logger
}

// NewConcier creates the concier.net adapter.
func NewConcier(logger *slog.Logger) *Concier {
	return &Concier{logger: logger.With("component", "adapter", "site", "concier")}
}

func (c *Concier) Name() string        { return "concier" }
func (c *Concier) Label() string       { return "メディカルコンシェルジュ" }
func (c *Concier) FetcherType() string { return "http" }

// ListingRequest posts the search form. Only the first page is reachable
// this way; later pages come from NextPageRequest.
func (c *Concier) ListingRequest(q types.SearchQuery, page int) (*types.Request, error) {
	form := url.Values{}
	form.Set("jobId", q.JobCategory)
	form.Set("worktypeId", q.WorkType)
	form.Set("localId", q.PrefectureCode)
	form.Set("facilityId", q.FacilityCategory)
	freeword := q.FreeText
	if freeword == "" {
		freeword = q.Keyword
	}
	form.Set("freeword", freeword)

	req, err := types.NewFormRequest(concierSearch, form)
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"
	req.Charset = "shift_jis"
	return req, nil
}

// NextPageRequest follows the pagination block's "next" link.
func (c *Concier) NextPageRequest(resp *types.Response) (*types.Request, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var href string
	doc.Find("div.pagination a, div.pager a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := extract.CleanText(a.Text())
		for _, marker := range []string{"次", "＞", ">", "next", "Next"} {
			if strings.Contains(text, marker) {
				href, _ = a.Attr("href")
				return false
			}
		}
		return true
	})
	if href == "" {
		return nil, nil
	}

	req, err := types.NewRequest(absoluteURL(concierBase, href))
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"
	req.Charset = "shift_jis"
	return req, nil
}

// concierTableField normalizes a per-listing table row header to a record
// field name, or "" for rows worth ignoring.
func concierTableField(key string) string {
	switch {
	case strings.Contains(key, "勤務地"):
		return types.FieldAddress
	case strings.Contains(key, "施設"):
		return types.FieldFacilityName
	case strings.Contains(key, "業務") || strings.Contains(key, "働き方"):
		return types.FieldBusinessContent
	case strings.Contains(key, "職種"):
		return "job_category"
	case strings.Contains(key, "給与") || strings.Contains(key, "時給") || strings.Contains(key, "月給"):
		return "payment"
	case strings.Contains(key, "交通") || strings.Contains(key, "アクセス"):
		return "access"
	}
	return ""
}

func (c *Concier) ParseListings(resp *types.Response) ([]*types.Record, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var records []*types.Record
	doc.Find("div.job-dtl-itm").Each(func(_ int, block *goquery.Selection) {
		rec := types.NewRecord(c.Name(), resp.FinalURL)

		rec.Set("listing_no", extract.CleanText(block.Find("div.job-dtl-no p").First().Text()))
		rec.Set("title", extract.CleanText(block.Find("div.job-dtl-ttl h3").First().Text()))

		if href, ok := block.Find("div.job-dtl-btn a.btn").First().Attr("href"); ok {
			rec.Set(types.FieldDetailURL, absoluteURL(concierBase, href))
		}

		block.Find("table.job-dtl-cont tr").Each(func(_ int, row *goquery.Selection) {
			key := extract.CleanText(row.Find("th").First().Text())
			value := extract.CleanText(row.Find("td").First().Text())
			if key == "" || value == "" {
				return
			}
			if field := concierTableField(key); field != "" {
				rec.SetIfEmpty(field, value)
			}
		})

		if rec.Has("title") || rec.Has(types.FieldFacilityName) || rec.Has(types.FieldDetailURL) {
			records = append(records, rec)
		}
	})
	return records, nil
}

func (c *Concier) DetailRequest(rec *types.Record) (*types.Request, error) {
	detailURL := rec.Get(types.FieldDetailURL)
	if detailURL == "" {
		return nil, types.ErrNoDetailURL
	}
	req, err := types.NewRequest(detailURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "detail"
	req.Charset = "shift_jis"
	return req, nil
}

var concierAgencyPhone = regexp.MustCompile(`(\d{4}-\d{2}-\d{4}|\d{3}-\d{4}-\d{4}|\d{2}-\d{4}-\d{4})`)

// ParseDetail reads the detail table. Phone numbers on this board belong to
// the staffing agency, not the facility, and are tagged as such.
func (c *Concier) ParseDetail(resp *types.Response) (map[string]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}
	fields := make(map[string]string)

	doc.Find("table.job-dtl-cont tr").Each(func(_ int, row *goquery.Selection) {
		key := extract.CleanText(row.Find("th").First().Text())
		value := extract.CleanText(row.Find("td").First().Text())
		if key == "" || value == "" {
			return
		}
		switch {
		case strings.Contains(key, "勤務地"):
			fields[types.FieldAddress] = value
		case strings.Contains(key, "施設"):
			fields[types.FieldFacilityName] = value
		case strings.Contains(key, "業務詳細"):
			fields[types.FieldBusinessContent] = value
		}
	})

	if contact := doc.Find("dd.clearfix").First(); contact.Length() > 0 {
		if m := concierAgencyPhone.FindString(contact.Text()); m != "" {
			fields[types.FieldPhoneNumber] = m + "（紹介会社）"
		}
	}
	return fields, nil
}

func (c *Concier) MaxPages(quota, configured int) int {
	return defaultMaxPages(quota, 10, min(configured, 50))
}

// OptionsRequest fetches the search form page, which is the search endpoint
// itself rendered without a query.
func (c *Concier) OptionsRequest() (*types.Request, error) {
	req, err := types.NewRequest(concierSearch)
	if err != nil {
		return nil, err
	}
	req.Tag = "options"
	req.Charset = "shift_jis"
	return req, nil
}

// ParseOptions reads the form's radio and select facets.
func (c *Concier) ParseOptions(resp *types.Response) ([]OptionSet, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var sets []OptionSet

	var jobs []Option
	doc.Find(`input[type="radio"][name="jobId"]`).Each(func(_ int, input *goquery.Selection) {
		value, _ := input.Attr("value")
		if value == "" {
			return
		}
		label := extract.CleanText(input.Parent().Text())
		jobs = append(jobs, Option{Value: value, Label: label})
	})
	if len(jobs) > 0 {
		sets = append(sets, OptionSet{Facet: "job", Options: jobs})
	}

	for _, sel := range []struct{ name, facet string }{
		{"worktypeId", "worktype"},
		{"localId", "region"},
		{"facilityId", "facility"},
	} {
		name, facet := sel.name, sel.facet
		var opts []Option
		doc.Find(`select[name="` + name + `"] option`).Each(func(_ int, opt *goquery.Selection) {
			value, _ := opt.Attr("value")
			if value == "" {
				return
			}
			opts = append(opts, Option{Value: value, Label: extract.CleanText(opt.Text())})
		})
		if len(opts) > 0 {
			sets = append(sets, OptionSet{Facet: facet, Options: opts})
		}
	}
	return sets, nil
}

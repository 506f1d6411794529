package adapter

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

const (
	biyouNurseBase   = "https://biyou-nurse.com"
	biyouNurseSearch = "https://biyou-nurse.com/job/"
)

// biyouNursePrefectures is the board's coded prefecture list, used when the
// live search form cannot be fetched.
var biyouNursePrefectures = []Option{
	{"01", "北海道"}, {"02", "青森県"}, {"03", "岩手県"}, {"04", "宮城県"},
	{"05", "秋田県"}, {"06", "山形県"}, {"07", "福島県"}, {"08", "茨城県"},
	{"09", "栃木県"}, {"10", "群馬県"}, {"11", "埼玉県"}, {"12", "千葉県"},
	{"13", "東京都"}, {"14", "神奈川県"}, {"15", "新潟県"}, {"16", "富山県"},
	{"17", "石川県"}, {"18", "福井県"}, {"19", "山梨県"}, {"20", "長野県"},
	{"21", "岐阜県"}, {"22", "静岡県"}, {"23", "愛知県"}, {"24", "三重県"},
	{"25", "滋賀県"}, {"26", "京都府"}, {"27", "大阪府"}, {"28", "兵庫県"},
	{"29", "奈良県"}, {"30", "和歌山県"}, {"31", "鳥取県"}, {"32", "島根県"},
	{"33", "岡山県"}, {"34", "広島県"}, {"35", "山口県"}, {"36", "徳島県"},
	{"37", "香川県"}, {"38", "愛媛県"}, {"39", "高知県"}, {"40", "福岡県"},
	{"41", "佐賀県"}, {"42", "長崎県"}, {"43", "熊本県"}, {"44", "大分県"},
	{"45", "宮崎県"}, {"46", "鹿児島県"}, {"47", "沖縄県"},
}

// BiyouNurse scrapes the 美容ナース specialist board. Its search is a plain
// GET form with coded facets and its detail pages carry a labeled th/td
// table, making it the richest contact source of the supported sites.
type BiyouNurse struct {
	logger *slog.Logger
}

// NewBiyouNurse creates the 美容ナース adapter.
func NewBiyouNurse(logger *slog.Logger) *BiyouNurse {
	return &BiyouNurse{logger: logger.With("component", "adapter", "site", "biyou_nurse")}
}

func (b *BiyouNurse) Name() string        { return "biyou_nurse" }
func (b *BiyouNurse) Label() string       { return "美容ナース" }
func (b *BiyouNurse) FetcherType() string { return "http" }

func (b *BiyouNurse) ListingRequest(q types.SearchQuery, page int) (*types.Request, error) {
	params := url.Values{}
	if q.Qualification != "" {
		params.Set("shikaku_flg", q.Qualification)
	}
	if q.PrefectureCode != "" {
		params.Set("ken_cd", q.PrefectureCode)
	}
	if q.BeautySurgery {
		params.Set("biyogeka_flg", "1")
	}
	if q.BeautyDermatology {
		params.Set("biyohifu_flg", "1")
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	searchURL := biyouNurseSearch
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

// ParseListings reads the job cards. Each card's clinick_name paragraph
// holds the area in a nested span, with the clinic name as the remaining
// text.
func (b *BiyouNurse) ParseListings(resp *types.Response) ([]*types.Record, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var records []*types.Record
	doc.Find("ul.list_jobs2 > li").Each(func(_ int, item *goquery.Selection) {
		rec := types.NewRecord(b.Name(), resp.FinalURL)

		name, area := splitClinicName(item.Find("p.clinick_name").First())
		if name == "" {
			return
		}
		rec.Set(types.FieldFacilityName, name)
		rec.Set(types.FieldAddress, area)

		title := extract.CleanText(item.Find("h2").First().Text())
		rec.Set("title", title)

		procedure := extract.CleanText(item.Find("dl dd").First().Text())
		var content []string
		if title != "" {
			content = append(content, title)
		}
		if procedure != "" {
			content = append(content, "主な施術: "+procedure)
		}
		rec.Set(types.FieldBusinessContent, strings.Join(content, " | "))

		if href, ok := item.Find(`a[href*="/job/detail/"]`).First().Attr("href"); ok {
			rec.Set(types.FieldDetailURL, absoluteURL(biyouNurseBase, href))
			rec.Set(types.FieldWebsiteURL, absoluteURL(biyouNurseBase, href))
		}

		records = append(records, rec)
	})
	return records, nil
}

// splitClinicName separates the clinic name from the area category span
// inside a clinick_name paragraph.
func splitClinicName(p *goquery.Selection) (name, area string) {
	if p.Length() == 0 {
		return "", ""
	}
	area = extract.CleanText(p.Find("span.cate").First().Text())
	full := extract.CleanText(p.Text())
	name = extract.CleanText(strings.Replace(full, area, "", 1))
	return name, area
}

func (b *BiyouNurse) DetailRequest(rec *types.Record) (*types.Request, error) {
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

// biyouNurseDetailLabels maps the detail table's row headers onto record
// fields.
var biyouNurseDetailLabels = map[string]string{
	"院名":       types.FieldFacilityName,
	"勤務先住所":    types.FieldAddress,
	"代表者":      types.FieldRepresentative,
	"院長":       types.FieldRepresentative,
	"理事長":      types.FieldRepresentative,
	"電話番号":     types.FieldPhoneNumber,
	"TEL":      types.FieldPhoneNumber,
	"メールアドレス":  types.FieldEmail,
	"Email":    types.FieldEmail,
}

// ParseDetail reads the labeled detail table plus the job description
// block.
func (b *BiyouNurse) ParseDetail(resp *types.Response) (map[string]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}
	fields := make(map[string]string)

	if name, _ := splitClinicName(doc.Find("p.clinick_name").First()); name != "" {
		fields[types.FieldFacilityName] = name
	}

	doc.Find("table.job_detail_tbl01 tr").Each(func(_ int, row *goquery.Selection) {
		header := extract.CleanText(row.Find("th").First().Text())
		value := extract.CleanText(row.Find("td").First().Text())
		if header == "" || value == "" {
			return
		}
		field, ok := biyouNurseDetailLabels[header]
		if !ok {
			return
		}
		if field == types.FieldPhoneNumber {
			if phone := extract.NormalizePhone(value); phone != "" {
				fields[field] = phone
			}
			return
		}
		if _, exists := fields[field]; !exists {
			fields[field] = value
		}
	})

	if desc := extract.CleanText(doc.Find("div.job_desc_txt p").First().Text()); desc != "" {
		fields[types.FieldBusinessContent] = truncateRunes(desc, 500)
	}
	return fields, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// MaxPages: the board serves ten listings per page and caps browsable
// results at fifty pages.
func (b *BiyouNurse) MaxPages(quota, configured int) int {
	return defaultMaxPages(quota, 10, min(configured, 50))
}

// OptionsRequest fetches the search form to read its live facet options.
func (b *BiyouNurse) OptionsRequest() (*types.Request, error) {
	req, err := types.NewRequest(biyouNurseBase)
	if err != nil {
		return nil, err
	}
	req.Tag = "options"
	return req, nil
}

// ParseOptions reads the prefecture dropdown from the live form, falling
// back to the built-in list when the markup changed. The qualification
// facet is fixed by the site.
func (b *BiyouNurse) ParseOptions(resp *types.Response) ([]OptionSet, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.FinalURL, Err: err}
	}

	var prefectures []Option
	doc.Find(`select[name="ken_cd"] option`).Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		if value == "" {
			return
		}
		prefectures = append(prefectures, Option{Value: value, Label: extract.CleanText(opt.Text())})
	})
	if len(prefectures) == 0 {
		prefectures = biyouNursePrefectures
	}

	return []OptionSet{
		{Facet: "prefecture", Options: prefectures},
		{Facet: "qualification", Options: []Option{
			{Value: "1", Label: "正看護師"},
			{Value: "0", Label: "准看護師"},
		}},
	}, nil
}

// absoluteURL resolves href against base when it is relative.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return base + "/" + href
}

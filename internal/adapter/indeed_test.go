package adapter

import (
	"testing"

	"github.com/kyuscout/kyuscout/internal/types"
)

func TestIndeedListingRequest(t *testing.T) {
	in := NewIndeed(discardLogger())

	req, err := in.ListingRequest(types.SearchQuery{Keyword: "美容看護師", Area: "東京都"}, 3)
	if err != nil {
		t.Fatalf("ListingRequest: %v", err)
	}
	if req.FetcherType != "browser" {
		t.Errorf("fetcher type = %q", req.FetcherType)
	}
	q := req.URL.Query()
	if q.Get("q") != "美容看護師" || q.Get("l") != "東京都" {
		t.Errorf("query = %v", q)
	}
	if q.Get("start") != "20" {
		t.Errorf("start = %q, want (page-1)*10", q.Get("start"))
	}

	req, _ = in.ListingRequest(types.SearchQuery{Keyword: "看護師"}, 1)
	if req.URL.Query().Has("start") {
		t.Error("page one carries a start offset")
	}

	if _, err := in.ListingRequest(types.SearchQuery{}, 1); err == nil {
		t.Error("empty query accepted")
	}
}

const indeedMosaicPage = `<html><body>
<script>
window.mosaic.providerData["mosaic-provider-jobcards"]={"metaData":{"mosaicProviderJobCardsModel":{"results":[
  {"title":"美容看護師","company":"渋谷スキンクリニック","formattedLocation":"東京都渋谷区","formattedSalary":"月給30万円〜","formattedJobType":"正社員","snippet":"美容皮膚科での施術介助","jobkey":"abc123"},
  {"title":"","company":"","snippet":"nameless"}
]}}};
</script>
</body></html>`

func TestIndeedParseListingsMosaic(t *testing.T) {
	in := NewIndeed(discardLogger())
	resp := htmlResponse(t, "https://jp.indeed.com/jobs?q=看護師", indeedMosaicPage)

	records, err := in.ParseListings(resp)
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (empty card dropped)", len(records))
	}

	rec := records[0]
	if got := rec.Get(types.FieldFacilityName); got != "渋谷スキンクリニック" {
		t.Errorf("facility = %q", got)
	}
	if got := rec.Get("title"); got != "美容看護師" {
		t.Errorf("title = %q", got)
	}
	if got := rec.Get(types.FieldAddress); got != "東京都渋谷区" {
		t.Errorf("address = %q", got)
	}
	if got := rec.Get("payment"); got != "月給30万円〜" {
		t.Errorf("payment = %q", got)
	}
	if got := rec.Get(types.FieldDetailURL); got != "https://jp.indeed.com/viewjob?jk=abc123" {
		t.Errorf("detail_url = %q", got)
	}
	if got := rec.Get("job_key"); got != "abc123" {
		t.Errorf("job_key = %q", got)
	}
}

const indeedMarkupPage = `<html><body>
<div class="job_seen_beacon" data-jk="def456">
  <h2 class="jobTitle"><span>受付スタッフ</span></h2>
  <span data-testid="company-name">新宿ビューティークリニック</span>
  <div data-testid="text-location">東京都新宿区</div>
  <div class="job-snippet">受付・会計・電話対応</div>
</div>
</body></html>`

func TestIndeedParseListingsMarkupFallback(t *testing.T) {
	in := NewIndeed(discardLogger())
	resp := htmlResponse(t, "https://jp.indeed.com/jobs?q=受付", indeedMarkupPage)

	records, err := in.ParseListings(resp)
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if got := rec.Get(types.FieldFacilityName); got != "新宿ビューティークリニック" {
		t.Errorf("facility = %q", got)
	}
	if got := rec.Get(types.FieldDetailURL); got != "https://jp.indeed.com/viewjob?jk=def456" {
		t.Errorf("detail_url = %q", got)
	}
	if got := rec.Get(types.FieldBusinessContent); got != "受付・会計・電話対応" {
		t.Errorf("business_content = %q", got)
	}
}

func TestIndeedParseDetail(t *testing.T) {
	in := NewIndeed(discardLogger())
	page := `<html><body>
<div id="jobDescriptionText">美容皮膚科での看護業務。連絡先 TEL: 0120-489-100</div>
</body></html>`
	resp := htmlResponse(t, "https://jp.indeed.com/viewjob?jk=abc123", page)

	fields, err := in.ParseDetail(resp)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if got := fields[types.FieldBusinessContent]; got == "" {
		t.Error("business_content empty")
	}
	if got := fields[types.FieldPhoneNumber]; got != "0120-489-100" {
		t.Errorf("phone = %q", got)
	}
}

func TestDigSlice(t *testing.T) {
	obj := map[string]any{"a": map[string]any{"b": []any{1.0, 2.0}}}
	if s, ok := digSlice(obj, "a", "b"); !ok || len(s) != 2 {
		t.Errorf("digSlice = (%v, %v)", s, ok)
	}
	if _, ok := digSlice(obj, "a", "missing"); ok {
		t.Error("missing path reported found")
	}
	if _, ok := digSlice(obj, "a"); ok {
		t.Error("non-slice leaf reported found")
	}
}

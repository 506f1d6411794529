package adapter

import (
	"testing"

	"github.com/kyuscout/kyuscout/internal/types"
)

func TestToranetListingRequest(t *testing.T) {
	tr := NewToranet(discardLogger())

	req, err := tr.ListingRequest(types.SearchQuery{Keyword: "看護師", PrefectureCode: "14"}, 1)
	if err != nil {
		t.Fatalf("ListingRequest: %v", err)
	}
	if got := req.URL.Path; got != "/prefectures/kanagawa/job_search/kw/看護師" {
		t.Errorf("path = %q", got)
	}
	if got := req.Headers.Get("Referer"); got != "https://toranet.jp/" {
		t.Errorf("referer = %q", got)
	}

	// A prefecture name as the area selects the region root; a ward narrows
	// the path instead.
	req, _ = tr.ListingRequest(types.SearchQuery{Keyword: "看護師", Area: "神奈川県"}, 1)
	if got := req.URL.Path; got != "/prefectures/kanagawa/job_search/kw/看護師" {
		t.Errorf("prefecture-area path = %q", got)
	}
	req, _ = tr.ListingRequest(types.SearchQuery{Keyword: "看護師", Area: "渋谷区"}, 2)
	if got := req.URL.Path; got != "/prefectures/tokyo/job_search/kw/看護師/area/渋谷区/page/2" {
		t.Errorf("sub-area path = %q", got)
	}

	if _, err := tr.ListingRequest(types.SearchQuery{Area: "東京都"}, 1); err == nil {
		t.Error("keywordless query accepted")
	}
}

const toranetListingPage = `<html><body>
<a href="/login">ログイン</a>
<a href="/prefectures/tokyo/job_detail/1001">詳細を見る</a>
<a href="https://toranet.jp/kyujin/1002">渋谷の求人</a>
<a href="https://toranet.jp/jobs/1003">気になる仕事</a>
<a href="/prefectures/tokyo/job_detail/1001">詳細を見る</a>
<a href="/about">サイトについて</a>
<a href="https://other.example/job/9">外部リンク</a>
</body></html>`

func TestToranetParseListings(t *testing.T) {
	tr := NewToranet(discardLogger())
	resp := htmlResponse(t, "https://toranet.jp/prefectures/tokyo/job_search/kw/看護師", toranetListingPage)

	records, err := tr.ParseListings(resp)
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 unique job links", len(records))
	}

	// Strong links (detail text or job_detail/kyujin paths) come first; the
	// weak "jobs" path link trails.
	if got := records[0].Get(types.FieldDetailURL); got != "https://toranet.jp/prefectures/tokyo/job_detail/1001" {
		t.Errorf("first link = %q", got)
	}
	if got := records[2].Get(types.FieldDetailURL); got != "https://toranet.jp/jobs/1003" {
		t.Errorf("last link = %q", got)
	}
	if got := records[0].Get("title"); got != "詳細を見る" {
		t.Errorf("title = %q", got)
	}
}

func TestIsJobURL(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://toranet.jp/prefectures/tokyo/job_detail/1", true},
		{"https://toranet.jp/kyujin/2", true},
		{"https://toranet.jp/jobs/3", true},
		{"https://toranet.jp/login", false},
		{"https://toranet.jp/favorite_jobs", false},
		{"https://other.example/job/9", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isJobURL(tt.href); got != tt.want {
			t.Errorf("isJobURL(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}

const toranetDetailPage = `<html>
<head><title>渋谷メディカルクリニック｜とらばーゆ</title></head>
<body>
<div class="corpNameWrap"><span>渋谷メディカルクリニック</span></div>
<section>
  <h3>代表者</h3>
  <p class="styles_content__abc">山田太郎</p>
</section>
<section>
  <h3>勤務地</h3>
  <p class="styles_content__abc">東京都渋谷区渋谷2-1-1</p>
</section>
<section>
  <h3>電話番号</h3>
  <p class="styles_content__abc">03-5774-1234</p>
</section>
<table>
  <tr><th>仕事内容</th><td>外来の看護業務全般</td></tr>
</table>
</body></html>`

func TestToranetParseDetail(t *testing.T) {
	tr := NewToranet(discardLogger())
	resp := htmlResponse(t, "https://toranet.jp/prefectures/tokyo/job_detail/1001", toranetDetailPage)

	fields, err := tr.ParseDetail(resp)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if got := fields[types.FieldFacilityName]; got != "渋谷メディカルクリニック" {
		t.Errorf("facility = %q", got)
	}
	if got := fields[types.FieldRepresentative]; got != "山田太郎" {
		t.Errorf("representative = %q", got)
	}
	if got := fields[types.FieldAddress]; got != "東京都渋谷区渋谷2-1-1" {
		t.Errorf("address = %q", got)
	}
	if got := fields[types.FieldPhoneNumber]; got != "03-5774-1234" {
		t.Errorf("phone = %q", got)
	}
	if got := fields[types.FieldBusinessContent]; got != "外来の看護業務全般" {
		t.Errorf("business_content = %q", got)
	}
}

func TestToranetFacilityFromTitle(t *testing.T) {
	tr := NewToranet(discardLogger())
	page := `<html><head><title>看護師の求人｜渋谷メディカルクリニック｜とらばーゆ</title></head>
<body><p>本文</p></body></html>`
	resp := htmlResponse(t, "https://toranet.jp/prefectures/tokyo/job_detail/1002", page)

	fields, err := tr.ParseDetail(resp)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if got := fields[types.FieldFacilityName]; got != "渋谷メディカルクリニック" {
		t.Errorf("facility = %q, want title segment without board noise", got)
	}
}

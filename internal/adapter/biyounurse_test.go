package adapter

import (
	"strings"
	"testing"

	"github.com/kyuscout/kyuscout/internal/types"
)

func TestBiyouNurseListingRequest(t *testing.T) {
	b := NewBiyouNurse(discardLogger())

	req, err := b.ListingRequest(types.SearchQuery{
		Qualification:     "1",
		PrefectureCode:    "13",
		BeautySurgery:     true,
		BeautyDermatology: true,
	}, 3)
	if err != nil {
		t.Fatalf("ListingRequest: %v", err)
	}
	q := req.URL.Query()
	if q.Get("shikaku_flg") != "1" || q.Get("ken_cd") != "13" {
		t.Errorf("facets = %v", q)
	}
	if q.Get("biyogeka_flg") != "1" || q.Get("biyohifu_flg") != "1" {
		t.Errorf("department flags = %v", q)
	}
	if q.Get("page") != "3" {
		t.Errorf("page = %q", q.Get("page"))
	}

	req, err = b.ListingRequest(types.SearchQuery{}, 1)
	if err != nil {
		t.Fatalf("ListingRequest: %v", err)
	}
	if req.URL.RawQuery != "" {
		t.Errorf("unfiltered first page carries query %q", req.URL.RawQuery)
	}
}

const biyouNurseListingPage = `<html><body>
<ul class="list_jobs2">
  <li>
    <p class="clinick_name">渋谷スキンクリニック<span class="cate">東京都</span></p>
    <h2>美容看護師の募集</h2>
    <dl><dt>主な施術</dt><dd>脱毛・注入・スキンケア</dd></dl>
    <a href="/job/detail/123/">詳細を見る</a>
  </li>
  <li>
    <p class="clinick_name"><span class="cate">大阪府</span>梅田ビューティークリニック</p>
    <h2>正看護師</h2>
  </li>
  <li>
    <p class="other">名前の無いカード</p>
  </li>
</ul>
</body></html>`

func TestBiyouNurseParseListings(t *testing.T) {
	b := NewBiyouNurse(discardLogger())
	resp := htmlResponse(t, "https://biyou-nurse.com/job/", biyouNurseListingPage)

	records, err := b.ParseListings(resp)
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if got := first.Get(types.FieldFacilityName); got != "渋谷スキンクリニック" {
		t.Errorf("facility = %q", got)
	}
	if got := first.Get(types.FieldAddress); got != "東京都" {
		t.Errorf("address = %q", got)
	}
	if got := first.Get(types.FieldDetailURL); got != "https://biyou-nurse.com/job/detail/123/" {
		t.Errorf("detail_url = %q", got)
	}
	if got := first.Get(types.FieldBusinessContent); !strings.Contains(got, "主な施術: 脱毛・注入・スキンケア") {
		t.Errorf("business_content = %q", got)
	}

	second := records[1]
	if got := second.Get(types.FieldFacilityName); got != "梅田ビューティークリニック" {
		t.Errorf("facility = %q", got)
	}
	if second.Has(types.FieldDetailURL) {
		t.Errorf("detail_url = %q, want none", second.Get(types.FieldDetailURL))
	}
}

const biyouNurseDetailPage = `<html><body>
<p class="clinick_name">渋谷スキンクリニック<span class="cate">東京都</span></p>
<table class="job_detail_tbl01">
  <tr><th>院名</th><td>渋谷スキンクリニック 本院</td></tr>
  <tr><th>勤務先住所</th><td>東京都渋谷区渋谷2-1-1</td></tr>
  <tr><th>院長</th><td>佐藤花子</td></tr>
  <tr><th>電話番号</th><td>０３（５７７４）１２３４</td></tr>
  <tr><th>メールアドレス</th><td>recruit@shibuya-skin.jp</td></tr>
  <tr><th>最寄駅</th><td>渋谷駅</td></tr>
</table>
<div class="job_desc_txt"><p>美容皮膚科での看護業務全般をお任せします。</p></div>
</body></html>`

func TestBiyouNurseParseDetail(t *testing.T) {
	b := NewBiyouNurse(discardLogger())
	resp := htmlResponse(t, "https://biyou-nurse.com/job/detail/123/", biyouNurseDetailPage)

	fields, err := b.ParseDetail(resp)
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	// The header clinic name wins over the table's 院名 row.
	if got := fields[types.FieldFacilityName]; got != "渋谷スキンクリニック" {
		t.Errorf("facility = %q", got)
	}
	if got := fields[types.FieldAddress]; got != "東京都渋谷区渋谷2-1-1" {
		t.Errorf("address = %q", got)
	}
	if got := fields[types.FieldRepresentative]; got != "佐藤花子" {
		t.Errorf("representative = %q", got)
	}
	// Fullwidth digits and parens normalize to the standard form.
	if got := fields[types.FieldPhoneNumber]; got != "03-5774-1234" {
		t.Errorf("phone = %q", got)
	}
	if got := fields[types.FieldEmail]; got != "recruit@shibuya-skin.jp" {
		t.Errorf("email = %q", got)
	}
	if got := fields[types.FieldBusinessContent]; got != "美容皮膚科での看護業務全般をお任せします。" {
		t.Errorf("business_content = %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("あ", 600)
	got := truncateRunes(long, 500)
	if runes := []rune(got); len(runes) != 503 { // 500 + "..."
		t.Errorf("truncated to %d runes", len(runes))
	}
	if got := truncateRunes("短い", 500); got != "短い" {
		t.Errorf("short string altered: %q", got)
	}
}

const biyouNurseFormPage = `<html><body>
<form>
<select name="ken_cd">
  <option value="">選択してください</option>
  <option value="13">東京都</option>
  <option value="27">大阪府</option>
</select>
</form>
</body></html>`

func TestBiyouNurseParseOptions(t *testing.T) {
	b := NewBiyouNurse(discardLogger())
	resp := htmlResponse(t, "https://biyou-nurse.com/", biyouNurseFormPage)

	sets, err := b.ParseOptions(resp)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d facets, want prefecture + qualification", len(sets))
	}
	if sets[0].Facet != "prefecture" || len(sets[0].Options) != 2 {
		t.Errorf("prefecture set = %+v", sets[0])
	}
	if sets[0].Options[0].Value != "13" || sets[0].Options[0].Label != "東京都" {
		t.Errorf("first option = %+v", sets[0].Options[0])
	}
	if sets[1].Facet != "qualification" || len(sets[1].Options) != 2 {
		t.Errorf("qualification set = %+v", sets[1])
	}
}

func TestBiyouNurseParseOptionsFallback(t *testing.T) {
	b := NewBiyouNurse(discardLogger())
	resp := htmlResponse(t, "https://biyou-nurse.com/", "<html><body>改装中</body></html>")

	sets, err := b.ParseOptions(resp)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if len(sets[0].Options) != 47 {
		t.Errorf("fallback prefecture count = %d, want 47", len(sets[0].Options))
	}
}

func TestBiyouNurseMaxPages(t *testing.T) {
	b := NewBiyouNurse(discardLogger())
	if got := b.MaxPages(10, 30); got != 3 {
		t.Errorf("MaxPages(10) = %d, want 3", got)
	}
	if got := b.MaxPages(1000, 100); got != 50 {
		t.Errorf("MaxPages(1000) = %d, want board cap 50", got)
	}
}

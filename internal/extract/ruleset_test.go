package extract

import "testing"

const rulesetFixture = `
<div class="listing">
  <article class="card">
    <h3 class="ttl">看護師（正社員）</h3>
    <a class="more" href="/jobs/123">詳細</a>
    <p class="meta">勤務地：東京都渋谷区</p>
  </article>
  <article class="card">
    <h3 class="ttl">受付スタッフ</h3>
    <p class="meta">勤務地：大阪府大阪市</p>
  </article>
</div>`

func TestRuleSetItemsFallback(t *testing.T) {
	doc := docFromHTML(t, rulesetFixture)

	rs := &RuleSet{
		ItemSelector:      "li.job-item",
		FallbackSelectors: []string{"section.result", "article.card"},
	}
	if got := rs.Items(doc).Length(); got != 2 {
		t.Errorf("Items() matched %d, want 2 via fallback", got)
	}

	rs = &RuleSet{ItemSelector: "div.nope", FallbackSelectors: []string{"div.also-nope"}}
	if got := rs.Items(doc).Length(); got != 0 {
		t.Errorf("Items() matched %d, want 0", got)
	}
}

func TestRuleSetExtractTiers(t *testing.T) {
	doc := docFromHTML(t, rulesetFixture)
	rs := &RuleSet{
		ItemSelector: "article.card",
		Fields: map[string]FieldRule{
			"title":      {Selector: "h3.ttl"},
			"detail_url": {Selector: "a.more", Attr: "href"},
			"address":    {Selector: "span.missing", Pattern: `勤務地：(\S+)`},
			"area_xpath": {XPath: `//p[@class="meta"]`, StripPrefix: "勤務地："},
		},
	}

	item := rs.Items(doc).First()
	fields := rs.Extract(item)

	if got := fields["title"]; got != "看護師（正社員）" {
		t.Errorf("title = %q", got)
	}
	if got := fields["detail_url"]; got != "/jobs/123" {
		t.Errorf("detail_url = %q", got)
	}
	if got := fields["address"]; got != "東京都渋谷区" {
		t.Errorf("regex fallback address = %q", got)
	}
	if got := fields["area_xpath"]; got != "東京都渋谷区" {
		t.Errorf("xpath area = %q", got)
	}
}

func TestRuleSetExtractSkipsEmpty(t *testing.T) {
	doc := docFromHTML(t, rulesetFixture)
	rs := &RuleSet{
		ItemSelector: "article.card",
		Fields: map[string]FieldRule{
			"detail_url": {Selector: "a.more", Attr: "href"},
		},
	}

	// Second card has no detail link; the field must be absent, not "".
	item := rs.Items(doc).Eq(1)
	fields := rs.Extract(item)
	if _, ok := fields["detail_url"]; ok {
		t.Errorf("detail_url present for card without link: %q", fields["detail_url"])
	}
}

package extract

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// FieldRule describes how one field is pulled out of a listing item. Rules
// are tried in tier order: CSS selector, then XPath, then regex over the
// item's text. The first tier that yields a non-empty value wins.
type FieldRule struct {
	// Selector is a CSS selector relative to the item root.
	Selector string

	// Attr reads an attribute instead of the node text.
	Attr string

	// XPath is an XPath expression relative to the item root.
	XPath string

	// Pattern is a regex applied to the item text; the first capture group
	// (or the whole match when there is none) becomes the value.
	Pattern string

	// StripPrefix removes a literal label prefix from the value.
	StripPrefix string
}

// RuleSet is a declarative description of how a listing page breaks into
// items and how each field is read from an item. Site adapters are data:
// a RuleSet plus URL-building code.
type RuleSet struct {
	// ItemSelector locates listing items.
	ItemSelector string

	// FallbackSelectors are tried in order when ItemSelector matches
	// nothing, for sites that shuffle their markup between variants.
	FallbackSelectors []string

	// Fields maps output field names to extraction rules.
	Fields map[string]FieldRule
}

// Items returns the listing item selections, trying the fallback selectors
// when the primary one matches nothing.
func (rs *RuleSet) Items(doc *goquery.Document) *goquery.Selection {
	sel := doc.Find(rs.ItemSelector)
	if sel.Length() > 0 {
		return sel
	}
	for _, fallback := range rs.FallbackSelectors {
		sel = doc.Find(fallback)
		if sel.Length() > 0 {
			return sel
		}
	}
	return sel
}

// Extract applies every field rule to one item selection.
func (rs *RuleSet) Extract(item *goquery.Selection) map[string]string {
	fields := make(map[string]string, len(rs.Fields))
	for name, rule := range rs.Fields {
		if v := applyRule(item, rule); v != "" {
			fields[name] = v
		}
	}
	return fields
}

func applyRule(item *goquery.Selection, rule FieldRule) string {
	var value string

	if rule.Selector != "" {
		found := item.Find(rule.Selector).First()
		if found.Length() > 0 {
			if rule.Attr != "" {
				value, _ = found.Attr(rule.Attr)
			} else {
				value = found.Text()
			}
		}
	}

	if value == "" && rule.XPath != "" {
		value = xpathValue(item, rule.XPath, rule.Attr)
	}

	if value == "" && rule.Pattern != "" {
		re, err := compiled(rule.Pattern)
		if err == nil {
			value = firstGroup(re, item.Text())
		}
	}

	value = CleanText(value)
	if rule.StripPrefix != "" {
		value = CleanText(strings.TrimPrefix(value, rule.StripPrefix))
	}
	return value
}

// xpathValue evaluates an XPath expression against the rendered HTML of the
// selection. The round trip through html.Parse is per-item but item markup
// is small.
func xpathValue(item *goquery.Selection, expr, attr string) string {
	markup, err := goquery.OuterHtml(item)
	if err != nil {
		return ""
	}
	root, err := html.Parse(bytes.NewReader([]byte(markup)))
	if err != nil {
		return ""
	}
	node, err := htmlquery.Query(root, expr)
	if err != nil || node == nil {
		return ""
	}
	if attr != "" {
		return htmlquery.SelectAttr(node, attr)
	}
	return htmlquery.InnerText(node)
}

var (
	regexCacheMu sync.RWMutex
	regexCache   = make(map[string]*regexp.Regexp)
)

// compiled returns a cached compiled regex for pattern.
func compiled(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.RLock()
	re, ok := regexCache[pattern]
	regexCacheMu.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCacheMu.Lock()
	regexCache[pattern] = re
	regexCacheMu.Unlock()
	return re, nil
}

// firstGroup returns the first capture group of the first match, or the
// whole match when the pattern has no groups.
func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

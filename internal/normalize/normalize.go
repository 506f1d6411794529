package normalize

import (
	"sort"
	"strings"

	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

// preferredExtras fixes the display order of the site-specific columns that
// commonly appear after the canonical set. Anything else a site emits is
// appended alphabetically so the output stays deterministic.
var preferredExtras = []string{
	"title",
	"job_category",
	"employment_type",
	"payment",
	"access",
	"listing_no",
	"job_key",
	"unique_id",
	types.FieldDetailURL,
}

// Normalize maps one raw record onto the canonical schema. Every canonical
// key is present in the result, empty when unknown; the record's remaining
// fields become extras.
func Normalize(rec *types.Record, siteLabel string) types.CanonicalRecord {
	out := types.CanonicalRecord{Fields: make(map[string]string, len(types.CanonicalColumns)+2)}

	for _, col := range types.CanonicalColumns {
		out.Fields[col] = rec.Get(col)
	}
	out.Fields[types.SourceSiteColumn] = siteLabel

	// A record without its own site falls back to the board's detail page
	// as the reachable web presence.
	if out.Fields[types.FieldWebsiteURL] == "" {
		out.Fields[types.FieldWebsiteURL] = rec.Get(types.FieldDetailURL)
	}
	if phone := out.Fields[types.FieldPhoneNumber]; phone != "" {
		out.Fields[types.FieldPhoneNumber] = normalizePhoneKeepingTag(phone)
	}

	canonical := make(map[string]bool, len(types.CanonicalColumns))
	for _, col := range types.CanonicalColumns {
		canonical[col] = true
	}
	for key, value := range rec.Fields {
		if !canonical[key] && value != "" {
			out.Fields[key] = value
		}
	}
	out.Extras = orderedExtras(out.Fields, canonical)
	return out
}

// Batch normalizes a slice of records and aligns their extras so every row
// shares one column set: the union of extras present anywhere in the batch.
func Batch(records []*types.Record, siteLabel string) []types.CanonicalRecord {
	out := make([]types.CanonicalRecord, len(records))
	union := make(map[string]bool)
	for i, rec := range records {
		out[i] = Normalize(rec, siteLabel)
		for _, extra := range out[i].Extras {
			union[extra] = true
		}
	}
	shared := orderedExtraNames(union)
	for i := range out {
		out[i].Extras = shared
	}
	return out
}

func orderedExtras(fields map[string]string, canonical map[string]bool) []string {
	present := make(map[string]bool)
	for key := range fields {
		if !canonical[key] && key != types.SourceSiteColumn {
			present[key] = true
		}
	}
	return orderedExtraNames(present)
}

// orderedExtraNames sorts extras by the preferred order, then
// alphabetically for the rest.
func orderedExtraNames(present map[string]bool) []string {
	var extras []string
	seen := make(map[string]bool)
	for _, name := range preferredExtras {
		if present[name] {
			extras = append(extras, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range present {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(extras, rest...)
}

// normalizePhoneKeepingTag canonicalizes the numeric part of a phone value
// while preserving a trailing annotation such as （紹介会社）, which marks a
// number that belongs to the staffing agency rather than the facility.
func normalizePhoneKeepingTag(phone string) string {
	number, tag := phone, ""
	if i := strings.IndexAny(phone, "（("); i > 0 {
		number, tag = phone[:i], phone[i:]
	}
	if normalized := extract.NormalizePhone(number); normalized != "" {
		return normalized + tag
	}
	return phone
}

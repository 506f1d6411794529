package types

import "time"

// Well-known record field names shared across adapters. Adapters may emit
// additional site-specific fields; mapping onto the canonical schema happens
// in the normalizer.
const (
	FieldFacilityName    = "facility_name"
	FieldRepresentative  = "representative"
	FieldAddress         = "address"
	FieldWebsiteURL      = "website_url"
	FieldPhoneNumber     = "phone_number"
	FieldEmail           = "email"
	FieldBusinessContent = "business_content"
	FieldDetailURL       = "detail_url"
)

// Record is a single scraped listing: a mapping of site-specific field names
// to string values. Produced by a site adapter, enriched in place by the
// detail enricher and contact resolver, then handed to the normalizer.
type Record struct {
	Fields    map[string]string
	Site      string
	SourceURL string
	FetchedAt time.Time
}

// NewRecord creates an empty Record for the given site and source page.
func NewRecord(site, sourceURL string) *Record {
	return &Record{
		Fields:    make(map[string]string),
		Site:      site,
		SourceURL: sourceURL,
		FetchedAt: time.Now(),
	}
}

// Set assigns a field value.
func (r *Record) Set(key, value string) {
	r.Fields[key] = value
}

// Get returns a field value, or "" if absent.
func (r *Record) Get(key string) string {
	return r.Fields[key]
}

// Has reports whether the field is present and non-empty.
func (r *Record) Has(key string) bool {
	return r.Fields[key] != ""
}

// SetIfEmpty assigns value only when the field is currently empty. This is
// the merge rule for all enrichment stages: a field populated at listing
// time is never overwritten.
func (r *Record) SetIfEmpty(key, value string) {
	if value == "" {
		return
	}
	if r.Fields[key] == "" {
		r.Fields[key] = value
	}
}

// Merge fills every empty field of r from other, leaving populated fields
// untouched.
func (r *Record) Merge(other map[string]string) {
	for k, v := range other {
		r.SetIfEmpty(k, v)
	}
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		Fields:    make(map[string]string, len(r.Fields)),
		Site:      r.Site,
		SourceURL: r.SourceURL,
		FetchedAt: r.FetchedAt,
	}
	for k, v := range r.Fields {
		clone.Fields[k] = v
	}
	return clone
}

// CanonicalColumns is the fixed output column order. Every canonical record
// carries exactly these keys plus source_site and any site-specific extras.
var CanonicalColumns = []string{
	FieldFacilityName,
	FieldRepresentative,
	FieldAddress,
	FieldWebsiteURL,
	FieldPhoneNumber,
	FieldEmail,
	FieldBusinessContent,
}

// SourceSiteColumn tags each canonical record with the site it came from.
const SourceSiteColumn = "source_site"

// CanonicalRecord is the normalized output row. Fields always contains the
// seven canonical keys (empty string when unknown) plus source_site; Extras
// lists site-specific column names, in order, appended after the canonical
// set for display and export.
type CanonicalRecord struct {
	Fields map[string]string
	Extras []string
}

// Columns returns the full ordered column list for this record.
func (c CanonicalRecord) Columns() []string {
	cols := make([]string, 0, len(CanonicalColumns)+1+len(c.Extras))
	cols = append(cols, CanonicalColumns...)
	cols = append(cols, SourceSiteColumn)
	cols = append(cols, c.Extras...)
	return cols
}

// Row returns the record's values in the given column order.
func (c CanonicalRecord) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = c.Fields[col]
	}
	return row
}

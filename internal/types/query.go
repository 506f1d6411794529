package types

// SearchQuery holds the facet selections for one search run. It is built by
// the caller (CLI or embedding application) and read-only for the duration
// of the run; facets a site does not support are simply ignored by that
// site's adapter.
type SearchQuery struct {
	// Keyword is the free-text occupation/industry keyword (e.g. 看護師).
	Keyword string

	// Area is a free-text region: prefecture, city, or station name.
	Area string

	// PrefectureCode is a two-digit JIS prefecture code ("13" = 東京都),
	// used by sites that take coded region facets.
	PrefectureCode string

	// EmploymentType is a site-specific employment-type code.
	EmploymentType string

	// WorkType, JobCategory and FacilityCategory are coded facets for
	// agency-style sites with structured search forms.
	WorkType         string
	JobCategory      string
	FacilityCategory string

	// Qualification is a license code facet (e.g. "1" = 正看護師).
	Qualification string

	// BeautySurgery and BeautyDermatology are department flags.
	BeautySurgery     bool
	BeautyDermatology bool

	// FreeText is an additional free-word facet for form-based searches.
	FreeText string

	// Quota is the maximum number of records to collect. Zero means the
	// configured default.
	Quota int

	// FetchDetails enables the detail-page enrichment stage.
	FetchDetails bool

	// ResolveContacts enables the contact-resolution stage.
	ResolveContacts bool
}

// IsEmpty reports whether no facet at all was selected.
func (q SearchQuery) IsEmpty() bool {
	return q.Keyword == "" && q.Area == "" && q.PrefectureCode == "" &&
		q.EmploymentType == "" && q.WorkType == "" && q.JobCategory == "" &&
		q.FacilityCategory == "" && q.Qualification == "" && q.FreeText == "" &&
		!q.BeautySurgery && !q.BeautyDermatology
}

package resolve

import (
	"context"
	"strings"

	"github.com/kyuscout/kyuscout/internal/types"
)

// knownFacility is a curated contact entry for a nationwide clinic chain.
// Chains appear in listings under dozens of branch spellings, so matching
// is by substring on the chain name.
type knownFacility struct {
	name           string
	phone          string
	representative string
	website        string
}

var knownFacilities = []knownFacility{
	{"湘南美容クリニック", "0120-489-100", "相川佳之", "https://www.s-b-c.net/"},
	{"品川美容外科", "0120-189-900", "秋元正宇", "https://www.shinagawa.com/"},
	{"TCB東京中央美容外科", "0120-197-262", "小林弘幸", "https://aoki-tsuyoshi.com/"},
	{"東京中央美容外科", "0120-197-262", "小林弘幸", "https://aoki-tsuyoshi.com/"},
	{"共立美容外科", "0120-500-340", "久次米秋人", "https://www.kyoritsu-biyo.com/"},
	{"東京美容外科", "0120-658-958", "麻生泰", "https://www.tkc110.jp/"},
	{"聖心美容クリニック", "0120-911-935", "", ""},
	{"城本クリニック", "0120-107-929", "", ""},
}

// Known resolves contacts from the built-in chain database. It is free and
// instantaneous, so it always runs first in the chain.
type Known struct{}

// NewKnown creates the static contact source.
func NewKnown() *Known { return &Known{} }

func (k *Known) Name() string { return "known_facilities" }

func (k *Known) Resolve(_ context.Context, facility, _ string) (map[string]string, error) {
	for _, entry := range knownFacilities {
		if !strings.Contains(facility, entry.name) {
			continue
		}
		fields := map[string]string{
			types.FieldPhoneNumber: entry.phone,
		}
		if entry.representative != "" {
			fields[types.FieldRepresentative] = entry.representative
		}
		if entry.website != "" {
			fields[types.FieldWebsiteURL] = entry.website
		}
		return fields, nil
	}
	return nil, nil
}

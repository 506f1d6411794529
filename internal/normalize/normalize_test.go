package normalize

import (
	"reflect"
	"testing"

	"github.com/kyuscout/kyuscout/internal/types"
)

func TestNormalizeAlwaysCarriesCanonicalKeys(t *testing.T) {
	rec := types.NewRecord("kyujinbox", "src")
	rec.Set(types.FieldFacilityName, "渋谷クリニック")

	out := Normalize(rec, "求人ボックス")

	for _, col := range types.CanonicalColumns {
		if _, ok := out.Fields[col]; !ok {
			t.Errorf("canonical column %q missing", col)
		}
	}
	if got := out.Fields[types.SourceSiteColumn]; got != "求人ボックス" {
		t.Errorf("source_site = %q", got)
	}
	if got := out.Fields[types.FieldRepresentative]; got != "" {
		t.Errorf("representative = %q, want empty", got)
	}
}

func TestNormalizeWebsiteFallsBackToDetailURL(t *testing.T) {
	rec := types.NewRecord("kyujinbox", "src")
	rec.Set(types.FieldFacilityName, "渋谷クリニック")
	rec.Set(types.FieldDetailURL, "https://example.jp/job/1")

	out := Normalize(rec, "求人ボックス")
	if got := out.Fields[types.FieldWebsiteURL]; got != "https://example.jp/job/1" {
		t.Errorf("website_url = %q, want detail URL fallback", got)
	}

	rec.Set(types.FieldWebsiteURL, "https://shibuya-clinic.jp/")
	out = Normalize(rec, "求人ボックス")
	if got := out.Fields[types.FieldWebsiteURL]; got != "https://shibuya-clinic.jp/" {
		t.Errorf("website_url = %q, own site must win", got)
	}
}

func TestNormalizePreservesAgencyTag(t *testing.T) {
	rec := types.NewRecord("concier", "src")
	rec.Set(types.FieldFacilityName, "渋谷クリニック")
	rec.Set(types.FieldPhoneNumber, "0120489100（紹介会社）")

	out := Normalize(rec, "コンシェル")
	if got := out.Fields[types.FieldPhoneNumber]; got != "0120-489-100（紹介会社）" {
		t.Errorf("phone = %q, want normalized number with tag kept", got)
	}
}

func TestNormalizeExtrasOrdering(t *testing.T) {
	rec := types.NewRecord("kyujinbox", "src")
	rec.Set(types.FieldFacilityName, "渋谷クリニック")
	rec.Set("zzz_custom", "x")
	rec.Set("payment", "月給30万円")
	rec.Set("title", "看護師")
	rec.Set("aaa_custom", "y")

	out := Normalize(rec, "求人ボックス")
	want := []string{"title", "payment", "aaa_custom", "zzz_custom"}
	if !reflect.DeepEqual(out.Extras, want) {
		t.Errorf("Extras = %v, want %v", out.Extras, want)
	}
}

func TestNormalizeDropsEmptyExtras(t *testing.T) {
	rec := types.NewRecord("kyujinbox", "src")
	rec.Set(types.FieldFacilityName, "渋谷クリニック")
	rec.Set("payment", "")

	out := Normalize(rec, "求人ボックス")
	if len(out.Extras) != 0 {
		t.Errorf("Extras = %v, want none for empty values", out.Extras)
	}
}

func TestBatchUnifiesExtras(t *testing.T) {
	a := types.NewRecord("kyujinbox", "src")
	a.Set(types.FieldFacilityName, "渋谷クリニック")
	a.Set("title", "看護師")

	b := types.NewRecord("kyujinbox", "src")
	b.Set(types.FieldFacilityName, "新宿クリニック")
	b.Set("payment", "月給30万円")

	out := Batch([]*types.Record{a, b}, "求人ボックス")
	if len(out) != 2 {
		t.Fatalf("Batch returned %d rows", len(out))
	}
	want := []string{"title", "payment"}
	for i, row := range out {
		if !reflect.DeepEqual(row.Extras, want) {
			t.Errorf("row %d Extras = %v, want %v", i, row.Extras, want)
		}
	}

	// Row values line up under the shared column list.
	cols := out[0].Columns()
	row := out[1].Row(cols)
	if row[len(row)-1] != "月給30万円" {
		t.Errorf("payment cell = %q", row[len(row)-1])
	}
	if row[len(row)-2] != "" {
		t.Errorf("title cell = %q, want empty for record without title", row[len(row)-2])
	}
}

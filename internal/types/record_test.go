package types

import "testing"

func TestSetIfEmpty(t *testing.T) {
	rec := NewRecord("site", "src")
	rec.Set(FieldPhoneNumber, "03-1234-5678")

	rec.SetIfEmpty(FieldPhoneNumber, "03-9999-0000")
	if got := rec.Get(FieldPhoneNumber); got != "03-1234-5678" {
		t.Errorf("populated field overwritten: %q", got)
	}

	rec.SetIfEmpty(FieldEmail, "")
	if rec.Has(FieldEmail) {
		t.Error("empty value stored")
	}

	rec.SetIfEmpty(FieldEmail, "a@b.jp")
	if got := rec.Get(FieldEmail); got != "a@b.jp" {
		t.Errorf("email = %q", got)
	}
}

func TestMerge(t *testing.T) {
	rec := NewRecord("site", "src")
	rec.Set(FieldFacilityName, "渋谷クリニック")

	rec.Merge(map[string]string{
		FieldFacilityName: "別の名前",
		FieldAddress:      "東京都渋谷区",
		FieldPhoneNumber:  "",
	})
	if got := rec.Get(FieldFacilityName); got != "渋谷クリニック" {
		t.Errorf("facility = %q", got)
	}
	if got := rec.Get(FieldAddress); got != "東京都渋谷区" {
		t.Errorf("address = %q", got)
	}
	if rec.Has(FieldPhoneNumber) {
		t.Error("empty merge value stored")
	}
}

func TestClone(t *testing.T) {
	rec := NewRecord("site", "src")
	rec.Set(FieldFacilityName, "渋谷クリニック")

	clone := rec.Clone()
	clone.Set(FieldFacilityName, "変更")
	if got := rec.Get(FieldFacilityName); got != "渋谷クリニック" {
		t.Errorf("clone shares field map: %q", got)
	}
}

func TestCanonicalColumns(t *testing.T) {
	c := CanonicalRecord{
		Fields: map[string]string{FieldFacilityName: "x", SourceSiteColumn: "site"},
		Extras: []string{"title"},
	}
	cols := c.Columns()
	if len(cols) != len(CanonicalColumns)+2 {
		t.Errorf("Columns() = %v", cols)
	}
	if cols[len(CanonicalColumns)] != SourceSiteColumn {
		t.Errorf("source_site not after canonical set: %v", cols)
	}

	row := c.Row(cols)
	if row[0] != "x" {
		t.Errorf("row = %v", row)
	}
}

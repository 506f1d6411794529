package paginate

import (
	"testing"

	"github.com/kyuscout/kyuscout/internal/types"
)

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"lowercases scheme and host",
			"HTTPS://Biyou-Nurse.COM/job/123",
			"https://biyou-nurse.com/job/123",
		},
		{
			"drops fragment",
			"https://example.jp/job/1#apply",
			"https://example.jp/job/1",
		},
		{
			"drops default port",
			"https://example.jp:443/job/1",
			"https://example.jp/job/1",
		},
		{
			"sorts query params",
			"https://example.jp/jobs?pg=2&e=1",
			"https://example.jp/jobs?e=1&pg=2",
		},
		{
			"trims trailing slash",
			"https://example.jp/jobs/",
			"https://example.jp/jobs",
		},
		{
			"keeps root slash",
			"https://example.jp/",
			"https://example.jp/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalizeURL(tt.input); got != tt.want {
				t.Errorf("CanonicalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAdmitByDetailURL(t *testing.T) {
	d := NewDeduplicator(4)

	a := types.NewRecord("site", "src")
	a.Set(types.FieldDetailURL, "https://example.jp/job/1?b=2&a=1")
	b := types.NewRecord("site", "src")
	b.Set(types.FieldDetailURL, "https://EXAMPLE.jp/job/1?a=1&b=2#top")

	if !d.Admit(a) {
		t.Error("first record rejected")
	}
	if d.Admit(b) {
		t.Error("equivalent URL admitted twice")
	}
	if d.Count() != 1 {
		t.Errorf("Count = %d, want 1", d.Count())
	}
}

func TestAdmitByFieldsWhenNoDetailURL(t *testing.T) {
	d := NewDeduplicator(4)

	a := types.NewRecord("site", "src")
	a.Set(types.FieldFacilityName, "渋谷クリニック")
	a.Set("title", "看護師")
	a.Set(types.FieldAddress, "東京都渋谷区")

	dup := a.Clone()

	other := types.NewRecord("site", "src")
	other.Set(types.FieldFacilityName, "渋谷クリニック")
	other.Set("title", "受付")
	other.Set(types.FieldAddress, "東京都渋谷区")

	if !d.Admit(a) {
		t.Error("first record rejected")
	}
	if d.Admit(dup) {
		t.Error("identical record admitted twice")
	}
	if !d.Admit(other) {
		t.Error("record with different title rejected")
	}
}

func TestReset(t *testing.T) {
	d := NewDeduplicator(1)
	rec := types.NewRecord("site", "src")
	rec.Set(types.FieldDetailURL, "https://example.jp/job/1")

	d.Admit(rec)
	d.Reset()
	if d.Count() != 0 {
		t.Errorf("Count after Reset = %d, want 0", d.Count())
	}
	if !d.Admit(rec) {
		t.Error("record rejected after Reset")
	}
}

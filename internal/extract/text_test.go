package extract

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello   world  ", "hello world"},
		{"渋谷院　看護師", "渋谷院 看護師"},
		{"a\n\t b c", "a b c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanFacilityName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bracket banner", "【高給与】渋谷美容クリニック", "渋谷美容クリニック"},
		{"promo tail", "渋谷美容クリニックの求人情報", "渋谷美容クリニック"},
		{"trailing note", "渋谷美容クリニック（新宿院）", "渋谷美容クリニック"},
		{"clean passes through", "医療法人社団 渋谷美容クリニック", "医療法人社団 渋谷美容クリニック"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFacilityName(tt.input); got != tt.want {
				t.Errorf("CleanFacilityName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFullwidthDigits(t *testing.T) {
	if got := FullwidthDigits("０１２０－４８９"); got != "0120-489" {
		t.Errorf("FullwidthDigits = %q", got)
	}
}

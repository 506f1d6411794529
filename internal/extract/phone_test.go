package extract

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tollfree bare digits", "01207771234", "0120-777-1234"},
		{"tollfree ten digits", "0120489100", "0120-489-100"},
		{"tollfree already formatted", "0120-777-1234", "0120-777-1234"},
		{"tokyo landline", "0312345678", "03-1234-5678"},
		{"osaka landline", "0612345678", "06-1234-5678"},
		{"regional landline", "0451234567", "045-123-4567"},
		{"mobile", "09012345678", "090-1234-5678"},
		{"international prefix", "+81-3-1234-5678", "03-1234-5678"},
		{"international spaced", "+81 90 1234 5678", "090-1234-5678"},
		{"fullwidth digits", "０３－１２３４－５６７８", "03-1234-5678"},
		{"with parens", "03(1234)5678", "03-1234-5678"},
		{"too short", "123-4567", ""},
		{"too long", "012345678901", ""},
		{"no leading zero", "312345678", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"01207771234", "0312345678", "09012345678", "+81312345678"}
	for _, input := range inputs {
		once := NormalizePhone(input)
		if once == "" {
			t.Fatalf("NormalizePhone(%q) unexpectedly invalid", input)
		}
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}

func TestFindPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled", "お問い合わせ TEL: 03-1234-5678 まで", "03-1234-5678"},
		{"labeled japanese", "電話番号：0120-489-100（受付時間 9-18時）", "0120-489-100"},
		{"bare tollfree", "ご予約は0120-777-1234へ", "0120-777-1234"},
		{"postal code skipped", "〒150-0002 東京都渋谷区渋谷2-1-1", ""},
		{"postal then phone", "〒150-0002 東京都渋谷区 TEL 03-5774-1234", "03-5774-1234"},
		{"nothing", "営業時間 10:00-19:00", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPhone(tt.text); got != tt.want {
				t.Errorf("FindPhone(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

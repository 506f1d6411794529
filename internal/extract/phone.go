package extract

import (
	"regexp"
	"strings"
)

// Phone candidates are tried label-first: a number explicitly marked TEL is
// more trustworthy than a bare digit run, and toll-free numbers beat
// geographic ones in contact blocks that list both.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:TEL|Tel|tel|電話番号|電話|お電話)[:：\s]*(\+?[\d０-９][\d０-９\-－ー\s()（）]{8,18})`),
	regexp.MustCompile(`(0120[-－ー\s]?\d{2,3}[-－ー\s]?\d{3,4})`),
	regexp.MustCompile(`(0800[-－ー\s]?\d{3}[-－ー\s]?\d{4})`),
	regexp.MustCompile(`(\+81[-\s]?\d{1,4}[-\s]?\d{1,4}[-\s]?\d{3,4})`),
	regexp.MustCompile(`(0\d{1,4}[-－ー\s]?\d{1,4}[-－ー\s]?\d{3,4})`),
}

var postalMark = regexp.MustCompile(`〒\s*$`)

// FindPhone scans text for a Japanese phone number, returning it normalized
// or "" when nothing valid is found. Postal codes (7 digits, often written
// 123-4567 after a 〒 mark) never validate as phone numbers and are skipped.
func FindPhone(text string) string {
	for _, re := range phonePatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start := loc[2]
			if start < 0 {
				continue
			}
			if postalMark.MatchString(text[:start]) {
				continue
			}
			if normalized := NormalizePhone(text[loc[2]:loc[3]]); normalized != "" {
				return normalized
			}
		}
	}
	return ""
}

// NormalizePhone converts a raw phone string to canonical hyphenated form.
// +81 country prefixes become a leading 0; anything that does not reduce to
// 10 or 11 digits starting with 0 yields "". The function is idempotent:
// feeding its own output back returns the same string.
func NormalizePhone(raw string) string {
	s := FullwidthDigits(strings.TrimSpace(raw))
	s = strings.NewReplacer("(", "", ")", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "+81") {
		s = "0" + strings.TrimLeft(s[3:], "-")
	}

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	if len(d) != 10 && len(d) != 11 {
		return ""
	}
	if d[0] != '0' {
		return ""
	}
	return formatPhone(d)
}

func formatPhone(d string) string {
	// Toll-free numbers group as 4-3-rest regardless of length.
	if strings.HasPrefix(d, "0120") || strings.HasPrefix(d, "0800") {
		return d[:4] + "-" + d[4:7] + "-" + d[7:]
	}
	if len(d) == 11 {
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	}
	// Single-digit area codes (03 Tokyo, 06 Osaka) group 2-4-4.
	if strings.HasPrefix(d, "03") || strings.HasPrefix(d, "06") {
		return d[:2] + "-" + d[2:6] + "-" + d[6:]
	}
	return d[:3] + "-" + d[3:6] + "-" + d[6:]
}

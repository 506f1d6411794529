package extract

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`[\s\x{00a0}\x{3000}]+`)

// CleanText collapses all whitespace runs (including NBSP and ideographic
// space) to single spaces and trims the ends.
func CleanText(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

var (
	bracketNote    = regexp.MustCompile(`【[^】]*】|◆[^◆\s]*|★[^★\s]*`)
	trailingPromo  = regexp.MustCompile(`(?:の(?:求人|転職|募集|採用)|でのお仕事).*$`)
	facilityBranch = regexp.MustCompile(`[\s　]*[（(][^）)]*[）)]\s*$`)
)

// CleanFacilityName strips promotional decoration from a facility name as it
// appears in a listing title: bracketed banners, "〜の求人" tails, and a
// trailing parenthesized note. Branch names joined with a space are kept.
func CleanFacilityName(s string) string {
	s = CleanText(s)
	s = bracketNote.ReplaceAllString(s, "")
	s = trailingPromo.ReplaceAllString(s, "")
	s = facilityBranch.ReplaceAllString(s, "")
	return CleanText(s)
}

// FullwidthDigits maps fullwidth digits, hyphens and plus signs to their
// ASCII forms. Other runes pass through.
func FullwidthDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '０' && r <= '９':
			return '0' + (r - '０')
		case r == '－' || r == 'ー' || r == '―' || r == '‐':
			return '-'
		case r == '＋':
			return '+'
		case r == '（':
			return '('
		case r == '）':
			return ')'
		}
		return r
	}, s)
}

package extract

import (
	"regexp"
	"strings"
)

var (
	prefecturePattern = `(?:北海道|東京都|京都府|大阪府|[\x{4e00}-\x{9fff}]{2,3}県)`

	addressPattern = regexp.MustCompile(
		prefecturePattern + `[\x{4e00}-\x{9fff}\x{3040}-\x{30ff}0-9０-９ー\-丁目番地号F階\s]{2,60}`)

	accessNoise = []*regexp.Regexp{
		regexp.MustCompile(`【[^】]*】`),
		regexp.MustCompile(`[（(][^）)]*[）)]`),
		regexp.MustCompile(`[^\s、。/]*線[^\s、。/]*駅[^\s、。/]*`),
		regexp.MustCompile(`[^\s、。/]*駅(?:から|より)?(?:徒歩|バス|車)[0-9０-９]+分[^\s、。/]*`),
		regexp.MustCompile(`(?:徒歩|バス|車)[0-9０-９]+分`),
		regexp.MustCompile(`〒\s*[0-9０-９]{3}[-－ー]?[0-9０-９]{4}`),
	}
)

// FindAddress scans text for a prefecture-rooted street address and returns
// it cleaned, or "" when none is found.
func FindAddress(text string) string {
	m := addressPattern.FindString(text)
	if m == "" {
		return ""
	}
	return CleanAddress(m)
}

// CleanAddress strips station-access boilerplate, bracketed notes, and
// postal marks from an address string, keeping the prefecture/city/street
// part. Already-clean addresses pass through unchanged.
func CleanAddress(s string) string {
	for _, re := range accessNoise {
		s = re.ReplaceAllString(s, " ")
	}
	s = CleanText(s)
	// Access copy sometimes survives as a trailing clause after the real
	// address; cut at the first enumeration break.
	if i := strings.IndexAny(s, "、。"); i > 0 {
		s = s[:i]
	}
	return CleanText(s)
}

package extract

import (
	"regexp"
	"strings"
)

// Representative titles in decreasing order of specificity. The person
// actually responsible for a clinic is usually listed as 院長 or 代表者; the
// corporate titles catch company-run chains.
var representativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:代表者|代表取締役社長|代表取締役|理事長|院長|代表|社長)[:：\s　]*([\x{4e00}-\x{9fff}\x{3040}-\x{30ff}A-Za-z]{1,12}[\s　]?[\x{4e00}-\x{9fff}\x{3040}-\x{30ff}A-Za-z]{0,12})`),
}

var representativeNoise = regexp.MustCompile(`(?:先生|医師|様|氏)$`)

// FindRepresentative scans text for a representative's name following a
// title label. Returns "" when no labeled name is present.
func FindRepresentative(text string) string {
	for _, re := range representativePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := CleanText(m[1])
		name = representativeNoise.ReplaceAllString(name, "")
		name = CleanText(name)
		// A bare honorific or a single kana is label noise, not a name.
		if len([]rune(name)) >= 2 {
			return name
		}
	}
	return ""
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// excludedEmailDomains are infrastructure or placeholder domains that show
// up in page chrome and tracking markup, never as a facility contact.
var excludedEmailDomains = []string{
	"google",
	"youtube",
	"facebook",
	"twitter",
	"instagram",
	"example",
	"noreply",
	"no-reply",
	"duckduckgo",
	"sentry",
}

// FindEmail scans text for a plausible facility contact email, skipping
// platform and placeholder domains.
func FindEmail(text string) string {
	for _, candidate := range emailPattern.FindAllString(text, -1) {
		domain := strings.ToLower(candidate[strings.Index(candidate, "@")+1:])
		excluded := false
		for _, bad := range excludedEmailDomains {
			if strings.Contains(domain, bad) {
				excluded = true
				break
			}
		}
		if !excluded {
			return candidate
		}
	}
	return ""
}

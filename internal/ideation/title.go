package ideation

import (
	"regexp"
	"strings"
	"time"
)

// MaxTitleLen caps derived titles, counted in characters.
const MaxTitleLen = 50

var (
	atxHeading   = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// ExtractTitle picks a title for generated content: the first "# " heading
// if there is one, otherwise the first non-empty line. Either way the
// result is trimmed and truncated to MaxTitleLen characters.
func ExtractTitle(content string) string {
	if m := atxHeading.FindStringSubmatch(content); m != nil {
		return truncate(strings.TrimSpace(m[1]), MaxTitleLen)
	}

	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return truncate(line, MaxTitleLen)
		}
	}
	return ""
}

// SanitizeFilename turns a title into a filesystem-safe stem: reserved
// characters are dropped, spaces become underscores. A title with nothing
// usable left falls back to idea_YYYYMMDD_HHMMSS taken from now.
func SanitizeFilename(title string, now time.Time) string {
	s := invalidChars.ReplaceAllString(title, "")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		s = "idea_" + now.Format("20060102_150405")
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package ideation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"heading", "# Solar Kites\n\nBody text.", "Solar Kites"},
		{"heading after preamble", "Here you go:\n\n# Solar Kites\nBody", "Solar Kites"},
		{"heading trimmed", "#    Padded Title   \nBody", "Padded Title"},
		{"second level heading ignored", "## Sub\nFirst real line", "## Sub"},
		{"first non-empty line", "\n\n   Plain first line  \nsecond", "Plain first line"},
		{"empty", "", ""},
		{"whitespace only", "  \n\t\n", ""},
		{"hash without space is not a heading", "#hashtag idea\n", "#hashtag idea"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.content))
		})
	}
}

func TestExtractTitle_Truncates(t *testing.T) {
	long := strings.Repeat("a", 80)

	got := ExtractTitle("# " + long)
	assert.Equal(t, strings.Repeat("a", MaxTitleLen), got)

	got = ExtractTitle(long + "\nmore")
	assert.Len(t, got, MaxTitleLen)
}

func TestExtractTitle_TruncatesByCharacter(t *testing.T) {
	long := strings.Repeat("é", 60)

	got := ExtractTitle("# " + long)
	assert.Equal(t, MaxTitleLen, len([]rune(got)))
	assert.True(t, strings.HasPrefix(long, got))
}

func TestSanitizeFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"reserved characters dropped", "My/Idea:Thing?", "MyIdeaThing"},
		{"spaces become underscores", "Solar Kites for Kids", "Solar_Kites_for_Kids"},
		{"all reserved characters", `a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"unicode kept", "Café Ideas", "Café_Ideas"},
		{"empty falls back", "", "idea_20240309_140507"},
		{"whitespace falls back", "   ", "idea_20240309_140507"},
		{"only reserved falls back", "???", "idea_20240309_140507"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.title, now))
		})
	}
}

func TestSanitizeFilename_NoReservedCharactersSurvive(t *testing.T) {
	got := SanitizeFilename(`What if <cats> ran "the" world? | a/b\c * d:e`, time.Now())
	assert.NotContains(t, got, " ")
	for _, c := range `<>:"/\|?*` {
		assert.NotContains(t, got, string(c))
	}
}

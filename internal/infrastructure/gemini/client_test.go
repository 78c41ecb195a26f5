package gemini

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	got := parseSuggestions("```json\n[\"One.\", \" \", \"Two.\"]\n```")
	require.Equal(t, []string{"One.", "Two."}, got)

	got = parseSuggestions("First line\n\n\"Second line\",")
	require.Equal(t, []string{"First line", "Second line"}, got)

	require.Empty(t, parseSuggestions("  "))
}

func TestFallbackAbout(t *testing.T) {
	got := FallbackAbout(AboutInput{Name: "Ann", Interests: []string{"Music", "Art"}, Horoscope: "Aries", Zodiac: "Horse"})
	require.Len(t, got, 3)
	require.Equal(t, "Hi, I'm Ann. I'm into Music, Art.", got[0])
	require.Contains(t, got[1], "Aries")
	require.Contains(t, got[1], "Horse")

	got = FallbackAbout(AboutInput{})
	require.Len(t, got, 2)
	require.Equal(t, "Hi, I'm there.", got[0])
}

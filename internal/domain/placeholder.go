package domain

import (
	"strings"
	"unicode/utf16"
)

// PhotoPlaceholder is shown instead of a profile photo when none is stored.
type PhotoPlaceholder struct {
	Initials   string `json:"initials"`
	ColorClass string `json:"color_class"`
}

var placeholderColors = [...]string{
	"bg-blue-600", "bg-purple-600", "bg-pink-600",
	"bg-indigo-600", "bg-teal-600", "bg-green-600",
}

const defaultInitials = "YA"

// PlaceholderFor picks initials from the name (or username) and a background
// colour that stays stable for the same text.
func PlaceholderFor(name, username string) PhotoPlaceholder {
	var initials string
	switch {
	case name != "":
		var b strings.Builder
		for _, part := range strings.Split(name, " ") {
			for _, r := range part {
				b.WriteRune(r)
				break
			}
		}
		initials = firstRunes(strings.ToUpper(b.String()), 2)
	case username != "":
		initials = strings.ToUpper(firstRunes(username, 2))
	default:
		initials = defaultInitials
	}

	colorText := name
	if colorText == "" {
		colorText = username
	}
	if colorText == "" {
		colorText = "default"
	}

	return PhotoPlaceholder{
		Initials:   initials,
		ColorClass: placeholderColors[colorIndex(colorText)],
	}
}

// colorIndex hashes UTF-16 code units with h = c + (h<<5) - h, where the
// shift operates on the low 32 bits of h.
func colorIndex(text string) int {
	var h int64
	for _, c := range utf16.Encode([]rune(text)) {
		h = int64(c) + int64(int32(h)<<5) - h
	}
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(placeholderColors)))
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

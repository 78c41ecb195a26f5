package domain

import "strings"

// InterestTag is one of the known interests or any free-form label.
type InterestTag string

const (
	InterestMusic       InterestTag = "Music"
	InterestBasketball  InterestTag = "Basketball"
	InterestFitness     InterestTag = "Fitness"
	InterestGymming     InterestTag = "Gymming"
	InterestTraveling   InterestTag = "Traveling"
	InterestReading     InterestTag = "Reading"
	InterestWriting     InterestTag = "Writing"
	InterestCoding      InterestTag = "Coding"
	InterestGaming      InterestTag = "Gaming"
	InterestMovies      InterestTag = "Movies"
	InterestCooking     InterestTag = "Cooking"
	InterestPhotography InterestTag = "Photography"
)

// StyleToken is the (background, text, border) tint triple of an interest chip.
type StyleToken struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Border     string `json:"border"`
}

// Class renders the token as the utility class list the client applies.
func (s StyleToken) Class() string {
	return s.Background + " " + s.Text + " border " + s.Border
}

func tint(color string) StyleToken {
	return StyleToken{
		Background: "bg-" + color + "-400/30",
		Text:       "text-" + color + "-300",
		Border:     "border-" + color + "-400",
	}
}

var (
	UnselectedStyle = StyleToken{Background: "bg-gray-800", Text: "text-white", Border: "border-transparent"}
	FallbackStyle   = tint("yellow")
)

var knownInterests = []InterestTag{
	InterestMusic, InterestBasketball, InterestFitness, InterestGymming,
	InterestTraveling, InterestReading, InterestWriting, InterestCoding,
	InterestGaming, InterestMovies, InterestCooking, InterestPhotography,
}

var interestStyles = map[InterestTag]StyleToken{
	InterestMusic:       tint("purple"),
	InterestBasketball:  tint("orange"),
	InterestFitness:     tint("green"),
	InterestGymming:     tint("blue"),
	InterestTraveling:   tint("pink"),
	InterestReading:     tint("red"),
	InterestWriting:     tint("indigo"),
	InterestCoding:      tint("cyan"),
	InterestGaming:      tint("violet"),
	InterestMovies:      tint("amber"),
	InterestCooking:     tint("emerald"),
	InterestPhotography: tint("rose"),
}

// StyleFor resolves the chip style. Unselected chips share one token; selected
// chips use the exact-match table entry or FallbackStyle.
func StyleFor(label string, selected bool) StyleToken {
	if !selected {
		return UnselectedStyle
	}
	if style, ok := interestStyles[InterestTag(label)]; ok {
		return style
	}
	return FallbackStyle
}

// KnownInterests returns the catalogue in display order.
func KnownInterests() []InterestTag {
	out := make([]InterestTag, len(knownInterests))
	copy(out, knownInterests)
	return out
}

func IsKnownInterest(label string) bool {
	_, ok := interestStyles[InterestTag(label)]
	return ok
}

// NormalizeInterests trims labels, drops empty ones and removes duplicates,
// keeping the first occurrence of each.
func NormalizeInterests(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// StyledInterest is an interest chip ready for display.
type StyledInterest struct {
	Label    string     `json:"label"`
	Selected bool       `json:"selected"`
	Known    bool       `json:"known"`
	Style    StyleToken `json:"style"`
	Class    string     `json:"class"`
}

func NewStyledInterest(label string, selected bool) StyledInterest {
	style := StyleFor(label, selected)
	return StyledInterest{
		Label:    label,
		Selected: selected,
		Known:    IsKnownInterest(label),
		Style:    style,
		Class:    style.Class(),
	}
}

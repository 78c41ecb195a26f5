package domain

import (
	"strings"
	"time"
)

type WesternSign string

const (
	SignAquarius    WesternSign = "Aquarius"
	SignPisces      WesternSign = "Pisces"
	SignAries       WesternSign = "Aries"
	SignTaurus      WesternSign = "Taurus"
	SignGemini      WesternSign = "Gemini"
	SignCancer      WesternSign = "Cancer"
	SignLeo         WesternSign = "Leo"
	SignVirgo       WesternSign = "Virgo"
	SignLibra       WesternSign = "Libra"
	SignScorpio     WesternSign = "Scorpio"
	SignSagittarius WesternSign = "Sagittarius"
	SignCapricorn   WesternSign = "Capricorn"
	SignUnknown     WesternSign = "Unknown"
)

type ChineseAnimal string

const (
	AnimalRat     ChineseAnimal = "Rat"
	AnimalOx      ChineseAnimal = "Ox"
	AnimalTiger   ChineseAnimal = "Tiger"
	AnimalRabbit  ChineseAnimal = "Rabbit"
	AnimalDragon  ChineseAnimal = "Dragon"
	AnimalSnake   ChineseAnimal = "Snake"
	AnimalHorse   ChineseAnimal = "Horse"
	AnimalGoat    ChineseAnimal = "Goat"
	AnimalMonkey  ChineseAnimal = "Monkey"
	AnimalRooster ChineseAnimal = "Rooster"
	AnimalDog     ChineseAnimal = "Dog"
	AnimalPig     ChineseAnimal = "Pig"
)

// ratYear is a known Rat year anchoring the 12-year cycle.
const ratYear = 1924

var chineseCycle = [12]ChineseAnimal{
	AnimalRat, AnimalOx, AnimalTiger, AnimalRabbit, AnimalDragon, AnimalSnake,
	AnimalHorse, AnimalGoat, AnimalMonkey, AnimalRooster, AnimalDog, AnimalPig,
}

// signStart holds, per month, the first day of the sign that begins in that
// month. Days before it belong to the previous month's sign.
var signStart = [12]struct {
	day  int
	sign WesternSign
}{
	{20, SignAquarius},
	{19, SignPisces},
	{21, SignAries},
	{20, SignTaurus},
	{21, SignGemini},
	{21, SignCancer},
	{23, SignLeo},
	{23, SignVirgo},
	{23, SignLibra},
	{23, SignScorpio},
	{22, SignSagittarius},
	{22, SignCapricorn},
}

// ZodiacResult is derived from a birthday on every profile view and never stored.
type ZodiacResult struct {
	Horoscope WesternSign   `json:"horoscope"`
	Zodiac    ChineseAnimal `json:"zodiac"`
}

// WesternSignFor maps a day and month to the sun sign. Ranges are inclusive
// on both ends and wrap across month boundaries.
func WesternSignFor(day, month int) WesternSign {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return SignUnknown
	}
	start := signStart[month-1]
	if day >= start.day {
		return start.sign
	}
	// January's previous month is December.
	return signStart[(month+10)%12].sign
}

// ChineseAnimalFor is total over all integer years, negative ones included.
func ChineseAnimalFor(year int) ChineseAnimal {
	idx := ((year-ratYear)%12 + 12) % 12
	return chineseCycle[idx]
}

func ZodiacFor(birthday time.Time) ZodiacResult {
	year, month, day := birthday.Date()
	return ZodiacResult{
		Horoscope: WesternSignFor(day, int(month)),
		Zodiac:    ChineseAnimalFor(year),
	}
}

// ParseBirthday reads the civil date out of an ISO date or RFC 3339 string.
// The date part is taken as written; no timezone conversion is applied.
func ParseBirthday(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(time.DateOnly) {
		if i := strings.IndexAny(s, "T "); i == len(time.DateOnly) {
			s = s[:i]
		}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package umadb

import (
	"fmt"
	"strconv"
)

// RunningStyle is a card's preferred race strategy.
type RunningStyle int

const (
	StyleFrontRunner RunningStyle = 1
	StylePaceChaser  RunningStyle = 2
	StyleLateSurger  RunningStyle = 3
	StyleEndCloser   RunningStyle = 4
)

func (s RunningStyle) String() string {
	switch s {
	case StyleFrontRunner:
		return "Front Runner"
	case StylePaceChaser:
		return "Pace Chaser"
	case StyleLateSurger:
		return "Late Surger"
	case StyleEndCloser:
		return "End Closer"
	default:
		return "Unknown"
	}
}

// StatBlock holds the five base stats of a card at one rarity level.
type StatBlock struct {
	Speed   int `json:"speed"`
	Stamina int `json:"stamina"`
	Power   int `json:"power"`
	Guts    int `json:"guts"`
	Wit     int `json:"wit"`
}

// Aptitudes holds a card's ground, distance and strategy grades.
type Aptitudes struct {
	Turf Grade `json:"turf"`
	Dirt Grade `json:"dirt"`

	Sprint Grade `json:"sprint"`
	Mile   Grade `json:"mile"`
	Middle Grade `json:"middle"`
	Long   Grade `json:"long"`

	FrontRunner Grade `json:"front_runner"`
	PaceChaser  Grade `json:"pace_chaser"`
	LateSurger  Grade `json:"late_surger"`
	EndCloser   Grade `json:"end_closer"`
}

// Card is one playable version of a character. Cards are owned by
// exactly one Character and carry a back-reference to its id.
type Card struct {
	ID      int64 `json:"id"`
	CharaID int64 `json:"chara_id"`

	Rarity       int          `json:"rarity"`
	RunningStyle RunningStyle `json:"running_style"`

	TalentSpeed   int `json:"talent_speed"`
	TalentStamina int `json:"talent_stamina"`
	TalentPower   int `json:"talent_power"`
	TalentGuts    int `json:"talent_guts"`
	TalentWit     int `json:"talent_wit"`

	// Base stats at the card's default rarity and at its maximum
	// rarity; nil when the stat rows are missing from the snapshot.
	BaseStats *StatBlock `json:"base_stats,omitempty"`
	MaxStats  *StatBlock `json:"max_stats,omitempty"`

	// Aptitude grades; nil when the snapshot rows carry none.
	Aptitudes *Aptitudes `json:"aptitudes,omitempty"`
}

// RarityStars renders the card rarity as stars.
func (c *Card) RarityStars() string {
	return rarityStars(c.Rarity)
}

// ImageURL returns the card art URL on the GameTora CDN.
func (c *Card) ImageURL() string {
	return fmt.Sprintf("https://gametora.com/images/umamusume/characters/chara_stand_%d_%d.png", c.CharaID, c.ID)
}

// Character is a playable character assembled from the snapshot's
// character and card tables. Read-only after load.
type Character struct {
	ID int64 `json:"id"`

	NameEN string `json:"name_en,omitempty"`
	NameJP string `json:"name_jp,omitempty"`

	BirthYear  *int64 `json:"birth_year,omitempty"`
	BirthMonth *int64 `json:"birth_month,omitempty"`
	BirthDay   *int64 `json:"birth_day,omitempty"`

	ColorMain string `json:"color_main,omitempty"`
	ColorSub  string `json:"color_sub,omitempty"`
	Height    *int64 `json:"height,omitempty"`

	// Cards in load order, not guaranteed sorted.
	Cards []*Card `json:"cards"`
}

// DisplayName resolves the character's name through the fallback chain.
// It never returns an empty string.
func (c *Character) DisplayName() string {
	if c.NameEN != "" {
		return c.NameEN
	}
	if c.NameJP != "" {
		return c.NameJP
	}
	return fmt.Sprintf("Character %d", c.ID)
}

// BirthDate formats the birth date, when all components are present.
func (c *Character) BirthDate() (string, bool) {
	if c.BirthYear == nil || c.BirthMonth == nil || c.BirthDay == nil {
		return "", false
	}
	return fmt.Sprintf("%d-%02d-%02d", *c.BirthYear, *c.BirthMonth, *c.BirthDay), true
}

// HighestRarity is the maximum rarity across the character's cards, or
// zero when it has none. Computed, never stored.
func (c *Character) HighestRarity() int {
	highest := 0
	for _, card := range c.Cards {
		if card.Rarity > highest {
			highest = card.Rarity
		}
	}
	return highest
}

const defaultThemeColor = 0xFF69B4

// ThemeColor parses the character's main color as an integer, falling
// back to the franchise pink when absent or malformed.
func (c *Character) ThemeColor() int {
	if c.ColorMain != "" {
		if v, err := strconv.ParseInt(c.ColorMain, 16, 32); err == nil {
			return int(v)
		}
	}
	return defaultThemeColor
}

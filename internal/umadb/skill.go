package umadb

import "fmt"

// SkillCategory is the snapshot's skill category code.
type SkillCategory int

const (
	CategorySpeed        SkillCategory = 1
	CategoryAcceleration SkillCategory = 2
	CategoryStamina      SkillCategory = 3
	CategoryPosition     SkillCategory = 4
	CategoryStart        SkillCategory = 5
	CategoryOvertake     SkillCategory = 6
	CategoryLaneChange   SkillCategory = 7
	CategoryBlocked      SkillCategory = 8
	CategorySpurt        SkillCategory = 9
	CategoryUnique       SkillCategory = 10
	CategoryDebuff       SkillCategory = 11
)

var skillCategoryNames = map[SkillCategory]string{
	CategorySpeed:        "Speed",
	CategoryAcceleration: "Acceleration",
	CategoryStamina:      "Stamina",
	CategoryPosition:     "Position",
	CategoryStart:        "Start",
	CategoryOvertake:     "Overtake",
	CategoryLaneChange:   "Lane Change",
	CategoryBlocked:      "Blocked",
	CategorySpurt:        "Spurt",
	CategoryUnique:       "Unique",
	CategoryDebuff:       "Debuff",
}

func (c SkillCategory) String() string {
	if s, ok := skillCategoryNames[c]; ok {
		return s
	}
	return "Unknown"
}

// Ability is one activation of a skill: up to three typed effect
// values, a duration and cooldown in seconds, and an optional
// per-trigger activation condition.
type Ability struct {
	Types     [3]int     `json:"types"`
	Values    [3]float64 `json:"values"`
	Duration  float64    `json:"duration"`
	Cooldown  float64    `json:"cooldown"`
	Condition string     `json:"condition,omitempty"`
}

// Skill is one skill row from the snapshot. The same display name can
// exist at several rarity/grade variants; quality ordering is by
// (rarity, grade value) descending with ties broken by load order.
type Skill struct {
	ID int64 `json:"id"`

	NameEN string `json:"name_en,omitempty"`
	NameJP string `json:"name_jp,omitempty"`

	Rarity     int           `json:"rarity"`
	GradeValue int           `json:"grade_value"`
	Category   SkillCategory `json:"category"`

	Description string `json:"description,omitempty"`
	Condition   string `json:"condition,omitempty"`
	IconID      int64  `json:"icon_id"`

	CharacterUnique bool `json:"character_unique"`

	// Zero to two ability records.
	Abilities []Ability `json:"abilities"`

	// seq is the load order, used as the final tie-break in the
	// quality ordering so it is total and stable.
	seq int
}

// DisplayName resolves the skill name through the fallback chain,
// never empty.
func (s *Skill) DisplayName() string {
	if s.NameEN != "" {
		return s.NameEN
	}
	if s.NameJP != "" {
		return s.NameJP
	}
	return fmt.Sprintf("Skill %d", s.ID)
}

// RarityStars renders the rarity tier as stars ("N" for common).
func (s *Skill) RarityStars() string {
	return rarityStars(s.Rarity)
}

// IsUnique reports whether the skill sits in the unique category.
func (s *Skill) IsUnique() bool {
	return s.Category == CategoryUnique
}

// IsDebuff reports whether the skill is a debuff.
func (s *Skill) IsDebuff() bool {
	return s.Category == CategoryDebuff
}

// betterThan is the skill quality total order: rarity descending, then
// grade value descending, then load order.
func (s *Skill) betterThan(other *Skill) bool {
	if s.Rarity != other.Rarity {
		return s.Rarity > other.Rarity
	}
	if s.GradeValue != other.GradeValue {
		return s.GradeValue > other.GradeValue
	}
	return s.seq < other.seq
}

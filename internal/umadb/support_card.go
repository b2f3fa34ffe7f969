package umadb

import "strings"

// TrainingType is the training focus of a support card, derived from
// the snapshot's command id.
type TrainingType int

const (
	TrainingPal     TrainingType = 0
	TrainingSpeed   TrainingType = 101
	TrainingPower   TrainingType = 102
	TrainingGuts    TrainingType = 103
	TrainingStamina TrainingType = 105
	TrainingWit     TrainingType = 106
)

var trainingTypeNames = map[TrainingType]string{
	TrainingPal:     "Pal",
	TrainingSpeed:   "Speed",
	TrainingPower:   "Power",
	TrainingGuts:    "Guts",
	TrainingStamina: "Stamina",
	TrainingWit:     "Wit",
}

func (t TrainingType) String() string {
	if s, ok := trainingTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// TrainingTypeByName maps a type name back to its code,
// case-insensitively.
func TrainingTypeByName(name string) (TrainingType, bool) {
	for t, n := range trainingTypeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return 0, false
}

// SupportCard is one support card from the snapshot. The owning
// character is recorded by name only; support cards and characters are
// loaded by independent managers.
type SupportCard struct {
	ID      int64 `json:"id"`
	CharaID int64 `json:"chara_id"`

	CharacterName string `json:"character_name"`

	Rarity   int          `json:"rarity"`
	Training TrainingType `json:"training"`
	CardType int          `json:"card_type"`

	// Opaque foreign ids, not resolved by this layer.
	SkillSetID     *int64 `json:"skill_set_id,omitempty"`
	EffectTableID  *int64 `json:"effect_table_id,omitempty"`
	UniqueEffectID *int64 `json:"unique_effect_id,omitempty"`
}

// RarityStars renders the rarity tier as stars.
func (s *SupportCard) RarityStars() string {
	return rarityStars(s.Rarity)
}

// IsSSR reports whether the card sits in the highest rarity tier.
func (s *SupportCard) IsSSR() bool {
	return s.Rarity == 3
}

// IsPal reports whether the card is a pal (friendship) card.
func (s *SupportCard) IsPal() bool {
	return s.Training == TrainingPal
}

package umadb

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iyZAIRI/tazuna-bot/internal/masterdb"
)

// Character-unique skills are the slot-one skills of max-rarity skill
// sets; the skill rows themselves don't carry the flag.
const characterUniqueSkillQuery = `
SELECT DISTINCT ss.skill_id1
FROM card_rarity_data cr
JOIN skill_set ss ON cr.skill_set = ss.id
WHERE cr.rarity = 3 AND ss.skill_id1 > 0`

const skillQuery = `
SELECT
    s.id,
    s.rarity,
    s.grade_value,
    s.skill_category,
    s.condition_1,
    s.condition_2,
    s.icon_id,
    s.float_ability_time_1,
    s.float_cooldown_time_1,
    s.ability_type_1_1,
    s.ability_type_1_2,
    s.ability_type_1_3,
    s.float_ability_value_1_1,
    s.float_ability_value_1_2,
    s.float_ability_value_1_3,
    s.float_ability_time_2,
    s.float_cooldown_time_2,
    s.ability_type_2_1,
    s.ability_type_2_2,
    s.ability_type_2_3,
    s.float_ability_value_2_1,
    s.float_ability_value_2_2,
    s.float_ability_value_2_3,
    t1.text AS name,
    t2.text AS description
FROM skill_data s
LEFT JOIN text_data t1 ON t1.category = 47 AND t1.[index] = s.id
LEFT JOIN text_data t2 ON t2.category = 48 AND t2.[index] = s.id
WHERE s.rarity > 0
ORDER BY s.rarity DESC, s.grade_value DESC`

// Snapshot ability values and times are fixed-point with four decimal
// places.
const abilityScale = 10000.0

// SkillManager loads skills from the snapshot once and serves all
// lookups from memory.
type SkillManager struct {
	db *masterdb.Reader

	// mu guards the load transition and every collection access; a
	// retried load repopulates the maps in place, so reads must hold
	// it too.
	mu     sync.Mutex
	loaded bool
	skills map[int64]*Skill
	order  []int64
	names  *nameIndex
}

// NewSkillManager creates a manager over the snapshot at dbPath.
func NewSkillManager(dbPath string) *SkillManager {
	return &SkillManager{
		db:     masterdb.New(dbPath),
		skills: make(map[int64]*Skill),
		names:  newNameIndex(),
	}
}

// Load populates the in-memory collection, at most once. On a connect
// failure the manager stays unloaded and may retry later.
func (m *SkillManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *SkillManager) loadLocked() error {
	if m.loaded {
		return nil
	}

	if err := m.db.Connect(); err != nil {
		log.Error().Err(err).Msg("Failed to connect to snapshot for skills")
		return err
	}

	uniques := make(map[int64]bool)
	for _, row := range m.db.Query(characterUniqueSkillQuery) {
		if id, ok := row.Int("skill_id1"); ok {
			uniques[id] = true
		}
	}

	for _, row := range m.db.Query(skillQuery) {
		id, ok := row.Int("id")
		if !ok {
			continue
		}

		// The snapshot carries one language; both name fields get
		// the same text row.
		name := row.TextOr("name", "")
		skill := &Skill{
			ID:              id,
			NameEN:          name,
			NameJP:          name,
			Rarity:          int(row.IntOr("rarity", 0)),
			GradeValue:      int(row.IntOr("grade_value", 0)),
			Category:        SkillCategory(row.IntOr("skill_category", 0)),
			Description:     row.TextOr("description", ""),
			Condition:       row.TextOr("condition_1", ""),
			IconID:          row.IntOr("icon_id", 0),
			CharacterUnique: uniques[id],
			seq:             len(m.order),
		}
		if a, ok := abilityFromRow(row, 1, "condition_1"); ok {
			skill.Abilities = append(skill.Abilities, a)
		}
		if a, ok := abilityFromRow(row, 2, "condition_2"); ok {
			skill.Abilities = append(skill.Abilities, a)
		}

		m.skills[id] = skill
		m.order = append(m.order, id)
		m.names.add(skill.DisplayName(), id)
	}

	m.loaded = true
	log.Info().
		Int("skills", len(m.skills)).
		Int("character_uniques", len(uniques)).
		Msg("Loaded skills")
	return nil
}

// abilityFromRow assembles ability slot 1 or 2; absent when the slot's
// first type code is missing or zero.
func abilityFromRow(row masterdb.Row, slot int, conditionCol string) (Ability, bool) {
	primary, ok := row.Int(fmt.Sprintf("ability_type_%d_1", slot))
	if !ok || primary <= 0 {
		return Ability{}, false
	}

	a := Ability{
		Duration:  row.FloatOr(fmt.Sprintf("float_ability_time_%d", slot), 0) / abilityScale,
		Cooldown:  row.FloatOr(fmt.Sprintf("float_cooldown_time_%d", slot), 0) / abilityScale,
		Condition: row.TextOr(conditionCol, ""),
	}
	for i := 0; i < 3; i++ {
		a.Types[i] = int(row.IntOr(fmt.Sprintf("ability_type_%d_%d", slot, i+1), 0))
		a.Values[i] = row.FloatOr(fmt.Sprintf("float_ability_value_%d_%d", slot, i+1), 0) / abilityScale
	}
	return a, true
}

// GetByID returns the skill with the given id.
func (m *SkillManager) GetByID(id int64) (*Skill, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	skill, ok := m.skills[id]
	return skill, ok
}

// GetByName resolves a skill by name (exact case-insensitive match
// first, then shortest substring match). When several variants share
// the resolved name, the highest-quality one is returned.
func (m *SkillManager) GetByName(name string) (*Skill, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	ids := m.names.resolve(name)
	if len(ids) == 0 {
		return nil, false
	}
	return m.bestOf(ids), true
}

// bestOf picks the highest-quality skill among ids. Callers hold m.mu.
func (m *SkillManager) bestOf(ids []int64) *Skill {
	var best *Skill
	for _, id := range ids {
		skill := m.skills[id]
		if skill == nil {
			continue
		}
		if best == nil || skill.betterThan(best) {
			best = skill
		}
	}
	return best
}

// Search returns skills whose name contains the query, collapsed to one
// entry per distinct display name (the highest-quality variant), sorted
// by quality descending.
func (m *SkillManager) Search(query string) []*Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()

	bestByName := make(map[string]*Skill)
	for _, id := range m.names.matches(query) {
		skill := m.skills[id]
		if skill == nil {
			continue
		}
		key := strings.ToLower(skill.DisplayName())
		if current, ok := bestByName[key]; !ok || skill.betterThan(current) {
			bestByName[key] = skill
		}
	}

	results := make([]*Skill, 0, len(bestByName))
	for _, skill := range bestByName {
		results = append(results, skill)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].betterThan(results[j])
	})
	return results
}

// allLocked returns every skill in load order. Callers hold m.mu.
func (m *SkillManager) allLocked() []*Skill {
	results := make([]*Skill, 0, len(m.order))
	for _, id := range m.order {
		results = append(results, m.skills[id])
	}
	return results
}

// GetAll returns every skill in load order.
func (m *SkillManager) GetAll() []*Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	return m.allLocked()
}

// GetByRarity returns skills of the given rarity tier.
func (m *SkillManager) GetByRarity(rarity int) []*Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Skill
	for _, id := range m.order {
		if skill := m.skills[id]; skill.Rarity == rarity {
			results = append(results, skill)
		}
	}
	return results
}

// GetByCategory returns skills in the given category.
func (m *SkillManager) GetByCategory(category SkillCategory) []*Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Skill
	for _, id := range m.order {
		if skill := m.skills[id]; skill.Category == category {
			results = append(results, skill)
		}
	}
	return results
}

// GetTop returns the n highest-quality skills, fewer if fewer exist.
// n <= 0 yields an empty result.
func (m *SkillManager) GetTop(n int) []*Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	if n <= 0 {
		return nil
	}

	sorted := m.allLocked()
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].betterThan(sorted[j])
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// GetRandom returns a uniformly random skill.
func (m *SkillManager) GetRandom() (*Skill, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	if len(m.order) == 0 {
		return nil, false
	}
	return m.skills[m.order[rand.IntN(len(m.order))]], true
}

// Count returns the number of loaded skills.
func (m *SkillManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	return len(m.skills)
}

// Close releases the snapshot handle. Loaded data remains readable.
func (m *SkillManager) Close() {
	m.db.Close()
}

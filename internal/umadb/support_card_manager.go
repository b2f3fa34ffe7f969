package umadb

import (
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iyZAIRI/tazuna-bot/internal/masterdb"
)

const supportCardQuery = `
SELECT
    sc.id,
    sc.chara_id,
    sc.rarity,
    sc.command_id,
    sc.support_card_type,
    sc.skill_set_id,
    sc.effect_table_id,
    sc.unique_effect_id,
    t.text AS chara_name
FROM support_card_data sc
LEFT JOIN text_data t ON t.category = 6 AND t.[index] = sc.chara_id
ORDER BY sc.rarity DESC, sc.command_id, sc.id`

// SupportCardManager loads support cards from the snapshot once and
// serves all lookups from memory.
type SupportCardManager struct {
	db *masterdb.Reader

	// mu guards the load transition and every collection access; a
	// retried load repopulates the maps in place, so reads must hold
	// it too.
	mu     sync.Mutex
	loaded bool
	cards  map[int64]*SupportCard
	order  []int64
	names  *nameIndex
}

// NewSupportCardManager creates a manager over the snapshot at dbPath.
func NewSupportCardManager(dbPath string) *SupportCardManager {
	return &SupportCardManager{
		db:    masterdb.New(dbPath),
		cards: make(map[int64]*SupportCard),
		names: newNameIndex(),
	}
}

// Load populates the in-memory collection, at most once. On a connect
// failure the manager stays unloaded and may retry later.
func (m *SupportCardManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *SupportCardManager) loadLocked() error {
	if m.loaded {
		return nil
	}

	if err := m.db.Connect(); err != nil {
		log.Error().Err(err).Msg("Failed to connect to snapshot for support cards")
		return err
	}

	for _, row := range m.db.Query(supportCardQuery) {
		id, ok := row.Int("id")
		if !ok {
			continue
		}

		card := &SupportCard{
			ID:             id,
			CharaID:        row.IntOr("chara_id", 0),
			CharacterName:  row.TextOr("chara_name", "Unknown"),
			Rarity:         int(row.IntOr("rarity", 0)),
			Training:       TrainingType(row.IntOr("command_id", 0)),
			CardType:       int(row.IntOr("support_card_type", 0)),
			SkillSetID:     row.IntPtr("skill_set_id"),
			EffectTableID:  row.IntPtr("effect_table_id"),
			UniqueEffectID: row.IntPtr("unique_effect_id"),
		}
		m.cards[id] = card
		m.order = append(m.order, id)
		if name, ok := row.Text("chara_name"); ok {
			m.names.add(name, id)
		}
	}

	m.loaded = true
	log.Info().Int("support_cards", len(m.cards)).Msg("Loaded support cards")
	return nil
}

// GetByID returns the support card with the given id.
func (m *SupportCardManager) GetByID(id int64) (*SupportCard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	card, ok := m.cards[id]
	return card, ok
}

// GetByCharacterName returns all support cards whose owning character
// name contains the query, case-insensitively.
func (m *SupportCardManager) GetByCharacterName(name string) []*SupportCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*SupportCard
	for _, id := range m.names.matches(name) {
		if card, ok := m.cards[id]; ok {
			results = append(results, card)
		}
	}
	return results
}

// Search is an alias for GetByCharacterName; support cards are indexed
// by their character's name.
func (m *SupportCardManager) Search(query string) []*SupportCard {
	return m.GetByCharacterName(query)
}

// GetAll returns every support card in load order.
func (m *SupportCardManager) GetAll() []*SupportCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	results := make([]*SupportCard, 0, len(m.order))
	for _, id := range m.order {
		results = append(results, m.cards[id])
	}
	return results
}

// GetByRarity returns support cards of the given rarity tier.
func (m *SupportCardManager) GetByRarity(rarity int) []*SupportCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*SupportCard
	for _, id := range m.order {
		if card := m.cards[id]; card.Rarity == rarity {
			results = append(results, card)
		}
	}
	return results
}

// GetByType returns support cards of the given training type.
func (m *SupportCardManager) GetByType(training TrainingType) []*SupportCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*SupportCard
	for _, id := range m.order {
		if card := m.cards[id]; card.Training == training {
			results = append(results, card)
		}
	}
	return results
}

// GetByCharacterID returns support cards owned by the given character.
func (m *SupportCardManager) GetByCharacterID(charaID int64) []*SupportCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*SupportCard
	for _, id := range m.order {
		if card := m.cards[id]; card.CharaID == charaID {
			results = append(results, card)
		}
	}
	return results
}

// GetSSRCards returns all cards in the highest rarity tier.
func (m *SupportCardManager) GetSSRCards() []*SupportCard {
	return m.GetByRarity(3)
}

// GetPalCards returns all pal cards.
func (m *SupportCardManager) GetPalCards() []*SupportCard {
	return m.GetByType(TrainingPal)
}

// GetRandom returns a uniformly random support card.
func (m *SupportCardManager) GetRandom() (*SupportCard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	if len(m.order) == 0 {
		return nil, false
	}
	return m.cards[m.order[rand.IntN(len(m.order))]], true
}

// Count returns the number of loaded support cards.
func (m *SupportCardManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	return len(m.cards)
}

// Close releases the snapshot handle. Loaded data remains readable.
func (m *SupportCardManager) Close() {
	m.db.Close()
}

package umadb

import (
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iyZAIRI/tazuna-bot/internal/masterdb"
)

const characterQuery = `
SELECT
    c.id AS card_id,
    c.chara_id,
    c.default_rarity,
    c.running_style,
    c.talent_speed,
    c.talent_stamina,
    c.talent_pow,
    c.talent_guts,
    c.talent_wiz,
    c.proper_ground_turf,
    c.proper_ground_dirt,
    c.proper_distance_short,
    c.proper_distance_mile,
    c.proper_distance_middle,
    c.proper_distance_long,
    c.proper_running_style_nige,
    c.proper_running_style_senko,
    c.proper_running_style_sashi,
    c.proper_running_style_oikomi,
    cd.birth_year,
    cd.birth_month,
    cd.birth_day,
    cd.image_color_main,
    cd.image_color_sub,
    cd.height,
    t.text AS name
FROM card_data c
JOIN chara_data cd ON c.chara_id = cd.id
LEFT JOIN text_data t ON t.category = 6 AND t.[index] = c.chara_id
WHERE c.default_rarity > 0
ORDER BY c.chara_id, c.default_rarity DESC`

const cardStatsQuery = `
SELECT card_id, rarity, speed, stamina, pow, guts, wiz
FROM card_rarity_data
ORDER BY card_id, rarity`

// CharacterManager loads characters and their cards from the snapshot
// once and serves all lookups from memory.
type CharacterManager struct {
	db *masterdb.Reader

	// mu guards the load transition and every collection access; a
	// retried load repopulates the maps in place, so reads must hold
	// it too.
	mu         sync.Mutex
	loaded     bool
	characters map[int64]*Character
	order      []int64
	names      *nameIndex
}

// NewCharacterManager creates a manager over the snapshot at dbPath.
// Nothing is read until the first access.
func NewCharacterManager(dbPath string) *CharacterManager {
	return &CharacterManager{
		db:         masterdb.New(dbPath),
		characters: make(map[int64]*Character),
		names:      newNameIndex(),
	}
}

// Load populates the in-memory collection. Safe to call repeatedly; a
// successful load is performed at most once. On a connect failure the
// manager stays unloaded and a later call may retry.
func (m *CharacterManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *CharacterManager) loadLocked() error {
	if m.loaded {
		return nil
	}

	if err := m.db.Connect(); err != nil {
		log.Error().Err(err).Msg("Failed to connect to snapshot for characters")
		return err
	}

	stats := m.loadCardStats()

	for _, row := range m.db.Query(characterQuery) {
		charaID, ok := row.Int("chara_id")
		if !ok {
			continue
		}

		char := m.characters[charaID]
		if char == nil {
			// The snapshot carries one language; both name fields
			// get the same text row.
			name, _ := row.Text("name")
			char = &Character{
				ID:         charaID,
				NameEN:     name,
				NameJP:     name,
				BirthYear:  row.IntPtr("birth_year"),
				BirthMonth: row.IntPtr("birth_month"),
				BirthDay:   row.IntPtr("birth_day"),
				ColorMain:  row.TextOr("image_color_main", ""),
				ColorSub:   row.TextOr("image_color_sub", ""),
				Height:     row.IntPtr("height"),
			}
			m.characters[charaID] = char
			m.order = append(m.order, charaID)
			m.names.add(char.DisplayName(), charaID)
		}

		card := &Card{
			ID:            row.IntOr("card_id", 0),
			CharaID:       charaID,
			Rarity:        int(row.IntOr("default_rarity", 0)),
			RunningStyle:  RunningStyle(row.IntOr("running_style", 0)),
			TalentSpeed:   int(row.IntOr("talent_speed", 0)),
			TalentStamina: int(row.IntOr("talent_stamina", 0)),
			TalentPower:   int(row.IntOr("talent_pow", 0)),
			TalentGuts:    int(row.IntOr("talent_guts", 0)),
			TalentWit:     int(row.IntOr("talent_wiz", 0)),
			Aptitudes:     aptitudesFromRow(row),
		}
		if s, ok := stats[card.ID]; ok {
			card.BaseStats = s.base
			card.MaxStats = s.max
		}
		char.Cards = append(char.Cards, card)
	}

	m.loaded = true
	log.Info().Int("characters", len(m.characters)).Msg("Loaded characters")
	return nil
}

type cardStats struct {
	base *StatBlock
	max  *StatBlock
}

// loadCardStats reads per-rarity base stats; the lowest rarity row is
// the card's default block and the highest its maximum.
func (m *CharacterManager) loadCardStats() map[int64]*cardStats {
	stats := make(map[int64]*cardStats)
	for _, row := range m.db.Query(cardStatsQuery) {
		cardID, ok := row.Int("card_id")
		if !ok {
			continue
		}
		block := &StatBlock{
			Speed:   int(row.IntOr("speed", 0)),
			Stamina: int(row.IntOr("stamina", 0)),
			Power:   int(row.IntOr("pow", 0)),
			Guts:    int(row.IntOr("guts", 0)),
			Wit:     int(row.IntOr("wiz", 0)),
		}
		s := stats[cardID]
		if s == nil {
			s = &cardStats{base: block}
			stats[cardID] = s
		}
		s.max = block
	}
	return stats
}

// aptitudesFromRow maps the proper_* columns; nil when every grade is
// missing, so absent snapshot data stays visibly absent.
func aptitudesFromRow(row masterdb.Row) *Aptitudes {
	apt := &Aptitudes{
		Turf:        Grade(row.IntOr("proper_ground_turf", 0)),
		Dirt:        Grade(row.IntOr("proper_ground_dirt", 0)),
		Sprint:      Grade(row.IntOr("proper_distance_short", 0)),
		Mile:        Grade(row.IntOr("proper_distance_mile", 0)),
		Middle:      Grade(row.IntOr("proper_distance_middle", 0)),
		Long:        Grade(row.IntOr("proper_distance_long", 0)),
		FrontRunner: Grade(row.IntOr("proper_running_style_nige", 0)),
		PaceChaser:  Grade(row.IntOr("proper_running_style_senko", 0)),
		LateSurger:  Grade(row.IntOr("proper_running_style_sashi", 0)),
		EndCloser:   Grade(row.IntOr("proper_running_style_oikomi", 0)),
	}
	if *apt == (Aptitudes{}) {
		return nil
	}
	return apt
}

// GetByID returns the character with the given id.
func (m *CharacterManager) GetByID(id int64) (*Character, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	char, ok := m.characters[id]
	return char, ok
}

// GetByName resolves a character by name: exact case-insensitive match
// first, then the shortest indexed name containing the query.
func (m *CharacterManager) GetByName(name string) (*Character, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	ids := m.names.resolve(name)
	if len(ids) == 0 {
		return nil, false
	}
	char, ok := m.characters[ids[0]]
	return char, ok
}

// Search returns all characters whose name contains the query,
// case-insensitively.
func (m *CharacterManager) Search(query string) []*Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Character
	for _, id := range m.names.matches(query) {
		if char, ok := m.characters[id]; ok {
			results = append(results, char)
		}
	}
	return results
}

// GetAll returns every character in load order.
func (m *CharacterManager) GetAll() []*Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	results := make([]*Character, 0, len(m.order))
	for _, id := range m.order {
		results = append(results, m.characters[id])
	}
	return results
}

// GetByRarity returns characters owning at least one card of the given
// rarity.
func (m *CharacterManager) GetByRarity(rarity int) []*Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Character
	for _, id := range m.order {
		char := m.characters[id]
		for _, card := range char.Cards {
			if card.Rarity == rarity {
				results = append(results, char)
				break
			}
		}
	}
	return results
}

// GetRandom returns a uniformly random character.
func (m *CharacterManager) GetRandom() (*Character, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	if len(m.order) == 0 {
		return nil, false
	}
	return m.characters[m.order[rand.IntN(len(m.order))]], true
}

// Count returns the number of loaded characters.
func (m *CharacterManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	return len(m.characters)
}

// Close releases the snapshot handle. Loaded data remains readable.
func (m *CharacterManager) Close() {
	m.db.Close()
}

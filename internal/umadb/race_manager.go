package umadb

import (
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iyZAIRI/tazuna-bot/internal/masterdb"
)

const raceQuery = `
SELECT
    r.id,
    r.grade,
    rcs.distance,
    rcs.ground,
    rcs.race_track_id AS track_id,
    t.text AS name
FROM race r
LEFT JOIN race_course_set rcs ON r.course_set = rcs.id
LEFT JOIN text_data t ON t.category = 30 AND t.[index] = r.id
WHERE r.grade > 0 AND rcs.distance IS NOT NULL
ORDER BY r.grade DESC, rcs.distance`

// RaceManager loads races from the snapshot once and serves all
// lookups from memory.
type RaceManager struct {
	db *masterdb.Reader

	// mu guards the load transition and every collection access; a
	// retried load repopulates the maps in place, so reads must hold
	// it too.
	mu     sync.Mutex
	loaded bool
	races  map[int64]*Race
	order  []int64
	names  *nameIndex
}

// NewRaceManager creates a manager over the snapshot at dbPath.
func NewRaceManager(dbPath string) *RaceManager {
	return &RaceManager{
		db:    masterdb.New(dbPath),
		races: make(map[int64]*Race),
		names: newNameIndex(),
	}
}

// Load populates the in-memory collection, at most once. On a connect
// failure the manager stays unloaded and may retry later.
func (m *RaceManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *RaceManager) loadLocked() error {
	if m.loaded {
		return nil
	}

	if err := m.db.Connect(); err != nil {
		log.Error().Err(err).Msg("Failed to connect to snapshot for races")
		return err
	}

	for _, row := range m.db.Query(raceQuery) {
		id, ok := row.Int("id")
		if !ok {
			continue
		}

		// The snapshot carries one language; both name fields get
		// the same text row.
		name := row.TextOr("name", "")
		race := &Race{
			ID:       id,
			NameEN:   name,
			NameJP:   name,
			Grade:    RaceGrade(row.IntOr("grade", 0)),
			Distance: int(row.IntOr("distance", 0)),
			Ground:   Ground(row.IntOr("ground", 0)),
			TrackID:  row.IntOr("track_id", 0),
		}
		m.races[id] = race
		m.order = append(m.order, id)
		m.names.add(race.DisplayName(), id)
	}

	m.loaded = true
	log.Info().Int("races", len(m.races)).Msg("Loaded races")
	return nil
}

// GetByID returns the race with the given id.
func (m *RaceManager) GetByID(id int64) (*Race, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	race, ok := m.races[id]
	return race, ok
}

// GetByName resolves a race by name: exact case-insensitive match
// first, then the shortest indexed name containing the query.
func (m *RaceManager) GetByName(name string) (*Race, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	ids := m.names.resolve(name)
	if len(ids) == 0 {
		return nil, false
	}
	race, ok := m.races[ids[0]]
	return race, ok
}

// Search returns all races whose name contains the query,
// case-insensitively.
func (m *RaceManager) Search(query string) []*Race {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Race
	for _, id := range m.names.matches(query) {
		if race, ok := m.races[id]; ok {
			results = append(results, race)
		}
	}
	return results
}

// GetAll returns every race in load order.
func (m *RaceManager) GetAll() []*Race {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	results := make([]*Race, 0, len(m.order))
	for _, id := range m.order {
		results = append(results, m.races[id])
	}
	return results
}

// GetByGrade returns races of the given grade tier.
func (m *RaceManager) GetByGrade(grade RaceGrade) []*Race {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Race
	for _, id := range m.order {
		if race := m.races[id]; race.Grade == grade {
			results = append(results, race)
		}
	}
	return results
}

// GetByGround returns races on the given surface.
func (m *RaceManager) GetByGround(ground Ground) []*Race {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Race
	for _, id := range m.order {
		if race := m.races[id]; race.Ground == ground {
			results = append(results, race)
		}
	}
	return results
}

// GetByDistanceRange returns races with min <= distance <= max.
func (m *RaceManager) GetByDistanceRange(min, max int) []*Race {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	var results []*Race
	for _, id := range m.order {
		if race := m.races[id]; race.Distance >= min && race.Distance <= max {
			results = append(results, race)
		}
	}
	return results
}

// GetG1Races returns all G1 races.
func (m *RaceManager) GetG1Races() []*Race {
	return m.GetByGrade(GradeG1)
}

// GetRandom returns a uniformly random race.
func (m *RaceManager) GetRandom() (*Race, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	if len(m.order) == 0 {
		return nil, false
	}
	return m.races[m.order[rand.IntN(len(m.order))]], true
}

// Count returns the number of loaded races.
func (m *RaceManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.loadLocked()
	return len(m.races)
}

// Close releases the snapshot handle. Loaded data remains readable.
func (m *RaceManager) Close() {
	m.db.Close()
}

package umadb

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestCharacterManagerLoad(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	if err := m.Load(); err != nil {
		t.Fatalf("failed to load characters: %v", err)
	}
	if got := m.Count(); got != 4 {
		t.Fatalf("expected 4 characters, got %d", got)
	}

	char, ok := m.GetByID(100)
	if !ok {
		t.Fatal("expected character 100 to exist")
	}
	if char.DisplayName() != "Special Week" {
		t.Fatalf("unexpected display name %q", char.DisplayName())
	}
	if char.NameJP != "Special Week" {
		t.Fatalf("unexpected JP name %q", char.NameJP)
	}
	if len(char.Cards) != 2 {
		t.Fatalf("expected 2 cards for character 100, got %d", len(char.Cards))
	}
	if got := char.HighestRarity(); got != 3 {
		t.Fatalf("expected highest rarity 3, got %d", got)
	}

	date, ok := char.BirthDate()
	if !ok || date != "1998-05-02" {
		t.Fatalf("unexpected birth date %q (ok=%v)", date, ok)
	}
	if char.ThemeColor() != 0xFF99CC {
		t.Fatalf("unexpected theme color %#x", char.ThemeColor())
	}
}

func TestCharacterManagerCardDetails(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	char, ok := m.GetByID(100)
	if !ok {
		t.Fatal("expected character 100 to exist")
	}

	var card *Card
	for _, c := range char.Cards {
		if c.ID == 100101 {
			card = c
		}
	}
	if card == nil {
		t.Fatal("expected card 100101 to exist")
	}

	if card.BaseStats == nil || card.MaxStats == nil {
		t.Fatal("expected stat blocks for card 100101")
	}
	if card.BaseStats.Speed != 77 {
		t.Fatalf("expected base speed 77, got %d", card.BaseStats.Speed)
	}
	if card.MaxStats.Speed != 120 {
		t.Fatalf("expected max speed 120, got %d", card.MaxStats.Speed)
	}

	if card.Aptitudes == nil {
		t.Fatal("expected aptitudes for card 100101")
	}
	if card.Aptitudes.Turf.String() != "A" {
		t.Fatalf("expected turf grade A, got %q", card.Aptitudes.Turf.String())
	}
	if card.Aptitudes.Dirt.String() != "G" {
		t.Fatalf("expected dirt grade G, got %q", card.Aptitudes.Dirt.String())
	}
	if card.RunningStyle != StylePaceChaser {
		t.Fatalf("unexpected running style %v", card.RunningStyle)
	}
}

func TestCharacterManagerExcludesZeroRarityCards(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	for _, char := range m.GetAll() {
		if len(char.Cards) == 0 {
			t.Fatalf("character %d loaded without cards", char.ID)
		}
		for _, card := range char.Cards {
			if card.Rarity <= 0 {
				t.Fatalf("card %d loaded with rarity %d", card.ID, card.Rarity)
			}
		}
	}
}

func TestCharacterManagerNameFallback(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	char, ok := m.GetByID(103)
	if !ok {
		t.Fatal("expected character 103 to exist")
	}
	if got := char.DisplayName(); got != "Character 103" {
		t.Fatalf("unexpected fallback name %q", got)
	}
	if card := char.Cards[0]; card.Aptitudes != nil {
		t.Fatal("expected nil aptitudes for all-zero grade row")
	}
}

func TestCharacterManagerGetByName(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	// Exact match is case-insensitive.
	char, ok := m.GetByName("special week")
	if !ok || char.ID != 100 {
		t.Fatalf("expected character 100 for exact match, got %+v (ok=%v)", char, ok)
	}

	// Substring match falls back to the shortest containing name.
	char, ok = m.GetByName("special")
	if !ok || char.ID != 102 {
		t.Fatalf("expected character 102 for substring match, got %+v (ok=%v)", char, ok)
	}

	if _, ok := m.GetByName("nonexistent"); ok {
		t.Fatal("expected no match for unknown name")
	}
}

func TestCharacterManagerSearch(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	results := m.Search("special")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != 102 || results[1].ID != 100 {
		t.Fatalf("unexpected search order: %d, %d", results[0].ID, results[1].ID)
	}

	if got := m.Search("zzz"); len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}

func TestCharacterManagerGetByRarity(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	results := m.GetByRarity(3)
	if len(results) != 1 || results[0].ID != 100 {
		t.Fatalf("unexpected rarity 3 results: %+v", results)
	}
}

func TestCharacterManagerLoadIdempotent(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	if err := m.Load(); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	before := m.Count()
	cards := len(mustGetCharacter(t, m, 100).Cards)

	if err := m.Load(); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if got := m.Count(); got != before {
		t.Fatalf("count changed on reload: %d -> %d", before, got)
	}
	if got := len(mustGetCharacter(t, m, 100).Cards); got != cards {
		t.Fatalf("card count changed on reload: %d -> %d", cards, got)
	}
}

func mustGetCharacter(t *testing.T, m *CharacterManager, id int64) *Character {
	t.Helper()
	char, ok := m.GetByID(id)
	if !ok {
		t.Fatalf("expected character %d to exist", id)
	}
	return char
}

func TestCharacterManagerMissingSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.mdb")
	m := NewCharacterManager(path)
	defer m.Close()

	if err := m.Load(); err == nil {
		t.Fatal("expected load error for missing snapshot")
	}
	if _, ok := m.GetByName("special week"); ok {
		t.Fatal("expected no results before snapshot exists")
	}
	if got := m.Count(); got != 0 {
		t.Fatalf("expected 0 characters, got %d", got)
	}

	// A failed load leaves the manager retryable.
	createSnapshotAt(t, path)
	if err := m.Load(); err != nil {
		t.Fatalf("retry load failed: %v", err)
	}
	if got := m.Count(); got != 4 {
		t.Fatalf("expected 4 characters after retry, got %d", got)
	}
}

// Readers that observe a failed load must stay safe while a concurrent
// retry repopulates the collections.
func TestCharacterManagerConcurrentRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.mdb")
	staged := filepath.Join(dir, "staged.mdb")
	createSnapshotAt(t, staged)

	m := NewCharacterManager(path)
	defer m.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m.GetByID(100)
				m.Search("special")
				m.Count()
			}
		}()
	}

	// The snapshot appears after the readers have started failing.
	if err := os.Rename(staged, path); err != nil {
		t.Fatalf("failed to move snapshot into place: %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("retry load failed: %v", err)
	}
	close(stop)
	wg.Wait()

	if got := m.Count(); got != 4 {
		t.Fatalf("expected 4 characters after retry, got %d", got)
	}
}

func TestCharacterManagerCloseKeepsData(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))

	if err := m.Load(); err != nil {
		t.Fatalf("failed to load characters: %v", err)
	}
	m.Close()

	if _, ok := m.GetByID(100); !ok {
		t.Fatal("expected loaded data to survive Close")
	}
	if got := m.Count(); got != 4 {
		t.Fatalf("expected 4 characters after Close, got %d", got)
	}
}

func TestCharacterManagerGetRandom(t *testing.T) {
	m := NewCharacterManager(createSnapshot(t))
	defer m.Close()

	char, ok := m.GetRandom()
	if !ok || char == nil {
		t.Fatal("expected a random character")
	}
	if _, ok := m.GetByID(char.ID); !ok {
		t.Fatalf("random character %d not in collection", char.ID)
	}
}

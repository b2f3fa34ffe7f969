package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/iyZAIRI/tazuna-bot/internal/umadb"
)

// characterView decorates a character with its derived fields for the
// wire format.
type characterView struct {
	*umadb.Character
	DisplayName   string `json:"display_name"`
	HighestRarity int    `json:"highest_rarity"`
	BirthDate     string `json:"birth_date,omitempty"`
}

func newCharacterView(c *umadb.Character) characterView {
	v := characterView{
		Character:     c,
		DisplayName:   c.DisplayName(),
		HighestRarity: c.HighestRarity(),
	}
	if date, ok := c.BirthDate(); ok {
		v.BirthDate = date
	}
	return v
}

func characterViews(chars []*umadb.Character) []characterView {
	views := make([]characterView, 0, len(chars))
	for _, c := range chars {
		views = append(views, newCharacterView(c))
	}
	return views
}

type skillView struct {
	*umadb.Skill
	DisplayName  string `json:"display_name"`
	CategoryName string `json:"category_name"`
}

func newSkillView(s *umadb.Skill) skillView {
	return skillView{
		Skill:        s,
		DisplayName:  s.DisplayName(),
		CategoryName: s.Category.String(),
	}
}

func skillViews(skills []*umadb.Skill) []skillView {
	views := make([]skillView, 0, len(skills))
	for _, s := range skills {
		views = append(views, newSkillView(s))
	}
	return views
}

type raceView struct {
	*umadb.Race
	DisplayName      string `json:"display_name"`
	GradeName        string `json:"grade_name"`
	GroundName       string `json:"ground_name"`
	DistanceCategory string `json:"distance_category"`
}

func newRaceView(r *umadb.Race) raceView {
	return raceView{
		Race:             r,
		DisplayName:      r.DisplayName(),
		GradeName:        r.Grade.String(),
		GroundName:       r.Ground.String(),
		DistanceCategory: r.DistanceCategory().String(),
	}
}

func raceViews(races []*umadb.Race) []raceView {
	views := make([]raceView, 0, len(races))
	for _, r := range races {
		views = append(views, newRaceView(r))
	}
	return views
}

type supportView struct {
	*umadb.SupportCard
	TrainingName string `json:"training_name"`
}

func newSupportView(s *umadb.SupportCard) supportView {
	return supportView{
		SupportCard:  s,
		TrainingName: s.Training.String(),
	}
}

func supportViews(cards []*umadb.SupportCard) []supportView {
	views := make([]supportView, 0, len(cards))
	for _, c := range cards {
		views = append(views, newSupportView(c))
	}
	return views
}

// Health reports loaded collection sizes.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"status":        "ok",
		"characters":    s.managers.Characters.Count(),
		"skills":        s.managers.Skills.Count(),
		"races":         s.managers.Races.Count(),
		"support_cards": s.managers.Supports.Count(),
	})
}

// ListCharacters lists characters, filtered by ?q= (substring search),
// ?name= (single best match) or ?rarity=.
func (s *Server) ListCharacters(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		char, ok := s.managers.Characters.GetByName(name)
		if !ok {
			s.jsonError(w, "character not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, newCharacterView(char))
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		s.writeJSON(w, characterViews(s.managers.Characters.Search(q)))
		return
	}

	if rarityStr := r.URL.Query().Get("rarity"); rarityStr != "" {
		rarity, err := strconv.Atoi(rarityStr)
		if err != nil {
			s.jsonError(w, "invalid rarity", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, characterViews(s.managers.Characters.GetByRarity(rarity)))
		return
	}

	s.writeJSON(w, characterViews(s.managers.Characters.GetAll()))
}

// GetCharacter returns one character by id.
func (s *Server) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.jsonError(w, "invalid character id", http.StatusBadRequest)
		return
	}
	char, ok := s.managers.Characters.GetByID(id)
	if !ok {
		s.jsonError(w, "character not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newCharacterView(char))
}

// RandomCharacter returns a uniformly random character.
func (s *Server) RandomCharacter(w http.ResponseWriter, r *http.Request) {
	char, ok := s.managers.Characters.GetRandom()
	if !ok {
		s.jsonError(w, "no characters loaded", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newCharacterView(char))
}

// ListSkills lists skills, filtered by ?q= (deduplicated substring
// search), ?name=, ?rarity= or ?category=.
func (s *Server) ListSkills(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		skill, ok := s.managers.Skills.GetByName(name)
		if !ok {
			s.jsonError(w, "skill not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, newSkillView(skill))
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		s.writeJSON(w, skillViews(s.managers.Skills.Search(q)))
		return
	}

	if rarityStr := r.URL.Query().Get("rarity"); rarityStr != "" {
		rarity, err := strconv.Atoi(rarityStr)
		if err != nil {
			s.jsonError(w, "invalid rarity", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, skillViews(s.managers.Skills.GetByRarity(rarity)))
		return
	}

	if catStr := r.URL.Query().Get("category"); catStr != "" {
		cat, err := strconv.Atoi(catStr)
		if err != nil {
			s.jsonError(w, "invalid category", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, skillViews(s.managers.Skills.GetByCategory(umadb.SkillCategory(cat))))
		return
	}

	s.writeJSON(w, skillViews(s.managers.Skills.GetAll()))
}

// TopSkills returns the ?n= highest-quality skills (default 10).
func (s *Server) TopSkills(w http.ResponseWriter, r *http.Request) {
	n := 10
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		v, err := strconv.Atoi(nStr)
		if err != nil {
			s.jsonError(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = v
	}
	s.writeJSON(w, skillViews(s.managers.Skills.GetTop(n)))
}

// GetSkill returns one skill by id.
func (s *Server) GetSkill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.jsonError(w, "invalid skill id", http.StatusBadRequest)
		return
	}
	skill, ok := s.managers.Skills.GetByID(id)
	if !ok {
		s.jsonError(w, "skill not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newSkillView(skill))
}

// RandomSkill returns a uniformly random skill.
func (s *Server) RandomSkill(w http.ResponseWriter, r *http.Request) {
	skill, ok := s.managers.Skills.GetRandom()
	if !ok {
		s.jsonError(w, "no skills loaded", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newSkillView(skill))
}

// ListRaces lists races, filtered by ?q=, ?name=, ?grade= (g1/g2/g3/
// open/pre-open or the numeric tier), ?ground= (turf/dirt) or a
// ?min=/?max= distance range.
func (s *Server) ListRaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if name := query.Get("name"); name != "" {
		race, ok := s.managers.Races.GetByName(name)
		if !ok {
			s.jsonError(w, "race not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, newRaceView(race))
		return
	}

	if q := query.Get("q"); q != "" {
		s.writeJSON(w, raceViews(s.managers.Races.Search(q)))
		return
	}

	if gradeStr := query.Get("grade"); gradeStr != "" {
		grade, ok := parseRaceGrade(gradeStr)
		if !ok {
			s.jsonError(w, "invalid grade", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, raceViews(s.managers.Races.GetByGrade(grade)))
		return
	}

	if groundStr := query.Get("ground"); groundStr != "" {
		ground, ok := parseGround(groundStr)
		if !ok {
			s.jsonError(w, "invalid ground", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, raceViews(s.managers.Races.GetByGround(ground)))
		return
	}

	if query.Get("min") != "" || query.Get("max") != "" {
		min := atoiOr(query.Get("min"), 0)
		max := atoiOr(query.Get("max"), 1<<30)
		s.writeJSON(w, raceViews(s.managers.Races.GetByDistanceRange(min, max)))
		return
	}

	s.writeJSON(w, raceViews(s.managers.Races.GetAll()))
}

// GetRace returns one race by id.
func (s *Server) GetRace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.jsonError(w, "invalid race id", http.StatusBadRequest)
		return
	}
	race, ok := s.managers.Races.GetByID(id)
	if !ok {
		s.jsonError(w, "race not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newRaceView(race))
}

// RandomRace returns a uniformly random race.
func (s *Server) RandomRace(w http.ResponseWriter, r *http.Request) {
	race, ok := s.managers.Races.GetRandom()
	if !ok {
		s.jsonError(w, "no races loaded", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newRaceView(race))
}

// ListSupports lists support cards, filtered by ?q= (character name),
// ?rarity= or ?type= (speed/power/guts/stamina/wit/pal).
func (s *Server) ListSupports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if q := query.Get("q"); q != "" {
		s.writeJSON(w, supportViews(s.managers.Supports.GetByCharacterName(q)))
		return
	}

	if rarityStr := query.Get("rarity"); rarityStr != "" {
		rarity, err := strconv.Atoi(rarityStr)
		if err != nil {
			s.jsonError(w, "invalid rarity", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, supportViews(s.managers.Supports.GetByRarity(rarity)))
		return
	}

	if typeStr := query.Get("type"); typeStr != "" {
		training, ok := parseTrainingType(typeStr)
		if !ok {
			s.jsonError(w, "invalid type", http.StatusBadRequest)
			return
		}
		s.writeJSON(w, supportViews(s.managers.Supports.GetByType(training)))
		return
	}

	s.writeJSON(w, supportViews(s.managers.Supports.GetAll()))
}

// GetSupport returns one support card by id.
func (s *Server) GetSupport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.jsonError(w, "invalid support card id", http.StatusBadRequest)
		return
	}
	card, ok := s.managers.Supports.GetByID(id)
	if !ok {
		s.jsonError(w, "support card not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newSupportView(card))
}

// RandomSupport returns a uniformly random support card.
func (s *Server) RandomSupport(w http.ResponseWriter, r *http.Request) {
	card, ok := s.managers.Supports.GetRandom()
	if !ok {
		s.jsonError(w, "no support cards loaded", http.StatusNotFound)
		return
	}
	s.writeJSON(w, newSupportView(card))
}

func parseRaceGrade(s string) (umadb.RaceGrade, bool) {
	switch strings.ToLower(s) {
	case "pre-open", "preopen", "1":
		return umadb.GradePreOpen, true
	case "open", "2":
		return umadb.GradeOpen, true
	case "g3", "3":
		return umadb.GradeG3, true
	case "g2", "4":
		return umadb.GradeG2, true
	case "g1", "5":
		return umadb.GradeG1, true
	default:
		return 0, false
	}
}

func parseGround(s string) (umadb.Ground, bool) {
	switch strings.ToLower(s) {
	case "turf", "1":
		return umadb.GroundTurf, true
	case "dirt", "2":
		return umadb.GroundDirt, true
	default:
		return 0, false
	}
}

func parseTrainingType(s string) (umadb.TrainingType, bool) {
	if code, err := strconv.Atoi(s); err == nil {
		t := umadb.TrainingType(code)
		if t.String() != "Unknown" {
			return t, true
		}
		return 0, false
	}
	return umadb.TrainingTypeByName(s)
}

func atoiOr(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// jsonError sends a JSON error response.
func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

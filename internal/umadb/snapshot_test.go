package umadb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// snapshotSchema mirrors the subset of master database tables the
// managers query.
var snapshotSchema = []string{
	`CREATE TABLE text_data (category INTEGER, "index" INTEGER, text TEXT)`,
	`CREATE TABLE chara_data (
		id INTEGER PRIMARY KEY,
		birth_year INTEGER, birth_month INTEGER, birth_day INTEGER,
		image_color_main TEXT, image_color_sub TEXT, height INTEGER)`,
	`CREATE TABLE card_data (
		id INTEGER PRIMARY KEY,
		chara_id INTEGER, default_rarity INTEGER, running_style INTEGER,
		talent_speed INTEGER, talent_stamina INTEGER, talent_pow INTEGER,
		talent_guts INTEGER, talent_wiz INTEGER,
		proper_ground_turf INTEGER, proper_ground_dirt INTEGER,
		proper_distance_short INTEGER, proper_distance_mile INTEGER,
		proper_distance_middle INTEGER, proper_distance_long INTEGER,
		proper_running_style_nige INTEGER, proper_running_style_senko INTEGER,
		proper_running_style_sashi INTEGER, proper_running_style_oikomi INTEGER)`,
	`CREATE TABLE card_rarity_data (
		card_id INTEGER, rarity INTEGER,
		speed INTEGER, stamina INTEGER, pow INTEGER, guts INTEGER, wiz INTEGER,
		skill_set INTEGER)`,
	`CREATE TABLE skill_set (id INTEGER PRIMARY KEY, skill_id1 INTEGER)`,
	`CREATE TABLE skill_data (
		id INTEGER PRIMARY KEY,
		rarity INTEGER, grade_value INTEGER, skill_category INTEGER,
		condition_1 TEXT, condition_2 TEXT, icon_id INTEGER,
		float_ability_time_1 INTEGER, float_cooldown_time_1 INTEGER,
		ability_type_1_1 INTEGER, ability_type_1_2 INTEGER, ability_type_1_3 INTEGER,
		float_ability_value_1_1 INTEGER, float_ability_value_1_2 INTEGER, float_ability_value_1_3 INTEGER,
		float_ability_time_2 INTEGER, float_cooldown_time_2 INTEGER,
		ability_type_2_1 INTEGER, ability_type_2_2 INTEGER, ability_type_2_3 INTEGER,
		float_ability_value_2_1 INTEGER, float_ability_value_2_2 INTEGER, float_ability_value_2_3 INTEGER)`,
	`CREATE TABLE support_card_data (
		id INTEGER PRIMARY KEY,
		chara_id INTEGER, rarity INTEGER, command_id INTEGER,
		support_card_type INTEGER,
		skill_set_id INTEGER, effect_table_id INTEGER, unique_effect_id INTEGER)`,
	`CREATE TABLE race (id INTEGER PRIMARY KEY, grade INTEGER, course_set INTEGER)`,
	`CREATE TABLE race_course_set (
		id INTEGER PRIMARY KEY, distance INTEGER, ground INTEGER, race_track_id INTEGER)`,
}

var snapshotFixture = []string{
	// Character names (category 6), skill names (47) and descriptions
	// (48), race names (30). Character 103 deliberately has no name.
	`INSERT INTO text_data (category, "index", text) VALUES
		(6, 100, 'Special Week'),
		(6, 101, 'Silence Suzuka'),
		(6, 102, 'Air Special'),
		(47, 2001, 'Professor of Curvature'),
		(47, 2002, 'Professor of Curvature'),
		(47, 2003, 'Corner Recovery'),
		(47, 2100, 'Shooting Star'),
		(48, 2001, 'Moves through corners efficiently.'),
		(30, 3001, 'Japan Cup'),
		(30, 3002, 'Japanese Derby'),
		(30, 3003, 'Sprinters Stakes'),
		(30, 3004, 'Mile Championship')`,

	`INSERT INTO chara_data (id, birth_year, birth_month, birth_day, image_color_main, image_color_sub, height) VALUES
		(100, 1998, 5, 2, 'FF99CC', '335599', 161),
		(101, 1994, 5, 1, '99CC66', NULL, 165),
		(102, NULL, NULL, NULL, NULL, NULL, NULL),
		(103, NULL, NULL, NULL, NULL, NULL, NULL)`,

	// Card 100199 has rarity 0 and must be excluded at load time.
	`INSERT INTO card_data VALUES
		(100101, 100, 3, 2, 110, 95, 90, 100, 105, 7, 1, 2, 7, 7, 6, 2, 7, 6, 1),
		(100102, 100, 1, 2,  60, 55, 50,  58,  62, 7, 1, 2, 7, 7, 6, 2, 7, 6, 1),
		(100199, 100, 0, 2,   0,  0,  0,   0,   0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		(100201, 101, 2, 1, 120, 70, 80,  65,  90, 7, 2, 5, 7, 6, 3, 7, 5, 2, 1),
		(100301, 102, 1, 3,  70, 70, 70,  70,  70, 6, 3, 4, 6, 6, 5, 3, 6, 7, 4),
		(100401, 103, 2, 4,  80, 85, 75,  90,  70, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)`,

	`INSERT INTO card_rarity_data (card_id, rarity, speed, stamina, pow, guts, wiz, skill_set) VALUES
		(100101, 1,  77,  66,  55,  88,  99, 0),
		(100101, 3, 100,  90,  80,  95, 105, 9001),
		(100101, 5, 120, 110, 100, 115, 125, 0),
		(100201, 2,  90,  60,  70,  55,  80, 0)`,

	`INSERT INTO skill_set (id, skill_id1) VALUES (9001, 2100)`,

	// 2001/2002 share a display name at different quality tiers; 2100
	// is a character-unique skill via skill_set 9001.
	`INSERT INTO skill_data VALUES
		(2001, 1, 120, 2, 'corner==1', NULL, 20011,
			30000, 500000, 27, 0, 0, 2500, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0),
		(2002, 2, 160, 2, 'corner==1', 'corner==2', 20011,
			30000, 500000, 27, 0, 0, 3500, 0, 0,
			30000, 0, 31, 0, 0, 4000, 0, 0),
		(2003, 1, 100, 9, NULL, NULL, 20091,
			12000, 0, 9, 0, 0, 5500, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0),
		(2100, 4, 180, 10, 'phase>=2', NULL, 10011,
			50000, 0, 27, 31, 0, 3000, 2000, 0,
			0, 0, 0, 0, 0, 0, 0, 0)`,

	`INSERT INTO support_card_data VALUES
		(30001, 100, 3, 101, 1, 1, 10, 20),
		(30002, 101, 2, 105, 1, NULL, 11, NULL),
		(30003, 102, 3, 0, 2, 2, 12, 21)`,

	// Race 3099 has grade 0 and must be excluded at load time.
	`INSERT INTO race (id, grade, course_set) VALUES
		(3001, 5, 4001),
		(3002, 5, 4002),
		(3003, 3, 4003),
		(3004, 4, 4004),
		(3099, 0, 4001)`,

	`INSERT INTO race_course_set (id, distance, ground, race_track_id) VALUES
		(4001, 2400, 1, 10009),
		(4002, 2400, 1, 10005),
		(4003, 1200, 1, 10007),
		(4004, 1600, 2, 10008)`,
}

// createSnapshotAt writes the test snapshot to path.
func createSnapshotAt(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("failed to create snapshot: %v", err)
	}
	defer db.Close()

	for _, stmt := range snapshotSchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create snapshot schema: %v", err)
		}
	}
	for _, stmt := range snapshotFixture {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to populate snapshot: %v", err)
		}
	}
}

// createSnapshot builds the test snapshot in a temp directory and
// returns its path.
func createSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "master.mdb")
	createSnapshotAt(t, path)
	return path
}

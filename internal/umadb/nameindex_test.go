package umadb

import "testing"

func TestNameIndexResolve(t *testing.T) {
	ix := newNameIndex()
	ix.add("Special Week", 1)
	ix.add("Air Special", 2)
	ix.add("Silence Suzuka", 3)
	ix.add("", 4)

	// Exact match wins over substring candidates.
	if ids := ix.resolve("SPECIAL WEEK"); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("unexpected exact resolution: %v", ids)
	}

	// Substring resolution picks the shortest containing name.
	if ids := ix.resolve("special"); len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("unexpected substring resolution: %v", ids)
	}

	if ids := ix.resolve("daiwa"); ids != nil {
		t.Fatalf("expected nil for no match, got %v", ids)
	}

	// Empty names are never indexed.
	if ix.size() != 3 {
		t.Fatalf("expected 3 indexed names, got %d", ix.size())
	}
}

func TestNameIndexResolveLengthTie(t *testing.T) {
	ix := newNameIndex()
	ix.add("Vodka", 1)
	ix.add("Wodka", 2)

	// Equal-length candidates resolve lexicographically.
	if ids := ix.resolve("odka"); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("unexpected tie resolution: %v", ids)
	}
}

func TestNameIndexMatchesOrdering(t *testing.T) {
	ix := newNameIndex()
	ix.add("Special Week", 1)
	ix.add("Air Special", 2)

	ids := ix.matches("special")
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Fatalf("unexpected match order: %v", ids)
	}
}

func TestGradeString(t *testing.T) {
	if GradeA.String() != "A" || GradeG.String() != "G" {
		t.Fatal("unexpected grade letters")
	}
	if GradeUnknown.String() != "?" {
		t.Fatalf("expected ? for unknown grade, got %q", GradeUnknown.String())
	}
	if Grade(9).String() != "?" {
		t.Fatalf("expected ? for out-of-range grade, got %q", Grade(9).String())
	}
	if GradeUnknown.Known() || !GradeA.Known() {
		t.Fatal("unexpected Known results")
	}
}

func TestRarityStars(t *testing.T) {
	if got := rarityStars(0); got != "N" {
		t.Fatalf("expected N, got %q", got)
	}
	if got := rarityStars(3); got != "★★★" {
		t.Fatalf("expected three stars, got %q", got)
	}
}

package umadb

// Grade is an aptitude grade as stored in the snapshot: 1-7 where 7 is
// best. Zero (or any unmapped value) is GradeUnknown, which is kept
// distinct and never coerced to a letter.
type Grade int

const (
	GradeUnknown Grade = 0
	GradeG       Grade = 1
	GradeF       Grade = 2
	GradeE       Grade = 3
	GradeD       Grade = 4
	GradeC       Grade = 5
	GradeB       Grade = 6
	GradeA       Grade = 7
)

var gradeLetters = map[Grade]string{
	GradeA: "A",
	GradeB: "B",
	GradeC: "C",
	GradeD: "D",
	GradeE: "E",
	GradeF: "F",
	GradeG: "G",
}

// Known reports whether the grade maps to a letter.
func (g Grade) Known() bool {
	_, ok := gradeLetters[g]
	return ok
}

func (g Grade) String() string {
	if s, ok := gradeLetters[g]; ok {
		return s
	}
	return "?"
}

// rarityStars renders a rarity tier as stars, with "N" for the common
// tier.
func rarityStars(rarity int) string {
	if rarity <= 0 {
		return "N"
	}
	s := ""
	for i := 0; i < rarity; i++ {
		s += "★"
	}
	return s
}

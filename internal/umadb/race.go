package umadb

import "fmt"

// RaceGrade is the snapshot's race grade tier, ordered Pre-Open < Open
// < G3 < G2 < G1.
type RaceGrade int

const (
	GradePreOpen RaceGrade = 1
	GradeOpen    RaceGrade = 2
	GradeG3      RaceGrade = 3
	GradeG2      RaceGrade = 4
	GradeG1      RaceGrade = 5
)

func (g RaceGrade) String() string {
	switch g {
	case GradePreOpen:
		return "Pre-Open"
	case GradeOpen:
		return "Open"
	case GradeG3:
		return "G3"
	case GradeG2:
		return "G2"
	case GradeG1:
		return "G1"
	default:
		return "Unknown"
	}
}

// Ground is the race surface code.
type Ground int

const (
	GroundTurf Ground = 1
	GroundDirt Ground = 2
)

func (g Ground) String() string {
	switch g {
	case GroundTurf:
		return "Turf"
	case GroundDirt:
		return "Dirt"
	default:
		return "Unknown"
	}
}

// DistanceCategory classifies a race distance.
type DistanceCategory int

const (
	DistanceSprint DistanceCategory = iota
	DistanceMile
	DistanceMiddle
	DistanceLong
)

func (d DistanceCategory) String() string {
	switch d {
	case DistanceSprint:
		return "Sprint"
	case DistanceMile:
		return "Mile"
	case DistanceMiddle:
		return "Middle"
	default:
		return "Long"
	}
}

// ClassifyDistance maps a distance in meters to its category. Pure
// function of the distance: Sprint <1400, Mile <1800, Middle <2400,
// Long otherwise.
func ClassifyDistance(meters int) DistanceCategory {
	switch {
	case meters < 1400:
		return DistanceSprint
	case meters < 1800:
		return DistanceMile
	case meters < 2400:
		return DistanceMiddle
	default:
		return DistanceLong
	}
}

// Race is one race from the snapshot. Read-only after load.
type Race struct {
	ID int64 `json:"id"`

	NameEN string `json:"name_en,omitempty"`
	NameJP string `json:"name_jp,omitempty"`

	Grade    RaceGrade `json:"grade"`
	Distance int       `json:"distance"`
	Ground   Ground    `json:"ground"`
	TrackID  int64     `json:"track_id"`
}

// DisplayName resolves the race name through the fallback chain, never
// empty.
func (r *Race) DisplayName() string {
	if r.NameEN != "" {
		return r.NameEN
	}
	if r.NameJP != "" {
		return r.NameJP
	}
	return fmt.Sprintf("Race %d", r.ID)
}

// DistanceCategory classifies the race by its distance.
func (r *Race) DistanceCategory() DistanceCategory {
	return ClassifyDistance(r.Distance)
}

// FormattedDistance renders the distance with its unit.
func (r *Race) FormattedDistance() string {
	return fmt.Sprintf("%dm", r.Distance)
}

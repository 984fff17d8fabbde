package domain

import "math"

// Gender is an immutable compatibility attribute. It is never relaxed by
// preference staging.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "nonbinary"

	// GenderAny is only valid as a Seeking value.
	GenderAny Gender = "any"
)

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Preferences is the profile snapshot a user supplies when joining the
// queue: who they are and who they are willing to be paired with.
type Preferences struct {
	Gender        Gender      `json:"gender" bson:"gender"`
	Age           int         `json:"age" bson:"age"`
	Location      Coordinates `json:"location" bson:"location"`
	Seeking       Gender      `json:"seeking" bson:"seeking"`
	AgeMin        int         `json:"age_min" bson:"age_min"`
	AgeMax        int         `json:"age_max" bson:"age_max"`
	MaxDistanceKm float64     `json:"max_distance_km" bson:"max_distance_km"`
}

// WantsGender reports whether the user accepts a partner of gender g.
// This check is stage-independent: gender compatibility is never relaxed.
func (p Preferences) WantsGender(g Gender) bool {
	return p.Seeking == GenderAny || p.Seeking == g
}

// Accepts reports whether candidate c satisfies p's filters relaxed to the
// given stage. Zero-valued age bounds and distances are treated as
// unbounded so a sparse profile never filters everyone out.
func (p Preferences) Accepts(c Preferences, stage PreferenceStage) bool {
	if !p.WantsGender(c.Gender) {
		return false
	}
	if stage >= StageOpen {
		return true
	}

	ageMin, ageMax := p.AgeMin, p.AgeMax
	maxDist := p.MaxDistanceKm
	switch stage {
	case StageAgeNudge:
		ageMin, ageMax = ageMin-2, ageMax+2
	case StageWideNet:
		ageMin, ageMax = ageMin-4, ageMax+4
		maxDist *= 1.5
	}

	if ageMin > 0 && c.Age < ageMin {
		return false
	}
	if ageMax > 0 && c.Age > ageMax {
		return false
	}
	if maxDist > 0 && DistanceKm(p.Location, c.Location) > maxDist {
		return false
	}
	return true
}

// MutuallyCompatible reports whether two users accept each other at their
// respective relaxation stages. Satisfaction must hold in both directions.
func MutuallyCompatible(a Preferences, stageA PreferenceStage, b Preferences, stageB PreferenceStage) bool {
	return a.Accepts(b, stageA) && b.Accepts(a, stageB)
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

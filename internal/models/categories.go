package models

// CompetitionType is the closed set of competition kinds.
// TypeAll is only meaningful as a filter value.
type CompetitionType string

const (
	TypeAll          CompetitionType = "ALL"
	TypeDrawing      CompetitionType = "Drawing"
	TypePoetry       CompetitionType = "Poetry"
	TypeTreasureHunt CompetitionType = "Treasure Hunt"
)

// AgeCategory is the closed set of age bands.
// AgeAll is only meaningful as a filter value.
type AgeCategory string

const (
	AgeAll    AgeCategory = "ALL"
	Age6to8   AgeCategory = "6-8 years old"
	Age9to11  AgeCategory = "9-11 years old"
	Age12to15 AgeCategory = "12-15 years old"
)

// CompetitionTypes lists the concrete competition types in display order
func CompetitionTypes() []CompetitionType {
	return []CompetitionType{TypeDrawing, TypePoetry, TypeTreasureHunt}
}

// AgeCategories lists the concrete age bands in display order
func AgeCategories() []AgeCategory {
	return []AgeCategory{Age6to8, Age9to11, Age12to15}
}

// Valid reports whether t is a concrete competition type
func (t CompetitionType) Valid() bool {
	switch t {
	case TypeDrawing, TypePoetry, TypeTreasureHunt:
		return true
	}
	return false
}

// Valid reports whether a is a concrete age band
func (a AgeCategory) Valid() bool {
	switch a {
	case Age6to8, Age9to11, Age12to15:
		return true
	}
	return false
}

// Contains reports whether age falls within the band
func (a AgeCategory) Contains(age int) bool {
	lo, hi := a.Bounds()
	return hi > 0 && age >= lo && age <= hi
}

// Bounds returns the inclusive age range of the band, or (0, 0) for non-bands
func (a AgeCategory) Bounds() (int, int) {
	switch a {
	case Age6to8:
		return 6, 8
	case Age9to11:
		return 9, 11
	case Age12to15:
		return 12, 15
	}
	return 0, 0
}

// AgeCategoryFor returns the band containing age
func AgeCategoryFor(age int) (AgeCategory, bool) {
	for _, a := range AgeCategories() {
		if a.Contains(age) {
			return a, true
		}
	}
	return "", false
}

// ParseCompetitionType parses a concrete competition type
func ParseCompetitionType(s string) (CompetitionType, bool) {
	t := CompetitionType(s)
	return t, t.Valid()
}

// ParseAgeCategory parses a concrete age band
func ParseAgeCategory(s string) (AgeCategory, bool) {
	a := AgeCategory(s)
	return a, a.Valid()
}

package model

// Profile is a read-only snapshot of a user record held by the directory.
type Profile struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Intro             string  `json:"intro"`
	Gender            string  `json:"gender,omitempty"`
	AgeBand           string  `json:"age_band,omitempty"`
	City              string  `json:"city,omitempty"`
	MannerTemperature float64 `json:"manner_temperature"` // 0-100 trust signal
}

// Category is one label of the closed request taxonomy.
type Category string

const (
	CategoryRepair        Category = "repair"
	CategoryCleaning      Category = "cleaning"
	CategoryPestControl   Category = "pest_control"
	CategoryTechService   Category = "tech_service"
	CategoryLifeHelper    Category = "life_helper"
	CategorySeniorSupport Category = "senior_support"
)

// Taxonomy is the ordered category list. Order matters: keyword fallback
// scans it front to back and the first match wins.
var Taxonomy = []Category{
	CategoryRepair,
	CategoryCleaning,
	CategoryPestControl,
	CategoryTechService,
	CategoryLifeHelper,
	CategorySeniorSupport,
}

// DefaultCategory is returned when nothing else matches.
const DefaultCategory = CategoryLifeHelper

// ParseCategory reports whether s names a taxonomy member.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Taxonomy {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

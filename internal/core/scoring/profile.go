package scoring

import (
	"strings"

	"github.com/agenthands/twohop/internal/core/common"
	"github.com/agenthands/twohop/internal/core/model"
)

// PrimaryKeywords are the terms that define a category when they show up in
// a bio.
var PrimaryKeywords = map[model.Category][]string{
	model.CategoryRepair:        {"수리", "전기", "배관", "설비", "보일러", "인테리어", "목공", "repair", "electrician", "plumber", "handyman"},
	model.CategoryCleaning:      {"청소", "세탁", "정리", "살림", "cleaning", "housekeeping", "laundry"},
	model.CategoryPestControl:   {"방역", "해충", "소독", "방제", "pest", "fumigation", "exterminator"},
	model.CategoryTechService:   {"컴퓨터", "전자", "네트워크", "프로그래밍", "개발자", "computer", "network", "developer", "technician"},
	model.CategoryLifeHelper:    {"심부름", "운전", "배달", "이사", "조립", "장보기", "driver", "errand", "delivery", "moving"},
	model.CategorySeniorSupport: {"요양", "간병", "돌봄", "복지", "간호", "caregiver", "nurse", "elderly"},
}

// SecondaryKeywords are quality signals that only count for their own category.
var SecondaryKeywords = map[model.Category][]string{
	model.CategoryRepair:        {"경력", "자격증", "기술", "꼼꼼", "certified", "licensed", "experienced"},
	model.CategoryCleaning:      {"꼼꼼", "깔끔", "친환경", "정리정돈", "tidy", "thorough"},
	model.CategoryPestControl:   {"친환경", "안전", "자격증", "경력", "safe", "certified"},
	model.CategoryTechService:   {"설치", "빠른", "친절", "setup", "install", "support"},
	model.CategoryLifeHelper:    {"친절", "성실", "차량", "빠른", "reliable", "punctual"},
	model.CategorySeniorSupport: {"친절", "인내", "봉사", "경험", "따뜻", "patient", "volunteer"},
}

// MatchWeights are the increments of the bio heuristic.
type MatchWeights struct {
	PrimaryOverlap float64 // primary keyword in bio that the request also mentions
	PrimaryBase    float64 // primary keyword in bio only
	Secondary      float64
	CrossCategory  float64 // another category's primary keyword in bio

	HighTrust        float64 // temperature threshold for HighTrustBonus
	HighTrustBonus   float64
	MiddleTrust      float64
	MiddleTrustBonus float64
	LowTrust         float64 // below this, LowTrustPenalty is subtracted
	LowTrustPenalty  float64
}

func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		PrimaryOverlap: 0.30,
		PrimaryBase:    0.15,
		Secondary:      0.05,
		CrossCategory:  0.02,

		HighTrust:        70,
		HighTrustBonus:   0.10,
		MiddleTrust:      50,
		MiddleTrustBonus: 0.05,
		LowTrust:         40,
		LowTrustPenalty:  0.10,
	}
}

// ProfileMatcher scores how well a bio fits a request with a bag of
// keywords. It holds no mutable state.
type ProfileMatcher struct {
	Taxonomy  []model.Category
	Primary   map[model.Category][]string
	Secondary map[model.Category][]string
	Weights   MatchWeights
}

func NewProfileMatcher() *ProfileMatcher {
	return &ProfileMatcher{
		Taxonomy:  model.Taxonomy,
		Primary:   PrimaryKeywords,
		Secondary: SecondaryKeywords,
		Weights:   DefaultMatchWeights(),
	}
}

// Score returns a value in [0,1]; an empty bio always scores 0.
func (m *ProfileMatcher) Score(text string, category model.Category, p model.Profile) float64 {
	if strings.TrimSpace(p.Intro) == "" {
		return 0
	}

	bio := strings.ToLower(p.Intro)
	tokens := common.Tokenize(text)
	w := m.Weights

	score := 0.0
	for _, kw := range m.Primary[category] {
		if !strings.Contains(bio, kw) {
			continue
		}
		if common.Overlaps(tokens, kw) {
			score += w.PrimaryOverlap
		} else {
			score += w.PrimaryBase
		}
	}

	for _, kw := range m.Secondary[category] {
		if strings.Contains(bio, kw) {
			score += w.Secondary
		}
	}

	for _, other := range m.Taxonomy {
		if other == category {
			continue
		}
		for _, kw := range m.Primary[other] {
			if strings.Contains(bio, kw) {
				score += w.CrossCategory
			}
		}
	}

	score += m.trust(p.MannerTemperature)

	return common.Clamp(score, 0, 1)
}

func (m *ProfileMatcher) trust(temperature float64) float64 {
	w := m.Weights
	switch {
	case temperature > w.HighTrust:
		return w.HighTrustBonus
	case temperature > w.MiddleTrust:
		return w.MiddleTrustBonus
	case temperature < w.LowTrust:
		return -w.LowTrustPenalty
	}
	return 0
}

package scoring

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/agenthands/twohop/internal/core/common"
	"github.com/agenthands/twohop/internal/core/model"
)

var (
	// ErrModelUnavailable is returned by the model strategy when no artifact
	// is loaded.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrModelScoringFailed covers encoding and prediction failures.
	ErrModelScoringFailed = errors.New("model scoring failed")
)

const (
	StrategyAuto  = "auto"
	StrategyModel = "model"
	StrategyRule  = "rule"
)

// Input is everything a strategy needs to score one candidate.
type Input struct {
	Text      string
	Category  model.Category
	Candidate model.Candidate
	Profile   model.Profile // candidate's profile
	Requester model.Profile
}

// Strategy turns an Input into a score breakdown.
type Strategy interface {
	Name() string
	Score(in Input) (model.ScoreBreakdown, error)
}

// Predictor is the read-only view of a classifier artifact.
type Predictor interface {
	Columns() []string
	PredictProba(x []float64) (float64, error)
}

// Policy holds the terms both strategies report in a breakdown.
type Policy struct {
	DegreeWeight          float64
	CategoryWeights       map[model.Category]float64
	DefaultCategoryWeight float64
}

func DefaultPolicy() Policy {
	return Policy{
		DegreeWeight: 0.1,
		CategoryWeights: map[model.Category]float64{
			model.CategoryRepair:        0.9,
			model.CategoryPestControl:   0.9,
			model.CategoryCleaning:      0.8,
			model.CategoryTechService:   0.8,
			model.CategorySeniorSupport: 0.7,
			model.CategoryLifeHelper:    0.6,
		},
		DefaultCategoryWeight: 0.6,
	}
}

// WithOverrides returns a copy of p with the given category weights replaced.
// Unknown category names are ignored.
func (p Policy) WithOverrides(weights map[string]float64) Policy {
	merged := make(map[model.Category]float64, len(p.CategoryWeights))
	for k, v := range p.CategoryWeights {
		merged[k] = v
	}
	for name, w := range weights {
		if c, ok := model.ParseCategory(name); ok {
			merged[c] = w
		}
	}
	p.CategoryWeights = merged
	return p
}

// DegreeScore is max(0, (4-degree)*k).
func (p Policy) DegreeScore(degree int) float64 {
	return math.Max(0, float64(4-degree)*p.DegreeWeight)
}

func (p Policy) CategoryWeight(c model.Category) float64 {
	if w, ok := p.CategoryWeights[c]; ok {
		return w
	}
	return p.DefaultCategoryWeight
}

// ModelStrategy scores with the classifier artifact and boosts the result
// by the profile match.
type ModelStrategy struct {
	Artifact      Predictor
	Matcher       *ProfileMatcher
	Policy        Policy
	BlendWeight   float64
	AgeDefault    string
	GenderDefault string
}

func NewModelStrategy(artifact Predictor, matcher *ProfileMatcher, policy Policy) *ModelStrategy {
	return &ModelStrategy{
		Artifact:      artifact,
		Matcher:       matcher,
		Policy:        policy,
		BlendWeight:   0.5,
		AgeDefault:    "unknown",
		GenderDefault: "unknown",
	}
}

func (s *ModelStrategy) Name() string { return StrategyModel }

// Available reports whether an artifact is loaded.
func (s *ModelStrategy) Available() bool {
	return s != nil && s.Artifact != nil
}

func (s *ModelStrategy) Score(in Input) (model.ScoreBreakdown, error) {
	if !s.Available() {
		return model.ScoreBreakdown{}, ErrModelUnavailable
	}

	f := Features{
		Degree:          in.Candidate.Degree,
		Category:        string(in.Category),
		RequesterAge:    valueOr(in.Requester.AgeBand, s.AgeDefault),
		CandidateGender: valueOr(in.Profile.Gender, s.GenderDefault),
	}
	x := Encode(f, s.Artifact.Columns())

	ml, err := s.Artifact.PredictProba(x)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("%w: candidate %d: %v", ErrModelScoringFailed, in.Candidate.CandidateID, err)
	}
	if math.IsNaN(ml) || ml < 0 || ml > 1 {
		return model.ScoreBreakdown{}, fmt.Errorf("%w: candidate %d: probability %v", ErrModelScoringFailed, in.Candidate.CandidateID, ml)
	}

	pm := s.Matcher.Score(in.Text, in.Category, in.Profile)

	return model.ScoreBreakdown{
		ModelScore:     &ml,
		ProfileMatch:   pm,
		DegreeScore:    s.Policy.DegreeScore(in.Candidate.Degree),
		CategoryWeight: s.Policy.CategoryWeight(in.Category),
		Final:          math.Min(1, ml*(1+pm*s.BlendWeight)),
	}, nil
}

// Features is the record the artifact was trained on.
type Features struct {
	Degree          int
	Category        string
	RequesterAge    string
	CandidateGender string
}

// Encode one-hot encodes f and lays it out in the artifact's column order.
// Columns f does not produce are 0.
func Encode(f Features, columns []string) []float64 {
	active := map[string]float64{
		"relationship_degree":                   float64(f.Degree),
		"category_" + f.Category:                1,
		"requester_age_" + f.RequesterAge:       1,
		"candidate_gender_" + f.CandidateGender: 1,
	}

	x := make([]float64, len(columns))
	for i, col := range columns {
		x[i] = active[col]
	}
	return x
}

func valueOr(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

// RuleStrategy is the weighted-sum score used without an artifact.
type RuleStrategy struct {
	Matcher        *ProfileMatcher
	Policy         Policy
	Base           float64
	ProfileWeight  float64
	CategoryFactor float64
	Jitter         float64 // upper bound of the random term, 0 disables it

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRuleStrategy(matcher *ProfileMatcher, policy Policy, jitter float64, seed int64) *RuleStrategy {
	return &RuleStrategy{
		Matcher:        matcher,
		Policy:         policy,
		Base:           0.2,
		ProfileWeight:  0.4,
		CategoryFactor: 0.2,
		Jitter:         jitter,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

func (s *RuleStrategy) Name() string { return StrategyRule }

func (s *RuleStrategy) Score(in Input) (model.ScoreBreakdown, error) {
	pm := s.Matcher.Score(in.Text, in.Category, in.Profile)
	degree := s.Policy.DegreeScore(in.Candidate.Degree)
	weight := s.Policy.CategoryWeight(in.Category)

	final := s.Base + degree + pm*s.ProfileWeight + weight*s.CategoryFactor + s.jitter()

	return model.ScoreBreakdown{
		ProfileMatch:   pm,
		DegreeScore:    degree,
		CategoryWeight: weight,
		Final:          common.Clamp(final, 0, 1),
	}, nil
}

func (s *RuleStrategy) jitter() float64 {
	if s.Jitter <= 0 || s.rng == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() * s.Jitter
}

// Select picks the strategy named by kind. "auto" uses the model when an
// artifact is loaded and the rule otherwise.
func Select(kind string, m *ModelStrategy, r *RuleStrategy) (Strategy, error) {
	switch kind {
	case StrategyModel:
		if m == nil {
			return nil, ErrModelUnavailable
		}
		return m, nil
	case StrategyRule:
		return r, nil
	case StrategyAuto, "":
		if m.Available() {
			return m, nil
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown scoring strategy %q", kind)
}

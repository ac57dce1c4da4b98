package scoring

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/twohop/internal/core/artifact"
	"github.com/agenthands/twohop/internal/core/model"
)

type MockPredictor struct {
	Cols  []string
	Proba float64
	Err   error
	Last  []float64
}

func (m *MockPredictor) Columns() []string { return m.Cols }

func (m *MockPredictor) PredictProba(x []float64) (float64, error) {
	m.Last = x
	return m.Proba, m.Err
}

func loadForest(t *testing.T) *artifact.Artifact {
	t.Helper()
	a, err := artifact.Load(filepath.Join("..", "artifact", "testdata", "forest.json"))
	require.NoError(t, err)
	return a
}

func input(degree int, c model.Category, candidate, requester model.Profile) Input {
	return Input{
		Text:      "전기 수리가 필요해요",
		Category:  c,
		Candidate: model.Candidate{CandidateID: candidate.ID, IntroducerID: 2, Degree: degree},
		Profile:   candidate,
		Requester: requester,
	}
}

func TestEncode(t *testing.T) {
	cols := loadForest(t).Columns()

	x := Encode(Features{Degree: 2, Category: "repair", RequesterAge: "20s", CandidateGender: "male"}, cols)
	assert.Equal(t, []float64{2, 1, 0, 1, 0, 0, 1}, x)

	// values never seen in training encode to all zeros
	x = Encode(Features{Degree: 2, Category: "senior_support", RequesterAge: "unknown", CandidateGender: "unknown"}, cols)
	assert.Equal(t, []float64{2, 0, 0, 0, 0, 0, 0}, x)
}

func TestModelStrategy_Unavailable(t *testing.T) {
	s := NewModelStrategy(nil, NewProfileMatcher(), DefaultPolicy())
	assert.False(t, s.Available())

	_, err := s.Score(input(2, model.CategoryRepair, model.Profile{ID: 4}, model.Profile{ID: 1}))
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestModelStrategy_Forest(t *testing.T) {
	s := NewModelStrategy(loadForest(t), NewProfileMatcher(), DefaultPolicy())
	require.True(t, s.Available())

	requester := model.Profile{ID: 1, AgeBand: "20s"}

	got, err := s.Score(input(2, model.CategoryRepair, model.Profile{ID: 4, Gender: "Male"}, requester))
	require.NoError(t, err)
	require.NotNil(t, got.ModelScore)
	assert.InDelta(t, 0.45, *got.ModelScore, 1e-9)
	assert.Zero(t, got.ProfileMatch)
	assert.InDelta(t, 0.45, got.Final, 1e-9)
	assert.InDelta(t, 0.2, got.DegreeScore, 1e-9)
	assert.InDelta(t, 0.9, got.CategoryWeight, 1e-9)

	// profile match 0.7 boosts by 1 + 0.7*0.5
	candidate := model.Profile{ID: 5, Gender: "female", Intro: "전기 수리 경력 20년", MannerTemperature: 60}
	got, err = s.Score(input(2, model.CategoryRepair, candidate, requester))
	require.NoError(t, err)
	assert.InDelta(t, 0.70, got.ProfileMatch, 1e-9)
	assert.InDelta(t, 0.45*1.35, got.Final, 1e-9)
}

func TestModelStrategy_FinalCappedAtOne(t *testing.T) {
	p := &MockPredictor{Cols: []string{"relationship_degree"}, Proba: 0.9}
	s := NewModelStrategy(p, NewProfileMatcher(), DefaultPolicy())

	candidate := model.Profile{ID: 4, Intro: "수리 전기 배관 설비 보일러", MannerTemperature: 90}
	in := input(2, model.CategoryRepair, candidate, model.Profile{ID: 1})
	in.Text = "수리 전기 배관 설비 보일러"

	got, err := s.Score(in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Final)
	assert.Equal(t, []float64{2}, p.Last)
}

func TestModelStrategy_PredictionFailures(t *testing.T) {
	cases := map[string]*MockPredictor{
		"predict error": {Cols: []string{"relationship_degree"}, Err: errors.New("broken tree")},
		"nan":           {Cols: []string{"relationship_degree"}, Proba: math.NaN()},
		"out of range":  {Cols: []string{"relationship_degree"}, Proba: 1.2},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewModelStrategy(p, NewProfileMatcher(), DefaultPolicy())
			_, err := s.Score(input(2, model.CategoryRepair, model.Profile{ID: 4}, model.Profile{ID: 1}))
			assert.ErrorIs(t, err, ErrModelScoringFailed)
		})
	}
}

func TestModelStrategy_DefaultsForMissingDemographics(t *testing.T) {
	p := &MockPredictor{
		Cols:  []string{"relationship_degree", "requester_age_unknown", "candidate_gender_unknown", "candidate_gender_male"},
		Proba: 0.5,
	}
	s := NewModelStrategy(p, NewProfileMatcher(), DefaultPolicy())

	_, err := s.Score(input(2, model.CategoryRepair, model.Profile{ID: 4}, model.Profile{ID: 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 1, 0}, p.Last)
}

func TestRuleStrategy(t *testing.T) {
	s := NewRuleStrategy(NewProfileMatcher(), DefaultPolicy(), 0, 1)

	got, err := s.Score(input(2, model.CategoryRepair, model.Profile{ID: 4}, model.Profile{ID: 1}))
	require.NoError(t, err)
	assert.Nil(t, got.ModelScore)
	assert.InDelta(t, 0.58, got.Final, 1e-9)

	got, err = s.Score(input(2, model.CategoryLifeHelper, model.Profile{ID: 4}, model.Profile{ID: 1}))
	require.NoError(t, err)
	assert.InDelta(t, 0.52, got.Final, 1e-9)

	got, err = s.Score(input(2, model.Category("business"), model.Profile{ID: 4}, model.Profile{ID: 1}))
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got.CategoryWeight, 1e-9)
	assert.InDelta(t, 0.52, got.Final, 1e-9)

	candidate := model.Profile{ID: 5, Intro: "전기 수리 경력 20년", MannerTemperature: 60}
	got, err = s.Score(input(2, model.CategoryRepair, candidate, model.Profile{ID: 1}))
	require.NoError(t, err)
	assert.InDelta(t, 0.58+0.7*0.4, got.Final, 1e-9)
}

func TestRuleStrategy_DegreeScoreNeverNegative(t *testing.T) {
	assert.Zero(t, DefaultPolicy().DegreeScore(4))
	assert.Zero(t, DefaultPolicy().DegreeScore(7))
	assert.InDelta(t, 0.3, DefaultPolicy().DegreeScore(1), 1e-9)
}

func TestRuleStrategy_SeededJitter(t *testing.T) {
	a := NewRuleStrategy(NewProfileMatcher(), DefaultPolicy(), 0.1, 7)
	b := NewRuleStrategy(NewProfileMatcher(), DefaultPolicy(), 0.1, 7)
	in := input(2, model.CategoryLifeHelper, model.Profile{ID: 4}, model.Profile{ID: 1})

	for i := 0; i < 50; i++ {
		ga, err := a.Score(in)
		require.NoError(t, err)
		gb, err := b.Score(in)
		require.NoError(t, err)

		assert.Equal(t, ga.Final, gb.Final)
		assert.GreaterOrEqual(t, ga.Final, 0.52)
		assert.Less(t, ga.Final, 0.62)
	}
}

func TestPolicy_WithOverrides(t *testing.T) {
	base := DefaultPolicy()
	p := base.WithOverrides(map[string]float64{"cleaning": 0.1, "business": 5})

	assert.InDelta(t, 0.1, p.CategoryWeight(model.CategoryCleaning), 1e-9)
	assert.InDelta(t, 0.6, p.CategoryWeight(model.Category("business")), 1e-9)
	assert.InDelta(t, 0.8, base.CategoryWeight(model.CategoryCleaning), 1e-9)
}

func TestSelect(t *testing.T) {
	rule := NewRuleStrategy(NewProfileMatcher(), DefaultPolicy(), 0, 1)
	loaded := NewModelStrategy(&MockPredictor{}, NewProfileMatcher(), DefaultPolicy())
	empty := NewModelStrategy(nil, NewProfileMatcher(), DefaultPolicy())

	s, err := Select(StrategyAuto, loaded, rule)
	require.NoError(t, err)
	assert.Equal(t, StrategyModel, s.Name())

	s, err = Select(StrategyAuto, empty, rule)
	require.NoError(t, err)
	assert.Equal(t, StrategyRule, s.Name())

	s, err = Select(StrategyRule, loaded, rule)
	require.NoError(t, err)
	assert.Equal(t, StrategyRule, s.Name())

	// forcing the model without an artifact fails at scoring time
	s, err = Select(StrategyModel, empty, rule)
	require.NoError(t, err)
	_, err = s.Score(input(2, model.CategoryRepair, model.Profile{ID: 4}, model.Profile{ID: 1}))
	assert.ErrorIs(t, err, ErrModelUnavailable)

	_, err = Select("random", loaded, rule)
	assert.Error(t, err)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/twohop/internal/core/discovery"
	"github.com/agenthands/twohop/internal/core/intent"
	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/core/scoring"
	"github.com/agenthands/twohop/internal/directory"
	"github.com/agenthands/twohop/internal/logging"
	"github.com/agenthands/twohop/internal/metrics"
)

var (
	// ErrRequesterNotFound is logged, never returned: the caller gets a
	// result with a nil request id instead.
	ErrRequesterNotFound = errors.New("requester not found")
	ErrInvalidMaxResults = errors.New("max results must be positive")
)

// Classifier is satisfied by *intent.Classifier.
type Classifier interface {
	Classify(ctx context.Context, text string) intent.Classification
}

type Engine struct {
	Directory   directory.Directory
	Classifier  Classifier
	Strategy    scoring.Strategy
	Thresholds  scoring.Thresholds
	Depth       int
	CallTimeout time.Duration

	log zerolog.Logger
}

func NewEngine(dir directory.Directory, classifier Classifier, strategy scoring.Strategy) *Engine {
	return &Engine{
		Directory:   dir,
		Classifier:  classifier,
		Strategy:    strategy,
		Thresholds:  scoring.DefaultThresholds(),
		Depth:       discovery.SecondDegree,
		CallTimeout: 10 * time.Second,
		log:         logging.Component("engine"),
	}
}

// CreateRecommendation classifies text, finds second-degree contacts of
// userID and returns at most maxResults of them ranked by score. Only
// caller errors and model failures are returned as errors.
func (e *Engine) CreateRecommendation(ctx context.Context, userID int64, text string, maxResults int) (*model.Result, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxResults, maxResults)
	}

	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	log := e.log.With().Int64("user_id", userID).Logger()

	var (
		classification intent.Classification
		graph          *model.EgoGraph
	)

	// Neither branch fails the request.
	var g errgroup.Group
	g.Go(func() error {
		classification = e.Classifier.Classify(ctx, text)
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.CallTimeout)
		defer cancel()

		eg, err := e.Directory.EgoGraph(callCtx, userID, e.Depth)
		if err != nil {
			log.Warn().Err(err).Msg("ego graph unavailable, continuing without candidates")
			return nil
		}
		graph = eg
		return nil
	})
	_ = g.Wait()

	category := classification.Category
	log = log.With().Str("category", string(category)).Logger()

	var candidates []model.Candidate
	if graph != nil {
		candidates = discovery.Discover(userID, *graph)
	}
	metrics.CandidatesDiscovered.Observe(float64(len(candidates)))

	profiles := e.profiles(ctx, log, profileIDs(userID, candidates))

	requester, ok := profiles[userID]
	if !ok {
		log.Warn().Err(ErrRequesterNotFound).Msg("returning empty recommendations")
		metrics.RecommendationRequests.WithLabelValues("requester_not_found").Inc()
		return &model.Result{
			Recommendations:  []model.Recommendation{},
			InferredCategory: category,
		}, nil
	}

	requestID := uuid.New().String()
	log = log.With().Str("request_id", requestID).Logger()

	scored := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		p, ok := profiles[c.CandidateID]
		if !ok {
			log.Debug().Int64("candidate_id", c.CandidateID).Msg("candidate profile missing, skipped")
			continue
		}

		breakdown, err := e.Strategy.Score(scoring.Input{
			Text:      text,
			Category:  category,
			Candidate: c,
			Profile:   p,
			Requester: requester,
		})
		if err != nil {
			metrics.RecommendationRequests.WithLabelValues("error").Inc()
			log.Error().Err(err).Int64("candidate_id", c.CandidateID).Str("strategy", e.Strategy.Name()).Msg("scoring failed")
			return nil, fmt.Errorf("failed to score candidate %d: %w", c.CandidateID, err)
		}
		scored = append(scored, model.ScoredCandidate{Candidate: c, Scores: breakdown})
	}

	ranked := scoring.Rank(scored, maxResults, e.Thresholds)

	recs := make([]model.Recommendation, 0, len(ranked))
	for _, sc := range ranked {
		rec := model.Recommendation{
			CandidateID:  sc.CandidateID,
			IntroducerID: sc.IntroducerID,
			Degree:       sc.Degree,
			FinalScore:   sc.Scores.Final,
			Scores:       sc.Scores,
		}
		if p, ok := profiles[sc.CandidateID]; ok {
			rec.Candidate = &p
		}
		if p, ok := profiles[sc.IntroducerID]; ok {
			rec.Introducer = &p
		}
		recs = append(recs, rec)
	}

	outcome := "ok"
	if len(recs) == 0 {
		outcome = "empty"
	}
	metrics.RecommendationRequests.WithLabelValues(outcome).Inc()

	log.Info().
		Str("source", string(classification.Source)).
		Int("candidates", len(candidates)).
		Int("scored", len(scored)).
		Int("returned", len(recs)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation served")

	return &model.Result{
		RequestID:        &requestID,
		Recommendations:  recs,
		InferredCategory: category,
	}, nil
}

// StrategyName reports which scoring strategy is active.
func (e *Engine) StrategyName() string {
	return e.Strategy.Name()
}

func (e *Engine) profiles(ctx context.Context, log zerolog.Logger, ids []int64) map[int64]model.Profile {
	callCtx, cancel := context.WithTimeout(ctx, e.CallTimeout)
	defer cancel()

	profiles, err := e.Directory.Profiles(callCtx, ids)
	if err != nil {
		log.Warn().Err(err).Int("ids", len(ids)).Msg("profiles unavailable")
		return map[int64]model.Profile{}
	}
	return profiles
}

// profileIDs lists the requester, then candidates and introducers in
// discovery order, without repeats.
func profileIDs(requester int64, candidates []model.Candidate) []int64 {
	seen := map[int64]bool{requester: true}
	ids := []int64{requester}
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range candidates {
		add(c.CandidateID)
		add(c.IntroducerID)
	}
	return ids
}

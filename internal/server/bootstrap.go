package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agenthands/twohop/internal/config"
	"github.com/agenthands/twohop/internal/core"
	"github.com/agenthands/twohop/internal/core/artifact"
	"github.com/agenthands/twohop/internal/core/intent"
	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/core/scoring"
	"github.com/agenthands/twohop/internal/directory"
	"github.com/agenthands/twohop/internal/driver"
	"github.com/agenthands/twohop/internal/llm"
	"github.com/agenthands/twohop/internal/logging"
)

// App is the wired recommender with everything that must be released on
// shutdown.
type App struct {
	Engine      *core.Engine
	Classifier  *intent.Classifier
	ModelLoaded bool

	closers []func(context.Context) error
}

// Close releases every backend connection Build opened.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build wires the engine from configuration. A missing or broken model
// artifact is not fatal: the model strategy reports itself unavailable.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	classifier, err := app.classifier(ctx, cfg)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	app.Classifier = classifier

	dir, err := app.directory(ctx, cfg)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	dir = directory.WithProfileCache(dir, cfg.Directory.ProfileCacheSize, cfg.ProfileCacheTTL())

	strategy, loaded, err := buildStrategy(cfg)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	app.ModelLoaded = loaded

	engine := core.NewEngine(dir, classifier, strategy)
	engine.Depth = cfg.Engine.Depth
	engine.CallTimeout = cfg.CallTimeout()
	engine.Thresholds = scoring.Thresholds{
		Min:      cfg.Scoring.MinThreshold,
		Relative: cfg.Scoring.RelativeThreshold,
	}
	app.Engine = engine

	logging.Info().
		Str("strategy", strategy.Name()).
		Bool("model_loaded", loaded).
		Str("directory", cfg.Directory.Backend).
		Str("llm_provider", cfg.LLM.Provider).
		Msg("recommender ready")

	return app, nil
}

func (a *App) classifier(ctx context.Context, cfg *config.Config) (*intent.Classifier, error) {
	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier backend: %w", err)
	}

	var backend llm.LLMClient
	if client != nil {
		if c, ok := client.(io.Closer); ok {
			a.closers = append(a.closers, func(context.Context) error { return c.Close() })
		}
		backend = llm.NewBreakerClient(client, "llm-"+cfg.LLM.Provider)
	}

	def, ok := model.ParseCategory(cfg.Engine.DefaultCategory)
	if !ok {
		def = model.DefaultCategory
	}
	return intent.NewClassifier(backend, def, cfg.CallTimeout()), nil
}

func (a *App) directory(ctx context.Context, cfg *config.Config) (directory.Directory, error) {
	switch cfg.Directory.Backend {
	case "http":
		return directory.NewHTTPClient(cfg.Directory.BaseURL, cfg.Directory.ProfileFilter, cfg.CallTimeout()), nil

	case "graph":
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to graph database: %w", err)
		}
		a.closers = append(a.closers, d.Close)

		if err := d.BuildIndices(ctx); err != nil {
			return nil, fmt.Errorf("failed to build indices: %w", err)
		}
		return directory.NewGraphDirectory(d), nil
	}
	return nil, fmt.Errorf("unknown directory backend %q", cfg.Directory.Backend)
}

func buildStrategy(cfg *config.Config) (scoring.Strategy, bool, error) {
	matcher := scoring.NewProfileMatcher()
	matcher.Weights = matchWeights(cfg.Scoring.Match)

	policy := scoring.DefaultPolicy().WithOverrides(cfg.Scoring.CategoryWeights)
	policy.DegreeWeight = cfg.Scoring.Rule.DegreeWeight

	var predictor scoring.Predictor
	if path := cfg.Model.ArtifactPath; path != "" {
		a, err := artifact.Load(path)
		if err != nil {
			logging.Error().Err(err).Str("path", path).Msg("classifier artifact not loaded")
		} else {
			predictor = a
			logging.Info().Str("path", path).Int("features", len(a.Columns())).Msg("classifier artifact loaded")
		}
	}

	ms := scoring.NewModelStrategy(predictor, matcher, policy)
	ms.BlendWeight = cfg.Scoring.BlendWeight
	ms.AgeDefault = cfg.Model.RequesterAgeDefault
	ms.GenderDefault = cfg.Model.CandidateGenderDefault

	rule := cfg.Scoring.Rule
	rs := scoring.NewRuleStrategy(matcher, policy, rule.Jitter, rule.Seed)
	rs.Base = rule.Base
	rs.ProfileWeight = rule.ProfileWeight
	rs.CategoryFactor = rule.CategoryFactor

	s, err := scoring.Select(cfg.Scoring.Strategy, ms, rs)
	if err != nil {
		return nil, false, err
	}
	return s, ms.Available(), nil
}

func matchWeights(m config.MatchConfig) scoring.MatchWeights {
	return scoring.MatchWeights{
		PrimaryOverlap:   m.PrimaryOverlap,
		PrimaryBase:      m.PrimaryBase,
		Secondary:        m.Secondary,
		CrossCategory:    m.CrossCategory,
		HighTrust:        m.HighTrust,
		HighTrustBonus:   m.HighTrustBonus,
		MiddleTrust:      m.MiddleTrust,
		MiddleTrustBonus: m.MiddleTrustBonus,
		LowTrust:         m.LowTrust,
		LowTrustPenalty:  m.LowTrustPenalty,
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port      string  `toml:"port"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 disables
	Burst     int     `toml:"burst"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type DirectoryConfig struct {
	Backend          string `toml:"backend"` // "http" or "graph"
	BaseURL          string `toml:"base_url"`
	ProfileFilter    string `toml:"profile_filter"` // "all" or "ids"
	ProfileCacheSize int    `toml:"profile_cache_size"`
	ProfileCacheTTL  int    `toml:"profile_cache_ttl_seconds"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ModelConfig struct {
	ArtifactPath           string `toml:"artifact_path"`
	RequesterAgeDefault    string `toml:"requester_age_default"`
	CandidateGenderDefault string `toml:"candidate_gender_default"`
}

type RuleConfig struct {
	Base           float64 `toml:"base"`
	DegreeWeight   float64 `toml:"degree_weight"`
	ProfileWeight  float64 `toml:"profile_weight"`
	CategoryFactor float64 `toml:"category_factor"`
	Jitter         float64 `toml:"jitter"`
	Seed           int64   `toml:"seed"`
}

// MatchConfig holds the increments of the bio keyword heuristic.
type MatchConfig struct {
	PrimaryOverlap   float64 `toml:"primary_overlap"`
	PrimaryBase      float64 `toml:"primary_base"`
	Secondary        float64 `toml:"secondary"`
	CrossCategory    float64 `toml:"cross_category"`
	HighTrust        float64 `toml:"high_trust"`
	HighTrustBonus   float64 `toml:"high_trust_bonus"`
	MiddleTrust      float64 `toml:"middle_trust"`
	MiddleTrustBonus float64 `toml:"middle_trust_bonus"`
	LowTrust         float64 `toml:"low_trust"`
	LowTrustPenalty  float64 `toml:"low_trust_penalty"`
}

type ScoringConfig struct {
	Strategy          string             `toml:"strategy"` // "auto", "model" or "rule"
	BlendWeight       float64            `toml:"blend_weight"`
	MinThreshold      float64            `toml:"min_threshold"`
	RelativeThreshold float64            `toml:"relative_threshold"`
	CategoryWeights   map[string]float64 `toml:"category_weights"`
	Rule              RuleConfig         `toml:"rule"`
	Match             MatchConfig        `toml:"match"`
}

type EngineConfig struct {
	Depth              int    `toml:"depth"`
	CallTimeoutSeconds int    `toml:"call_timeout_seconds"`
	DefaultCategory    string `toml:"default_category"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	LLM       LLMConfig       `toml:"llm"`
	Directory DirectoryConfig `toml:"directory"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Model     ModelConfig     `toml:"model"`
	Scoring   ScoringConfig   `toml:"scoring"`
	Engine    EngineConfig    `toml:"engine"`
}

// Default returns a configuration that runs without any external
// classifier and without a model artifact.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", RateLimit: 20, Burst: 40},
		Log:    LogConfig{Level: "info", Format: "json"},
		LLM:    LLMConfig{Provider: "none"},
		Directory: DirectoryConfig{
			Backend:       "http",
			BaseURL:       "http://localhost:8000",
			ProfileFilter: "all",
		},
		Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
		Model: ModelConfig{
			RequesterAgeDefault:    "unknown",
			CandidateGenderDefault: "unknown",
		},
		Scoring: ScoringConfig{
			Strategy:          "auto",
			BlendWeight:       0.5,
			MinThreshold:      0.4,
			RelativeThreshold: 0.7,
			Rule: RuleConfig{
				Base:           0.2,
				DegreeWeight:   0.1,
				ProfileWeight:  0.4,
				CategoryFactor: 0.2,
				Seed:           42,
			},
			Match: MatchConfig{
				PrimaryOverlap:   0.30,
				PrimaryBase:      0.15,
				Secondary:        0.05,
				CrossCategory:    0.02,
				HighTrust:        70,
				HighTrustBonus:   0.10,
				MiddleTrust:      50,
				MiddleTrustBonus: 0.05,
				LowTrust:         40,
				LowTrustPenalty:  0.10,
			},
		},
		Engine: EngineConfig{
			Depth:              2,
			CallTimeoutSeconds: 10,
			DefaultCategory:    "life_helper",
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	override := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	override("PORT", &c.Server.Port)
	override("LOG_LEVEL", &c.Log.Level)
	override("LOG_FORMAT", &c.Log.Format)
	override("LLM_PROVIDER", &c.LLM.Provider)
	override("LLM_MODEL", &c.LLM.Model)
	override("LLM_API_KEY", &c.LLM.APIKey)
	override("LLM_BASE_URL", &c.LLM.BaseURL)
	override("DIRECTORY_BACKEND", &c.Directory.Backend)
	override("DIRECTORY_URL", &c.Directory.BaseURL)
	override("MEMGRAPH_URI", &c.Memgraph.URI)
	override("MEMGRAPH_USER", &c.Memgraph.User)
	override("MEMGRAPH_PASSWORD", &c.Memgraph.Password)
	override("MODEL_ARTIFACT", &c.Model.ArtifactPath)
	override("SCORING_STRATEGY", &c.Scoring.Strategy)
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Directory.Backend {
	case "http":
		if c.Directory.BaseURL == "" {
			errs = append(errs, errors.New("directory.base_url is required for the http backend"))
		}
	case "graph":
		if c.Memgraph.URI == "" {
			errs = append(errs, errors.New("memgraph.uri is required for the graph backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown directory backend %q", c.Directory.Backend))
	}

	if c.Directory.ProfileFilter != "all" && c.Directory.ProfileFilter != "ids" {
		errs = append(errs, fmt.Errorf("unknown directory.profile_filter %q", c.Directory.ProfileFilter))
	}

	switch c.Scoring.Strategy {
	case "auto", "model", "rule":
	default:
		errs = append(errs, fmt.Errorf("unknown scoring strategy %q", c.Scoring.Strategy))
	}

	if c.Scoring.MinThreshold < 0 || c.Scoring.MinThreshold > 1 {
		errs = append(errs, errors.New("scoring.min_threshold must be within [0,1]"))
	}
	if c.Scoring.RelativeThreshold < 0 || c.Scoring.RelativeThreshold > 1 {
		errs = append(errs, errors.New("scoring.relative_threshold must be within [0,1]"))
	}
	if c.Scoring.BlendWeight < 0 {
		errs = append(errs, errors.New("scoring.blend_weight must not be negative"))
	}
	if c.Scoring.Rule.Jitter < 0 {
		errs = append(errs, errors.New("scoring.rule.jitter must not be negative"))
	}
	if m := c.Scoring.Match; m.PrimaryOverlap < 0 || m.PrimaryBase < 0 || m.Secondary < 0 || m.CrossCategory < 0 {
		errs = append(errs, errors.New("scoring.match keyword increments must not be negative"))
	}
	if m := c.Scoring.Match; m.LowTrust > m.MiddleTrust || m.MiddleTrust > m.HighTrust {
		errs = append(errs, errors.New("scoring.match trust bands must satisfy low_trust <= middle_trust <= high_trust"))
	}
	for name, w := range c.Scoring.CategoryWeights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("scoring.category_weights.%s must not be negative", name))
		}
	}

	if c.Engine.Depth < 2 {
		errs = append(errs, errors.New("engine.depth must be at least 2"))
	}
	if c.Engine.CallTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("engine.call_timeout_seconds must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Engine.CallTimeoutSeconds) * time.Second
}

func (c *Config) ProfileCacheTTL() time.Duration {
	return time.Duration(c.Directory.ProfileCacheTTL) * time.Second
}

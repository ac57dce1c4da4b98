package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/llm"
	"github.com/agenthands/twohop/internal/logging"
	"github.com/agenthands/twohop/internal/metrics"
)

// ErrClassifierUnavailable covers every way the remote path can fail:
// transport errors, timeouts, empty replies and labels outside the taxonomy.
var ErrClassifierUnavailable = errors.New("intent classifier unavailable")

type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

type Classification struct {
	Category model.Category `json:"category"`
	Source   Source         `json:"source"`
}

const instructionTemplate = `You are the request analyst of a neighbourhood introduction service.
Read the user's request and answer with exactly one category from the list below, in lower case.
Do not add any explanation.
Categories: %s`

// Classifier maps free text to a taxonomy category. Backend may be nil, in
// which case only the keyword matcher runs.
type Classifier struct {
	Backend  llm.LLMClient
	Taxonomy []model.Category
	Keywords map[model.Category][]string
	Default  model.Category
	Timeout  time.Duration

	logger zerolog.Logger
}

func NewClassifier(backend llm.LLMClient, def model.Category, timeout time.Duration) *Classifier {
	if _, ok := model.ParseCategory(string(def)); !ok {
		def = model.DefaultCategory
	}
	return &Classifier{
		Backend:  backend,
		Taxonomy: model.Taxonomy,
		Keywords: Keywords,
		Default:  def,
		Timeout:  timeout,
		logger:   logging.Component("intent"),
	}
}

// Classify never fails: remote problems degrade to the keyword matcher.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	if c.Backend != nil {
		cat, err := c.Remote(ctx, text)
		if err == nil {
			metrics.Classifications.WithLabelValues(string(SourceRemote), string(cat)).Inc()
			return Classification{Category: cat, Source: SourceRemote}
		}
		c.logger.Warn().Err(err).Msg("remote classification failed, using keyword fallback")
	}

	cat := MatchKeywords(text, c.Taxonomy, c.Keywords, c.Default)
	metrics.Classifications.WithLabelValues(string(SourceFallback), string(cat)).Inc()
	return Classification{Category: cat, Source: SourceFallback}
}

// Remote asks the backend once. Every failure wraps ErrClassifierUnavailable.
func (c *Classifier) Remote(ctx context.Context, text string) (model.Category, error) {
	if c.Backend == nil {
		return "", fmt.Errorf("%w: no backend configured", ErrClassifierUnavailable)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	reply, err := c.Backend.Generate(ctx, c.prompt(text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}

	label := normalizeLabel(reply)
	for _, cat := range c.Taxonomy {
		if string(cat) == label {
			return cat, nil
		}
	}
	return "", fmt.Errorf("%w: reply %q is not a known category", ErrClassifierUnavailable, label)
}

func (c *Classifier) prompt(text string) string {
	names := make([]string, len(c.Taxonomy))
	for i, cat := range c.Taxonomy {
		names[i] = string(cat)
	}
	instruction := fmt.Sprintf(instructionTemplate, strings.Join(names, ", "))
	return fmt.Sprintf("%s\n\nUser request: %s", instruction, text)
}

// normalizeLabel lower-cases and trims the reply, also dropping the quotes,
// backticks and trailing period chat models like to add around one word.
func normalizeLabel(reply string) string {
	s := strings.ToLower(strings.TrimSpace(reply))
	return strings.Trim(s, "\"'`. \n\t")
}

package directory

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/driver"
	"github.com/agenthands/twohop/internal/logging"
	"github.com/agenthands/twohop/internal/metrics"
)

// GraphDirectory serves the directory straight from a Memgraph/Neo4j
// database holding (:Person)-[:KNOWS {status}]-(:Person).
type GraphDirectory struct {
	driver driver.GraphDriver
	log    zerolog.Logger
}

func NewGraphDirectory(d driver.GraphDriver) *GraphDirectory {
	return &GraphDirectory{driver: d, log: logging.Component("directory")}
}

func (g *GraphDirectory) EgoGraph(ctx context.Context, center int64, depth int) (*model.EgoGraph, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth must be positive, got %d", ErrDirectoryUnavailable, depth)
	}

	query := fmt.Sprintf(driver.EgoGraphQuery, depth)
	res, err := g.driver.ExecuteQuery(ctx, query, map[string]interface{}{"center": center})
	if err != nil {
		metrics.DirectoryCalls.WithLabelValues("ego_graph", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	edges := make([]model.Edge, 0, len(res.Records))
	for _, rec := range res.Records {
		src, _ := rec.Get("source")
		dst, _ := rec.Get("target")
		s, ok1 := asInt64(src)
		t, ok2 := asInt64(dst)
		if !ok1 || !ok2 {
			g.log.Warn().Interface("source", src).Interface("target", dst).Msg("skipping edge with non-integer endpoint")
			continue
		}
		edges = append(edges, model.Edge{Source: s, Target: t})
	}
	metrics.DirectoryCalls.WithLabelValues("ego_graph", "ok").Inc()

	return &model.EgoGraph{
		Center: center,
		Depth:  depth,
		Nodes:  nodesOf(center, edges),
		Edges:  edges,
	}, nil
}

func (g *GraphDirectory) Profiles(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	res, err := g.driver.ExecuteQuery(ctx, driver.GetProfilesQuery, map[string]interface{}{"ids": ids})
	if err != nil {
		metrics.DirectoryCalls.WithLabelValues("profiles", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	metrics.DirectoryCalls.WithLabelValues("profiles", "ok").Inc()

	for _, rec := range res.Records {
		p, ok := profileFromRecord(rec)
		if !ok {
			continue
		}
		out[p.ID] = p
	}
	return out, nil
}

func profileFromRecord(rec *neo4j.Record) (model.Profile, bool) {
	rawID, _ := rec.Get("id")
	id, ok := asInt64(rawID)
	if !ok {
		return model.Profile{}, false
	}

	temp, _ := rec.Get("manner_temperature")
	t, _ := asFloat64(temp)

	return model.Profile{
		ID:                id,
		Name:              stringValue(rec, "name"),
		Intro:             stringValue(rec, "intro"),
		Gender:            stringValue(rec, "gender"),
		AgeBand:           stringValue(rec, "age_band"),
		City:              stringValue(rec, "city"),
		MannerTemperature: t,
	}, true
}

// Relationship is a KNOWS edge as stored by Seed.
type Relationship struct {
	Source int64  `json:"source"`
	Target int64  `json:"target"`
	Status string `json:"status"`
}

// Fixture is a snapshot of people and relationships for local setups.
type Fixture struct {
	People        []model.Profile `json:"people"`
	Relationships []Relationship  `json:"relationships"`
}

func (g *GraphDirectory) SavePerson(ctx context.Context, p model.Profile) error {
	_, err := g.driver.ExecuteQuery(ctx, driver.SavePersonQuery, map[string]interface{}{
		"id":                 p.ID,
		"name":               p.Name,
		"intro":              p.Intro,
		"gender":             p.Gender,
		"age_band":           p.AgeBand,
		"city":               p.City,
		"manner_temperature": p.MannerTemperature,
	})
	if err != nil {
		return fmt.Errorf("failed to save person %d: %w", p.ID, err)
	}
	return nil
}

func (g *GraphDirectory) Connect(ctx context.Context, r Relationship) error {
	status := r.Status
	if status == "" {
		status = "active"
	}
	_, err := g.driver.ExecuteQuery(ctx, driver.SaveKnowsQuery, map[string]interface{}{
		"source": r.Source,
		"target": r.Target,
		"status": status,
	})
	if err != nil {
		return fmt.Errorf("failed to connect %d and %d: %w", r.Source, r.Target, err)
	}
	return nil
}

// Seed replaces every Person in the database with the fixture.
func (g *GraphDirectory) Seed(ctx context.Context, f Fixture) error {
	if _, err := g.driver.ExecuteQuery(ctx, driver.ClearPeopleQuery, nil); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}
	for _, p := range f.People {
		if err := g.SavePerson(ctx, p); err != nil {
			return err
		}
	}
	for _, r := range f.Relationships {
		if err := g.Connect(ctx, r); err != nil {
			return err
		}
	}
	g.log.Info().Int("people", len(f.People)).Int("relationships", len(f.Relationships)).Msg("seeded directory")
	return nil
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), n == float64(int64(n))
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func stringValue(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

package directory

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/twohop/internal/core/model"
)

type MockDriver struct {
	Queries    []string
	Params     []map[string]interface{}
	MockResult neo4j.EagerResult
	Err        error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// FakeDirectory serves fixed data and counts calls.
type FakeDirectory struct {
	Graph        *model.EgoGraph
	People       map[int64]model.Profile
	Err          error
	ProfileCalls [][]int64
	GraphCalls   int
}

func (f *FakeDirectory) EgoGraph(ctx context.Context, center int64, depth int) (*model.EgoGraph, error) {
	f.GraphCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Graph, nil
}

func (f *FakeDirectory) Profiles(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	f.ProfileCalls = append(f.ProfileCalls, ids)
	if f.Err != nil {
		return nil, f.Err
	}
	out := map[int64]model.Profile{}
	for _, id := range ids {
		if p, ok := f.People[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

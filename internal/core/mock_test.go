package core

import (
	"context"
	"sync"

	"github.com/agenthands/twohop/internal/core/intent"
	"github.com/agenthands/twohop/internal/core/model"
)

type MockDirectory struct {
	Graph      *model.EgoGraph
	People     map[int64]model.Profile
	GraphErr   error
	ProfileErr error

	mu           sync.Mutex
	ProfileCalls [][]int64
}

func (m *MockDirectory) EgoGraph(ctx context.Context, center int64, depth int) (*model.EgoGraph, error) {
	if m.GraphErr != nil {
		return nil, m.GraphErr
	}
	return m.Graph, nil
}

func (m *MockDirectory) Profiles(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	m.mu.Lock()
	m.ProfileCalls = append(m.ProfileCalls, ids)
	m.mu.Unlock()

	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	out := map[int64]model.Profile{}
	for _, id := range ids {
		if p, ok := m.People[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type MockClassifier struct {
	Category model.Category
}

func (m *MockClassifier) Classify(ctx context.Context, text string) intent.Classification {
	return intent.Classification{Category: m.Category, Source: intent.SourceRemote}
}

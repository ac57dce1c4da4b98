// Package directory reads profiles and the acquaintance graph from the
// directory service. Every backend reports failures wrapped in
// ErrDirectoryUnavailable so the engine can degrade to empty results.
package directory

import (
	"context"
	"errors"

	"github.com/agenthands/twohop/internal/core/model"
)

var ErrDirectoryUnavailable = errors.New("directory unavailable")

// Directory is the read side of the directory service.
type Directory interface {
	// EgoGraph returns the active edges within depth hops of center.
	EgoGraph(ctx context.Context, center int64, depth int) (*model.EgoGraph, error)
	// Profiles resolves ids. Unknown ids are absent from the map.
	Profiles(ctx context.Context, ids []int64) (map[int64]model.Profile, error)
}

// nodesOf lists center followed by every other endpoint in edge order.
func nodesOf(center int64, edges []model.Edge) []int64 {
	seen := map[int64]bool{center: true}
	nodes := []int64{center}
	for _, e := range edges {
		for _, id := range []int64{e.Source, e.Target} {
			if !seen[id] {
				seen[id] = true
				nodes = append(nodes, id)
			}
		}
	}
	return nodes
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

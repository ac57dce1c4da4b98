// Package discovery finds second-degree candidates in an ego-graph.
//
// Traversal order is fixed so results are reproducible: first-degree
// contacts are visited in the order they first appear in the edge list, and
// each contact's edges are scanned in edge-list order. When a candidate can
// be reached through several contacts, the first one visited is kept as the
// introducer.
package discovery

import (
	"github.com/agenthands/twohop/internal/core/model"
)

// SecondDegree is the relationship degree of every candidate returned here.
const SecondDegree = 2

// FirstDegree returns the requester's direct contacts in edge-list order.
func FirstDegree(requester int64, edges []model.Edge) []int64 {
	seen := make(map[int64]bool)
	var contacts []int64
	for _, e := range edges {
		other, ok := e.Other(requester)
		if !ok || other == requester || seen[other] {
			continue
		}
		seen[other] = true
		contacts = append(contacts, other)
	}
	return contacts
}

// Discover returns candidates exactly two hops from the requester, in
// discovery order. An empty result is valid and not an error.
func Discover(requester int64, graph model.EgoGraph) []model.Candidate {
	contacts := FirstDegree(requester, graph.Edges)
	if len(contacts) == 0 {
		return nil
	}

	excluded := make(map[int64]bool, len(contacts)+1)
	excluded[requester] = true
	for _, c := range contacts {
		excluded[c] = true
	}

	// adjacency keeps edge-list order per node
	adj := make(map[int64][]int64)
	for _, e := range graph.Edges {
		if e.Source == e.Target {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	var candidates []model.Candidate
	recorded := make(map[int64]bool)
	for _, introducer := range contacts {
		for _, other := range adj[introducer] {
			if excluded[other] || recorded[other] {
				continue
			}
			recorded[other] = true
			candidates = append(candidates, model.Candidate{
				CandidateID:  other,
				IntroducerID: introducer,
				Degree:       SecondDegree,
			})
		}
	}

	return candidates
}

// IntroducerMap is the candidate -> introducer view of Discover's result.
func IntroducerMap(candidates []model.Candidate) map[int64]int64 {
	m := make(map[int64]int64, len(candidates))
	for _, c := range candidates {
		m[c.CandidateID] = c.IntroducerID
	}
	return m
}

package model

// Edge is an active acquaintance relationship. Direction carries no meaning.
type Edge struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

// Other returns the endpoint opposite to id, and false when id is not on the edge.
func (e Edge) Other(id int64) (int64, bool) {
	switch id {
	case e.Source:
		return e.Target, true
	case e.Target:
		return e.Source, true
	}
	return 0, false
}

// EgoGraph is the acquaintance subgraph within Depth hops of Center,
// fetched fresh for each request.
type EgoGraph struct {
	Center int64   `json:"center"`
	Depth  int     `json:"depth"`
	Nodes  []int64 `json:"nodes"`
	Edges  []Edge  `json:"edges"`
}

// Candidate is a second-degree user together with the contact who can
// introduce them.
type Candidate struct {
	CandidateID  int64 `json:"candidate_id"`
	IntroducerID int64 `json:"introducer_id"`
	Degree       int   `json:"relationship_degree"`
}

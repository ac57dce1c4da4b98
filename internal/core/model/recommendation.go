package model

// ScoreBreakdown keeps every component that went into a final score.
// ModelScore is nil when the rule-based strategy produced the score.
type ScoreBreakdown struct {
	ModelScore     *float64 `json:"model_score"`
	ProfileMatch   float64  `json:"profile_match_score"`
	DegreeScore    float64  `json:"degree_score"`
	CategoryWeight float64  `json:"category_weight"`
	Final          float64  `json:"final_score"`
}

// ScoredCandidate is a candidate after scoring, before ranking.
type ScoredCandidate struct {
	Candidate
	Scores ScoreBreakdown
}

// Recommendation is one entry of the engine's answer.
type Recommendation struct {
	CandidateID  int64          `json:"candidate_id"`
	IntroducerID int64          `json:"introducer_id"`
	Degree       int            `json:"relationship_degree"`
	FinalScore   float64        `json:"final_score"`
	Scores       ScoreBreakdown `json:"scores"`
	Candidate    *Profile       `json:"recommended_user,omitempty"`
	Introducer   *Profile       `json:"introducer_user,omitempty"`
}

// Result is returned for every recommendation request. RequestID is nil
// when the requester could not be resolved.
type Result struct {
	RequestID        *string          `json:"request_id"`
	Recommendations  []Recommendation `json:"recommendations"`
	InferredCategory Category         `json:"inferred_category"`
}

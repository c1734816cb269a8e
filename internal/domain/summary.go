package domain

// Summary is the post-hoc evaluation of a completed debate session.
// It is derived once from the full transcript and never recomputed
// unless explicitly regenerated.
type Summary struct {
	UserArguments    []string `json:"userArguments"`
	CoachArguments   []string `json:"coachArguments"`
	PerformanceScore int      `json:"performanceScore"`
	Feedback         string   `json:"feedback"`
}

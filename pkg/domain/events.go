package domain

// EventType identifies a notable construction decision.
type EventType string

const (
	// EventMergeableUntil: an until was merged and at least one of its
	// right-hand clauses loops.
	EventMergeableUntil EventType = "mergeable_until"
	// EventGloballyLoop: the globally construction folded a loop of one of
	// its conjuncts.
	EventGloballyLoop EventType = "globally_loop"
	// EventDisjunctionMerged: the loops of a disjunction were merged.
	EventDisjunctionMerged EventType = "disjunction_merged"
)

// Event is emitted by the builder to an Observer.
type Event struct {
	Type    EventType `json:"type"`
	Formula string    `json:"formula"`
}

// Observer receives construction events. It must not block.
type Observer func(Event)

// Stats summarizes a translated automaton.
type Stats struct {
	SLAAStates    int    `json:"slaa_states"`
	SLAAEdges     int    `json:"slaa_edges"`
	States        int    `json:"states"`
	Edges         int    `json:"edges"`
	Marks         int    `json:"marks"`
	Acceptance    string `json:"acceptance"`
	Pass          string `json:"pass"`
	Deterministic bool   `json:"deterministic"`
}

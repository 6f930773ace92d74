package domain

// Format selects the serialization of a rendered automaton.
type Format string

const (
	FormatHOA     Format = "hoa"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatSummary Format = "summary"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHOA, FormatDOT, FormatMermaid, FormatSummary}

// Phase selects which automata are rendered.
type Phase int

const (
	// PhaseSLAA renders the self-loop alternating automaton only.
	PhaseSLAA Phase = 1
	// PhaseNA renders the nondeterministic automaton only.
	PhaseNA Phase = 2
	// PhaseBoth renders the alternating automaton followed by the
	// nondeterministic one.
	PhaseBoth Phase = 3
)

// Request asks an engine to translate and render one formula.
type Request struct {
	Formula string `json:"formula" mapstructure:"formula"`
	Format  Format `json:"format,omitempty" mapstructure:"format"`
	Phase   Phase  `json:"phase,omitempty" mapstructure:"phase"`
	// Config overrides the engine configuration for this request.
	Config *Config `json:"config,omitempty" mapstructure:"config"`
}

// Response is the rendered automaton with the statistics of the run that
// produced it.
type Response struct {
	Output string `json:"output"`
	Stats  Stats  `json:"stats"`
	Cached bool   `json:"cached"`
}

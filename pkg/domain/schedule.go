package domain

// Operation names a unit of work the orchestrator can schedule.
type Operation string

// Canonical operations in their fixed execution priority.
const (
	OpIntracellular Operation = "intracellular"
	OpDiffusion     Operation = "diffusion"
	OpIntercellular Operation = "intercellular"
)

// CanonicalOperations is the interval-mode execution order.
// A later operation may read state mutated by an earlier one in the same iteration.
var CanonicalOperations = []Operation{OpIntracellular, OpDiffusion, OpIntercellular}

// MacroStep is one entry of a sequence-mode schedule.
type MacroStep struct {
	Operation Operation `json:"operation" yaml:"operation" mapstructure:"operation"`
	Repeat    int       `json:"repeat" yaml:"repeat" mapstructure:"repeat"`
}

// SchedulerConfig selects either interval mode (three positive intervals) or sequence
// mode (an ordered list of macrosteps). Sequence mode wins when Sequence is non-empty.
type SchedulerConfig struct {
	DiffusionStep     int         `json:"diffusion_step" yaml:"diffusion_step" mapstructure:"diffusion_step"`
	IntracellularStep int         `json:"intracellular_step" yaml:"intracellular_step" mapstructure:"intracellular_step"`
	IntercellularStep int         `json:"intercellular_step" yaml:"intercellular_step" mapstructure:"intercellular_step"`
	Sequence          []MacroStep `json:"sequence,omitempty" yaml:"sequence,omitempty" mapstructure:"sequence"`
	TotalSteps        int         `json:"total_steps" yaml:"total_steps" mapstructure:"total_steps"`
}

// SequenceMode reports whether the config declares an explicit operation sequence.
func (c SchedulerConfig) SequenceMode() bool {
	return len(c.Sequence) > 0
}

// Interval returns the configured interval for a canonical operation, or 0.
func (c SchedulerConfig) Interval(op Operation) int {
	switch op {
	case OpIntracellular:
		return c.IntracellularStep
	case OpDiffusion:
		return c.DiffusionStep
	case OpIntercellular:
		return c.IntercellularStep
	}
	return 0
}

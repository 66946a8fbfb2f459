package domain

// Canonical fate nodes. They are terminal cell decisions and are forced to false on every
// reset, regardless of random initialization.
const (
	FateProliferation = "Proliferation"
	FateApoptosis     = "Apoptosis"
	FateGrowthArrest  = "Growth_Arrest"
	FateNecrosis      = "Necrosis"
)

// FateNodes lists the canonical fate nodes in phenotype priority order.
var FateNodes = []string{FateNecrosis, FateApoptosis, FateGrowthArrest, FateProliferation}

// IsFateNode reports whether name is one of the canonical fate nodes.
func IsFateNode(name string) bool {
	for _, f := range FateNodes {
		if f == name {
			return true
		}
	}
	return false
}

// NetworkNode is one Boolean variable of the regulatory network.
type NetworkNode struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Logic is a Boolean expression over other node names.
	// It is empty for input nodes, whose state is only ever set from outside.
	Logic string `json:"logic,omitempty" yaml:"logic,omitempty" mapstructure:"logic"`

	IsInput      bool `json:"is_input,omitempty" yaml:"is_input,omitempty" mapstructure:"is_input"`
	DefaultState bool `json:"default_state,omitempty" yaml:"default_state,omitempty" mapstructure:"default_state"`
}

// Topology is what a topology loader supplies: the node tuples plus the declared
// input and output name sets.
type Topology struct {
	Nodes []NetworkNode `json:"nodes" yaml:"nodes" mapstructure:"nodes"`

	// Inputs are names of nodes whose state is supplied externally.
	// A node flagged IsInput is an input whether or not it is listed here.
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`

	// Outputs are the nodes reported by output snapshots.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty" mapstructure:"outputs"`

	// FateNodes extends the canonical fate set with model-specific terminal nodes.
	FateNodes []string `json:"fate_nodes,omitempty" yaml:"fate_nodes,omitempty" mapstructure:"fate_nodes"`

	// PropagationSteps is the number of single-gene updates per intracellular evaluation.
	PropagationSteps int `json:"propagation_steps" yaml:"propagation_steps" mapstructure:"propagation_steps"`
}

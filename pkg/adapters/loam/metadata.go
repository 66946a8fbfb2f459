package loam

// NodeMetadata is the frontmatter of one network node document.
// The document body is free-form notes and is not interpreted.
type NodeMetadata struct {
	// ID overrides the node name derived from the file name.
	ID string `json:"id" mapstructure:"id"`

	// Input marks a node set from the environment instead of by a rule.
	Input   bool `json:"input" mapstructure:"input"`
	Default bool `json:"default" mapstructure:"default"`

	// Logic is the Boolean update rule; empty for inputs.
	Logic string `json:"logic" mapstructure:"logic"`

	Output bool `json:"output" mapstructure:"output"`
	// Fate adds a non-canonical node to the fate set. It implies Output.
	Fate bool `json:"fate" mapstructure:"fate"`
}

package protocol

// Tool defines a capability the reasoning agent may invoke instead of
// answering directly. This is the canonical tool definition type used across
// the service. Parameters uses JSON Schema format to describe the tool's
// input arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

package domain

// ToolSpec describes one invocable action family. The catalog advertises
// these to the model provider verbatim; the dispatcher must accept exactly
// the parameters each spec describes.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema Schema
}

// Schema is the JSON-schema subset the tool catalog needs.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
}

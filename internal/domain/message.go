package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one role-tagged turn in a conversation. The history is
// append-only for the duration of a conversation; provider adapters translate
// it to their native wire shape.
//
// Assistant turns that requested tools carry the raw ToolCalls so later
// tool-result turns can be correlated. Tool turns carry the ID and name of
// the call they answer; providers rely on the ID, not on message order alone.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCallRequest
	ToolCallID string
	ToolName   string
}

// ToolCallRequest is a model-issued request to invoke a named tool. The ID
// must be echoed back on the matching tool-result message.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ModelResponse is the provider-agnostic union of one completion: either
// final text or one or more tool calls. Every provider binding normalizes its
// native response shape to this union before returning.
type ModelResponse struct {
	Text      string
	ToolCalls []ToolCallRequest
}

func (r *ModelResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

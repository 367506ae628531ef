package domain

// Command is a structured request naming a device type, an action, and its
// parameters. Commands are transient: one is built per dispatch and discarded
// with the conversation.
type Command struct {
	Device     string         `json:"device"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// Result is the uniform envelope a device returns for every action. Devices
// report failure through Success=false; they never panic and never return a
// Go error across the execute boundary.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// Envelope is the normalized wire shape of one dispatched tool call. At most
// one of State, Data, or States is set depending on the tool: single-device
// snapshots under "state" (light, thermostat), alarm payloads under "data",
// and the whole-home aggregate under "states".
type Envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	State   map[string]any `json:"state,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	States  map[string]any `json:"states,omitempty"`
}

// ExecutedCommand pairs a command issued by the model with the envelope its
// dispatch produced.
type ExecutedCommand struct {
	Command Command  `json:"command"`
	Result  Envelope `json:"result"`
}

// Outcome is the terminal artifact of one conversation: the model's final
// text plus every command executed across the loop, in issue order.
type Outcome struct {
	Text     string
	Commands []ExecutedCommand
}

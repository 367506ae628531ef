// Package tools defines the catalog of actions the model may invoke and the
// dispatcher that routes those invocations onto devices.
package tools

import "home-ai/internal/domain"

// Tool names follow the "control_" + device type convention. StatusToolName
// is the reserved aggregate read with no device type mapping.
const (
	toolPrefix     = "control_"
	StatusToolName = "get_device_status"
)

// Catalog returns the ordered tool specs advertised to the model provider.
// It must describe exactly the parameters the dispatcher accepts per tool;
// TestCatalogMatchesDispatcher keeps the two in lockstep. The room enum comes
// from the registry so the advertised schema cannot drift from the devices
// that actually exist.
func Catalog(rooms []string) []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:        "control_light",
			Description: "Control a room light: turn it on or off, or set its brightness.",
			InputSchema: domain.Schema{
				Type: "object",
				Properties: map[string]domain.Property{
					"room": {
						Type:        "string",
						Description: "Room the light is in",
						Enum:        rooms,
					},
					"action": {
						Type:        "string",
						Description: "Action to perform",
						Enum:        []string{"on", "off", "set_brightness"},
					},
					"brightness": {
						Type:        "integer",
						Description: "Brightness percentage, required for set_brightness",
						Minimum:     number(0),
						Maximum:     number(100),
					},
				},
				Required: []string{"room", "action"},
			},
		},
		{
			Name:        "control_alarm",
			Description: "Control the alarm: set a new alarm, cancel one, or list all alarms.",
			InputSchema: domain.Schema{
				Type: "object",
				Properties: map[string]domain.Property{
					"action": {
						Type:        "string",
						Description: "Action to perform",
						Enum:        []string{"set", "cancel", "list"},
					},
					"time": {
						Type:        "string",
						Description: "Alarm time in HH:MM format",
						Pattern:     "^([01]?[0-9]|2[0-3]):[0-5][0-9]$",
					},
					"label": {
						Type:        "string",
						Description: "Optional alarm label",
					},
				},
				Required: []string{"action"},
			},
		},
		{
			Name:        "control_thermostat",
			Description: "Control the thermostat: set the target temperature or change the mode.",
			InputSchema: domain.Schema{
				Type: "object",
				Properties: map[string]domain.Property{
					"action": {
						Type:        "string",
						Description: "Action to perform",
						Enum:        []string{"set_temp", "set_mode", "off"},
					},
					"temperature": {
						Type:        "number",
						Description: "Target temperature in °C (10-35)",
						Minimum:     number(10),
						Maximum:     number(35),
					},
					"mode": {
						Type:        "string",
						Description: "Operating mode",
						Enum:        []string{"off", "heating", "cooling", "auto"},
					},
				},
				Required: []string{"action"},
			},
		},
		{
			Name:        StatusToolName,
			Description: "Get the current state of every device in the home.",
			InputSchema: domain.Schema{
				Type:     "object",
				Required: []string{},
			},
		},
	}
}

func number(v float64) *float64 { return &v }

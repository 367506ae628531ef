package tools

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"home-ai/internal/device"
	"home-ai/internal/domain"
)

// Dispatcher translates a tool name plus argument map into a device command,
// resolves the target through the registry, and normalizes every outcome into
// a wire envelope. Failures stay inside the envelope so the model can see and
// react to them; nothing below the dispatch boundary surfaces as a Go error.
type Dispatcher struct {
	registry *device.Registry
	logger   *slog.Logger
	routes   map[string]func(map[string]any) domain.Envelope
}

func NewDispatcher(registry *device.Registry, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{registry: registry, logger: logger}
	d.routes = map[string]func(map[string]any) domain.Envelope{
		"control_light":      d.controlLight,
		"control_alarm":      d.controlAlarm,
		"control_thermostat": d.controlThermostat,
		StatusToolName:       d.deviceStatus,
	}
	return d
}

// Dispatch routes one tool invocation. Unknown tool names and unroutable
// arguments produce a failure envelope without touching any device.
func (d *Dispatcher) Dispatch(toolName string, args map[string]any) domain.Envelope {
	handler, ok := d.routes[toolName]
	if !ok {
		d.logger.Warn("unroutable tool call", "tool", toolName)
		return domain.Envelope{Message: fmt.Sprintf("unknown tool: %s", toolName)}
	}

	envelope := handler(args)
	d.logger.Info("dispatched tool call",
		"tool", toolName,
		"success", envelope.Success,
	)
	return envelope
}

// Catalog returns the tool specs advertised for this dispatcher's registry.
func (d *Dispatcher) Catalog() []domain.ToolSpec {
	return Catalog(d.registry.Rooms())
}

// ToolNames lists every routable tool name in stable order.
func (d *Dispatcher) ToolNames() []string {
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) controlLight(args map[string]any) domain.Envelope {
	room, _ := args["room"].(string)
	target, err := d.registry.Resolve("light", room)
	if err != nil {
		return domain.Envelope{Message: err.Error()}
	}

	result := target.Execute(commandFrom("light", args))
	return domain.Envelope{Success: result.Success, Message: result.Message, State: result.Data}
}

func (d *Dispatcher) controlAlarm(args map[string]any) domain.Envelope {
	target, err := d.registry.Resolve("alarm", "")
	if err != nil {
		return domain.Envelope{Message: err.Error()}
	}

	result := target.Execute(commandFrom("alarm", args))
	return domain.Envelope{Success: result.Success, Message: result.Message, Data: result.Data}
}

func (d *Dispatcher) controlThermostat(args map[string]any) domain.Envelope {
	target, err := d.registry.Resolve("thermostat", "")
	if err != nil {
		return domain.Envelope{Message: err.Error()}
	}

	result := target.Execute(commandFrom("thermostat", args))
	return domain.Envelope{Success: result.Success, Message: result.Message, State: result.Data}
}

func (d *Dispatcher) deviceStatus(_ map[string]any) domain.Envelope {
	return domain.Envelope{
		Success: true,
		Message: "Device status retrieved.",
		States:  d.registry.States(),
	}
}

// commandFrom builds the device command for one tool call. Routing keys are
// stripped; everything else passes through untouched, and devices ignore
// parameters they do not know.
func commandFrom(deviceType string, args map[string]any) domain.Command {
	params := make(map[string]any, len(args))
	for key, value := range args {
		if key == "action" || key == "room" {
			continue
		}
		params[key] = value
	}
	action, _ := args["action"].(string)
	return domain.Command{Device: deviceType, Action: action, Parameters: params}
}

// CommandFromCall records the command a tool call represents: the device type
// derives from the tool name, action and parameters from the raw arguments.
func CommandFromCall(call domain.ToolCallRequest) domain.Command {
	action, _ := call.Arguments["action"].(string)
	if action == "" {
		action = "unknown"
	}
	return domain.Command{
		Device:     strings.TrimPrefix(call.Name, toolPrefix),
		Action:     action,
		Parameters: call.Arguments,
	}
}

package tools

import (
	"io"
	"log/slog"
	"testing"

	"home-ai/internal/device"
	"home-ai/internal/domain"
)

func newTestDispatcher() (*Dispatcher, *device.Registry) {
	registry := device.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(registry, logger), registry
}

func TestDispatch_LightRouting(t *testing.T) {
	dispatcher, _ := newTestDispatcher()

	envelope := dispatcher.Dispatch("control_light", map[string]any{
		"room":   "living_room",
		"action": "on",
	})
	if !envelope.Success {
		t.Fatalf("dispatch failed: %s", envelope.Message)
	}
	if envelope.State["power"] != "on" {
		t.Errorf("state: got %v", envelope.State)
	}
}

func TestDispatch_ThermostatRouting(t *testing.T) {
	dispatcher, registry := newTestDispatcher()

	envelope := dispatcher.Dispatch("control_thermostat", map[string]any{
		"action": "set_mode",
		"mode":   "cooling",
	})
	if !envelope.Success {
		t.Fatalf("dispatch failed: %s", envelope.Message)
	}

	thermostat, err := registry.Resolve("thermostat", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if thermostat.State()["mode"] != "cooling" {
		t.Errorf("mode: got %v, want cooling", thermostat.State()["mode"])
	}
}

func TestDispatch_AlarmUsesDataKey(t *testing.T) {
	dispatcher, _ := newTestDispatcher()

	envelope := dispatcher.Dispatch("control_alarm", map[string]any{
		"action": "set",
		"time":   "07:30",
	})
	if !envelope.Success {
		t.Fatalf("dispatch failed: %s", envelope.Message)
	}
	if envelope.Data == nil || envelope.State != nil {
		t.Errorf("alarm envelope should use data, got state=%v data=%v", envelope.State, envelope.Data)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	dispatcher, registry := newTestDispatcher()
	before := registry.States()

	envelope := dispatcher.Dispatch("control_unknown", map[string]any{})
	if envelope.Success {
		t.Error("unknown tool should fail")
	}

	light, _ := registry.Resolve("light", "living_room")
	if light.State()["power"] != before["lights"].(map[string]any)["living_room"].(map[string]any)["power"] {
		t.Error("unknown tool touched the registry")
	}
}

func TestDispatch_UnknownRoom(t *testing.T) {
	dispatcher, _ := newTestDispatcher()

	envelope := dispatcher.Dispatch("control_light", map[string]any{
		"room":   "garage",
		"action": "on",
	})
	if envelope.Success {
		t.Error("unknown room should fail")
	}
}

func TestDispatch_MissingRoom(t *testing.T) {
	dispatcher, _ := newTestDispatcher()

	envelope := dispatcher.Dispatch("control_light", map[string]any{"action": "on"})
	if envelope.Success {
		t.Error("missing room should fail")
	}
}

func TestDispatch_DeviceStatusAggregates(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	dispatcher.Dispatch("control_light", map[string]any{"room": "kitchen", "action": "on"})

	envelope := dispatcher.Dispatch(StatusToolName, nil)
	if !envelope.Success {
		t.Fatalf("status failed: %s", envelope.Message)
	}

	lights, ok := envelope.States["lights"].(map[string]any)
	if !ok {
		t.Fatalf("states missing lights: %v", envelope.States)
	}
	kitchen := lights["kitchen"].(map[string]any)
	if kitchen["power"] != "on" {
		t.Errorf("kitchen light: got %v", kitchen)
	}
}

// The catalog and the routing table are maintained side by side; any drift
// between them is a correctness bug.
func TestCatalogMatchesDispatcher(t *testing.T) {
	dispatcher, _ := newTestDispatcher()

	routable := make(map[string]bool)
	for _, name := range dispatcher.ToolNames() {
		routable[name] = true
	}

	catalog := dispatcher.Catalog()
	if len(catalog) != len(routable) {
		t.Errorf("catalog has %d tools, dispatcher routes %d", len(catalog), len(routable))
	}
	for _, spec := range catalog {
		if !routable[spec.Name] {
			t.Errorf("catalog tool %q has no dispatcher route", spec.Name)
		}
		if spec.InputSchema.Type != "object" {
			t.Errorf("tool %q schema type: got %q", spec.Name, spec.InputSchema.Type)
		}
		if spec.InputSchema.Required == nil {
			t.Errorf("tool %q schema must carry a required list", spec.Name)
		}
	}
}

// The room enum advertised to the model must be the registry's room list, so
// adding or removing a room never leaves the schema stale.
func TestCatalogRoomEnumMatchesRegistry(t *testing.T) {
	dispatcher, registry := newTestDispatcher()

	for _, spec := range dispatcher.Catalog() {
		if spec.Name != "control_light" {
			continue
		}
		got := spec.InputSchema.Properties["room"].Enum
		want := registry.Rooms()
		if len(got) != len(want) {
			t.Fatalf("room enum: got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("room enum: got %v, want %v", got, want)
			}
		}
		return
	}
	t.Fatal("control_light missing from catalog")
}

func TestCommandFromCall(t *testing.T) {
	tests := []struct {
		name       string
		toolName   string
		args       map[string]any
		wantDevice string
		wantAction string
	}{
		{"control prefix stripped", "control_light", map[string]any{"action": "on", "room": "bedroom"}, "light", "on"},
		{"status tool keeps name", StatusToolName, map[string]any{}, StatusToolName, "unknown"},
		{"missing action", "control_alarm", map[string]any{"time": "07:00"}, "alarm", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := CommandFromCall(domain.ToolCallRequest{Name: tt.toolName, Arguments: tt.args})
			if cmd.Device != tt.wantDevice {
				t.Errorf("device: got %s, want %s", cmd.Device, tt.wantDevice)
			}
			if cmd.Action != tt.wantAction {
				t.Errorf("action: got %s, want %s", cmd.Action, tt.wantAction)
			}
		})
	}
}

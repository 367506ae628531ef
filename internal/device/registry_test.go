package device

import (
	"errors"
	"testing"
)

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name       string
		deviceType string
		room       string
		wantType   string
		wantErr    error
	}{
		{"light with room", "light", "living_room", "light", nil},
		{"alarm ignores room", "alarm", "", "alarm", nil},
		{"thermostat", "thermostat", "", "thermostat", nil},
		{"unknown room", "light", "garage", "", ErrUnknownRoom},
		{"unknown type", "toaster", "", "", ErrUnknownDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := registry.Resolve(tt.deviceType, tt.room)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if dev.Type() != tt.wantType {
				t.Errorf("type: got %s, want %s", dev.Type(), tt.wantType)
			}
		})
	}
}

func TestRegistry_States(t *testing.T) {
	registry := NewRegistry()
	states := registry.States()

	lights, ok := states["lights"].(map[string]any)
	if !ok {
		t.Fatalf("lights missing from states: %v", states)
	}
	for _, room := range []string{"living_room", "bedroom", "kitchen"} {
		if _, ok := lights[room]; !ok {
			t.Errorf("missing light state for %s", room)
		}
	}
	if _, ok := states["alarm"]; !ok {
		t.Error("missing alarm state")
	}
	if _, ok := states["thermostat"]; !ok {
		t.Error("missing thermostat state")
	}
}

func TestRegistry_Rooms(t *testing.T) {
	rooms := NewRegistry().Rooms()
	want := []string{"bedroom", "kitchen", "living_room"}
	if len(rooms) != len(want) {
		t.Fatalf("rooms: got %v", rooms)
	}
	for i := range want {
		if rooms[i] != want[i] {
			t.Errorf("rooms[%d]: got %s, want %s", i, rooms[i], want[i])
		}
	}
}

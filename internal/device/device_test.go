package device

import (
	"testing"

	"home-ai/internal/domain"
)

func command(action string, params map[string]any) domain.Command {
	if params == nil {
		params = map[string]any{}
	}
	return domain.Command{Action: action, Parameters: params}
}

func TestLight_OnOff(t *testing.T) {
	light := NewLight("living_room")

	result := light.Execute(command("on", nil))
	if !result.Success {
		t.Fatalf("on failed: %s", result.Message)
	}
	if result.Data["power"] != "on" || result.Data["brightness"] != 100 {
		t.Errorf("after on: got %v", result.Data)
	}

	result = light.Execute(command("off", nil))
	if !result.Success {
		t.Fatalf("off failed: %s", result.Message)
	}
	if result.Data["power"] != "off" || result.Data["brightness"] != 0 {
		t.Errorf("after off: got %v", result.Data)
	}
}

func TestLight_SetBrightness(t *testing.T) {
	tests := []struct {
		name           string
		brightness     any
		wantBrightness int
		wantPower      string
	}{
		{"mid range", float64(50), 50, "on"},
		{"clamps above max", float64(150), 100, "on"},
		{"clamps below min", float64(-10), 0, "off"},
		{"zero turns off", float64(0), 0, "off"},
		{"int accepted", 75, 75, "on"},
		{"missing defaults to full", nil, 100, "on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			light := NewLight("bedroom")
			params := map[string]any{}
			if tt.brightness != nil {
				params["brightness"] = tt.brightness
			}

			result := light.Execute(command("set_brightness", params))
			if !result.Success {
				t.Fatalf("set_brightness failed: %s", result.Message)
			}

			state := light.State()
			if state["brightness"] != tt.wantBrightness {
				t.Errorf("brightness: got %v, want %d", state["brightness"], tt.wantBrightness)
			}
			if state["power"] != tt.wantPower {
				t.Errorf("power: got %v, want %s", state["power"], tt.wantPower)
			}
		})
	}
}

func TestLight_UnknownAction(t *testing.T) {
	light := NewLight("kitchen")
	before := light.State()

	result := light.Execute(command("explode", nil))
	if result.Success {
		t.Error("unknown action should fail")
	}

	after := light.State()
	if after["power"] != before["power"] || after["brightness"] != before["brightness"] {
		t.Errorf("unknown action mutated state: before %v, after %v", before, after)
	}
}

func TestAlarm_SetCancelRoundTrip(t *testing.T) {
	alarm := NewAlarm()

	result := alarm.Execute(command("set", map[string]any{"time": "07:00", "label": "wake up"}))
	if !result.Success {
		t.Fatalf("set failed: %s", result.Message)
	}

	result = alarm.Execute(command("cancel", map[string]any{"time": "07:00"}))
	if !result.Success {
		t.Fatalf("cancel failed: %s", result.Message)
	}

	entries := alarm.State()["alarms"].([]AlarmEntry)
	if len(entries) != 0 {
		t.Errorf("expected empty alarm list, got %d entries", len(entries))
	}
}

func TestAlarm_ListPreservesInsertionOrder(t *testing.T) {
	alarm := NewAlarm()
	alarm.Execute(command("set", map[string]any{"time": "07:00"}))
	alarm.Execute(command("set", map[string]any{"time": "08:00"}))

	result := alarm.Execute(command("list", nil))
	if !result.Success {
		t.Fatalf("list failed: %s", result.Message)
	}
	if result.Message != "2 alarms are set." {
		t.Errorf("message: got %q", result.Message)
	}

	entries := result.Data["alarms"].([]AlarmEntry)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Time != "07:00" || entries[1].Time != "08:00" {
		t.Errorf("entries out of insertion order: %v", entries)
	}
}

func TestAlarm_Failures(t *testing.T) {
	alarm := NewAlarm()

	if result := alarm.Execute(command("set", nil)); result.Success {
		t.Error("set without time should fail")
	}
	if result := alarm.Execute(command("cancel", map[string]any{"time": "09:00"})); result.Success {
		t.Error("cancel with no matching alarm should fail")
	}
	if result := alarm.Execute(command("snooze", nil)); result.Success {
		t.Error("unknown action should fail")
	}
}

func TestThermostat_SetTempClampsAndWakes(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		wantTemp float64
	}{
		{"in range", 24, 24},
		{"clamps high", 50, 35},
		{"clamps low", 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thermostat := NewThermostat()
			thermostat.Execute(command("off", nil))

			result := thermostat.Execute(command("set_temp", map[string]any{"temperature": tt.temp}))
			if !result.Success {
				t.Fatalf("set_temp failed: %s", result.Message)
			}

			state := thermostat.State()
			if state["target_temp"] != tt.wantTemp {
				t.Errorf("target_temp: got %v, want %v", state["target_temp"], tt.wantTemp)
			}
			if state["mode"] != "auto" {
				t.Errorf("mode: got %v, want auto after set_temp while off", state["mode"])
			}
		})
	}
}

func TestThermostat_SetMode(t *testing.T) {
	thermostat := NewThermostat()

	result := thermostat.Execute(command("set_mode", map[string]any{"mode": "cooling"}))
	if !result.Success {
		t.Fatalf("set_mode failed: %s", result.Message)
	}
	if thermostat.State()["mode"] != "cooling" {
		t.Errorf("mode: got %v, want cooling", thermostat.State()["mode"])
	}

	result = thermostat.Execute(command("set_mode", map[string]any{"mode": "party"}))
	if result.Success {
		t.Error("invalid mode should fail")
	}
	if thermostat.State()["mode"] != "cooling" {
		t.Errorf("invalid mode changed state: %v", thermostat.State()["mode"])
	}
}

func TestThermostat_RequiresTemperature(t *testing.T) {
	thermostat := NewThermostat()
	if result := thermostat.Execute(command("set_temp", nil)); result.Success {
		t.Error("set_temp without temperature should fail")
	}
}

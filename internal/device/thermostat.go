package device

import (
	"fmt"
	"sync"

	"home-ai/internal/domain"
)

const (
	minTargetTemp = 10.0
	maxTargetTemp = 35.0
)

var thermostatModes = map[string]bool{
	"off":     true,
	"heating": true,
	"cooling": true,
	"auto":    true,
}

// Thermostat is a simulated thermostat with a target temperature and an
// operating mode.
type Thermostat struct {
	mu          sync.Mutex
	currentTemp float64
	targetTemp  float64
	mode        string
}

func NewThermostat() *Thermostat {
	return &Thermostat{currentTemp: 22.0, targetTemp: 22.0, mode: "auto"}
}

func (t *Thermostat) Type() string { return "thermostat" }

var thermostatActions = map[string]func(*Thermostat, map[string]any) domain.Result{
	"set_temp": (*Thermostat).setTemp,
	"set_mode": (*Thermostat).setMode,
	"off":      (*Thermostat).turnOff,
}

func (t *Thermostat) Execute(cmd domain.Command) domain.Result {
	handler, ok := thermostatActions[cmd.Action]
	if !ok {
		return domain.Result{Message: fmt.Sprintf("unknown thermostat action: %s", cmd.Action)}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return handler(t, cmd.Parameters)
}

func (t *Thermostat) setTemp(params map[string]any) domain.Result {
	requested, ok := numberParam(params, "temperature")
	if !ok {
		return domain.Result{Message: "A target temperature is required."}
	}

	temp := clamp(requested, minTargetTemp, maxTargetTemp)
	t.targetTemp = temp

	// Setting a temperature while off implies the user wants it running.
	if t.mode == "off" {
		t.mode = "auto"
	}

	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Set the target temperature to %.1f°C.", temp),
		Data:    t.snapshot(),
	}
}

func (t *Thermostat) setMode(params map[string]any) domain.Result {
	mode := stringParam(params, "mode")
	if !thermostatModes[mode] {
		return domain.Result{Message: fmt.Sprintf("unsupported thermostat mode: %s", mode)}
	}

	t.mode = mode
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Set the thermostat mode to %s.", mode),
		Data:    t.snapshot(),
	}
}

func (t *Thermostat) turnOff(_ map[string]any) domain.Result {
	t.mode = "off"
	return domain.Result{
		Success: true,
		Message: "Turned off the thermostat.",
		Data:    t.snapshot(),
	}
}

func (t *Thermostat) State() map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// snapshot must be called with the lock held.
func (t *Thermostat) snapshot() map[string]any {
	return map[string]any{
		"current_temp": t.currentTemp,
		"target_temp":  t.targetTemp,
		"mode":         t.mode,
	}
}

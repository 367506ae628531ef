package device

import (
	"fmt"
	"sync"

	"home-ai/internal/domain"
)

// Light is a simulated dimmable light in one room. Power always derives from
// brightness: anything above zero is on.
type Light struct {
	room string

	mu         sync.Mutex
	power      string
	brightness int
}

func NewLight(room string) *Light {
	return &Light{room: room, power: "off"}
}

func (l *Light) Type() string { return "light" }

var lightActions = map[string]func(*Light, map[string]any) domain.Result{
	"on":             (*Light).turnOn,
	"off":            (*Light).turnOff,
	"set_brightness": (*Light).setBrightness,
}

func (l *Light) Execute(cmd domain.Command) domain.Result {
	handler, ok := lightActions[cmd.Action]
	if !ok {
		return domain.Result{Message: fmt.Sprintf("unknown light action: %s", cmd.Action)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return handler(l, cmd.Parameters)
}

func (l *Light) turnOn(_ map[string]any) domain.Result {
	l.power = "on"
	l.brightness = 100
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Turned on the %s light.", l.room),
		Data:    l.snapshot(),
	}
}

func (l *Light) turnOff(_ map[string]any) domain.Result {
	l.power = "off"
	l.brightness = 0
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Turned off the %s light.", l.room),
		Data:    l.snapshot(),
	}
}

func (l *Light) setBrightness(params map[string]any) domain.Result {
	requested, ok := numberParam(params, "brightness")
	if !ok {
		requested = 100
	}

	brightness := int(clamp(requested, 0, 100))
	l.brightness = brightness
	if brightness > 0 {
		l.power = "on"
	} else {
		l.power = "off"
	}

	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Set the %s light brightness to %d%%.", l.room, brightness),
		Data:    l.snapshot(),
	}
}

func (l *Light) State() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// snapshot must be called with the lock held.
func (l *Light) snapshot() map[string]any {
	return map[string]any{
		"room":       l.room,
		"power":      l.power,
		"brightness": l.brightness,
	}
}

package device

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownDevice = errors.New("unknown device type")
	ErrUnknownRoom   = errors.New("unknown room")
)

// Registry owns every device in the home. It is the single piece of state
// shared across concurrent conversations; each device serializes its own
// mutations, so the registry is read-only after construction.
type Registry struct {
	lights     map[string]*Light
	alarm      *Alarm
	thermostat *Thermostat
}

// NewRegistry builds the default home: one light per room, one alarm, one
// thermostat. Devices live for the process lifetime.
func NewRegistry() *Registry {
	return &Registry{
		lights: map[string]*Light{
			"living_room": NewLight("living_room"),
			"bedroom":     NewLight("bedroom"),
			"kitchen":     NewLight("kitchen"),
		},
		alarm:      NewAlarm(),
		thermostat: NewThermostat(),
	}
}

// Resolve maps a device type (and a room, for lights) to its instance.
// Resolution failure is an error for the dispatcher to fold into a failure
// envelope; it never reaches a device.
func (r *Registry) Resolve(deviceType, room string) (Device, error) {
	switch deviceType {
	case "light":
		light, ok := r.lights[room]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRoom, room)
		}
		return light, nil
	case "alarm":
		return r.alarm, nil
	case "thermostat":
		return r.thermostat, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, deviceType)
	}
}

// Rooms lists the known light rooms in stable order.
func (r *Registry) Rooms() []string {
	rooms := make([]string, 0, len(r.lights))
	for room := range r.lights {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// States aggregates a snapshot of every device, keyed the way the status tool
// reports them.
func (r *Registry) States() map[string]any {
	lights := make(map[string]any, len(r.lights))
	for room, light := range r.lights {
		lights[room] = light.State()
	}
	return map[string]any{
		"lights":     lights,
		"alarm":      r.alarm.State(),
		"thermostat": r.thermostat.State(),
	}
}

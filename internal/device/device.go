// Package device implements the simulated home appliances and the registry
// that owns them for the lifetime of the process.
package device

import "home-ai/internal/domain"

// Device is the capability set every controllable appliance implements.
// Execute reports failure through the Result, never through a panic or a Go
// error. State is a pure read of the current fields.
type Device interface {
	Type() string
	Execute(cmd domain.Command) domain.Result
	State() map[string]any
}

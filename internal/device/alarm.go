package device

import (
	"fmt"
	"sync"
	"time"

	"home-ai/internal/domain"
)

// AlarmEntry is one scheduled alarm. Entries keep insertion order.
type AlarmEntry struct {
	Time      string `json:"time"`
	Label     string `json:"label"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at"`
}

// Alarm is a simulated alarm clock holding an ordered list of entries.
type Alarm struct {
	now func() time.Time

	mu      sync.Mutex
	entries []AlarmEntry
}

func NewAlarm() *Alarm {
	return &Alarm{now: time.Now}
}

func (a *Alarm) Type() string { return "alarm" }

var alarmActions = map[string]func(*Alarm, map[string]any) domain.Result{
	"set":    (*Alarm).set,
	"cancel": (*Alarm).cancel,
	"list":   (*Alarm).list,
}

func (a *Alarm) Execute(cmd domain.Command) domain.Result {
	handler, ok := alarmActions[cmd.Action]
	if !ok {
		return domain.Result{Message: fmt.Sprintf("unknown alarm action: %s", cmd.Action)}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return handler(a, cmd.Parameters)
}

func (a *Alarm) set(params map[string]any) domain.Result {
	at := stringParam(params, "time")
	if at == "" {
		return domain.Result{Message: "An alarm time is required."}
	}

	entry := AlarmEntry{
		Time:      at,
		Label:     stringParam(params, "label"),
		Enabled:   true,
		CreatedAt: a.now().Format(time.RFC3339),
	}
	a.entries = append(a.entries, entry)

	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Alarm set for %s.", at),
		Data:    map[string]any{"alarm": entry},
	}
}

func (a *Alarm) cancel(params map[string]any) domain.Result {
	at := stringParam(params, "time")
	if at == "" {
		return domain.Result{Message: "An alarm time is required to cancel."}
	}

	kept := a.entries[:0]
	for _, entry := range a.entries {
		if entry.Time != at {
			kept = append(kept, entry)
		}
	}

	if len(kept) == len(a.entries) {
		return domain.Result{Message: fmt.Sprintf("No alarm is set for %s.", at)}
	}
	a.entries = kept

	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Cancelled the %s alarm.", at),
		Data:    a.snapshot(),
	}
}

func (a *Alarm) list(_ map[string]any) domain.Result {
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("%d alarms are set.", len(a.entries)),
		Data:    a.snapshot(),
	}
}

func (a *Alarm) State() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// snapshot must be called with the lock held.
func (a *Alarm) snapshot() map[string]any {
	entries := make([]AlarmEntry, len(a.entries))
	copy(entries, a.entries)
	return map[string]any{"alarms": entries}
}

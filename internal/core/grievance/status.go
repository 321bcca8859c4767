// Package grievance contains the pure business logic for the grievance
// lifecycle: status and severity enums, the allowed-transitions machine,
// and guard evaluation. No I/O.
package grievance

import (
	"fmt"
	"sync"

	"github.com/anggasct/fluo"
)

// Status represents the lifecycle state of a grievance.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusEscalated  Status = "escalated"
	StatusResolved   Status = "resolved"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusEscalated, StatusResolved:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q (valid: open, in_progress, escalated, resolved)", s)
}

// Active reports whether the grievance still needs attention. Only active
// grievances participate in SLA breach sweeps.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusEscalated
}

// transitionEvents maps a target status to the event that drives the
// lifecycle machine toward it.
var transitionEvents = map[Status]string{
	StatusInProgress: "begin_work",
	StatusEscalated:  "escalate",
	StatusResolved:   "resolve",
	StatusOpen:       "reopen",
}

var (
	machineOnce sync.Once
	machineDef  fluo.MachineDefinition
)

// lifecycleDefinition builds the grievance status machine once. Statuses
// only move forward toward resolved; open and in_progress trade places
// with escalated while the jurisdiction chain still has headroom.
func lifecycleDefinition() fluo.MachineDefinition {
	machineOnce.Do(func() {
		builder := fluo.NewMachine()
		builder.State(string(StatusOpen)).Initial().
			To(string(StatusInProgress)).On(transitionEvents[StatusInProgress]).
			To(string(StatusEscalated)).On(transitionEvents[StatusEscalated]).
			To(string(StatusResolved)).On(transitionEvents[StatusResolved])
		builder.State(string(StatusInProgress)).
			To(string(StatusEscalated)).On(transitionEvents[StatusEscalated]).
			To(string(StatusResolved)).On(transitionEvents[StatusResolved])
		builder.State(string(StatusEscalated)).
			To(string(StatusOpen)).On(transitionEvents[StatusOpen]).
			To(string(StatusInProgress)).On(transitionEvents[StatusInProgress]).
			To(string(StatusResolved)).On(transitionEvents[StatusResolved])
		builder.State(string(StatusResolved)).Final()
		machineDef = builder.Build()
	})
	return machineDef
}

// CanTransition reports whether moving a grievance from one status to
// another is allowed by the lifecycle machine. Self-transitions and any
// move out of resolved are rejected.
func CanTransition(from, to Status) bool {
	event, ok := transitionEvents[to]
	if !ok {
		return false
	}

	machine := lifecycleDefinition().CreateInstance()
	if err := machine.Start(); err != nil {
		return false
	}
	if err := machine.SetState(string(from)); err != nil {
		return false
	}

	result := machine.HandleEvent(event, nil)
	return result != nil && result.Processed && result.StateChanged && result.CurrentState == string(to)
}

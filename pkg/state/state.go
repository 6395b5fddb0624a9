// Package state implements the job lifecycle state machine: the finite set
// of states a job passes through and the transitions permitted between
// them.
package state

import "fmt"

// JobState is one of the lifecycle states a job may occupy.
type JobState string

const (
	Pending   JobState = "pending"
	Queued    JobState = "queued"
	Assigned  JobState = "assigned"
	Running   JobState = "running"
	Completed JobState = "completed"
	Failed    JobState = "failed"
	Cancelled JobState = "cancelled"
	Timeout   JobState = "timeout"
)

// Terminal reports whether a state has no permitted outgoing transitions.
func Terminal(s JobState) bool {
	switch s {
	case Completed, Failed, Cancelled, Timeout:
		return true
	default:
		return false
	}
}

var transitions = map[JobState]map[JobState]bool{
	Pending:  {Queued: true, Failed: true},
	Queued:   {Assigned: true, Cancelled: true, Failed: true},
	Assigned: {Running: true, Cancelled: true, Failed: true},
	Running:  {Completed: true, Failed: true, Cancelled: true, Timeout: true},
}

// TransitionError reports an attempt to move between two states with no
// permitted edge. Per the protocol this is a programming error: the
// executor drives the machine sequentially and should never attempt an
// edge the table disallows.
type TransitionError struct {
	From JobState
	To   JobState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// Machine holds a single job's current state. It is not safe for concurrent
// use: the executor drives one machine per job from a single goroutine, so
// concurrent transitions on the same job are impossible by construction.
type Machine struct {
	current JobState
}

// NewMachine returns a Machine in the Pending state.
func NewMachine() *Machine {
	return &Machine{current: Pending}
}

// Current returns the machine's current state.
func (m *Machine) Current() JobState {
	return m.current
}

// Transition moves the machine to target if the edge from the current state
// is permitted, otherwise it returns a TransitionError and leaves the
// machine unchanged.
func (m *Machine) Transition(target JobState) error {
	if Terminal(m.current) {
		return &TransitionError{From: m.current, To: target}
	}
	if !transitions[m.current][target] {
		return &TransitionError{From: m.current, To: target}
	}
	m.current = target
	return nil
}

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, Pending, m.Current())

	require.NoError(t, m.Transition(Queued))
	require.NoError(t, m.Transition(Assigned))
	require.NoError(t, m.Transition(Running))
	require.NoError(t, m.Transition(Completed))
	assert.Equal(t, Completed, m.Current())
}

func TestMachineRejectsInvalidEdge(t *testing.T) {
	m := NewMachine()
	err := m.Transition(Running)
	require.Error(t, err)
	var transErr *TransitionError
	assert.ErrorAs(t, err, &transErr)
	assert.Equal(t, Pending, m.Current())
}

func TestTerminalStatesRejectEveryTransition(t *testing.T) {
	for _, terminal := range []JobState{Completed, Failed, Cancelled, Timeout} {
		for _, target := range []JobState{Pending, Queued, Assigned, Running, Completed, Failed, Cancelled, Timeout} {
			m := &Machine{current: terminal}
			err := m.Transition(target)
			assert.Error(t, err, "expected %s -> %s to be rejected", terminal, target)
		}
	}
}

func TestTerminalHelper(t *testing.T) {
	assert.True(t, Terminal(Completed))
	assert.True(t, Terminal(Failed))
	assert.True(t, Terminal(Cancelled))
	assert.True(t, Terminal(Timeout))
	assert.False(t, Terminal(Pending))
	assert.False(t, Terminal(Running))
}

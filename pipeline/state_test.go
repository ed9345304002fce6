package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "Selecting", StateSelecting.String())
	assert.Equal(t, "Broadcasting", StateBroadcasting.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown", State(42).String())
}

func TestCanTransition(t *testing.T) {
	forward := []State{
		StateSelecting, StateBuilding, StateFunding, StateSigning,
		StateBroadcasting, StateConfirming, StateDone,
	}
	for i := 0; i+1 < len(forward); i++ {
		assert.True(t, CanTransition(forward[i], forward[i+1]), "%s -> %s", forward[i], forward[i+1])
		assert.True(t, CanTransition(forward[i], StateFailed), "%s -> Failed", forward[i])
	}

	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateSelecting, true},
		{StateIdle, StateBuilding, true},
		{StateIdle, StateFunding, false},
		{StateBootstrapping, StateSelecting, true},
		{StateSelecting, StateFunding, false},
		{StateFunding, StateBroadcasting, false},
		{StateSigning, StateConfirming, false},
		{StateConfirming, StateSelecting, false},
		{StateDone, StateFailed, false},
		{StateFailed, StateSelecting, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateConfirming.Terminal())
}

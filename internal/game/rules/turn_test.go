package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnController_InitialState(t *testing.T) {
	tc := NewTurnController("alice")

	assert.Equal(t, PhaseBegin, tc.CurrentPhase())
	assert.Equal(t, 1, tc.TurnNumber())
	assert.Equal(t, "alice", tc.ActivePlayer())
}

func TestTurnController_PhaseSequence(t *testing.T) {
	tc := NewTurnController("alice")

	expected := []Phase{PhaseMain1, PhaseCombat, PhaseMain2, PhaseEnd, PhaseCleanup}
	for _, want := range expected {
		phase, wrapped := tc.AdvancePhase("bob")
		require.False(t, wrapped)
		assert.Equal(t, want, phase)
	}
}

func TestTurnController_Wraparound(t *testing.T) {
	tc := NewTurnController("alice")

	for i := 0; i < len(turnSequence)-1; i++ {
		tc.AdvancePhase("bob")
	}
	phase, wrapped := tc.AdvancePhase("bob")

	assert.True(t, wrapped)
	assert.Equal(t, PhaseBegin, phase)
	assert.Equal(t, 2, tc.TurnNumber())
	assert.Equal(t, "bob", tc.ActivePlayer())
}

func TestRestoreTurnController(t *testing.T) {
	tc := RestoreTurnController("bob", PhaseMain2, 7)

	assert.Equal(t, PhaseMain2, tc.CurrentPhase())
	assert.Equal(t, 7, tc.TurnNumber())
	assert.Equal(t, "bob", tc.ActivePlayer())
}

func TestPhaseFromString_RoundTrip(t *testing.T) {
	for _, phase := range turnSequence {
		assert.Equal(t, phase, PhaseFromString(phase.String()))
	}
	assert.Equal(t, PhaseBegin, PhaseFromString("NO_SUCH_PHASE"))
}

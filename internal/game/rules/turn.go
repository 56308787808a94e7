package rules

import (
	"fmt"
	"strings"
)

// Phase represents the phases of a duel turn.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseMain1
	PhaseCombat
	PhaseMain2
	PhaseEnd
	PhaseCleanup
)

var phaseNames = map[Phase]string{
	PhaseBegin:   "BEGIN",
	PhaseMain1:   "MAIN_1",
	PhaseCombat:  "COMBAT",
	PhaseMain2:   "MAIN_2",
	PhaseEnd:     "END",
	PhaseCleanup: "CLEANUP",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// PhaseFromString parses a phase name emitted by String(). Unknown names
// resolve to PhaseBegin so deserialized older snapshots stay loadable.
func PhaseFromString(name string) Phase {
	for phase, n := range phaseNames {
		if n == name {
			return phase
		}
	}
	return PhaseBegin
}

// IsMain reports whether the phase is one of the two main phases.
func (p Phase) IsMain() bool {
	return p == PhaseMain1 || p == PhaseMain2
}

// turnSequence is the fixed phase order of a turn.
var turnSequence = []Phase{
	PhaseBegin,
	PhaseMain1,
	PhaseCombat,
	PhaseMain2,
	PhaseEnd,
	PhaseCleanup,
}

// TurnController tracks the active player and phase progression of a duel.
type TurnController struct {
	phaseIndex   int
	turnNumber   int
	activePlayer string
}

// NewTurnController creates a turn controller initialized at turn 1,
// begin phase.
func NewTurnController(activePlayer string) *TurnController {
	return &TurnController{
		phaseIndex:   0,
		turnNumber:   1,
		activePlayer: strings.TrimSpace(activePlayer),
	}
}

// RestoreTurnController rebuilds a controller from snapshot fields.
func RestoreTurnController(activePlayer string, phase Phase, turnNumber int) *TurnController {
	if turnNumber < 1 {
		turnNumber = 1
	}
	index := 0
	for i, p := range turnSequence {
		if p == phase {
			index = i
			break
		}
	}
	return &TurnController{
		phaseIndex:   index,
		turnNumber:   turnNumber,
		activePlayer: strings.TrimSpace(activePlayer),
	}
}

// CurrentPhase returns the phase currently in progress.
func (tc *TurnController) CurrentPhase() Phase {
	return turnSequence[tc.phaseIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tc *TurnController) TurnNumber() int {
	return tc.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tc *TurnController) ActivePlayer() string {
	return tc.activePlayer
}

// AdvancePhase advances to the next phase in the turn structure. When the
// sequence wraps past cleanup the turn number is incremented and the
// active player rotates to nextActivePlayer if provided. Reports whether
// the turn wrapped.
func (tc *TurnController) AdvancePhase(nextActivePlayer string) (Phase, bool) {
	tc.phaseIndex++
	wrapped := false
	if tc.phaseIndex >= len(turnSequence) {
		tc.phaseIndex = 0
		tc.turnNumber++
		wrapped = true
		if next := strings.TrimSpace(nextActivePlayer); next != "" {
			tc.activePlayer = next
		}
	}
	return tc.CurrentPhase(), wrapped
}

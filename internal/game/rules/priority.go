package rules

import "fmt"

// WindowStage identifies the stage of a combat priority window.
type WindowStage string

const (
	// StageAction is the base stage; two consecutive passes here close
	// the window and trigger battlefield resolution.
	StageAction WindowStage = "ACTION"
	// StageReaction is entered whenever a card is played while holding
	// combat priority.
	StageReaction WindowStage = "REACTION"
)

// CombatWindow tracks the attack/defend/priority-pass protocol of a
// single battlefield engagement. Entering a battlefield opens the window
// with first priority to the initiating player's opponent.
type CombatWindow struct {
	ID            string
	BattlefieldID string
	Initiator     string
	Holder        string
	Stage         WindowStage
	LastActor     string
	ActionPasses  int
	Closed        bool
}

// NewCombatWindow opens a priority window for a battlefield engagement.
// The initiator's opponent gets first priority.
func NewCombatWindow(id, battlefieldID, initiator, opponent string) *CombatWindow {
	return &CombatWindow{
		ID:            id,
		BattlefieldID: battlefieldID,
		Initiator:     initiator,
		Holder:        opponent,
		Stage:         StageAction,
	}
}

// RecordPlay registers that the priority holder played a card. The stage
// flips to reaction and priority passes to the opponent; the consecutive
// action-pass counter resets.
func (w *CombatWindow) RecordPlay(player, opponent string) error {
	if w.Closed {
		return fmt.Errorf("combat window %s is closed", w.ID)
	}
	if w.Holder != player {
		return fmt.Errorf("player %s does not hold combat priority", player)
	}
	w.Stage = StageReaction
	w.LastActor = player
	w.Holder = opponent
	w.ActionPasses = 0
	return nil
}

// Pass registers a priority pass by the holder. Passing from reaction
// returns priority to whoever last acted (or the opponent if none acted)
// and drops back to the action stage. Passing from action increments the
// consecutive-pass counter; the second consecutive action pass closes the
// window. Reports whether the engagement should now resolve.
func (w *CombatWindow) Pass(player, opponent string) (bool, error) {
	if w.Closed {
		return false, fmt.Errorf("combat window %s is closed", w.ID)
	}
	if w.Holder != player {
		return false, fmt.Errorf("player %s does not hold combat priority", player)
	}

	if w.Stage == StageReaction {
		if w.LastActor != "" {
			w.Holder = w.LastActor
		} else {
			w.Holder = opponent
		}
		w.Stage = StageAction
		return false, nil
	}

	w.ActionPasses++
	if w.ActionPasses >= 2 {
		w.Closed = true
		return true, nil
	}
	w.Holder = opponent
	return false, nil
}

package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/rules"
)

// ProceedToNextPhase advances the turn cycle on the active player's
// request. Advancement is blocked while prompts are unresolved or a
// combat engagement is open; decision-free phases then chain
// automatically up to the next phase that needs player input.
func (e *DuelEngine) ProceedToNextPhase(playerID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusInProgress {
		return fmt.Errorf("match %s has no running turn cycle", gs.matchID)
	}
	if playerID != gs.turns.ActivePlayer() {
		return fmt.Errorf("only the active player may advance the phase")
	}
	if gs.combat != nil && !gs.combat.Closed {
		return fmt.Errorf("a combat engagement is still open")
	}
	if n := len(gs.unresolvedPrompts("")); n > 0 {
		return fmt.Errorf("%d prompts must be resolved before the phase can advance", n)
	}

	e.advancePhase(gs)
	e.autoAdvance(gs)
	return nil
}

// advancePhase steps the controller one phase and runs the entry work of
// the new phase.
func (e *DuelEngine) advancePhase(gs *gameState) {
	if gs.status.Terminal() {
		return
	}
	gs.mainWindowOpen = false

	next := gs.opponent(gs.turns.ActivePlayer()).ID
	phase, wrapped := gs.turns.AdvancePhase(next)
	if wrapped {
		// Cleanup handed the turn over; align the current-player index.
		for i, p := range gs.players {
			if p.ID == gs.turns.ActivePlayer() {
				gs.currentIndex = i
			}
		}
	}

	gs.events.Publish(rules.Event{
		Type:        rules.EventPhaseChanged,
		PlayerID:    gs.turns.ActivePlayer(),
		Turn:        gs.turnNumber(),
		Timestamp:   time.Now(),
		Description: phase.String(),
	})

	switch phase {
	case rules.PhaseBegin:
		e.runBeginPhase(gs)
	case rules.PhaseMain1, rules.PhaseMain2:
		gs.mainWindowOpen = true
	case rules.PhaseCombat:
		e.runCombatPhase(gs)
	case rules.PhaseEnd:
		e.runEndPhase(gs)
	case rules.PhaseCleanup:
		e.runCleanupPhase(gs)
	}
}

// autoAdvance chains through phases that need no player decision. A
// fixed iteration cap guards against a stalled advance loop.
func (e *DuelEngine) autoAdvance(gs *gameState) {
	for i := 0; i < e.rules.MaxAutoAdvance; i++ {
		if gs.status != StatusInProgress {
			return
		}
		if len(gs.unresolvedPrompts("")) > 0 {
			return
		}
		if gs.combat != nil && !gs.combat.Closed {
			return
		}
		if gs.mainWindowOpen {
			return
		}
		e.advancePhase(gs)
	}
	if e.logger != nil {
		e.logger.Warn("phase auto-advance hit iteration cap",
			zap.String("match_id", gs.matchID),
			zap.Int("cap", e.rules.MaxAutoAdvance),
		)
	}
}

// runBeginPhase readies the active player's board, expires temporary
// effects, fires turn-start triggers, channels runes and draws. If any
// prompt is outstanding afterwards, the phase advance stays suspended
// until the prompts clear.
func (e *DuelEngine) runBeginPhase(gs *gameState) {
	player := gs.currentPlayer()
	turn := gs.turnNumber()

	gs.events.Publish(rules.Event{
		Type:      rules.EventTurnBegan,
		PlayerID:  player.ID,
		Turn:      turn,
		Timestamp: time.Now(),
	})
	gs.addDuelLog(player.ID, fmt.Sprintf("Turn %d, %s", turn, player.Name))

	for _, row := range player.rows() {
		for _, bc := range row {
			bc.Tapped = false
			bc.JustSummoned = false
		}
	}
	for _, r := range player.Channeled {
		r.Tapped = false
	}
	if player.Legend != nil {
		player.Legend.Tapped = false
	}
	if player.Champion != nil {
		player.Champion.Tapped = false
	}

	// Duration-based effects count down at the start of their owner's
	// turn and expire at zero.
	kept := player.TempEffects[:0]
	for _, te := range player.TempEffects {
		te.TurnsLeft--
		if te.TurnsLeft > 0 {
			kept = append(kept, te)
		}
	}
	player.TempEffects = kept

	for _, bf := range gs.battlefields {
		for _, ability := range bf.Card.AbilitiesFor(catalog.TriggerTurnStart) {
			e.runOps(gs, bf.OwnerID, bf.Card, "", ability.Ops, newBattlefieldContext(bf.Card.ID, bf.ID))
		}
	}
	for _, bc := range player.Units {
		for _, ability := range bc.Card.AbilitiesFor(catalog.TriggerTurnStart) {
			e.runOps(gs, player.ID, bc.Card, bc.InstanceID, ability.Ops, newSourceContext(bc.Card.ID, bc.InstanceID))
		}
	}

	runeCount := e.rules.RunesPerTurn
	if player.BonusRuneNextTurn {
		runeCount += e.rules.FirstTurnBonusRunes
		player.BonusRuneNextTurn = false
	}
	e.channelRunes(gs, player, runeCount)

	e.drawCards(gs, player, 1)

	if gs.status == StatusInProgress && len(gs.unresolvedPrompts("")) > 0 {
		gs.mainWindowOpen = true
	}
}

// runCombatPhase resolves every engagement at battlefields where units
// have fought this turn and at contested battlefields.
func (e *DuelEngine) runCombatPhase(gs *gameState) {
	for _, bf := range gs.battlefields {
		if gs.status.Terminal() {
			return
		}
		if len(bf.Contestants) == 0 {
			continue
		}
		e.resolveEngagement(gs, bf)
	}
}

// runEndPhase fires end-of-turn triggers for the active player's
// permanents and legend.
func (e *DuelEngine) runEndPhase(gs *gameState) {
	player := gs.currentPlayer()

	for _, row := range player.rows() {
		for _, bc := range row {
			for _, ability := range bc.Card.AbilitiesFor(catalog.TriggerTurnEnd) {
				e.runOps(gs, player.ID, bc.Card, bc.InstanceID, ability.Ops, newSourceContext(bc.Card.ID, bc.InstanceID))
			}
		}
	}

	// Deployed legends ready one spent rune at end of turn.
	if player.Legend != nil && player.Legend.Deployed {
		for _, r := range player.Channeled {
			if r.Tapped {
				r.Tapped = false
				gs.addDuelLog(player.ID, fmt.Sprintf("%s readies a rune", player.Legend.Card.Name))
				break
			}
		}
	}
}

// runCleanupPhase closes out the turn. The active-player switch itself
// happens inside the turn controller on wraparound.
func (e *DuelEngine) runCleanupPhase(gs *gameState) {
	gs.combat = nil
	gs.mainWindowOpen = false
	e.recordSnapshot(gs)
}

// maybeResumePhaseAdvance is called after a prompt resolves. When the
// begin phase was suspended on outstanding prompts, clearing the last
// one resumes the automatic advance.
func (e *DuelEngine) maybeResumePhaseAdvance(gs *gameState) {
	if gs.status != StatusInProgress {
		return
	}
	if len(gs.unresolvedPrompts("")) > 0 {
		return
	}
	if gs.turns.CurrentPhase() == rules.PhaseBegin {
		gs.mainWindowOpen = false
		e.autoAdvance(gs)
	}
}

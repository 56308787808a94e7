package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
)

// Special-case continuation handlers invoked directly with the player's
// selection instead of re-entering the interpreter.
const (
	handlerGraveyardReturn   = "graveyard_return"
	handlerMultiDamage       = "multi_damage"
	handlerPlayFromGraveyard = "play_from_graveyard"
)

// issuePrompt creates a prompt with a fresh id.
func (e *DuelEngine) issuePrompt(gs *gameState, promptType PromptType, playerID string, data map[string]string) *gamePrompt {
	return e.issuePromptWithID(gs, uuid.New().String(), promptType, playerID, data)
}

// issuePromptWithID creates a prompt under a caller-chosen id, used to
// tie discard/target prompts to their pending effect. Phase-gated types
// never stack per (type, player).
func (e *DuelEngine) issuePromptWithID(gs *gameState, id string, promptType PromptType, playerID string, data map[string]string) *gamePrompt {
	if promptType.phaseGated() {
		if existing := e.openPromptFor(gs, promptType, playerID); existing != nil {
			return existing
		}
	}
	prompt := &gamePrompt{
		ID:       id,
		Type:     promptType,
		PlayerID: playerID,
		Data:     data,
		IssuedAt: time.Now(),
	}
	gs.prompts = append(gs.prompts, prompt)
	gs.events.Publish(rules.NewEvent(rules.EventPromptIssued, playerID, prompt.ID, ""))
	if e.logger != nil {
		e.logger.Debug("prompt issued",
			zap.String("match_id", gs.matchID),
			zap.String("prompt_id", prompt.ID),
			zap.String("type", string(promptType)),
			zap.String("player_id", playerID),
		)
	}
	return prompt
}

// openPromptFor returns the unresolved prompt of the given type for a
// player, if any.
func (e *DuelEngine) openPromptFor(gs *gameState, promptType PromptType, playerID string) *gamePrompt {
	for _, prompt := range gs.unresolvedPrompts(promptType) {
		if prompt.PlayerID == playerID {
			return prompt
		}
	}
	return nil
}

// resolvePrompt marks a prompt answered and resumes a suspended phase
// advance when it was the last one standing.
func (e *DuelEngine) resolvePrompt(gs *gameState, prompt *gamePrompt, resolution []string) {
	prompt.Resolved = true
	prompt.Resolution = append([]string(nil), resolution...)
	gs.events.Publish(rules.NewEvent(rules.EventPromptResolved, prompt.PlayerID, prompt.ID, ""))
	e.maybeResumePhaseAdvance(gs)
}

// SubmitDiscardSelection answers an open discard prompt and resumes its
// pending effect with the chosen hand cards.
func (e *DuelEngine) SubmitDiscardSelection(playerID, promptID string, cardIDs []string) error {
	return e.submitSelection(playerID, promptID, PromptDiscard, cardIDs)
}

// SubmitTargetSelection answers an open target prompt and resumes its
// pending effect with the chosen targets.
func (e *DuelEngine) SubmitTargetSelection(playerID, promptID string, targetIDs []string) error {
	return e.submitSelection(playerID, promptID, PromptTarget, targetIDs)
}

// submitSelection is the shared resolution path for prompts tied to a
// pending effect by id.
func (e *DuelEngine) submitSelection(playerID, promptID string, promptType PromptType, selection []string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	prompt := gs.findPrompt(promptID)
	if prompt == nil {
		return fmt.Errorf("prompt %s not found or already resolved", promptID)
	}
	if prompt.Type != promptType {
		return fmt.Errorf("prompt %s is a %s prompt, not %s", promptID, prompt.Type, promptType)
	}
	if prompt.PlayerID != playerID {
		return fmt.Errorf("prompt %s belongs to another player", promptID)
	}
	pending, index := gs.findPending(promptID)
	if pending == nil {
		return fmt.Errorf("no pending effect for prompt %s", promptID)
	}

	// Apply the continuation before any suspended phase advance resumes.
	prompt.Resolved = true
	prompt.Resolution = append([]string(nil), selection...)
	gs.events.Publish(rules.NewEvent(rules.EventPromptResolved, prompt.PlayerID, prompt.ID, ""))
	gs.removePending(index)
	e.resumePending(gs, pending, selection)
	e.maybeResumePhaseAdvance(gs)
	return nil
}

// resumePending applies the suspended operation with the player's
// selection and re-enters the interpreter at the next index. Context is
// restored from id-only references; entities that vanished in the
// meantime make individual applications fizzle, never the whole run.
func (e *DuelEngine) resumePending(gs *gameState, pending *effects.Pending, selection []string) {
	op, ok := pending.SuspendedOp()
	if !ok {
		if e.logger != nil {
			e.logger.Warn("pending effect has no suspended operation",
				zap.String("match_id", gs.matchID),
				zap.String("pending_id", pending.ID),
			)
		}
		return
	}

	ctx := pending.Context.Copy()
	ctx.TargetIDs = append([]string(nil), selection...)

	if pending.Handler != "" {
		e.runSpecialHandler(gs, pending, op, ctx)
	} else if caster, err := gs.player(pending.CasterID); err == nil {
		e.applyOp(gs, caster, op, ctx)
	}

	next := pending.ResumeIndex + 1
	if err := pending.Advance(next); err != nil {
		if e.logger != nil {
			e.logger.Warn("pending effect resume index rejected",
				zap.String("match_id", gs.matchID),
				zap.String("pending_id", pending.ID),
				zap.Error(err),
			)
		}
		return
	}
	rest := pending.Context.Copy()
	rest.TargetIDs = nil
	e.executeOps(gs, pending.CasterID, pending.Ops, next, rest)
}

// runSpecialHandler covers the continuation cases that bypass the
// interpreter's generic application.
func (e *DuelEngine) runSpecialHandler(gs *gameState, pending *effects.Pending, op effects.Operation, ctx effects.Context) {
	caster, err := gs.player(pending.CasterID)
	if err != nil {
		return
	}

	switch pending.Handler {
	case handlerGraveyardReturn:
		for _, id := range ctx.TargetIDs {
			for i, card := range caster.Graveyard {
				if card.ID == id {
					caster.Graveyard = append(caster.Graveyard[:i], caster.Graveyard[i+1:]...)
					caster.Hand = append(caster.Hand, card)
					gs.addDuelLog(caster.ID, fmt.Sprintf("%s returns %s from the graveyard", caster.Name, card.Name))
					break
				}
			}
		}

	case handlerMultiDamage:
		for _, t := range e.boardTargets(gs, ctx) {
			e.dealDamage(gs, t.owner, t.card, op.Amount, ctx.SourceCardID)
		}

	case handlerPlayFromGraveyard:
		if len(ctx.TargetIDs) == 0 {
			return
		}
		id := ctx.TargetIDs[0]
		for i, card := range caster.Graveyard {
			if card.ID != id {
				continue
			}
			caster.Graveyard = append(caster.Graveyard[:i], caster.Graveyard[i+1:]...)
			if card.Type == catalog.TypeUnit {
				bc := e.newBoardCard(gs, caster, card, "")
				caster.Units = append(caster.Units, bc)
				gs.addDuelLog(caster.ID, fmt.Sprintf("%s returns %s to the board", caster.Name, card.Name))
			} else {
				caster.Hand = append(caster.Hand, card)
				gs.addDuelLog(caster.ID, fmt.Sprintf("%s retrieves %s", caster.Name, card.Name))
			}
			break
		}

	default:
		if e.logger != nil {
			e.logger.Warn("unknown pending-effect handler skipped",
				zap.String("match_id", gs.matchID),
				zap.String("handler", pending.Handler),
			)
		}
	}
}

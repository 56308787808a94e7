package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

// newSourceContext builds an effect context for a board-sourced ability.
func newSourceContext(cardID, instanceID string) effects.Context {
	return effects.Context{SourceCardID: cardID, SourceInstanceID: instanceID}
}

// newBattlefieldContext builds an effect context for a battlefield
// trigger.
func newBattlefieldContext(cardID, battlefieldID string) effects.Context {
	return effects.Context{SourceCardID: cardID, BattlefieldID: battlefieldID}
}

// runOps executes an operation list from the start. Execution may
// suspend on a required player choice, leaving a pending continuation
// plus prompt behind.
func (e *DuelEngine) runOps(gs *gameState, casterID string, source *catalog.Card, sourceInstanceID string, ops []effects.Operation, ctx effects.Context) {
	if len(ops) == 0 {
		return
	}
	if ctx.SourceCardID == "" && source != nil {
		ctx.SourceCardID = source.ID
	}
	if ctx.SourceInstanceID == "" {
		ctx.SourceInstanceID = sourceInstanceID
	}
	e.executeOps(gs, casterID, ops, 0, ctx)
}

// executeOps runs operations sequentially starting at startIndex. An
// operation that needs an absent player choice suspends the run; all
// earlier operations keep their applied side effects.
func (e *DuelEngine) executeOps(gs *gameState, casterID string, ops []effects.Operation, startIndex int, ctx effects.Context) {
	caster, err := gs.player(casterID)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("effect run for unknown caster",
				zap.String("match_id", gs.matchID),
				zap.String("caster_id", casterID),
			)
		}
		return
	}

	for i := startIndex; i < len(ops); i++ {
		if gs.status.Terminal() {
			return
		}
		op := ops[i]
		if kind, ok := e.choiceNeeded(op, ctx); ok {
			e.suspendOps(gs, casterID, kind, ops, i, ctx, op)
			return
		}
		e.applyOp(gs, caster, op, ctx)
		// Explicit targets bind to the single operation that consumed
		// them, not to the rest of the list.
		ctx.TargetIDs = nil
	}
}

// choiceNeeded reports whether an operation requires a player choice not
// already present in the context, and which prompt kind covers it.
func (e *DuelEngine) choiceNeeded(op effects.Operation, ctx effects.Context) (effects.PendingKind, bool) {
	if len(ctx.TargetIDs) > 0 {
		return "", false
	}
	switch op.Type {
	case effects.OpDiscard:
		// A forced enemy discard is deterministic; discarding from your
		// own hand is a choice.
		if op.Target != effects.TargetEnemy && op.Amount > 0 {
			return effects.PendingDiscard, true
		}
	case effects.OpReturnFromGraveyard, effects.OpSearch:
		return effects.PendingTarget, true
	default:
		if op.NeedsBoardTarget() {
			return effects.PendingTarget, true
		}
	}
	return "", false
}

// suspendOps snapshots the run as a pending continuation and issues the
// matching prompt. Prompt and continuation share one id.
func (e *DuelEngine) suspendOps(gs *gameState, casterID string, kind effects.PendingKind, ops []effects.Operation, index int, ctx effects.Context, op effects.Operation) {
	pending := effects.NewPending(uuid.New().String(), kind, casterID, ops, index, ctx)
	pending.Handler = op.Meta("handler")
	gs.pending = append(gs.pending, pending)

	promptType := PromptTarget
	if kind == effects.PendingDiscard {
		promptType = PromptDiscard
	}
	payload := map[string]string{
		"op":     string(op.Type),
		"source": ctx.SourceCardID,
	}
	if op.Amount > 0 {
		payload["amount"] = fmt.Sprintf("%d", op.Amount)
	}
	e.issuePromptWithID(gs, pending.ID, promptType, casterID, payload)

	if e.logger != nil {
		e.logger.Debug("effect suspended on player choice",
			zap.String("match_id", gs.matchID),
			zap.String("pending_id", pending.ID),
			zap.String("op", string(op.Type)),
			zap.Int("resume_index", index),
		)
	}
}

// resolvedTarget pairs a board card with its owner.
type resolvedTarget struct {
	owner *playerState
	card  *boardCard
}

// boardTargets resolves the context's explicit target ids to live board
// cards, skipping ids that no longer resolve.
func (e *DuelEngine) boardTargets(gs *gameState, ctx effects.Context) []resolvedTarget {
	var out []resolvedTarget
	for _, id := range ctx.TargetIDs {
		owner, bc := gs.findInstance(id)
		if bc == nil {
			gs.addDuelLog("", fmt.Sprintf("Target %s is gone, effect fizzles for it", id))
			continue
		}
		out = append(out, resolvedTarget{owner: owner, card: bc})
	}
	return out
}

// effectPlayer resolves the player an operation acts on from its target
// hint.
func (e *DuelEngine) effectPlayer(gs *gameState, caster *playerState, op effects.Operation, ctx effects.Context) *playerState {
	switch op.Target {
	case effects.TargetEnemy:
		return gs.opponent(caster.ID)
	case effects.TargetAny:
		if ctx.PlayerTargetID != "" {
			if p, err := gs.player(ctx.PlayerTargetID); err == nil {
				return p
			}
		}
	}
	return caster
}

// applyOp applies one operation immediately. The operation set is
// closed; unknown types are logged and skipped.
func (e *DuelEngine) applyOp(gs *gameState, caster *playerState, op effects.Operation, ctx effects.Context) {
	sourceName := ctx.SourceCardID
	if card, err := e.catalog.Lookup(ctx.SourceCardID); err == nil {
		sourceName = card.Name
	}

	switch op.Type {
	case effects.OpDraw:
		target := e.effectPlayer(gs, caster, op, ctx)
		e.drawCards(gs, target, op.Amount)
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s draws %d", sourceName, target.Name, op.Amount))

	case effects.OpDiscard:
		target := e.effectPlayer(gs, caster, op, ctx)
		if len(ctx.TargetIDs) > 0 {
			taken, err := takeFromHand(target, ctx.TargetIDs)
			if err != nil {
				gs.addDuelLog(caster.ID, fmt.Sprintf("%s: discard fizzles (%v)", sourceName, err))
				return
			}
			target.Graveyard = append(target.Graveyard, taken...)
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s discards %d", sourceName, target.Name, len(taken)))
			return
		}
		// Forced discard with no selection: front of hand, oldest first.
		n := op.Amount
		if n > len(target.Hand) {
			n = len(target.Hand)
		}
		target.Graveyard = append(target.Graveyard, target.Hand[:n]...)
		target.Hand = target.Hand[n:]
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s discards %d", sourceName, target.Name, n))

	case effects.OpMill:
		target := e.effectPlayer(gs, caster, op, ctx)
		n := op.Amount
		if n > len(target.Deck) {
			n = len(target.Deck)
		}
		target.Graveyard = append(target.Graveyard, target.Deck[:n]...)
		target.Deck = target.Deck[n:]
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s mills %d", sourceName, target.Name, n))

	case effects.OpStatModify:
		stat := op.Meta("stat")
		for _, t := range e.boardTargets(gs, ctx) {
			switch stat {
			case "toughness":
				t.card.CurrentToughness += op.Amount
				if t.card.CurrentToughness <= 0 {
					e.destroyBoardCard(gs, t.owner, t.card)
				}
			default:
				if op.Amount > 0 {
					t.card.Markers.Add("might", op.Amount)
				} else {
					t.card.Markers.Remove("might", -op.Amount)
				}
			}
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s gets %+d %s", sourceName, t.card.Card.Name, op.Amount, stat))
		}

	case effects.OpDamage:
		for _, t := range e.boardTargets(gs, ctx) {
			e.dealDamage(gs, t.owner, t.card, op.Amount, sourceName)
		}

	case effects.OpHeal:
		for _, t := range e.boardTargets(gs, ctx) {
			t.card.CurrentToughness += op.Amount
			if t.card.CurrentToughness > t.card.Card.Toughness {
				t.card.CurrentToughness = t.card.Card.Toughness
			}
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s heals %d", sourceName, t.card.Card.Name, op.Amount))
		}

	case effects.OpSummon:
		e.summonToken(gs, caster, op, ctx, sourceName)

	case effects.OpReturnToHand:
		for _, t := range e.boardTargets(gs, ctx) {
			e.returnToHand(gs, t.owner, t.card)
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s returns to hand", sourceName, t.card.Card.Name))
		}

	case effects.OpReturnFromGraveyard:
		target := e.effectPlayer(gs, caster, op, ctx)
		for _, id := range ctx.TargetIDs {
			for i, card := range target.Graveyard {
				if card.ID == id {
					target.Graveyard = append(target.Graveyard[:i], target.Graveyard[i+1:]...)
					target.Hand = append(target.Hand, card)
					gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s returns from the graveyard", sourceName, card.Name))
					break
				}
			}
		}

	case effects.OpRemovePermanent:
		for _, t := range e.boardTargets(gs, ctx) {
			e.destroyBoardCard(gs, t.owner, t.card)
		}

	case effects.OpMoveUnit:
		for _, t := range e.boardTargets(gs, ctx) {
			if err := e.placeUnitAt(gs, t.owner, t.card, ctx.BattlefieldID); err != nil {
				gs.addDuelLog(caster.ID, fmt.Sprintf("%s: move fizzles (%v)", sourceName, err))
			}
		}

	case effects.OpGainRune:
		target := e.effectPlayer(gs, caster, op, ctx)
		for i := 0; i < op.Amount; i++ {
			target.Channeled = append(target.Channeled, &runes.Rune{
				ID:     gs.nextInstanceID("rune"),
				Name:   "Conjured Rune",
				Power:  1,
				Energy: 1,
			})
		}
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s gains %d runes", sourceName, target.Name, op.Amount))

	case effects.OpSpendRune:
		target := e.effectPlayer(gs, caster, op, ctx)
		tapped := 0
		for _, r := range target.Channeled {
			if tapped >= op.Amount {
				break
			}
			if !r.Tapped {
				r.Tapped = true
				tapped++
			}
		}
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s exhausts %d runes", sourceName, target.Name, tapped))

	case effects.OpShield:
		for _, t := range e.boardTargets(gs, ctx) {
			t.card.Markers.Add("shield", op.Amount)
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s gains %d shield", sourceName, t.card.Card.Name, op.Amount))
		}

	case effects.OpChannelRune:
		target := e.effectPlayer(gs, caster, op, ctx)
		e.channelRunes(gs, target, op.Amount)

	case effects.OpRecycle:
		target := e.effectPlayer(gs, caster, op, ctx)
		n := op.Amount
		if n > len(target.Graveyard) {
			n = len(target.Graveyard)
		}
		for i := 0; i < n; i++ {
			last := len(target.Graveyard) - 1
			target.Deck = append(target.Deck, target.Graveyard[last])
			target.Graveyard = target.Graveyard[:last]
		}
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s recycles %d cards", sourceName, target.Name, n))

	case effects.OpSearch:
		target := e.effectPlayer(gs, caster, op, ctx)
		for _, id := range ctx.TargetIDs {
			for i, card := range target.Deck {
				if card.ID == id {
					target.Deck = append(target.Deck[:i], target.Deck[i+1:]...)
					target.Hand = append(target.Hand, card)
					gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s fetches %s", sourceName, target.Name, card.Name))
					break
				}
			}
		}

	case effects.OpPriority:
		if gs.combat != nil && !gs.combat.Closed {
			gs.combat.Holder = caster.ID
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s seizes priority", sourceName, caster.Name))
		}

	case effects.OpLegend:
		if caster.Legend != nil {
			caster.Legend.Tapped = false
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s readies", sourceName, caster.Legend.Card.Name))
		}

	case effects.OpAttachGear:
		for _, t := range e.boardTargets(gs, ctx) {
			if _, gear := gs.findInstance(ctx.SourceInstanceID); gear != nil {
				gear.AttachedTo = t.card.InstanceID
				gs.addDuelLog(caster.ID, fmt.Sprintf("%s attaches to %s", sourceName, t.card.Card.Name))
			}
		}

	case effects.OpTransform:
		into := op.Meta("into")
		card, err := e.catalog.Lookup(into)
		if err != nil {
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: transform target %q unknown", sourceName, into))
			return
		}
		for _, t := range e.boardTargets(gs, ctx) {
			t.card.Card = card
			t.card.CurrentToughness = card.Toughness
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s transforms into %s", sourceName, card.Name))
		}

	case effects.OpMulliganAdjust:
		target := e.effectPlayer(gs, caster, op, ctx)
		target.ExtraMulligans += op.Amount
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: %s gains %d extra mulligans", sourceName, target.Name, op.Amount))

	case effects.OpGeneric:
		e.applyGenericOp(gs, caster, op, ctx, sourceName)

	default:
		if e.logger != nil {
			e.logger.Warn("skipping unknown effect operation",
				zap.String("match_id", gs.matchID),
				zap.String("op", string(op.Type)),
			)
		}
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: unsupported effect skipped", sourceName))
	}
}

// applyGenericOp handles metadata-driven battlefield-control effects.
func (e *DuelEngine) applyGenericOp(gs *gameState, caster *playerState, op effects.Operation, ctx effects.Context, sourceName string) {
	switch op.Meta("action") {
	case "control_battlefield":
		bf, err := gs.battlefield(ctx.BattlefieldID)
		if err != nil {
			gs.addDuelLog(caster.ID, fmt.Sprintf("%s: battlefield control fizzles", sourceName))
			return
		}
		e.takeControl(gs, bf, caster)
	case "score":
		e.awardVictoryPoints(gs, caster, op.Amount, sourceName)
	default:
		if e.logger != nil {
			e.logger.Warn("skipping generic effect with unknown action",
				zap.String("match_id", gs.matchID),
				zap.String("action", op.Meta("action")),
			)
		}
	}
}

// dealDamage applies damage to a board card, shield markers first, and
// destroys it at zero toughness.
func (e *DuelEngine) dealDamage(gs *gameState, owner *playerState, bc *boardCard, amount int, sourceName string) {
	if amount <= 0 {
		return
	}
	if shields := bc.Markers.Count("shield"); shields > 0 {
		absorbed := shields
		if absorbed > amount {
			absorbed = amount
		}
		bc.Markers.Remove("shield", absorbed)
		amount -= absorbed
	}
	bc.CurrentToughness -= amount
	gs.addDuelLog(owner.ID, fmt.Sprintf("%s deals %d to %s", sourceName, amount, bc.Card.Name))
	if bc.CurrentToughness <= 0 {
		e.destroyBoardCard(gs, owner, bc)
	}
}

// summonToken creates token units for the caster from the operation's
// token specification.
func (e *DuelEngine) summonToken(gs *gameState, caster *playerState, op effects.Operation, ctx effects.Context, sourceName string) {
	if op.Token == nil {
		gs.addDuelLog(caster.ID, fmt.Sprintf("%s: summon without token specification skipped", sourceName))
		return
	}
	count := op.Amount
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		template := &catalog.Card{
			ID:        "token:" + op.Token.Name,
			Name:      op.Token.Name,
			Type:      catalog.TypeUnit,
			Might:     op.Token.Might,
			Toughness: op.Token.Toughness,
			Tags:      append([]string(nil), op.Token.Tags...),
			Flags:     catalog.Flags{Token: true},
		}
		bc := e.newBoardCard(gs, caster, template, "")
		caster.Units = append(caster.Units, bc)
		if ctx.BattlefieldID != "" {
			if err := e.placeUnitAt(gs, caster, bc, ctx.BattlefieldID); err != nil && e.logger != nil {
				e.logger.Debug("token stays at base", zap.Error(err))
			}
		}
	}
	gs.addDuelLog(caster.ID, fmt.Sprintf("%s summons %d %s", sourceName, count, op.Token.Name))
}

// returnToHand removes a board card and puts the template back in its
// owner's hand; tokens cease to exist instead.
func (e *DuelEngine) returnToHand(gs *gameState, owner *playerState, bc *boardCard) {
	removeFromRow := func(row []*boardCard) []*boardCard {
		for i, candidate := range row {
			if candidate.InstanceID == bc.InstanceID {
				return append(row[:i], row[i+1:]...)
			}
		}
		return row
	}
	owner.Units = removeFromRow(owner.Units)
	owner.Gear = removeFromRow(owner.Gear)
	owner.Enchantments = removeFromRow(owner.Enchantments)

	if bc.Location != "" {
		if bf, err := gs.battlefield(bc.Location); err == nil {
			if len(owner.unitsAt(bf.ID)) == 0 {
				delete(bf.Contestants, owner.ID)
			}
		}
	}
	if !bc.Card.Flags.Token {
		owner.Hand = append(owner.Hand, bc.Card)
	}
}

package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

// PlayCardRequest carries the optional choices accompanying a card play.
type PlayCardRequest struct {
	CardID string
	// BattlefieldID deploys a unit straight onto a battlefield or aims
	// a battlefield-scoped spell.
	BattlefieldID string
	// TargetIDs are explicit board targets; effects that need targets
	// and receive none will prompt instead.
	TargetIDs      []string
	PlayerTargetID string
}

// PlayCard plays a card from hand, paying its rune cost. During an open
// engagement only the priority holder may play, and doing so flips the
// window to the reaction stage.
func (e *DuelEngine) PlayCard(playerID string, req PlayCardRequest) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusInProgress {
		return fmt.Errorf("match %s has no running turn cycle", gs.matchID)
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}

	inWindow := gs.combat != nil && !gs.combat.Closed
	if inWindow {
		if gs.combat.Holder != playerID {
			return fmt.Errorf("player %s does not hold priority", playerID)
		}
	} else {
		if playerID != gs.turns.ActivePlayer() {
			return fmt.Errorf("only the active player may play cards outside an engagement")
		}
		if !gs.turns.CurrentPhase().IsMain() {
			return fmt.Errorf("cards are played during a main phase, not %s", gs.turns.CurrentPhase())
		}
		if len(gs.unresolvedPrompts("")) > 0 {
			return fmt.Errorf("prompts must be resolved before playing cards")
		}
	}

	handIndex := -1
	for i, card := range player.Hand {
		if card.ID == req.CardID {
			handIndex = i
			break
		}
	}
	if handIndex == -1 {
		return fmt.Errorf("card %s is not in %s's hand", req.CardID, playerID)
	}
	card := player.Hand[handIndex]

	if card.Type == catalog.TypeRune || card.Type == catalog.TypeBattlefield {
		return fmt.Errorf("%s cards cannot be played from hand", card.Type)
	}
	var bf *battlefieldState
	if req.BattlefieldID != "" {
		if bf, err = gs.battlefield(req.BattlefieldID); err != nil {
			return err
		}
	}

	payment := runes.CalculatePayment(card.Cost, player.Channeled)
	if !payment.Success {
		return fmt.Errorf("cannot pay %s for %s: %s", card.Cost, card.Name, payment.Reason)
	}

	// All checks passed; mutate from here on.
	remaining, recycled, err := runes.ExecutePayment(payment.Plan, player.Channeled)
	if err != nil {
		return err
	}
	player.Channeled = remaining
	player.RuneDeck = append(player.RuneDeck, recycled...)
	player.Hand = append(player.Hand[:handIndex], player.Hand[handIndex+1:]...)

	if inWindow {
		if err := gs.combat.RecordPlay(playerID, gs.opponent(playerID).ID); err != nil && e.logger != nil {
			e.logger.Warn("priority window rejected play record",
				zap.String("match_id", gs.matchID),
				zap.Error(err),
			)
		}
	}

	gs.addMoveLog(playerID, fmt.Sprintf("played %s", card.Name))
	gs.events.Publish(rules.NewEvent(rules.EventCardPlayed, playerID, card.ID, ""))

	ctx := effects.Context{
		SourceCardID:   card.ID,
		PlayerTargetID: req.PlayerTargetID,
		TargetIDs:      append([]string(nil), req.TargetIDs...),
	}
	if bf != nil {
		ctx.BattlefieldID = bf.ID
	}

	switch card.Type {
	case catalog.TypeUnit:
		e.deployUnit(gs, player, card, bf, ctx)
	case catalog.TypeGear:
		e.deployGear(gs, player, card, ctx)
	case catalog.TypeEnchantment:
		bc := e.newBoardCard(gs, player, card, "")
		player.Enchantments = append(player.Enchantments, bc)
		ctx.SourceInstanceID = bc.InstanceID
		e.runOnPlay(gs, player, card, bc.InstanceID, ctx)
	case catalog.TypeSpell:
		// Spells hit the graveyard as they resolve; a suspended effect
		// does not keep the card in limbo.
		player.Graveyard = append(player.Graveyard, card)
		e.runOnPlay(gs, player, card, "", ctx)
	default:
		player.Graveyard = append(player.Graveyard, card)
		e.runOnPlay(gs, player, card, "", ctx)
	}
	return nil
}

// deployUnit puts a unit into play, at base or straight onto a
// battlefield. Deploying onto an unclaimed battlefield opens an
// engagement window just like a move.
func (e *DuelEngine) deployUnit(gs *gameState, player *playerState, card *catalog.Card, bf *battlefieldState, ctx effects.Context) {
	bc := e.newBoardCard(gs, player, card, "")
	player.Units = append(player.Units, bc)
	ctx.SourceInstanceID = bc.InstanceID

	if bf != nil {
		if err := e.placeUnitAt(gs, player, bc, bf.ID); err == nil {
			gs.addDuelLog(player.ID, fmt.Sprintf("%s deploys %s at %s", player.Name, card.Name, bf.Card.Name))
			if bf.ControllerID == "" && (gs.combat == nil || gs.combat.Closed) {
				gs.combat = rules.NewCombatWindow(uuid.New().String(), bf.ID, player.ID, gs.opponent(player.ID).ID)
			}
		}
	} else {
		gs.addDuelLog(player.ID, fmt.Sprintf("%s deploys %s", player.Name, card.Name))
	}

	e.runOnPlay(gs, player, card, bc.InstanceID, ctx)
}

// deployGear puts gear into play and attaches it when a target is given.
func (e *DuelEngine) deployGear(gs *gameState, player *playerState, card *catalog.Card, ctx effects.Context) {
	bc := e.newBoardCard(gs, player, card, "")
	player.Gear = append(player.Gear, bc)
	ctx.SourceInstanceID = bc.InstanceID

	if len(ctx.TargetIDs) > 0 {
		if _, host := gs.findInstance(ctx.TargetIDs[0]); host != nil {
			bc.AttachedTo = host.InstanceID
			gs.addDuelLog(player.ID, fmt.Sprintf("%s equips %s to %s", player.Name, card.Name, host.Card.Name))
		}
	}
	e.runOnPlay(gs, player, card, bc.InstanceID, ctx)
}

// runOnPlay fires a card's on-play abilities.
func (e *DuelEngine) runOnPlay(gs *gameState, player *playerState, card *catalog.Card, instanceID string, ctx effects.Context) {
	for _, ability := range card.AbilitiesFor(catalog.TriggerOnPlay) {
		e.runOps(gs, player.ID, card, instanceID, ability.Ops, ctx)
	}
}

// DeployChampionLeader brings the player's champion into play as a unit,
// paying its cost. Each champion deploys once per match.
func (e *DuelEngine) DeployChampionLeader(playerID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusInProgress {
		return fmt.Errorf("match %s has no running turn cycle", gs.matchID)
	}
	if playerID != gs.turns.ActivePlayer() {
		return fmt.Errorf("only the active player may deploy their champion")
	}
	if !gs.turns.CurrentPhase().IsMain() {
		return fmt.Errorf("champions deploy during a main phase, not %s", gs.turns.CurrentPhase())
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}
	if player.Champion == nil {
		return fmt.Errorf("player %s has no champion", playerID)
	}
	if player.Champion.Deployed {
		return fmt.Errorf("champion %s is already deployed", player.Champion.Card.Name)
	}

	payment := runes.CalculatePayment(player.Champion.Card.Cost, player.Channeled)
	if !payment.Success {
		return fmt.Errorf("cannot pay %s for %s: %s", player.Champion.Card.Cost, player.Champion.Card.Name, payment.Reason)
	}
	remaining, recycled, err := runes.ExecutePayment(payment.Plan, player.Channeled)
	if err != nil {
		return err
	}
	player.Channeled = remaining
	player.RuneDeck = append(player.RuneDeck, recycled...)

	player.Champion.Deployed = true
	bc := e.newBoardCard(gs, player, player.Champion.Card, "")
	player.Units = append(player.Units, bc)

	gs.addDuelLog(playerID, fmt.Sprintf("%s deploys champion %s", player.Name, player.Champion.Card.Name))
	gs.events.Publish(rules.NewEvent(rules.EventLegendDeployed, playerID, bc.InstanceID, ""))

	e.runOnPlay(gs, player, player.Champion.Card, bc.InstanceID, newSourceContext(player.Champion.Card.ID, bc.InstanceID))
	return nil
}

// ActivateChampionAbility fires one of the deployed champion's activated
// abilities, exhausting the champion.
func (e *DuelEngine) ActivateChampionAbility(playerID string, abilityIndex int, targetIDs []string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusInProgress {
		return fmt.Errorf("match %s has no running turn cycle", gs.matchID)
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}

	inWindow := gs.combat != nil && !gs.combat.Closed
	if inWindow {
		if gs.combat.Holder != playerID {
			return fmt.Errorf("player %s does not hold priority", playerID)
		}
	} else {
		if playerID != gs.turns.ActivePlayer() {
			return fmt.Errorf("only the active player may activate abilities outside an engagement")
		}
		if !gs.turns.CurrentPhase().IsMain() {
			return fmt.Errorf("abilities activate during a main phase, not %s", gs.turns.CurrentPhase())
		}
		if len(gs.unresolvedPrompts("")) > 0 {
			return fmt.Errorf("prompts must be resolved before activating abilities")
		}
	}

	if player.Champion == nil || !player.Champion.Deployed {
		return fmt.Errorf("player %s has no deployed champion", playerID)
	}
	if player.Champion.Tapped {
		return fmt.Errorf("champion %s is exhausted", player.Champion.Card.Name)
	}

	activated := player.Champion.Card.AbilitiesFor(catalog.TriggerActivated)
	if abilityIndex < 0 || abilityIndex >= len(activated) {
		return fmt.Errorf("champion %s has no activated ability %d", player.Champion.Card.Name, abilityIndex)
	}
	ability := activated[abilityIndex]

	player.Champion.Tapped = true
	if inWindow {
		if err := gs.combat.RecordPlay(playerID, gs.opponent(playerID).ID); err != nil && e.logger != nil {
			e.logger.Warn("priority window rejected play record",
				zap.String("match_id", gs.matchID),
				zap.Error(err),
			)
		}
	}
	gs.addMoveLog(playerID, fmt.Sprintf("activated %s: %s", player.Champion.Card.Name, ability.Description))

	ctx := newSourceContext(player.Champion.Card.ID, "")
	ctx.TargetIDs = append([]string(nil), targetIDs...)
	if bc := player.findBoardCard(championInstanceID(player)); bc != nil {
		ctx.SourceInstanceID = bc.InstanceID
	}
	e.runOps(gs, playerID, player.Champion.Card, ctx.SourceInstanceID, ability.Ops, ctx)
	return nil
}

// championInstanceID finds the board instance of the player's champion.
func championInstanceID(player *playerState) string {
	if player.Champion == nil {
		return ""
	}
	for _, bc := range player.Units {
		if bc.Card.ID == player.Champion.Card.ID {
			return bc.InstanceID
		}
	}
	return ""
}

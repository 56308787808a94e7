package game

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/rules"
)

// Victory points for taking control of a battlefield. Re-affirming
// existing control grants a hold marker instead.
const conquerVictoryPoints = 2

// MoveUnit sends one of the active player's units to a battlefield,
// opening a priority window for the engagement. The opponent gets first
// priority.
func (e *DuelEngine) MoveUnit(playerID, instanceID, battlefieldID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusInProgress {
		return fmt.Errorf("match %s has no running turn cycle", gs.matchID)
	}
	if playerID != gs.turns.ActivePlayer() {
		return fmt.Errorf("only the active player may move units")
	}
	if !gs.turns.CurrentPhase().IsMain() {
		return fmt.Errorf("units move during a main phase, not %s", gs.turns.CurrentPhase())
	}
	if gs.combat != nil && !gs.combat.Closed {
		return fmt.Errorf("a combat engagement is still open")
	}
	if len(gs.unresolvedPrompts("")) > 0 {
		return fmt.Errorf("prompts must be resolved before moving units")
	}

	player, err := gs.player(playerID)
	if err != nil {
		return err
	}
	bc := player.findBoardCard(instanceID)
	if bc == nil {
		return fmt.Errorf("unit %s not found for player %s", instanceID, playerID)
	}
	if bc.Card.Type != catalog.TypeUnit {
		return fmt.Errorf("%s is not a unit", bc.Card.Name)
	}
	if bc.Tapped {
		return fmt.Errorf("%s is exhausted", bc.Card.Name)
	}
	if bc.JustSummoned && !bc.Card.Flags.Accelerate {
		return fmt.Errorf("%s cannot move the turn it was deployed", bc.Card.Name)
	}
	bf, err := gs.battlefield(battlefieldID)
	if err != nil {
		return err
	}
	if bc.Location == bf.ID {
		return fmt.Errorf("%s is already at %s", bc.Card.Name, bf.Card.Name)
	}
	if bf.LastFoughtTurn[playerID] == gs.turnNumber() {
		return fmt.Errorf("%s already fought at %s this turn", player.Name, bf.Card.Name)
	}

	if err := e.placeUnitAt(gs, player, bc, battlefieldID); err != nil {
		return err
	}
	bc.Tapped = true
	gs.addMoveLog(playerID, fmt.Sprintf("moved %s to %s", bc.Card.Name, bf.Card.Name))

	gs.combat = rules.NewCombatWindow(uuid.New().String(), bf.ID, playerID, gs.opponent(playerID).ID)
	gs.addDuelLog(playerID, fmt.Sprintf("%s engages at %s", bc.Card.Name, bf.Card.Name))
	return nil
}

// DeclareAttacker is the combat-flavored alias of MoveUnit.
func (e *DuelEngine) DeclareAttacker(playerID, instanceID, battlefieldID string) error {
	return e.MoveUnit(playerID, instanceID, battlefieldID)
}

// PassPriority passes within the open engagement window. The second
// consecutive action-stage pass closes the window and resolves the
// engagement.
func (e *DuelEngine) PassPriority(playerID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.combat == nil || gs.combat.Closed {
		return fmt.Errorf("no open priority window")
	}
	if _, err := gs.player(playerID); err != nil {
		return err
	}
	// Resolve the battlefield up front so a bad window id rejects the
	// call before the pass mutates anything.
	bf, err := gs.battlefield(gs.combat.BattlefieldID)
	if err != nil {
		return err
	}

	closed, err := gs.combat.Pass(playerID, gs.opponent(playerID).ID)
	if err != nil {
		return err
	}
	gs.addMoveLog(playerID, "passed priority")
	if !closed {
		return nil
	}

	gs.combat = nil
	e.resolveEngagement(gs, bf)
	return nil
}

// ResolveCombat forces resolution at a battlefield outside a priority
// window, for engagements left contested from earlier turns.
func (e *DuelEngine) ResolveCombat(playerID, battlefieldID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusInProgress {
		return fmt.Errorf("match %s has no running turn cycle", gs.matchID)
	}
	if playerID != gs.turns.ActivePlayer() {
		return fmt.Errorf("only the active player may force combat resolution")
	}
	if gs.combat != nil && !gs.combat.Closed {
		return fmt.Errorf("a priority window is still open")
	}
	bf, err := gs.battlefield(battlefieldID)
	if err != nil {
		return err
	}
	e.resolveEngagement(gs, bf)
	return nil
}

// placeUnitAt moves a unit between its base and a battlefield, keeping
// contestation sets consistent. An empty battlefield id returns the unit
// to base.
func (e *DuelEngine) placeUnitAt(gs *gameState, owner *playerState, bc *boardCard, battlefieldID string) error {
	if bc.Location == battlefieldID {
		return nil
	}

	if bc.Location != "" {
		if old, err := gs.battlefield(bc.Location); err == nil {
			bc.Location = ""
			if len(owner.unitsAt(old.ID)) == 0 {
				delete(old.Contestants, owner.ID)
			}
		}
	}
	if battlefieldID == "" {
		bc.Location = ""
		return nil
	}

	bf, err := gs.battlefield(battlefieldID)
	if err != nil {
		return err
	}
	bc.Location = bf.ID
	bc.MovedTurn = gs.turnNumber()
	bf.Contestants[owner.ID] = true
	gs.events.Publish(rules.NewEvent(rules.EventUnitMoved, owner.ID, bc.InstanceID, bf.ID))
	return nil
}

// resolveEngagement settles a battlefield contest by total might. Equal
// might destroys every contesting unit and clears control; otherwise the
// losing side's units are destroyed and the winner takes or re-affirms
// control.
func (e *DuelEngine) resolveEngagement(gs *gameState, bf *battlefieldState) {
	turn := gs.turnNumber()

	type side struct {
		player *playerState
		units  []*boardCard
		might  int
	}
	var sides []side
	for _, p := range gs.players {
		units := p.unitsAt(bf.ID)
		if len(units) == 0 {
			delete(bf.Contestants, p.ID)
			continue
		}
		total := 0
		for _, u := range units {
			total += u.might(turn)
		}
		sides = append(sides, side{player: p, units: units, might: total})
	}

	for _, s := range sides {
		bf.LastFoughtTurn[s.player.ID] = turn
	}

	switch len(sides) {
	case 0:
		return
	case 1:
		gs.addDuelLog(sides[0].player.ID, fmt.Sprintf("%s takes %s uncontested", sides[0].player.Name, bf.Card.Name))
		e.takeControl(gs, bf, sides[0].player)
		return
	}

	a, b := sides[0], sides[1]
	gs.addDuelLog("", fmt.Sprintf("Battle at %s: %s %d vs %s %d", bf.Card.Name, a.player.Name, a.might, b.player.Name, b.might))

	if a.might == b.might {
		for _, s := range sides {
			for _, u := range s.units {
				e.destroyBoardCard(gs, s.player, u)
			}
		}
		bf.ControllerID = ""
		gs.addDuelLog("", fmt.Sprintf("Stalemate at %s, all units destroyed", bf.Card.Name))
		return
	}

	winner, loser := a, b
	if b.might > a.might {
		winner, loser = b, a
	}
	for _, u := range loser.units {
		e.destroyBoardCard(gs, loser.player, u)
	}
	e.takeControl(gs, bf, winner.player)
}

// takeControl assigns battlefield control. Victory points are awarded
// only on a change of controller; re-affirming control records a hold.
func (e *DuelEngine) takeControl(gs *gameState, bf *battlefieldState, player *playerState) {
	turn := gs.turnNumber()

	if bf.ControllerID == player.ID {
		bf.LastHeldTurn[player.ID] = turn
		holdKey := "holds:" + player.ID
		holds, _ := strconv.Atoi(bf.EffectState[holdKey])
		bf.EffectState[holdKey] = strconv.Itoa(holds + 1)
		gs.addDuelLog(player.ID, fmt.Sprintf("%s holds %s", player.Name, bf.Card.Name))
		gs.events.Publish(rules.NewEvent(rules.EventBattlefieldHeld, player.ID, bf.ID, ""))
		return
	}

	bf.ControllerID = player.ID
	bf.LastConqueredTurn[player.ID] = turn
	gs.addDuelLog(player.ID, fmt.Sprintf("%s conquers %s", player.Name, bf.Card.Name))
	gs.events.Publish(rules.NewEvent(rules.EventBattlefieldConquered, player.ID, bf.ID, ""))

	for _, ability := range bf.Card.AbilitiesFor(catalog.TriggerOnConquer) {
		e.runOps(gs, player.ID, bf.Card, "", ability.Ops, newBattlefieldContext(bf.Card.ID, bf.ID))
	}
	e.awardVictoryPoints(gs, player, conquerVictoryPoints, fmt.Sprintf("conquered %s", bf.Card.Name))
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeclash/duel-server-go/internal/game/rules"
)

func TestResolveEngagement_TieDestroysEverything(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	aliceState, _ := gs.player(alice)
	bobState, _ := gs.player(bob)

	// scout (2) + warden (1) vs brute (3): tied at 3.
	u1 := addUnit(t, e, alice, "scout")
	u2 := addUnit(t, e, alice, "warden")
	u3 := addUnit(t, e, bob, "brute")
	require.NoError(t, e.placeUnitAt(gs, aliceState, u1, bf.ID))
	require.NoError(t, e.placeUnitAt(gs, aliceState, u2, bf.ID))
	require.NoError(t, e.placeUnitAt(gs, bobState, u3, bf.ID))

	e.resolveEngagement(gs, bf)

	assert.Empty(t, aliceState.Units)
	assert.Empty(t, bobState.Units)
	assert.Empty(t, bf.ControllerID, "a stalemate leaves the battlefield uncontrolled")
	assert.Empty(t, bf.Contestants)
	assert.Len(t, aliceState.Graveyard, 2)
	assert.Len(t, bobState.Graveyard, 1)
}

func TestResolveEngagement_LopsidedTransfersControl(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	aliceState, _ := gs.player(alice)
	bobState, _ := gs.player(bob)

	u1 := addUnit(t, e, alice, "scout") // might 2
	u2 := addUnit(t, e, bob, "brute")   // might 3
	require.NoError(t, e.placeUnitAt(gs, aliceState, u1, bf.ID))
	require.NoError(t, e.placeUnitAt(gs, bobState, u2, bf.ID))

	e.resolveEngagement(gs, bf)

	assert.Equal(t, bob, bf.ControllerID)
	assert.Empty(t, aliceState.Units, "losing side is destroyed")
	assert.Len(t, bobState.Units, 1, "winning side survives")
	assert.Equal(t, conquerVictoryPoints, bobState.VictoryPoints)
	assert.Equal(t, gs.turnNumber(), bf.LastConqueredTurn[bob])
}

func TestResolveEngagement_UncontestedWin(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[1]

	bobState, _ := gs.player(bob)
	u := addUnit(t, e, bob, "scout")
	require.NoError(t, e.placeUnitAt(gs, bobState, u, bf.ID))

	e.resolveEngagement(gs, bf)

	assert.Equal(t, bob, bf.ControllerID)
	assert.Len(t, bobState.Units, 1)
	assert.Equal(t, conquerVictoryPoints, bobState.VictoryPoints)
}

func TestResolveEngagement_HoldGrantsNoNewPoints(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[1]

	bobState, _ := gs.player(bob)
	u := addUnit(t, e, bob, "scout")
	require.NoError(t, e.placeUnitAt(gs, bobState, u, bf.ID))

	e.resolveEngagement(gs, bf)
	require.Equal(t, bob, bf.ControllerID)
	pointsAfterConquer := bobState.VictoryPoints

	e.resolveEngagement(gs, bf)

	assert.Equal(t, pointsAfterConquer, bobState.VictoryPoints, "re-affirming control scores nothing")
	assert.Equal(t, gs.turnNumber(), bf.LastHeldTurn[bob])
	assert.Equal(t, "1", bf.EffectState["holds:"+bob])
}

func TestMoveUnit_OpensWindowWithOpponentPriority(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	u := addUnit(t, e, bob, "brute")
	require.NoError(t, e.MoveUnit(bob, u.InstanceID, bf.ID))

	require.NotNil(t, gs.combat)
	assert.Equal(t, alice, gs.combat.Holder, "the defender gets first priority")
	assert.Equal(t, rules.StageAction, gs.combat.Stage)
	assert.True(t, u.Tapped, "engaging exhausts the unit")
	assert.True(t, bf.Contestants[bob])

	// Phase advancement is blocked while the window is open.
	require.Error(t, e.ProceedToNextPhase(bob))
}

func TestMoveUnit_RejectsExhaustedAndFreshUnits(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	bf := e.state.battlefields[0]

	tapped := addUnit(t, e, bob, "scout")
	tapped.Tapped = true
	require.Error(t, e.MoveUnit(bob, tapped.InstanceID, bf.ID))

	fresh := addUnit(t, e, bob, "scout")
	fresh.JustSummoned = true
	require.Error(t, e.MoveUnit(bob, fresh.InstanceID, bf.ID))
}

func TestPassPriority_TwoActionPassesResolve(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	u := addUnit(t, e, bob, "brute")
	require.NoError(t, e.MoveUnit(bob, u.InstanceID, bf.ID))

	// alice holds priority; bob may not pass for her.
	require.Error(t, e.PassPriority(bob))

	require.NoError(t, e.PassPriority(alice))
	require.NotNil(t, gs.combat, "one pass keeps the window open")
	assert.Equal(t, bob, gs.combat.Holder)

	require.NoError(t, e.PassPriority(bob))

	assert.Nil(t, gs.combat, "second consecutive action pass resolves the engagement")
	assert.Equal(t, bob, bf.ControllerID)
	bobState, _ := gs.player(bob)
	assert.Equal(t, conquerVictoryPoints, bobState.VictoryPoints)
}

func TestPlayCardDuringWindow_FlipsToReaction(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	u := addUnit(t, e, bob, "brute")
	require.NoError(t, e.MoveUnit(bob, u.InstanceID, bf.ID))
	require.Equal(t, alice, gs.combat.Holder)

	// Give alice a playable card and the rune to pay for it.
	aliceState, _ := gs.player(alice)
	card, err := e.catalog.Lookup("insight")
	require.NoError(t, err)
	aliceState.Hand = append(aliceState.Hand, card)
	e.channelRunes(gs, aliceState, 1)

	require.NoError(t, e.PlayCard(alice, PlayCardRequest{CardID: "insight"}))

	assert.Equal(t, rules.StageReaction, gs.combat.Stage)
	assert.Equal(t, bob, gs.combat.Holder, "playing hands priority to the opponent")

	// Passing from reaction returns priority to the last actor.
	require.NoError(t, e.PassPriority(bob))
	assert.Equal(t, alice, gs.combat.Holder)
	assert.Equal(t, rules.StageAction, gs.combat.Stage)
}

func TestMoveUnit_OncePerBattlefieldPerTurn(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[1]

	u := addUnit(t, e, bob, "scout")
	require.NoError(t, e.MoveUnit(bob, u.InstanceID, bf.ID))
	require.NoError(t, e.PassPriority(alice))
	require.NoError(t, e.PassPriority(bob))
	require.Equal(t, bob, bf.ControllerID)

	second := addUnit(t, e, bob, "warden")
	err := e.MoveUnit(bob, second.InstanceID, bf.ID)
	require.Error(t, err, "a side fights each battlefield at most once per turn")
}

func TestPassPriority_BadWindowLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	u := addUnit(t, e, bob, "brute")
	require.NoError(t, e.MoveUnit(bob, u.InstanceID, bf.ID))

	gs.combat.BattlefieldID = "no-such-battlefield"
	logBefore := len(gs.moveLog.list())

	require.Error(t, e.PassPriority(alice))

	require.NotNil(t, gs.combat, "the window survives the rejected pass")
	assert.Zero(t, gs.combat.ActionPasses)
	assert.Equal(t, logBefore, len(gs.moveLog.list()))
}

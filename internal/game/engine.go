package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runeclash/duel-server-go/internal/config"
	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/counters"
	"github.com/runeclash/duel-server-go/internal/game/rules"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

// Match end reasons.
const (
	ReasonVictory = "victory"
	ReasonBurnOut = "burn_out"
	ReasonConcede = "concede"
)

// PlayerSetup describes one player's starting material. Card entries are
// catalog identifiers resolved through the Catalog adapter.
type PlayerSetup struct {
	ID           string
	Name         string
	Deck         []string
	RuneDeck     []string
	Battlefields []string
	LegendID     string
	ChampionID   string
}

// DuelEngine is a deterministic duel-resolution engine for a single
// match. It owns all authoritative state and every rule that mutates it.
// The engine is single-threaded: callers must serialize operations on one
// match instance.
type DuelEngine struct {
	logger  *zap.Logger
	rules   config.Rules
	catalog catalog.Catalog
	state   *gameState
}

// NewDuelEngine creates an engine for one match. The logger may be nil.
func NewDuelEngine(rulesCfg config.Rules, cat catalog.Catalog, logger *zap.Logger) *DuelEngine {
	return &DuelEngine{
		logger:  logger,
		rules:   rulesCfg,
		catalog: cat,
	}
}

// Events exposes the engine's event bus for subscribers. Events are
// delivered synchronously during the operation that causes them.
func (e *DuelEngine) Events() *rules.EventBus {
	if e.state == nil {
		return nil
	}
	return e.state.events
}

// InitializeGame creates the match state, resolves both players' decks
// through the catalog and issues the coin-flip prompts.
func (e *DuelEngine) InitializeGame(matchID string, setups []PlayerSetup) error {
	if e.state != nil {
		return fmt.Errorf("match %s already initialized", e.state.matchID)
	}
	if matchID == "" {
		matchID = uuid.New().String()
	}
	if len(setups) != 2 {
		return fmt.Errorf("exactly two players required, got %d", len(setups))
	}
	if setups[0].ID == setups[1].ID {
		return fmt.Errorf("player ids must differ")
	}
	if e.catalog == nil {
		return fmt.Errorf("no catalog configured")
	}

	gs := &gameState{
		matchID:      matchID,
		status:       StatusSetup,
		victoryScore: e.rules.VictoryScore,
		moveLog:      newRingLog(e.rules.MoveLogCapacity),
		scoreLog:     newRingLog(e.rules.ScoreLogCapacity),
		duelLog:      newRingLog(e.rules.DuelLogCapacity),
		chatLog:      newRingLog(e.rules.ChatLogCapacity),
		events:       rules.NewEventBus(),
	}

	for _, setup := range setups {
		player, err := e.buildPlayer(gs, setup)
		if err != nil {
			return err
		}
		gs.players = append(gs.players, player)
	}

	// Opening hands are dealt before the coin flip; mulligan comes later.
	for _, p := range gs.players {
		for i := 0; i < e.rules.StartingHandSize && len(p.Deck) > 0; i++ {
			p.Hand = append(p.Hand, p.Deck[0])
			p.Deck = p.Deck[1:]
		}
	}

	gs.status = StatusCoinFlip
	for _, p := range gs.players {
		e.issuePrompt(gs, PromptCoinFlip, p.ID, map[string]string{
			"choices": "BLADE,SHIELD,RING",
		})
	}

	e.state = gs
	gs.addDuelLog("", "Match started")
	gs.events.Publish(rules.NewEvent(rules.EventMatchStarted, "", "", ""))

	if e.logger != nil {
		e.logger.Info("duel engine initialized match",
			zap.String("match_id", matchID),
			zap.String("player_a", setups[0].ID),
			zap.String("player_b", setups[1].ID),
		)
	}
	return nil
}

// buildPlayer resolves one player's setup through the catalog.
func (e *DuelEngine) buildPlayer(gs *gameState, setup PlayerSetup) (*playerState, error) {
	if setup.ID == "" {
		return nil, fmt.Errorf("player id is required")
	}
	name := setup.Name
	if name == "" {
		name = setup.ID
	}

	p := &playerState{
		ID:   setup.ID,
		Name: name,
	}

	for _, identifier := range setup.Deck {
		card, err := e.catalog.Lookup(identifier)
		if err != nil {
			return nil, fmt.Errorf("deck of %s: %w", setup.ID, err)
		}
		p.Deck = append(p.Deck, card)
	}

	for _, identifier := range setup.RuneDeck {
		card, err := e.catalog.Lookup(identifier)
		if err != nil {
			return nil, fmt.Errorf("rune deck of %s: %w", setup.ID, err)
		}
		if card.Type != catalog.TypeRune {
			return nil, fmt.Errorf("card %s in rune deck of %s is not a rune", card.ID, setup.ID)
		}
		p.RuneDeck = append(p.RuneDeck, &runes.Rune{
			ID:     gs.nextInstanceID("rune"),
			Name:   card.Name,
			Domain: card.Domain,
			Power:  1,
			Energy: 1,
		})
	}

	for _, identifier := range setup.Battlefields {
		card, err := e.catalog.Lookup(identifier)
		if err != nil {
			return nil, fmt.Errorf("battlefields of %s: %w", setup.ID, err)
		}
		if card.Type != catalog.TypeBattlefield {
			return nil, fmt.Errorf("card %s offered by %s is not a battlefield", card.ID, setup.ID)
		}
		p.BattlefieldOptions = append(p.BattlefieldOptions, card.ID)
	}

	if setup.LegendID != "" {
		card, err := e.catalog.Lookup(setup.LegendID)
		if err != nil {
			return nil, fmt.Errorf("legend of %s: %w", setup.ID, err)
		}
		p.Legend = &legendState{Card: card}
	}
	if setup.ChampionID != "" {
		card, err := e.catalog.Lookup(setup.ChampionID)
		if err != nil {
			return nil, fmt.Errorf("champion of %s: %w", setup.ID, err)
		}
		p.Champion = &legendState{Card: card}
	}

	return p, nil
}

// requireMatch returns the state or an error when no match is running.
func (e *DuelEngine) requireMatch() (*gameState, error) {
	if e.state == nil {
		return nil, fmt.Errorf("no match initialized")
	}
	return e.state, nil
}

// requireActive validates that the match is mutable.
func (e *DuelEngine) requireActive() (*gameState, error) {
	gs, err := e.requireMatch()
	if err != nil {
		return nil, err
	}
	if gs.status.Terminal() {
		return nil, fmt.Errorf("match %s has ended", gs.matchID)
	}
	return gs, nil
}

// SubmitInitiativeChoice records a player's hidden coin-flip pick. When
// both players have submitted, identical picks force a full rematch; a
// decisive result sets turn order and grants the loser a one-time bonus
// rune on their next begin phase.
func (e *DuelEngine) SubmitInitiativeChoice(playerID string, choice rules.InitiativeChoice) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusCoinFlip {
		return fmt.Errorf("match %s is not awaiting initiative choices", gs.matchID)
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}
	if !choice.Valid() {
		return fmt.Errorf("invalid initiative choice %d", int(choice))
	}
	prompt := e.openPromptFor(gs, PromptCoinFlip, playerID)
	if prompt == nil {
		return fmt.Errorf("player %s has no open coin-flip prompt", playerID)
	}

	picked := choice
	player.InitiativeChoice = &picked
	e.resolvePrompt(gs, prompt, []string{choice.String()})
	gs.addMoveLog(playerID, "submitted initiative choice")

	other := gs.opponent(playerID)
	if other.InitiativeChoice == nil {
		return nil
	}

	first, second := gs.players[0], gs.players[1]
	switch rules.ResolveInitiative(*first.InitiativeChoice, *second.InitiativeChoice) {
	case rules.InitiativeRematch:
		first.InitiativeChoice = nil
		second.InitiativeChoice = nil
		for _, p := range gs.players {
			e.issuePrompt(gs, PromptCoinFlip, p.ID, map[string]string{
				"choices": "BLADE,SHIELD,RING",
				"rematch": "true",
			})
		}
		gs.addDuelLog("", "Initiative tied, flip rerun")
		return nil
	case rules.InitiativeFirstWins:
		gs.currentIndex = 0
		second.BonusRuneNextTurn = true
	case rules.InitiativeSecondWins:
		gs.currentIndex = 1
		first.BonusRuneNextTurn = true
	}

	winner := gs.currentPlayer()
	gs.addDuelLog(winner.ID, fmt.Sprintf("%s wins initiative with %s", winner.Name, winner.InitiativeChoice.String()))
	e.enterBattlefieldSelection(gs)
	return nil
}

// enterBattlefieldSelection issues battlefield prompts, auto-selecting
// for players with a single option.
func (e *DuelEngine) enterBattlefieldSelection(gs *gameState) {
	gs.status = StatusBattlefieldSelection
	for _, p := range gs.players {
		if len(p.BattlefieldOptions) == 1 {
			// Sole option: assign without prompting.
			if err := e.selectBattlefieldFor(gs, p, p.BattlefieldOptions[0]); err != nil && e.logger != nil {
				e.logger.Warn("auto battlefield selection failed",
					zap.String("match_id", gs.matchID),
					zap.String("player_id", p.ID),
					zap.Error(err),
				)
			}
			continue
		}
		e.issuePrompt(gs, PromptBattlefield, p.ID, map[string]string{
			"options": joinIDs(p.BattlefieldOptions),
		})
	}
	e.maybeFinishBattlefieldSelection(gs)
}

// SelectBattlefield records a player's battlefield choice. Once both
// players have chosen, battlefield setup triggers fire and the mulligan
// begins.
func (e *DuelEngine) SelectBattlefield(playerID, battlefieldCardID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusBattlefieldSelection {
		return fmt.Errorf("match %s is not in battlefield selection", gs.matchID)
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}
	if player.SelectedBattlefield != "" {
		return fmt.Errorf("player %s already selected a battlefield", playerID)
	}

	if err := e.selectBattlefieldFor(gs, player, battlefieldCardID); err != nil {
		return err
	}
	if prompt := e.openPromptFor(gs, PromptBattlefield, playerID); prompt != nil {
		e.resolvePrompt(gs, prompt, []string{battlefieldCardID})
	}
	e.maybeFinishBattlefieldSelection(gs)
	return nil
}

// selectBattlefieldFor validates the option and creates the battlefield
// state.
func (e *DuelEngine) selectBattlefieldFor(gs *gameState, player *playerState, battlefieldCardID string) error {
	owned := false
	for _, option := range player.BattlefieldOptions {
		if option == battlefieldCardID {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("battlefield %s is not among %s's options", battlefieldCardID, player.ID)
	}

	card, err := e.catalog.Lookup(battlefieldCardID)
	if err != nil {
		return err
	}

	bf := &battlefieldState{
		ID:                gs.nextInstanceID("bf"),
		Card:              card,
		OwnerID:           player.ID,
		Contestants:       make(map[string]bool),
		LastConqueredTurn: make(map[string]int),
		LastHeldTurn:      make(map[string]int),
		LastFoughtTurn:    make(map[string]int),
		EffectState:       make(map[string]string),
	}
	gs.battlefields = append(gs.battlefields, bf)
	player.SelectedBattlefield = bf.ID
	gs.addDuelLog(player.ID, fmt.Sprintf("%s brings %s to the duel", player.Name, card.Name))
	return nil
}

// maybeFinishBattlefieldSelection advances to the mulligan once both
// players have a battlefield.
func (e *DuelEngine) maybeFinishBattlefieldSelection(gs *gameState) {
	for _, p := range gs.players {
		if p.SelectedBattlefield == "" {
			return
		}
	}

	// Setup triggers fire once, in selection creation order.
	for _, bf := range gs.battlefields {
		for _, ability := range bf.Card.AbilitiesFor(catalog.TriggerBattlefieldSetup) {
			e.runOps(gs, bf.OwnerID, bf.Card, "", ability.Ops, newBattlefieldContext(bf.Card.ID, bf.ID))
		}
	}

	gs.status = StatusMulligan
	for _, p := range gs.players {
		e.issuePrompt(gs, PromptMulligan, p.ID, map[string]string{
			"max": fmt.Sprintf("%d", e.rules.MulliganMax+p.ExtraMulligans),
		})
	}
}

// SubmitMulligan sets aside up to the allowed number of hand cards,
// recycles them into the deck and draws replacements. An empty selection
// keeps the hand.
func (e *DuelEngine) SubmitMulligan(playerID string, cardIDs []string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if gs.status != StatusMulligan {
		return fmt.Errorf("match %s is not in mulligan", gs.matchID)
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}
	if player.MulliganDone {
		return fmt.Errorf("player %s already submitted a mulligan", playerID)
	}
	maxSetAside := e.rules.MulliganMax + player.ExtraMulligans
	if len(cardIDs) > maxSetAside {
		return fmt.Errorf("at most %d cards may be set aside, got %d", maxSetAside, len(cardIDs))
	}

	// Validate before mutating: every named card must be in hand, with
	// duplicates accounted for.
	setAside, err := takeFromHand(player, cardIDs)
	if err != nil {
		return err
	}

	// Recycled cards go to the bottom of the deck; replacements come off
	// the top. Recycling before drawing keeps a thin deck legal.
	player.Deck = append(player.Deck, setAside...)
	for i := 0; i < len(setAside) && len(player.Deck) > 0; i++ {
		player.Hand = append(player.Hand, player.Deck[0])
		player.Deck = player.Deck[1:]
	}

	player.MulliganDone = true
	if prompt := e.openPromptFor(gs, PromptMulligan, playerID); prompt != nil {
		e.resolvePrompt(gs, prompt, cardIDs)
	}
	gs.addMoveLog(playerID, fmt.Sprintf("mulliganed %d cards", len(setAside)))

	for _, p := range gs.players {
		if !p.MulliganDone {
			return nil
		}
	}
	e.startTurnCycle(gs)
	return nil
}

// startTurnCycle transitions to IN_PROGRESS and runs the first begin
// phase for the initiative winner.
func (e *DuelEngine) startTurnCycle(gs *gameState) {
	gs.status = StatusInProgress
	gs.turns = rules.NewTurnController(gs.currentPlayer().ID)
	gs.addDuelLog(gs.currentPlayer().ID, fmt.Sprintf("%s takes the first turn", gs.currentPlayer().Name))
	e.runBeginPhase(gs)
	e.autoAdvance(gs)
}

// ConcedeMatch ends the match immediately in the opponent's favor.
func (e *DuelEngine) ConcedeMatch(playerID string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	player, err := gs.player(playerID)
	if err != nil {
		return err
	}
	gs.addDuelLog(playerID, fmt.Sprintf("%s concedes", player.Name))
	e.endMatch(gs, gs.opponent(playerID).ID, ReasonConcede)
	return nil
}

// PostChat appends a message to the bounded chat log. Chat is allowed in
// any non-terminal state.
func (e *DuelEngine) PostChat(playerID, message string) error {
	gs, err := e.requireActive()
	if err != nil {
		return err
	}
	if _, err := gs.player(playerID); err != nil {
		return err
	}
	if message == "" {
		return fmt.Errorf("chat message is empty")
	}
	gs.chatLog.append(logEntry{Turn: gs.turnNumber(), PlayerID: playerID, Text: message, Timestamp: time.Now()})
	return nil
}

// endMatch moves the match to WINNER_DETERMINED and freezes the state.
func (e *DuelEngine) endMatch(gs *gameState, winnerID, reason string) {
	if gs.status.Terminal() {
		return
	}
	gs.status = StatusWinnerDetermined
	gs.result = &matchResult{
		WinnerID:  winnerID,
		Reason:    reason,
		EndedTurn: gs.turnNumber(),
	}
	gs.combat = nil
	gs.mainWindowOpen = false
	gs.addScoreLog(winnerID, fmt.Sprintf("match ended: %s (%s)", winnerID, reason))
	gs.addDuelLog(winnerID, fmt.Sprintf("Match over, winner %s (%s)", winnerID, reason))
	gs.events.Publish(rules.Event{
		Type:        rules.EventMatchEnded,
		PlayerID:    winnerID,
		Turn:        gs.turnNumber(),
		Timestamp:   time.Now(),
		Description: reason,
	})
	if e.logger != nil {
		e.logger.Info("match ended",
			zap.String("match_id", gs.matchID),
			zap.String("winner_id", winnerID),
			zap.String("reason", reason),
		)
	}
}

// CompleteMatch acknowledges a decided match and marks it COMPLETED.
func (e *DuelEngine) CompleteMatch() error {
	gs, err := e.requireMatch()
	if err != nil {
		return err
	}
	if gs.status != StatusWinnerDetermined {
		return fmt.Errorf("match %s has no determined winner", gs.matchID)
	}
	gs.status = StatusCompleted
	return nil
}

// awardVictoryPoints adds points, clamped to the victory score, and ends
// the match when the threshold is reached.
func (e *DuelEngine) awardVictoryPoints(gs *gameState, player *playerState, amount int, reason string) {
	if amount <= 0 || gs.status.Terminal() {
		return
	}
	player.VictoryPoints += amount
	if player.VictoryPoints > gs.victoryScore {
		player.VictoryPoints = gs.victoryScore
	}
	gs.addScoreLog(player.ID, fmt.Sprintf("%s scores %d (%s), total %d", player.Name, amount, reason, player.VictoryPoints))
	gs.events.Publish(rules.Event{
		Type:      rules.EventVictoryPointsAwarded,
		PlayerID:  player.ID,
		Amount:    amount,
		Turn:      gs.turnNumber(),
		Timestamp: time.Now(),
	})
	if player.VictoryPoints >= gs.victoryScore {
		e.endMatch(gs, player.ID, ReasonVictory)
	}
}

// drawCards draws from the top of the deck. Drawing from an empty deck
// ends the match by burn out in the opponent's favor; the hand is never
// left in a partial state.
func (e *DuelEngine) drawCards(gs *gameState, player *playerState, count int) {
	for i := 0; i < count; i++ {
		if gs.status.Terminal() {
			return
		}
		if len(player.Deck) == 0 {
			gs.addDuelLog(player.ID, fmt.Sprintf("%s cannot draw from an empty deck", player.Name))
			e.endMatch(gs, gs.opponent(player.ID).ID, ReasonBurnOut)
			return
		}
		player.Hand = append(player.Hand, player.Deck[0])
		player.Deck = player.Deck[1:]
		gs.events.Publish(rules.NewEvent(rules.EventCardDrawn, player.ID, "", ""))
	}
}

// channelRunes moves runes from the top of the rune deck into play.
func (e *DuelEngine) channelRunes(gs *gameState, player *playerState, count int) int {
	channeled := 0
	for i := 0; i < count && len(player.RuneDeck) > 0; i++ {
		r := player.RuneDeck[0]
		player.RuneDeck = player.RuneDeck[1:]
		r.Tapped = false
		player.Channeled = append(player.Channeled, r)
		channeled++
		gs.events.Publish(rules.NewEvent(rules.EventRuneChanneled, player.ID, r.ID, ""))
	}
	if channeled > 0 {
		gs.addDuelLog(player.ID, fmt.Sprintf("%s channels %d runes", player.Name, channeled))
	}
	return channeled
}

// destroyBoardCard is the shared destroy path: the card leaves the board,
// goes to its owner's graveyard unless it is a token, releases its
// battlefield contestation and fires death triggers.
func (e *DuelEngine) destroyBoardCard(gs *gameState, owner *playerState, bc *boardCard) {
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

	if !bc.Card.Flags.Token {
		owner.Graveyard = append(owner.Graveyard, bc.Card)
	}

	if bc.Location != "" {
		if bf, err := gs.battlefield(bc.Location); err == nil {
			if len(owner.unitsAt(bf.ID)) == 0 {
				delete(bf.Contestants, owner.ID)
			}
		}
	}

	gs.addDuelLog(owner.ID, fmt.Sprintf("%s is destroyed", bc.Card.Name))
	gs.events.Publish(rules.NewEvent(rules.EventUnitDied, owner.ID, bc.InstanceID, ""))

	for _, ability := range bc.Card.AbilitiesFor(catalog.TriggerOnDeath) {
		e.runOps(gs, owner.ID, bc.Card, bc.InstanceID, ability.Ops, newSourceContext(bc.Card.ID, bc.InstanceID))
	}
}

// newBoardCard creates a board card for a catalog template.
func (e *DuelEngine) newBoardCard(gs *gameState, owner *playerState, card *catalog.Card, location string) *boardCard {
	bc := &boardCard{
		Card:             card,
		InstanceID:       gs.nextInstanceID("unit"),
		OwnerID:          owner.ID,
		CurrentToughness: card.Toughness,
		JustSummoned:     !card.Flags.EntersUntapped,
		Location:         location,
		Markers:          counters.NewCounters(),
	}
	return bc
}

// joinIDs renders an id list for prompt payloads.
func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

// takeFromHand removes the named cards from the hand, duplicates counted,
// validating the full selection before any removal.
func takeFromHand(player *playerState, cardIDs []string) ([]*catalog.Card, error) {
	remaining := make([]*catalog.Card, len(player.Hand))
	copy(remaining, player.Hand)

	taken := make([]*catalog.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		found := -1
		for i, card := range remaining {
			if card.ID == id {
				found = i
				break
			}
		}
		if found == -1 {
			return nil, fmt.Errorf("card %s is not in %s's hand", id, player.ID)
		}
		taken = append(taken, remaining[found])
		remaining = append(remaining[:found], remaining[found+1:]...)
	}

	player.Hand = remaining
	return taken, nil
}

package game

import (
	"fmt"
	"sort"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
)

// CardView is a redacted catalog card reference.
type CardView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Cost      string `json:"cost"`
	Might     int    `json:"might"`
	Toughness int    `json:"toughness"`
}

// RuneView is a channeled rune as seen by either player.
type RuneView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Tapped bool   `json:"tapped"`
}

// BoardCardView is a card in play; board state is public.
type BoardCardView struct {
	InstanceID string         `json:"instanceId"`
	CardID     string         `json:"cardId"`
	Name       string         `json:"name"`
	OwnerID    string         `json:"ownerId"`
	Might      int            `json:"might"`
	Toughness  int            `json:"toughness"`
	Tapped     bool           `json:"tapped"`
	Location   string         `json:"location,omitempty"`
	AttachedTo string         `json:"attachedTo,omitempty"`
	Markers    map[string]int `json:"markers,omitempty"`
}

// BattlefieldView is the public state of one battlefield.
type BattlefieldView struct {
	ID           string   `json:"id"`
	CardID       string   `json:"cardId"`
	Name         string   `json:"name"`
	OwnerID      string   `json:"ownerId"`
	ControllerID string   `json:"controllerId,omitempty"`
	Contestants  []string `json:"contestants,omitempty"`
}

// PlayerView is one player's slice of the match. Hidden zones carry
// counts only unless the view is the player's own.
type PlayerView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	VictoryPoints int    `json:"victoryPoints"`

	DeckCount     int `json:"deckCount"`
	RuneDeckCount int `json:"runeDeckCount"`
	HandCount     int `json:"handCount"`

	Hand      []CardView `json:"hand,omitempty"`
	Channeled []RuneView `json:"channeled"`
	Graveyard []CardView `json:"graveyard"`

	Units        []BoardCardView `json:"units"`
	Gear         []BoardCardView `json:"gear"`
	Enchantments []BoardCardView `json:"enchantments"`

	ChampionDeployed bool `json:"championDeployed"`
	MulliganDone     bool `json:"mulliganDone"`
}

// PromptView is an open question to a player.
type PromptView struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	PlayerID string            `json:"playerId"`
	Data     map[string]string `json:"data,omitempty"`
}

// MatchResultView reports a decided match.
type MatchResultView struct {
	WinnerID  string `json:"winnerId"`
	Reason    string `json:"reason"`
	EndedTurn int    `json:"endedTurn"`
}

// LogEntryView is one line of a match log.
type LogEntryView struct {
	Turn     int    `json:"turn"`
	PlayerID string `json:"playerId,omitempty"`
	Text     string `json:"text"`
}

// GameView is the full per-viewer snapshot of a match.
type GameView struct {
	MatchID        string `json:"matchId"`
	Status         string `json:"status"`
	Phase          string `json:"phase,omitempty"`
	Turn           int    `json:"turn"`
	ActivePlayerID string `json:"activePlayerId,omitempty"`
	VictoryScore   int    `json:"victoryScore"`

	Players      []PlayerView      `json:"players"`
	Battlefields []BattlefieldView `json:"battlefields"`
	OpenPrompts  []PromptView      `json:"openPrompts,omitempty"`
	DuelLog      []LogEntryView    `json:"duelLog"`
	Result       *MatchResultView  `json:"result,omitempty"`
}

// GetGameView builds the match snapshot as seen by one player. The
// opponent's hidden zones are redacted to counts; only the viewer's own
// open prompts are included.
func (e *DuelEngine) GetGameView(viewerID string) (*GameView, error) {
	gs, err := e.requireMatch()
	if err != nil {
		return nil, err
	}
	if _, err := gs.player(viewerID); err != nil {
		return nil, err
	}

	view := &GameView{
		MatchID:      gs.matchID,
		Status:       string(gs.status),
		Turn:         gs.turnNumber(),
		VictoryScore: gs.victoryScore,
	}
	if gs.turns != nil {
		view.Phase = gs.turns.CurrentPhase().String()
		view.ActivePlayerID = gs.turns.ActivePlayer()
	}

	for _, p := range gs.players {
		view.Players = append(view.Players, e.playerView(gs, p, p.ID == viewerID))
	}
	for _, bf := range gs.battlefields {
		view.Battlefields = append(view.Battlefields, battlefieldView(bf))
	}
	for _, prompt := range gs.unresolvedPrompts("") {
		if prompt.PlayerID != viewerID {
			continue
		}
		view.OpenPrompts = append(view.OpenPrompts, PromptView{
			ID:       prompt.ID,
			Type:     string(prompt.Type),
			PlayerID: prompt.PlayerID,
			Data:     prompt.Data,
		})
	}
	for _, entry := range gs.duelLog.list() {
		view.DuelLog = append(view.DuelLog, LogEntryView{Turn: entry.Turn, PlayerID: entry.PlayerID, Text: entry.Text})
	}
	if gs.result != nil {
		view.Result = &MatchResultView{
			WinnerID:  gs.result.WinnerID,
			Reason:    gs.result.Reason,
			EndedTurn: gs.result.EndedTurn,
		}
	}
	return view, nil
}

// GetPlayerState returns the unredacted view of the player's own state.
func (e *DuelEngine) GetPlayerState(playerID string) (*PlayerView, error) {
	gs, err := e.requireMatch()
	if err != nil {
		return nil, err
	}
	p, err := gs.player(playerID)
	if err != nil {
		return nil, err
	}
	view := e.playerView(gs, p, true)
	return &view, nil
}

// GetMatchResult returns the result of a decided match, or an error
// while the match is still running.
func (e *DuelEngine) GetMatchResult() (*MatchResultView, error) {
	gs, err := e.requireMatch()
	if err != nil {
		return nil, err
	}
	if gs.result == nil {
		return nil, fmt.Errorf("match %s is still in progress", gs.matchID)
	}
	return &MatchResultView{
		WinnerID:  gs.result.WinnerID,
		Reason:    gs.result.Reason,
		EndedTurn: gs.result.EndedTurn,
	}, nil
}

// CanPlayerAct reports whether the player has any legal action available
// right now: an open prompt, combat priority, or an open main phase as
// the active player.
func (e *DuelEngine) CanPlayerAct(playerID string) bool {
	if e.state == nil {
		return false
	}
	gs := e.state
	if gs.status.Terminal() {
		return false
	}
	for _, prompt := range gs.unresolvedPrompts("") {
		if prompt.PlayerID == playerID {
			return true
		}
	}
	if gs.combat != nil && !gs.combat.Closed {
		return gs.combat.Holder == playerID
	}
	if gs.status == StatusInProgress && gs.turns != nil {
		return gs.turns.ActivePlayer() == playerID && gs.turns.CurrentPhase().IsMain()
	}
	return false
}

// playerView renders one player, redacting hidden zones for opponents.
func (e *DuelEngine) playerView(gs *gameState, p *playerState, own bool) PlayerView {
	view := PlayerView{
		ID:            p.ID,
		Name:          p.Name,
		VictoryPoints: p.VictoryPoints,
		DeckCount:     len(p.Deck),
		RuneDeckCount: len(p.RuneDeck),
		HandCount:     len(p.Hand),
		MulliganDone:  p.MulliganDone,
	}
	if p.Champion != nil {
		view.ChampionDeployed = p.Champion.Deployed
	}
	if own {
		for _, card := range p.Hand {
			view.Hand = append(view.Hand, cardView(card))
		}
	}
	for _, r := range p.Channeled {
		view.Channeled = append(view.Channeled, RuneView{
			ID:     r.ID,
			Name:   r.Name,
			Domain: string(r.Domain),
			Tapped: r.Tapped,
		})
	}
	for _, card := range p.Graveyard {
		view.Graveyard = append(view.Graveyard, cardView(card))
	}
	turn := gs.turnNumber()
	for _, bc := range p.Units {
		view.Units = append(view.Units, boardCardView(bc, turn))
	}
	for _, bc := range p.Gear {
		view.Gear = append(view.Gear, boardCardView(bc, turn))
	}
	for _, bc := range p.Enchantments {
		view.Enchantments = append(view.Enchantments, boardCardView(bc, turn))
	}
	return view
}

func cardView(card *catalog.Card) CardView {
	view := CardView{
		ID:        card.ID,
		Name:      card.Name,
		Type:      string(card.Type),
		Might:     card.Might,
		Toughness: card.Toughness,
	}
	if card.Cost != nil {
		view.Cost = card.Cost.String()
	}
	return view
}

func boardCardView(bc *boardCard, turn int) BoardCardView {
	view := BoardCardView{
		InstanceID: bc.InstanceID,
		CardID:     bc.Card.ID,
		Name:       bc.Card.Name,
		OwnerID:    bc.OwnerID,
		Might:      bc.might(turn),
		Toughness:  bc.CurrentToughness,
		Tapped:     bc.Tapped,
		Location:   bc.Location,
		AttachedTo: bc.AttachedTo,
	}
	if bc.Markers != nil {
		markers := make(map[string]int)
		for _, c := range bc.Markers.GetAll() {
			markers[c.Name] = c.Count
		}
		if len(markers) > 0 {
			view.Markers = markers
		}
	}
	return view
}

func battlefieldView(bf *battlefieldState) BattlefieldView {
	view := BattlefieldView{
		ID:           bf.ID,
		CardID:       bf.Card.ID,
		Name:         bf.Card.Name,
		OwnerID:      bf.OwnerID,
		ControllerID: bf.ControllerID,
	}
	for id := range bf.Contestants {
		view.Contestants = append(view.Contestants, id)
	}
	sort.Strings(view.Contestants)
	return view
}

package game

import (
	"fmt"
	"time"

	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/counters"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusSetup                Status = "SETUP"
	StatusCoinFlip             Status = "COIN_FLIP"
	StatusBattlefieldSelection Status = "BATTLEFIELD_SELECTION"
	StatusMulligan             Status = "MULLIGAN"
	StatusInProgress           Status = "IN_PROGRESS"
	StatusWinnerDetermined     Status = "WINNER_DETERMINED"
	StatusCompleted            Status = "COMPLETED"
)

// Terminal reports whether the match can no longer be mutated.
func (s Status) Terminal() bool {
	return s == StatusWinnerDetermined || s == StatusCompleted
}

// PromptType classifies a prompt issued to a player.
type PromptType string

const (
	PromptMulligan    PromptType = "mulligan"
	PromptCoinFlip    PromptType = "coin_flip"
	PromptBattlefield PromptType = "battlefield"
	PromptDiscard     PromptType = "discard"
	PromptTarget      PromptType = "target"
)

// phaseGated reports whether the prompt type gates phase advancement and
// is therefore limited to one unresolved prompt per (type, player).
func (t PromptType) phaseGated() bool {
	return t == PromptMulligan || t == PromptCoinFlip || t == PromptBattlefield
}

// gamePrompt is a pending question to a player. Discard and target
// prompts share their ID with a pending effect.
type gamePrompt struct {
	ID         string
	Type       PromptType
	PlayerID   string
	Data       map[string]string
	Resolved   bool
	Resolution []string
	IssuedAt   time.Time
}

// logEntry is a single line in one of the bounded match logs.
type logEntry struct {
	Turn      int
	PlayerID  string
	Text      string
	Timestamp time.Time
}

// ringLog is a bounded append-only log; the oldest entry is evicted when
// capacity is reached.
type ringLog struct {
	capacity int
	entries  []logEntry
}

func newRingLog(capacity int) *ringLog {
	if capacity <= 0 {
		capacity = 64
	}
	return &ringLog{capacity: capacity, entries: make([]logEntry, 0, capacity)}
}

func (l *ringLog) append(entry logEntry) {
	if len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
}

func (l *ringLog) list() []logEntry {
	out := make([]logEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// boardCard is a card in play: an immutable catalog template plus the
// runtime fields the engine owns. The instance id is the only stable
// handle for cross-references; it is monotonic and never reused.
type boardCard struct {
	Card             *catalog.Card
	InstanceID       string
	OwnerID          string
	CurrentToughness int
	Tapped           bool
	JustSummoned     bool
	// Location is "" while the card sits at its owner's base, otherwise
	// the id of the battlefield it contests.
	Location      string
	MovedTurn     int
	AttachedTo    string
	Markers       *counters.Counters
	Stateful      bool
	Active        bool
	ActivationLog []time.Time
	RuleUses      []string
}

// might returns the unit's combat strength including boost markers. The
// attacker bonus applies only to assault-tagged units that entered the
// battlefield this turn.
func (bc *boardCard) might(currentTurn int) int {
	total := bc.Card.Might + bc.Markers.Count(string(counters.CounterTypeMight))
	if bc.MovedTurn == currentTurn && bc.hasTag("assault") {
		total++
	}
	return total
}

func (bc *boardCard) hasTag(tag string) bool {
	for _, t := range bc.Card.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// legendState is a champion or legend card with deployment bookkeeping.
type legendState struct {
	Card     *catalog.Card
	Deployed bool
	Tapped   bool
}

// temporaryEffect is a duration-counted effect on a player.
type temporaryEffect struct {
	ID          string
	Description string
	TurnsLeft   int
}

// playerState is one player's owned slice of the match.
type playerState struct {
	ID            string
	Name          string
	VictoryPoints int

	Deck      []*catalog.Card
	RuneDeck  []*runes.Rune
	Channeled []*runes.Rune
	Hand      []*catalog.Card
	Graveyard []*catalog.Card
	Exile     []*catalog.Card

	Units        []*boardCard
	Gear         []*boardCard
	Enchantments []*boardCard

	TempEffects []*temporaryEffect

	BattlefieldOptions  []string
	SelectedBattlefield string

	Legend   *legendState
	Champion *legendState

	InitiativeChoice  *rules.InitiativeChoice
	MulliganDone      bool
	BonusRuneNextTurn bool
	ExtraMulligans    int
}

// rows returns the three board rows in a stable order.
func (p *playerState) rows() [][]*boardCard {
	return [][]*boardCard{p.Units, p.Gear, p.Enchantments}
}

// unitsAt returns the player's units on the given battlefield.
func (p *playerState) unitsAt(battlefieldID string) []*boardCard {
	var at []*boardCard
	for _, u := range p.Units {
		if u.Location == battlefieldID {
			at = append(at, u)
		}
	}
	return at
}

// findBoardCard looks up a board card by instance id across all rows.
func (p *playerState) findBoardCard(instanceID string) *boardCard {
	for _, row := range p.rows() {
		for _, bc := range row {
			if bc.InstanceID == instanceID {
				return bc
			}
		}
	}
	return nil
}

// battlefieldState is a contestable board zone held for the whole match.
type battlefieldState struct {
	ID      string
	Card    *catalog.Card
	OwnerID string
	// ControllerID is "" while the battlefield is contested ground.
	ControllerID      string
	Contestants       map[string]bool
	LastConqueredTurn map[string]int
	LastHeldTurn      map[string]int
	LastFoughtTurn    map[string]int
	EffectState       map[string]string
}

// matchResult records how a finished match ended.
type matchResult struct {
	WinnerID  string
	Reason    string
	EndedTurn int
}

// snapshotRecord is one entry of the per-turn snapshot history.
type snapshotRecord struct {
	Turn     int
	Checksum string
	TakenAt  time.Time
}

// gameState is the authoritative mutable data graph of one match, owned
// exclusively by its engine instance.
type gameState struct {
	matchID      string
	players      []*playerState
	currentIndex int
	status       Status
	victoryScore int

	turns *rules.TurnController

	moveLog  *ringLog
	scoreLog *ringLog
	duelLog  *ringLog
	chatLog  *ringLog

	// mainWindowOpen suspends phase advancement while prompts issued
	// during the begin phase are outstanding.
	mainWindowOpen bool
	combat         *rules.CombatWindow

	prompts      []*gamePrompt
	pending      []*effects.Pending
	battlefields []*battlefieldState

	instanceSeq int
	result      *matchResult
	history     []snapshotRecord

	events *rules.EventBus
}

// player returns the player with the given id.
func (gs *gameState) player(playerID string) (*playerState, error) {
	for _, p := range gs.players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("player %s not found in match %s", playerID, gs.matchID)
}

// opponent returns the other player.
func (gs *gameState) opponent(playerID string) *playerState {
	for _, p := range gs.players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

// currentPlayer returns the player whose turn it is.
func (gs *gameState) currentPlayer() *playerState {
	return gs.players[gs.currentIndex]
}

// battlefield looks up a battlefield state by id.
func (gs *gameState) battlefield(battlefieldID string) (*battlefieldState, error) {
	for _, bf := range gs.battlefields {
		if bf.ID == battlefieldID {
			return bf, nil
		}
	}
	return nil, fmt.Errorf("battlefield %s not found in match %s", battlefieldID, gs.matchID)
}

// findInstance resolves a board card instance id across both players.
func (gs *gameState) findInstance(instanceID string) (*playerState, *boardCard) {
	for _, p := range gs.players {
		if bc := p.findBoardCard(instanceID); bc != nil {
			return p, bc
		}
	}
	return nil, nil
}

// nextInstanceID hands out the next monotonic instance id. Ids are never
// reused for the lifetime of the match.
func (gs *gameState) nextInstanceID(prefix string) string {
	gs.instanceSeq++
	return fmt.Sprintf("%s-%d", prefix, gs.instanceSeq)
}

// turnNumber returns the current turn number, 0 before the turn cycle
// starts.
func (gs *gameState) turnNumber() int {
	if gs.turns == nil {
		return 0
	}
	return gs.turns.TurnNumber()
}

// addDuelLog appends a human-readable line to the duel log.
func (gs *gameState) addDuelLog(playerID, text string) {
	gs.duelLog.append(logEntry{Turn: gs.turnNumber(), PlayerID: playerID, Text: text, Timestamp: time.Now()})
}

// addMoveLog appends an entry to the move log.
func (gs *gameState) addMoveLog(playerID, text string) {
	gs.moveLog.append(logEntry{Turn: gs.turnNumber(), PlayerID: playerID, Text: text, Timestamp: time.Now()})
}

// addScoreLog appends an entry to the score log.
func (gs *gameState) addScoreLog(playerID, text string) {
	gs.scoreLog.append(logEntry{Turn: gs.turnNumber(), PlayerID: playerID, Text: text, Timestamp: time.Now()})
}

// unresolvedPrompts returns all open prompts, optionally filtered by type.
func (gs *gameState) unresolvedPrompts(promptType PromptType) []*gamePrompt {
	var open []*gamePrompt
	for _, prompt := range gs.prompts {
		if prompt.Resolved {
			continue
		}
		if promptType != "" && prompt.Type != promptType {
			continue
		}
		open = append(open, prompt)
	}
	return open
}

// findPrompt returns the unresolved prompt with the given id.
func (gs *gameState) findPrompt(promptID string) *gamePrompt {
	for _, prompt := range gs.prompts {
		if prompt.ID == promptID && !prompt.Resolved {
			return prompt
		}
	}
	return nil
}

// findPending returns the pending effect with the given id and its index.
func (gs *gameState) findPending(pendingID string) (*effects.Pending, int) {
	for i, p := range gs.pending {
		if p.ID == pendingID {
			return p, i
		}
	}
	return nil, -1
}

// removePending drops the pending effect at the given index.
func (gs *gameState) removePending(index int) {
	if index < 0 || index >= len(gs.pending) {
		return
	}
	gs.pending = append(gs.pending[:index], gs.pending[index+1:]...)
}

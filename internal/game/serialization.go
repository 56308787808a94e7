package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/runeclash/duel-server-go/internal/config"
	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/counters"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

// snapshotVersion is bumped when the snapshot layout changes; older
// snapshots are restored with missing fields backfilled to defaults.
const snapshotVersion = 1

// RuneSnapshot is a serialized channeled or decked rune.
type RuneSnapshot struct {
	ID     string
	Name   string
	Domain string
	Power  int
	Energy int
	Tapped bool
}

// BoardCardSnapshot references its template by catalog id. Token
// templates exist in no catalog, so they are carried inline.
type BoardCardSnapshot struct {
	CardID           string
	InstanceID       string
	OwnerID          string
	CurrentToughness int
	Tapped           bool
	JustSummoned     bool
	Location         string
	MovedTurn        int
	AttachedTo       string
	Markers          map[string]int
	Stateful         bool
	Active           bool
	RuleUses         []string

	Token          bool
	TokenName      string
	TokenMight     int
	TokenToughness int
	TokenTags      []string
}

// LegendSnapshot is a serialized legend or champion slot.
type LegendSnapshot struct {
	CardID   string
	Deployed bool
	Tapped   bool
}

// TempEffectSnapshot is a serialized duration-counted effect.
type TempEffectSnapshot struct {
	ID          string
	Description string
	TurnsLeft   int
}

// PlayerSnapshot is one player's serialized state. Card zones hold
// catalog ids, re-resolved on restore.
type PlayerSnapshot struct {
	ID            string
	Name          string
	VictoryPoints int

	Deck      []string
	Hand      []string
	Graveyard []string
	Exile     []string

	RuneDeck  []RuneSnapshot
	Channeled []RuneSnapshot

	Units        []BoardCardSnapshot
	Gear         []BoardCardSnapshot
	Enchantments []BoardCardSnapshot

	TempEffects []TempEffectSnapshot

	BattlefieldOptions  []string
	SelectedBattlefield string

	Legend   *LegendSnapshot
	Champion *LegendSnapshot

	InitiativeChoice  *int
	MulliganDone      bool
	BonusRuneNextTurn bool
	ExtraMulligans    int
}

// BattlefieldSnapshot is one serialized battlefield.
type BattlefieldSnapshot struct {
	ID                string
	CardID            string
	OwnerID           string
	ControllerID      string
	Contestants       []string
	LastConqueredTurn map[string]int
	LastHeldTurn      map[string]int
	LastFoughtTurn    map[string]int
	EffectState       map[string]string
}

// PromptSnapshot is one serialized prompt, resolved ones included so the
// restored log of questions stays complete.
type PromptSnapshot struct {
	ID         string
	Type       string
	PlayerID   string
	Data       map[string]string
	Resolved   bool
	Resolution []string
	IssuedAt   time.Time
}

// PendingSnapshot is one serialized effect continuation.
type PendingSnapshot struct {
	ID          string
	Kind        string
	CasterID    string
	Ops         []effects.Operation
	ResumeIndex int
	Context     effects.Context
	Handler     string
}

// CombatSnapshot is the serialized priority window, if open.
type CombatSnapshot struct {
	ID            string
	BattlefieldID string
	Initiator     string
	Holder        string
	Stage         string
	LastActor     string
	ActionPasses  int
	Closed        bool
}

// LogEntrySnapshot is one serialized log line.
type LogEntrySnapshot struct {
	Turn      int
	PlayerID  string
	Text      string
	Timestamp time.Time
}

// HistoryRecord is one serialized per-turn checksum record.
type HistoryRecord struct {
	Turn     int
	Checksum string
	TakenAt  time.Time
}

// Snapshot is the complete serializable form of a match. An engine can
// be fully reconstructed from it plus a catalog.
type Snapshot struct {
	Version      int
	MatchID      string
	Status       string
	CurrentIndex int
	VictoryScore int

	HasTurns     bool
	Phase        string
	TurnNumber   int
	ActivePlayer string

	Players      []PlayerSnapshot
	Battlefields []BattlefieldSnapshot
	Prompts      []PromptSnapshot
	Pending      []PendingSnapshot
	Combat       *CombatSnapshot

	MainWindowOpen bool
	InstanceSeq    int

	MoveLog  []LogEntrySnapshot
	ScoreLog []LogEntrySnapshot
	DuelLog  []LogEntrySnapshot
	ChatLog  []LogEntrySnapshot

	Result  *MatchResultView
	History []HistoryRecord
}

// GetGameState exports the full match state. The snapshot holds catalog
// ids, never live references, so it serializes losslessly.
func (e *DuelEngine) GetGameState() (*Snapshot, error) {
	gs, err := e.requireMatch()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Version:        snapshotVersion,
		MatchID:        gs.matchID,
		Status:         string(gs.status),
		CurrentIndex:   gs.currentIndex,
		VictoryScore:   gs.victoryScore,
		MainWindowOpen: gs.mainWindowOpen,
		InstanceSeq:    gs.instanceSeq,
		MoveLog:        logSnapshots(gs.moveLog),
		ScoreLog:       logSnapshots(gs.scoreLog),
		DuelLog:        logSnapshots(gs.duelLog),
		ChatLog:        logSnapshots(gs.chatLog),
	}
	if gs.turns != nil {
		snap.HasTurns = true
		snap.Phase = gs.turns.CurrentPhase().String()
		snap.TurnNumber = gs.turns.TurnNumber()
		snap.ActivePlayer = gs.turns.ActivePlayer()
	}
	for _, p := range gs.players {
		snap.Players = append(snap.Players, playerSnapshot(p))
	}
	for _, bf := range gs.battlefields {
		snap.Battlefields = append(snap.Battlefields, BattlefieldSnapshot{
			ID:                bf.ID,
			CardID:            bf.Card.ID,
			OwnerID:           bf.OwnerID,
			ControllerID:      bf.ControllerID,
			Contestants:       sortedKeys(bf.Contestants),
			LastConqueredTurn: copyIntMap(bf.LastConqueredTurn),
			LastHeldTurn:      copyIntMap(bf.LastHeldTurn),
			LastFoughtTurn:    copyIntMap(bf.LastFoughtTurn),
			EffectState:       copyStringMap(bf.EffectState),
		})
	}
	for _, prompt := range gs.prompts {
		snap.Prompts = append(snap.Prompts, PromptSnapshot{
			ID:         prompt.ID,
			Type:       string(prompt.Type),
			PlayerID:   prompt.PlayerID,
			Data:       copyStringMap(prompt.Data),
			Resolved:   prompt.Resolved,
			Resolution: append([]string(nil), prompt.Resolution...),
			IssuedAt:   prompt.IssuedAt,
		})
	}
	for _, pending := range gs.pending {
		snap.Pending = append(snap.Pending, PendingSnapshot{
			ID:          pending.ID,
			Kind:        string(pending.Kind),
			CasterID:    pending.CasterID,
			Ops:         effects.CopyOps(pending.Ops),
			ResumeIndex: pending.ResumeIndex,
			Context:     pending.Context.Copy(),
			Handler:     pending.Handler,
		})
	}
	if gs.combat != nil {
		snap.Combat = &CombatSnapshot{
			ID:            gs.combat.ID,
			BattlefieldID: gs.combat.BattlefieldID,
			Initiator:     gs.combat.Initiator,
			Holder:        gs.combat.Holder,
			Stage:         string(gs.combat.Stage),
			LastActor:     gs.combat.LastActor,
			ActionPasses:  gs.combat.ActionPasses,
			Closed:        gs.combat.Closed,
		}
	}
	if gs.result != nil {
		snap.Result = &MatchResultView{
			WinnerID:  gs.result.WinnerID,
			Reason:    gs.result.Reason,
			EndedTurn: gs.result.EndedTurn,
		}
	}
	for _, rec := range gs.history {
		snap.History = append(snap.History, HistoryRecord{Turn: rec.Turn, Checksum: rec.Checksum, TakenAt: rec.TakenAt})
	}
	return snap, nil
}

// FromSerializedState reconstructs an engine from a snapshot, resolving
// every card id through the catalog. Fields absent from older snapshots
// are backfilled with safe defaults.
func FromSerializedState(snap *Snapshot, cat catalog.Catalog, rulesCfg config.Rules, logger *zap.Logger) (*DuelEngine, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required to restore a match")
	}

	e := NewDuelEngine(rulesCfg, cat, logger)
	gs := &gameState{
		matchID:        snap.MatchID,
		status:         Status(snap.Status),
		currentIndex:   snap.CurrentIndex,
		victoryScore:   snap.VictoryScore,
		mainWindowOpen: snap.MainWindowOpen,
		instanceSeq:    snap.InstanceSeq,
		moveLog:        restoreLog(snap.MoveLog, rulesCfg.MoveLogCapacity),
		scoreLog:       restoreLog(snap.ScoreLog, rulesCfg.ScoreLogCapacity),
		duelLog:        restoreLog(snap.DuelLog, rulesCfg.DuelLogCapacity),
		chatLog:        restoreLog(snap.ChatLog, rulesCfg.ChatLogCapacity),
		events:         rules.NewEventBus(),
	}
	if gs.victoryScore <= 0 {
		gs.victoryScore = rulesCfg.VictoryScore
	}
	if snap.HasTurns {
		gs.turns = rules.RestoreTurnController(snap.ActivePlayer, rules.PhaseFromString(snap.Phase), snap.TurnNumber)
	}

	for i := range snap.Players {
		p, err := restorePlayer(&snap.Players[i], cat)
		if err != nil {
			return nil, err
		}
		gs.players = append(gs.players, p)
	}
	if len(gs.players) != 2 {
		return nil, fmt.Errorf("snapshot holds %d players, want 2", len(gs.players))
	}

	for i := range snap.Battlefields {
		bs := &snap.Battlefields[i]
		card, err := cat.Lookup(bs.CardID)
		if err != nil {
			return nil, fmt.Errorf("battlefield %s: %w", bs.ID, err)
		}
		bf := &battlefieldState{
			ID:                bs.ID,
			Card:              card,
			OwnerID:           bs.OwnerID,
			ControllerID:      bs.ControllerID,
			Contestants:       make(map[string]bool, len(bs.Contestants)),
			LastConqueredTurn: orEmptyIntMap(bs.LastConqueredTurn),
			LastHeldTurn:      orEmptyIntMap(bs.LastHeldTurn),
			LastFoughtTurn:    orEmptyIntMap(bs.LastFoughtTurn),
			EffectState:       orEmptyStringMap(bs.EffectState),
		}
		for _, id := range bs.Contestants {
			bf.Contestants[id] = true
		}
		gs.battlefields = append(gs.battlefields, bf)
	}

	for i := range snap.Prompts {
		ps := &snap.Prompts[i]
		gs.prompts = append(gs.prompts, &gamePrompt{
			ID:         ps.ID,
			Type:       PromptType(ps.Type),
			PlayerID:   ps.PlayerID,
			Data:       orEmptyStringMap(ps.Data),
			Resolved:   ps.Resolved,
			Resolution: append([]string(nil), ps.Resolution...),
			IssuedAt:   ps.IssuedAt,
		})
	}
	for i := range snap.Pending {
		ps := &snap.Pending[i]
		gs.pending = append(gs.pending, &effects.Pending{
			ID:          ps.ID,
			Kind:        effects.PendingKind(ps.Kind),
			CasterID:    ps.CasterID,
			Ops:         effects.CopyOps(ps.Ops),
			ResumeIndex: ps.ResumeIndex,
			Context:     ps.Context.Copy(),
			Handler:     ps.Handler,
		})
	}
	if snap.Combat != nil {
		gs.combat = &rules.CombatWindow{
			ID:            snap.Combat.ID,
			BattlefieldID: snap.Combat.BattlefieldID,
			Initiator:     snap.Combat.Initiator,
			Holder:        snap.Combat.Holder,
			Stage:         rules.WindowStage(snap.Combat.Stage),
			LastActor:     snap.Combat.LastActor,
			ActionPasses:  snap.Combat.ActionPasses,
			Closed:        snap.Combat.Closed,
		}
	}
	if snap.Result != nil {
		gs.result = &matchResult{
			WinnerID:  snap.Result.WinnerID,
			Reason:    snap.Result.Reason,
			EndedTurn: snap.Result.EndedTurn,
		}
	}
	for _, rec := range snap.History {
		gs.history = append(gs.history, snapshotRecord{Turn: rec.Turn, Checksum: rec.Checksum, TakenAt: rec.TakenAt})
	}

	e.state = gs
	return e, nil
}

// SerializeToBytes encodes a snapshot with gob.
func SerializeToBytes(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a gob-encoded snapshot.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// SnapshotChecksum produces a deterministic digest of a snapshot. JSON
// encoding is used because it renders map keys in sorted order.
func SnapshotChecksum(snap *Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("hashing snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// recordSnapshot appends a per-turn checksum record to the history.
func (e *DuelEngine) recordSnapshot(gs *gameState) {
	snap, err := e.GetGameState()
	if err != nil {
		return
	}
	snap.History = nil
	checksum, err := SnapshotChecksum(snap)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("snapshot checksum failed", zap.String("match_id", gs.matchID), zap.Error(err))
		}
		return
	}
	gs.history = append(gs.history, snapshotRecord{
		Turn:     gs.turnNumber(),
		Checksum: checksum,
		TakenAt:  time.Now(),
	})
}

func playerSnapshot(p *playerState) PlayerSnapshot {
	snap := PlayerSnapshot{
		ID:                  p.ID,
		Name:                p.Name,
		VictoryPoints:       p.VictoryPoints,
		Deck:                cardIDs(p.Deck),
		Hand:                cardIDs(p.Hand),
		Graveyard:           cardIDs(p.Graveyard),
		Exile:               cardIDs(p.Exile),
		BattlefieldOptions:  append([]string(nil), p.BattlefieldOptions...),
		SelectedBattlefield: p.SelectedBattlefield,
		MulliganDone:        p.MulliganDone,
		BonusRuneNextTurn:   p.BonusRuneNextTurn,
		ExtraMulligans:      p.ExtraMulligans,
	}
	for _, r := range p.RuneDeck {
		snap.RuneDeck = append(snap.RuneDeck, runeSnapshot(r))
	}
	for _, r := range p.Channeled {
		snap.Channeled = append(snap.Channeled, runeSnapshot(r))
	}
	for _, bc := range p.Units {
		snap.Units = append(snap.Units, boardCardSnapshot(bc))
	}
	for _, bc := range p.Gear {
		snap.Gear = append(snap.Gear, boardCardSnapshot(bc))
	}
	for _, bc := range p.Enchantments {
		snap.Enchantments = append(snap.Enchantments, boardCardSnapshot(bc))
	}
	for _, te := range p.TempEffects {
		snap.TempEffects = append(snap.TempEffects, TempEffectSnapshot{ID: te.ID, Description: te.Description, TurnsLeft: te.TurnsLeft})
	}
	if p.Legend != nil {
		snap.Legend = &LegendSnapshot{CardID: p.Legend.Card.ID, Deployed: p.Legend.Deployed, Tapped: p.Legend.Tapped}
	}
	if p.Champion != nil {
		snap.Champion = &LegendSnapshot{CardID: p.Champion.Card.ID, Deployed: p.Champion.Deployed, Tapped: p.Champion.Tapped}
	}
	if p.InitiativeChoice != nil {
		choice := int(*p.InitiativeChoice)
		snap.InitiativeChoice = &choice
	}
	return snap
}

func restorePlayer(snap *PlayerSnapshot, cat catalog.Catalog) (*playerState, error) {
	p := &playerState{
		ID:                  snap.ID,
		Name:                snap.Name,
		VictoryPoints:       snap.VictoryPoints,
		BattlefieldOptions:  append([]string(nil), snap.BattlefieldOptions...),
		SelectedBattlefield: snap.SelectedBattlefield,
		MulliganDone:        snap.MulliganDone,
		BonusRuneNextTurn:   snap.BonusRuneNextTurn,
		ExtraMulligans:      snap.ExtraMulligans,
	}

	var err error
	if p.Deck, err = resolveCards(snap.Deck, cat); err != nil {
		return nil, fmt.Errorf("deck of %s: %w", snap.ID, err)
	}
	if p.Hand, err = resolveCards(snap.Hand, cat); err != nil {
		return nil, fmt.Errorf("hand of %s: %w", snap.ID, err)
	}
	if p.Graveyard, err = resolveCards(snap.Graveyard, cat); err != nil {
		return nil, fmt.Errorf("graveyard of %s: %w", snap.ID, err)
	}
	if p.Exile, err = resolveCards(snap.Exile, cat); err != nil {
		return nil, fmt.Errorf("exile of %s: %w", snap.ID, err)
	}

	for i := range snap.RuneDeck {
		p.RuneDeck = append(p.RuneDeck, restoreRune(&snap.RuneDeck[i]))
	}
	for i := range snap.Channeled {
		p.Channeled = append(p.Channeled, restoreRune(&snap.Channeled[i]))
	}

	for i := range snap.Units {
		bc, err := restoreBoardCard(&snap.Units[i], cat)
		if err != nil {
			return nil, err
		}
		p.Units = append(p.Units, bc)
	}
	for i := range snap.Gear {
		bc, err := restoreBoardCard(&snap.Gear[i], cat)
		if err != nil {
			return nil, err
		}
		p.Gear = append(p.Gear, bc)
	}
	for i := range snap.Enchantments {
		bc, err := restoreBoardCard(&snap.Enchantments[i], cat)
		if err != nil {
			return nil, err
		}
		p.Enchantments = append(p.Enchantments, bc)
	}

	for _, te := range snap.TempEffects {
		p.TempEffects = append(p.TempEffects, &temporaryEffect{ID: te.ID, Description: te.Description, TurnsLeft: te.TurnsLeft})
	}

	if snap.Legend != nil {
		card, err := cat.Lookup(snap.Legend.CardID)
		if err != nil {
			return nil, fmt.Errorf("legend of %s: %w", snap.ID, err)
		}
		p.Legend = &legendState{Card: card, Deployed: snap.Legend.Deployed, Tapped: snap.Legend.Tapped}
	}
	if snap.Champion != nil {
		card, err := cat.Lookup(snap.Champion.CardID)
		if err != nil {
			return nil, fmt.Errorf("champion of %s: %w", snap.ID, err)
		}
		p.Champion = &legendState{Card: card, Deployed: snap.Champion.Deployed, Tapped: snap.Champion.Tapped}
	}
	if snap.InitiativeChoice != nil {
		choice := rules.InitiativeChoice(*snap.InitiativeChoice)
		p.InitiativeChoice = &choice
	}
	return p, nil
}

func restoreBoardCard(snap *BoardCardSnapshot, cat catalog.Catalog) (*boardCard, error) {
	var card *catalog.Card
	if snap.Token {
		card = &catalog.Card{
			ID:        snap.CardID,
			Name:      snap.TokenName,
			Type:      catalog.TypeUnit,
			Might:     snap.TokenMight,
			Toughness: snap.TokenToughness,
			Tags:      append([]string(nil), snap.TokenTags...),
			Flags:     catalog.Flags{Token: true},
		}
	} else {
		var err error
		if card, err = cat.Lookup(snap.CardID); err != nil {
			return nil, fmt.Errorf("board card %s: %w", snap.InstanceID, err)
		}
	}
	bc := &boardCard{
		Card:             card,
		InstanceID:       snap.InstanceID,
		OwnerID:          snap.OwnerID,
		CurrentToughness: snap.CurrentToughness,
		Tapped:           snap.Tapped,
		JustSummoned:     snap.JustSummoned,
		Location:         snap.Location,
		MovedTurn:        snap.MovedTurn,
		AttachedTo:       snap.AttachedTo,
		Markers:          counters.NewCounters(),
		Stateful:         snap.Stateful,
		Active:           snap.Active,
		RuleUses:         append([]string(nil), snap.RuleUses...),
	}
	for name, count := range snap.Markers {
		bc.Markers.Add(name, count)
	}
	return bc, nil
}

func runeSnapshot(r *runes.Rune) RuneSnapshot {
	return RuneSnapshot{
		ID:     r.ID,
		Name:   r.Name,
		Domain: string(r.Domain),
		Power:  r.Power,
		Energy: r.Energy,
		Tapped: r.Tapped,
	}
}

func restoreRune(snap *RuneSnapshot) *runes.Rune {
	return &runes.Rune{
		ID:     snap.ID,
		Name:   snap.Name,
		Domain: runes.Domain(snap.Domain),
		Power:  snap.Power,
		Energy: snap.Energy,
		Tapped: snap.Tapped,
	}
}

func boardCardSnapshot(bc *boardCard) BoardCardSnapshot {
	snap := BoardCardSnapshot{
		CardID:           bc.Card.ID,
		InstanceID:       bc.InstanceID,
		OwnerID:          bc.OwnerID,
		CurrentToughness: bc.CurrentToughness,
		Tapped:           bc.Tapped,
		JustSummoned:     bc.JustSummoned,
		Location:         bc.Location,
		MovedTurn:        bc.MovedTurn,
		AttachedTo:       bc.AttachedTo,
		Stateful:         bc.Stateful,
		Active:           bc.Active,
		RuleUses:         append([]string(nil), bc.RuleUses...),
	}
	if bc.Markers != nil {
		for _, c := range bc.Markers.GetAll() {
			if snap.Markers == nil {
				snap.Markers = make(map[string]int)
			}
			snap.Markers[c.Name] = c.Count
		}
	}
	if bc.Card.Flags.Token {
		snap.Token = true
		snap.TokenName = bc.Card.Name
		snap.TokenMight = bc.Card.Might
		snap.TokenToughness = bc.Card.Toughness
		if len(bc.Card.Tags) > 0 {
			snap.TokenTags = append([]string(nil), bc.Card.Tags...)
		}
	}
	return snap
}

func cardIDs(cards []*catalog.Card) []string {
	if len(cards) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	return ids
}

func resolveCards(ids []string, cat catalog.Catalog) ([]*catalog.Card, error) {
	var cards []*catalog.Card
	for _, id := range ids {
		card, err := cat.Lookup(id)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func logSnapshots(log *ringLog) []LogEntrySnapshot {
	var out []LogEntrySnapshot
	for _, entry := range log.list() {
		out = append(out, LogEntrySnapshot{Turn: entry.Turn, PlayerID: entry.PlayerID, Text: entry.Text, Timestamp: entry.Timestamp})
	}
	return out
}

func restoreLog(entries []LogEntrySnapshot, capacity int) *ringLog {
	log := newRingLog(capacity)
	for _, entry := range entries {
		log.append(logEntry{Turn: entry.Turn, PlayerID: entry.PlayerID, Text: entry.Text, Timestamp: entry.Timestamp})
	}
	return log
}

// The copy helpers return nil for empty inputs: gob does not round-trip
// the nil/empty distinction, and a stable checksum needs one spelling.
func copyIntMap(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func orEmptyIntMap(m map[string]int) map[string]int {
	if m == nil {
		return make(map[string]int)
	}
	return m
}

func orEmptyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return make(map[string]string)
	}
	return m
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

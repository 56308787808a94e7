package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/runeclash/duel-server-go/internal/config"
	"github.com/runeclash/duel-server-go/internal/game"
	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

var configPath = flag.String("config", "", "path to configuration file (defaults apply when empty)")

// duel-demo runs a short scripted duel against the in-memory catalog and
// prints the duel log, exercising the full engine surface end to end.
func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duel demo")

	if err := run(cfg, logger); err != nil {
		logger.Fatal("demo duel failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	cat, err := demoCatalog()
	if err != nil {
		return err
	}

	engine := game.NewDuelEngine(cfg.Rules, cat, logger)

	deck := []string{"emberfoot-scout", "cinder-brute", "searing-bolt", "sudden-insight", "quiet-warden",
		"emberfoot-scout", "cinder-brute", "searing-bolt", "sudden-insight", "quiet-warden"}
	runeDeck := []string{"fury-rune", "fury-rune", "calm-rune", "fury-rune", "calm-rune", "fury-rune", "calm-rune", "fury-rune"}

	setups := []game.PlayerSetup{
		{ID: "ada", Name: "Ada", Deck: deck, RuneDeck: runeDeck, Battlefields: []string{"molten-anvil"}},
		{ID: "brin", Name: "Brin", Deck: deck, RuneDeck: runeDeck, Battlefields: []string{"silent-spire"}},
	}
	if err := engine.InitializeGame("demo-match", setups); err != nil {
		return err
	}
	engine.Events().Subscribe(func(event rules.Event) {
		logger.Debug("duel event",
			zap.String("type", string(event.Type)),
			zap.String("player_id", event.PlayerID),
		)
	})

	// Brin takes initiative with Shield over Blade.
	if err := engine.SubmitInitiativeChoice("ada", rules.ChoiceBlade); err != nil {
		return err
	}
	if err := engine.SubmitInitiativeChoice("brin", rules.ChoiceShield); err != nil {
		return err
	}
	if err := engine.SubmitMulligan("ada", nil); err != nil {
		return err
	}
	if err := engine.SubmitMulligan("brin", nil); err != nil {
		return err
	}

	// A few turns of deploys and contested battlefields.
	script := []func() error{
		func() error {
			return engine.PlayCard("brin", game.PlayCardRequest{CardID: "emberfoot-scout"})
		},
		func() error { return engine.ProceedToNextPhase("brin") },
		func() error { return engine.ProceedToNextPhase("brin") },
		func() error {
			return engine.PlayCard("ada", game.PlayCardRequest{CardID: "emberfoot-scout"})
		},
		func() error { return engine.ProceedToNextPhase("ada") },
		func() error { return engine.ProceedToNextPhase("ada") },
	}
	for _, step := range script {
		if err := step(); err != nil {
			return err
		}
	}

	// Brin engages at Ada's battlefield with the scout deployed earlier.
	view, err := engine.GetPlayerState("brin")
	if err != nil {
		return err
	}
	if len(view.Units) > 0 {
		gv, err := engine.GetGameView("brin")
		if err != nil {
			return err
		}
		if err := engine.MoveUnit("brin", view.Units[0].InstanceID, gv.Battlefields[0].ID); err != nil {
			return err
		}
		if err := engine.PassPriority("ada"); err != nil {
			return err
		}
		if err := engine.PassPriority("brin"); err != nil {
			return err
		}
	}

	gv, err := engine.GetGameView("brin")
	if err != nil {
		return err
	}
	fmt.Println("=== Duel log ===")
	for _, entry := range gv.DuelLog {
		fmt.Printf("[T%d] %s\n", entry.Turn, entry.Text)
	}
	for _, p := range gv.Players {
		fmt.Printf("%s: %d victory points\n", p.Name, p.VictoryPoints)
	}

	// Round-trip the match through the serialization contract.
	snap, err := engine.GetGameState()
	if err != nil {
		return err
	}
	data, err := game.SerializeToBytes(snap)
	if err != nil {
		return err
	}
	restoredSnap, err := game.DeserializeFromBytes(data)
	if err != nil {
		return err
	}
	if _, err := game.FromSerializedState(restoredSnap, cat, cfg.Rules, logger); err != nil {
		return err
	}
	checksum, err := game.SnapshotChecksum(snap)
	if err != nil {
		return err
	}
	logger.Info("match snapshot round-tripped",
		zap.Int("bytes", len(data)),
		zap.String("checksum", checksum),
	)
	return nil
}

// demoCatalog builds the small fixed card pool the demo plays with.
func demoCatalog() (*catalog.MemoryCatalog, error) {
	cat := catalog.NewMemoryCatalog()
	cards := []*catalog.Card{
		{
			ID: "emberfoot-scout", Name: "Emberfoot Scout", Type: catalog.TypeUnit,
			Domain: runes.DomainFury, Might: 2, Toughness: 2,
		},
		{
			ID: "cinder-brute", Name: "Cinder Brute", Type: catalog.TypeUnit,
			Domain: runes.DomainFury, Might: 3, Toughness: 3,
		},
		{
			ID: "quiet-warden", Name: "Quiet Warden", Type: catalog.TypeUnit,
			Domain: runes.DomainCalm, Might: 1, Toughness: 4,
		},
		{
			ID: "searing-bolt", Name: "Searing Bolt", Type: catalog.TypeSpell,
			Domain: runes.DomainFury,
			Abilities: []catalog.Ability{{
				Trigger:     catalog.TriggerOnPlay,
				Description: "Deal 2 damage to a unit.",
				Ops:         []effects.Operation{{Type: effects.OpDamage, Target: effects.TargetAny, Amount: 2}},
			}},
		},
		{
			ID: "sudden-insight", Name: "Sudden Insight", Type: catalog.TypeSpell,
			Domain: runes.DomainMind,
			Abilities: []catalog.Ability{{
				Trigger:     catalog.TriggerOnPlay,
				Description: "Draw two cards.",
				Ops:         []effects.Operation{{Type: effects.OpDraw, Target: effects.TargetSelf, Amount: 2}},
			}},
		},
		{ID: "fury-rune", Name: "Fury Rune", Type: catalog.TypeRune, Domain: runes.DomainFury},
		{ID: "calm-rune", Name: "Calm Rune", Type: catalog.TypeRune, Domain: runes.DomainCalm},
		{ID: "molten-anvil", Name: "Molten Anvil", Type: catalog.TypeBattlefield},
		{ID: "silent-spire", Name: "Silent Spire", Type: catalog.TypeBattlefield},
	}
	for _, card := range cards {
		costs := map[string]string{
			"emberfoot-scout": "{1}",
			"cinder-brute":    "{1}{F}",
			"quiet-warden":    "{1}",
			"searing-bolt":    "{1}",
			"sudden-insight":  "{1}",
		}
		if costStr, ok := costs[card.ID]; ok {
			cost, err := runes.ParseCost(costStr)
			if err != nil {
				return nil, err
			}
			card.Cost = cost
		}
		if err := cat.Register(card); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// initLogger builds the zap logger from configuration.
func initLogger(cfg config.Logging) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

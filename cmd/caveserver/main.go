// Package main provides the cave server binary: it generates the shared cave,
// registers with the cave directory, and serves player sessions over Telnet.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/caveserver/internal/config"
	"github.com/cory-johannsen/caveserver/internal/dispatcher"
	"github.com/cory-johannsen/caveserver/internal/game/cave"
	"github.com/cory-johannsen/caveserver/internal/game/command"
	"github.com/cory-johannsen/caveserver/internal/game/narrative"
	"github.com/cory-johannsen/caveserver/internal/game/rng"
	"github.com/cory-johannsen/caveserver/internal/game/session"
	"github.com/cory-johannsen/caveserver/internal/observability"
	"github.com/cory-johannsen/caveserver/internal/registry"
	"github.com/cory-johannsen/caveserver/internal/server"
	"github.com/cory-johannsen/caveserver/internal/telnet"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src rng.Source
	if cfg.Cave.Seed != 0 {
		logger.Warn("using deterministic seeded randomness",
			zap.Uint64("seed", cfg.Cave.Seed),
		)
		src = rng.NewSeededSource(cfg.Cave.Seed)
	} else {
		src = rng.NewCryptoSource()
	}

	genStart := time.Now()
	caveMap, err := cave.Generate(cave.GenerationConfig{
		Rooms:          cfg.Cave.Rooms,
		IDRange:        cfg.Cave.IDRange,
		LadderIndex:    cfg.Cave.LadderIndex,
		GoldDrop:       cfg.Cave.GoldDrop,
		SampleAttempts: cfg.Cave.SampleAttempts,
	}, src, logger)
	if err != nil {
		logger.Fatal("generating cave", zap.Error(err))
	}
	logger.Info("cave ready",
		zap.Int("rooms", caveMap.RoomCount()),
		zap.Duration("elapsed", time.Since(genStart)),
	)

	msgs := narrative.Defaults()
	if cfg.NarrativePath != "" {
		msgs, err = narrative.Load(cfg.NarrativePath)
		if err != nil {
			logger.Fatal("loading narrative", zap.Error(err))
		}
		logger.Info("narrative overrides loaded",
			zap.String("path", cfg.NarrativePath),
		)
	}

	rules := session.Rules{
		StartingArrows:           cfg.Rules.StartingArrows,
		WumpusReward:             cfg.Rules.WumpusReward,
		ArrowLostOnInvalidTarget: cfg.Rules.ArrowLostOnInvalidTarget,
	}
	interp := session.NewInterpreter(caveMap, command.DefaultRegistry(), rules, msgs, logger)
	disp := dispatcher.New(interp, rules, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, disp, logger)

	if cfg.Registry.Enabled {
		client, err := registry.Dial(cfg.Registry, logger)
		if err != nil {
			logger.Fatal("connecting to cave directory", zap.Error(err))
		}
		defer client.Close()
		if err := client.Register(cfg.Telnet.Addr()); err != nil {
			logger.Fatal("registering with cave directory", zap.Error(err))
		}
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("cave server starting",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}

package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"tankbots/internal/config"
	"tankbots/internal/game"
	"tankbots/internal/httpapi"
	"tankbots/internal/hub"
	"tankbots/internal/maps"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	store, err := maps.NewDirStore(cfg.MapsDir, log)
	if err != nil {
		log.Fatal("load maps", zap.String("dir", cfg.MapsDir), zap.Error(err))
	}

	table := game.NewStateTable()
	var sim game.Simulation
	switch cfg.Simulation {
	case "dummy":
		sim = game.DummySimulation{Log: log, Table: table, Radius: 5}
	default:
		sim = game.LogSimulation{Log: log}
	}

	h := hub.NewHub(context.Background(), cfg, store, table, sim, log)
	handler := httpapi.SetupRoutes(h, store, log)

	log.Info("listening",
		zap.String("addr", cfg.Addr), zap.Int("tickRate", cfg.TickRate))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}

package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Dendekky/vibe-racing/internal/config"
	"github.com/Dendekky/vibe-racing/internal/game"
	"github.com/Dendekky/vibe-racing/internal/telemetry"
	"github.com/Dendekky/vibe-racing/internal/terrain"
	"github.com/Dendekky/vibe-racing/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	logger := log.New(os.Stdout, "[vibe-racing] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config load failed: %v", err)
	}

	track := terrain.Generate(cfg.Terrain.Width, cfg.Terrain.Depth, cfg.Terrain.ObstacleCount)
	session := game.NewRaceSession(track, cfg.Physics, cfg.Vehicle, logger)
	server := ws.NewServer(session, logger)
	recorder := telemetry.NewManager(logger)

	if cfg.Server.PaceCar {
		if err := session.SpawnAutopilot("pace_car"); err != nil {
			logger.Printf("pace car spawn failed: %v", err)
		}
	}

	ticker := game.NewTicker(cfg.Server.TPS, logger)
	ticker.Register(game.NewSimulationSystem(session))
	ticker.Register(game.NewBroadcastSystem(session, server))
	ticker.Register(game.NewTelemetrySystem(session, recorder))
	ticker.Start()
	defer ticker.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"loop":     ticker.Stats(),
			"vehicles": session.VehicleCount(),
			"clients":  server.ClientCount(),
		})
	})
	mux.HandleFunc("/telemetry", func(w http.ResponseWriter, _ *http.Request) {
		data, err := recorder.DumpJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Printf("race server listening on %s (%d TPS)", cfg.Server.Addr, cfg.Server.TPS)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server failed: %v", err)
	}
}

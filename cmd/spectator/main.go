package main

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"tankbots/internal/config"
	"tankbots/internal/protocol"
	"tankbots/internal/spectator"
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	conn, _, err := websocket.Dial(ctx, cfg.ServerURL, nil)
	if err != nil {
		log.Fatal("connect", zap.String("url", cfg.ServerURL), zap.Error(err))
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")
	log.Info("connected", zap.String("url", cfg.ServerURL))

	// Spectators omit the team name; the map name lets this client create
	// the lobby if it arrives first.
	handshake := protocol.NewSent(protocol.TargetSpec{Kind: protocol.TargetServerOnly},
		&protocol.FirstContact{
			BotName:   cfg.BotName,
			LobbyID:   cfg.Lobby,
			MapName:   cfg.MapName,
			Spectator: true,
		}, 0)
	payload, err := json.Marshal(handshake)
	if err != nil {
		log.Fatal("marshal handshake", zap.Error(err))
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		log.Fatal("send handshake", zap.Error(err))
	}

	reconciler := spectator.NewReconciler(spectator.NewLogScene(log), log)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Info("connection closed", zap.Error(err))
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn("malformed envelope", zap.Error(err))
			continue
		}

		switch p := env.Payload.(type) {
		case *protocol.GameState:
			reconciler.Reconcile(p)
		case *protocol.GameConfig:
			log.Info("game started",
				zap.String("clientId", p.ClientID),
				zap.Uint32("tickRate", p.TickRate),
				zap.Int("teams", len(p.Teams)))
		case *protocol.JoinedLobby:
			log.Info("joined", zap.String("text", p.Text))
		case *protocol.TextMessage:
			log.Info("message",
				zap.String("from", env.Sender), zap.String("text", p.Text))
		case *protocol.MessageError:
			log.Warn("server error",
				zap.String("code", p.Code), zap.String("message", p.Message))
		default:
			log.Warn("unexpected payload", zap.String("kind", env.Payload.Kind()))
		}
	}
}

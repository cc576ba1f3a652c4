package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tankbots/internal/hub"
	"tankbots/internal/maps"
	"tankbots/internal/ws"
)

func SetupRoutes(h *hub.Hub, store maps.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/lobbies", ListLobbies(h))
	r.Get("/maps", ListMaps(store))
	r.Get("/ws", ws.Handler(h, log))
	return r
}

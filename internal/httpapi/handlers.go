package httpapi

import (
	"encoding/json"
	"net/http"

	"tankbots/internal/hub"
	"tankbots/internal/maps"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ListLobbies returns the directory snapshot as JSON.
func ListLobbies(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan hub.View, 1)
		h.Inbox() <- hub.GetView{Reply: reply}
		view := <-reply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	}
}

// ListMaps returns the names the map store can resolve.
func ListMaps(store maps.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Maps []string `json:"maps"`
		}{Maps: store.ListNames()})
	}
}

package handler

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devaloi/pairline/internal/client"
	"github.com/devaloi/pairline/internal/hub"
)

// ServeWS handles WebSocket upgrade requests. Browser origins must appear in
// origins ("*" allows any); requests without an Origin header are accepted.
func ServeWS(h *hub.Hub, opts client.Options, origins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(origins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("ws upgrade failed")
			return
		}

		c := client.New(h, conn, opts)
		go c.ReadPump()
		go c.WritePump()
	}
}

func checkOrigin(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}

package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/devaloi/pairline/internal/client"
	"github.com/devaloi/pairline/internal/hub"
	"github.com/devaloi/pairline/internal/metrics"
	"github.com/devaloi/pairline/internal/middleware"
	"github.com/devaloi/pairline/internal/registry"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Registry *registry.Registry
	Hub      *hub.Hub
	Metrics  *metrics.Metrics
	Client   client.Options
	Origins  []string
	Logger   zerolog.Logger
}

// NewRouter wires every route behind request logging and CORS.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health())
	mux.HandleFunc("POST /create-room", CreateRoom(d.Registry))
	mux.HandleFunc("POST /join-room", JoinRoom(d.Registry))
	mux.HandleFunc("GET /rooms", ListRooms(d.Registry, d.Hub))
	mux.HandleFunc("GET /rooms/{id}", RoomInfo(d.Registry, d.Hub))
	mux.HandleFunc("GET /ws", ServeWS(d.Hub, d.Client, d.Origins))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	return middleware.Logging(d.Logger, middleware.CORS(d.Origins, mux))
}

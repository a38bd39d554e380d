package hub

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/devaloi/pairline/internal/domain"
	"github.com/devaloi/pairline/internal/metrics"
)

// Hub indexes live connections by room and fans events out to them.
//
// Membership here is independent of the registry: joining a group is never
// capacity checked. A single lock covers mutation and fan-out, so each
// connection sees a room's events in the order the hub processed them.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a new Hub.
func New(log zerolog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		rooms:   make(map[string]*Room),
		log:     log.With().Str("component", "hub").Logger(),
		metrics: m,
	}
}

// Join adds c to the room's group, creating the group if needed, and
// notifies the other connections with user_joined.
func (h *Hub) Join(c Client, room, user string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[room]
	if !ok {
		r = NewRoom(room)
		h.rooms[room] = r
		h.log.Debug().Str("room_id", room).Msg("group created")
	}
	r.add(c)
	h.log.Info().Str("room_id", room).Str("user", user).Str("conn_id", c.ID()).Msg("joined group")

	h.broadcast(r, domain.UserJoined(room, user), c)
}

// Leave removes c from the room's group and notifies the remaining
// connections with user_left. The notification is sent even if c was not a
// member.
func (h *Hub) Leave(c Client, room, user string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[room]
	if !ok {
		return
	}
	r.remove(c)
	h.log.Info().Str("room_id", room).Str("user", user).Str("conn_id", c.ID()).Msg("left group")

	h.broadcast(r, domain.UserLeft(room, user), c)
	h.prune(r)
}

// Message relays text to every connection in the room's group, sender
// included.
func (h *Hub) Message(c Client, room, user, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[room]
	if !ok {
		return
	}
	h.broadcast(r, domain.Chat(room, user, text), nil)
}

// Disconnect prunes a closed connection from every group it joined and sends
// an implicit user_left to the peers. rooms maps room id to the user the
// connection joined with.
func (h *Hub) Disconnect(c Client, rooms map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, user := range rooms {
		r, ok := h.rooms[room]
		if !ok || !r.remove(c) {
			continue
		}
		h.log.Info().Str("room_id", room).Str("user", user).Str("conn_id", c.ID()).Msg("disconnected from group")
		h.broadcast(r, domain.UserLeft(room, user), c)
		h.prune(r)
	}
}

// GroupSize returns the number of connections in a room's group.
func (h *Hub) GroupSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[room]; ok {
		return r.ClientCount()
	}
	return 0
}

// Groups returns every non-empty group ordered by room id.
func (h *Hub) Groups() []domain.Group {
	h.mu.Lock()
	defer h.mu.Unlock()
	groups := lo.MapToSlice(h.rooms, func(name string, r *Room) domain.Group {
		return domain.Group{Room: name, Connections: r.ClientCount()}
	})
	sort.Slice(groups, func(i, j int) bool { return groups[i].Room < groups[j].Room })
	return groups
}

func (h *Hub) broadcast(r *Room, n domain.Notification, exclude Client) {
	data, err := domain.Encode(n)
	if err != nil {
		h.log.Error().Err(err).Str("type", n.Type).Msg("encode notification")
		return
	}
	h.metrics.Delivered(r.Broadcast(data, exclude))
}

// prune drops an empty group. The registry room, if any, is unaffected.
func (h *Hub) prune(r *Room) {
	if r.ClientCount() == 0 {
		delete(h.rooms, r.Name())
		h.log.Debug().Str("room_id", r.Name()).Msg("group deleted")
	}
}

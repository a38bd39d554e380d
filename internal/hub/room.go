package hub

// Client is the interface that hub/room expects from a WebSocket client.
type Client interface {
	ID() string
	Send(data []byte)
}

// Room is the broadcast group of one room id. It is not safe for concurrent
// use; the owning Hub serializes access.
type Room struct {
	name    string
	clients map[Client]struct{}
}

// NewRoom creates an empty group.
func NewRoom(name string) *Room {
	return &Room{
		name:    name,
		clients: make(map[Client]struct{}),
	}
}

// Name returns the room id.
func (r *Room) Name() string {
	return r.name
}

// ClientCount returns the number of connections in the group.
func (r *Room) ClientCount() int {
	return len(r.clients)
}

func (r *Room) add(c Client) {
	r.clients[c] = struct{}{}
}

// remove reports whether c was a member.
func (r *Room) remove(c Client) bool {
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast queues data on every connection except exclude (which may be nil)
// and returns the number of recipients.
func (r *Room) Broadcast(data []byte, exclude Client) int {
	n := 0
	for c := range r.clients {
		if exclude != nil && c == exclude {
			continue
		}
		c.Send(data)
		n++
	}
	return n
}

// Package registry tracks named rooms and the users recorded as their members.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/devaloi/pairline/internal/domain"
	"github.com/devaloi/pairline/internal/metrics"
	"github.com/devaloi/pairline/internal/store"
)

// Registry is the process-wide room registry. Mutations are serialized so
// the capacity check and the member append happen atomically.
type Registry struct {
	mu      sync.Mutex
	store   store.RoomStore
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a Registry backed by s.
func New(s store.RoomStore, log zerolog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		store:   s,
		log:     log.With().Str("component", "registry").Logger(),
		metrics: m,
	}
}

// CreateRoom registers an empty room.
func (r *Registry) CreateRoom(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingID
	}
	if domain.IDTooLong(id) {
		return domain.ErrIDTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.CreateRoom(ctx, id); err != nil {
		return err
	}
	r.metrics.RoomCreated()
	r.log.Info().Str("room_id", id).Msg("room created")
	return nil
}

// JoinRoom records user as a member of the room. It fails with
// domain.ErrRoomNotFound for an unknown room and domain.ErrRoomFull once the
// room holds domain.RoomCapacity members. The same user may join twice.
func (r *Registry) JoinRoom(ctx context.Context, id, user string) error {
	if domain.IDTooLong(id) || domain.IDTooLong(user) {
		return domain.ErrIDTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	members, err := r.store.Members(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			r.metrics.JoinResult("not_found")
		}
		return err
	}
	if (domain.Room{ID: id, Members: members}).Full() {
		r.metrics.JoinResult("full")
		r.log.Debug().Str("room_id", id).Str("user", user).Msg("join rejected, room full")
		return domain.ErrRoomFull
	}
	if err := r.store.AddMember(ctx, id, user); err != nil {
		return err
	}
	r.metrics.JoinResult("ok")
	r.log.Info().Str("room_id", id).Str("user", user).Msg("user joined room")
	return nil
}

// Room returns a room and its members.
func (r *Registry) Room(ctx context.Context, id string) (domain.Room, error) {
	members, err := r.store.Members(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	return domain.Room{ID: id, Members: members}, nil
}

// Rooms returns every registered room ordered by id.
func (r *Registry) Rooms(ctx context.Context) ([]domain.Room, error) {
	return r.store.ListRooms(ctx)
}

// Exists reports whether the room has been created.
func (r *Registry) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := r.store.Members(ctx, id); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

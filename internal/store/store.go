package store

import (
	"context"

	"github.com/devaloi/pairline/internal/domain"
)

// RoomStore defines the persistence interface behind the room registry.
// Implementations are not required to enforce the capacity rule; the
// registry serializes check-then-write sequences itself.
type RoomStore interface {
	// CreateRoom inserts an empty room. It returns domain.ErrRoomExists
	// when the id is already taken.
	CreateRoom(ctx context.Context, id string) error
	// AddMember appends a user to the room's member list.
	AddMember(ctx context.Context, id, user string) error
	// Members returns the room's members in join order. It returns
	// domain.ErrRoomNotFound when the room is absent.
	Members(ctx context.Context, id string) ([]string, error)
	// ListRooms returns every room with its members, ordered by id.
	ListRooms(ctx context.Context) ([]domain.Room, error)
	// Close releases any resources held by the store.
	Close() error
}

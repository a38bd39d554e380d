package domain

import "unicode/utf8"

// RoomCapacity is the maximum number of members a room accepts through the registry.
const RoomCapacity = 2

// MaxIDLength bounds room and user ids, in characters, on both the HTTP and
// the socket path. The max tags on the event structs must match it.
const MaxIDLength = 128

// IDTooLong reports whether id exceeds MaxIDLength.
func IDTooLong(id string) bool {
	return utf8.RuneCountInString(id) > MaxIDLength
}

// Room describes a registered room.
type Room struct {
	ID          string   `json:"id"`
	Members     []string `json:"members"`
	Connections int      `json:"connections"`
}

// Full reports whether the room has reached RoomCapacity.
func (r Room) Full() bool {
	return len(r.Members) >= RoomCapacity
}

// Group describes a live broadcast group.
type Group struct {
	Room        string `json:"room"`
	Connections int    `json:"connections"`
}

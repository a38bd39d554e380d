package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/devaloi/pairline/internal/domain"
	"github.com/devaloi/pairline/internal/hub"
	"github.com/devaloi/pairline/internal/registry"
)

const maxBodyBytes = 1 << 20

// CreateRoomRequest is the body of POST /create-room.
type CreateRoomRequest struct {
	RoomID string `json:"room_id"`
}

// JoinRoomRequest is the body of POST /join-room.
type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
	User   string `json:"user"`
}

// Health returns a simple health check handler.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// CreateRoom registers a new room.
func CreateRoom(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if !decode(w, r, &req) {
			return
		}
		if err := reg.CreateRoom(r.Context(), req.RoomID); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"message": fmt.Sprintf("Room %s created successfully.", req.RoomID),
		})
	}
}

// JoinRoom records a user as a member of an existing room.
func JoinRoom(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRoomRequest
		if !decode(w, r, &req) {
			return
		}
		if err := reg.JoinRoom(r.Context(), req.RoomID, req.User); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("User %s joined room %s.", req.User, req.RoomID),
		})
	}
}

// ListRooms returns every registered room with its members and live
// connection count.
func ListRooms(reg *registry.Registry, h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := reg.Rooms(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		for i := range rooms {
			rooms[i].Connections = h.GroupSize(rooms[i].ID)
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

// RoomInfo returns details about a specific room.
func RoomInfo(reg *registry.Registry, h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := reg.Room(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		room.Connections = h.GroupSize(room.ID)
		writeJSON(w, http.StatusOK, room)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Room ID is required"})
	case errors.Is(err, domain.ErrIDTooLong):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("ID exceeds %d characters", domain.MaxIDLength),
		})
	case errors.Is(err, domain.ErrRoomExists):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Room already exists"})
	case errors.Is(err, domain.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room does not exist"})
	case errors.Is(err, domain.ErrRoomFull):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Room is full"})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

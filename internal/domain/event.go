package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Inbound event types.
const (
	EvtJoin    = "join"
	EvtLeave   = "leave"
	EvtMessage = "message"
)

// Outbound event types. EvtMessage is used in both directions.
const (
	EvtUserJoined = "user_joined"
	EvtUserLeft   = "user_left"
	EvtError      = "error"
)

// Event is a decoded client frame.
type Event interface {
	Kind() string
	RoomID() string
}

// JoinEvent asks to enter a room's broadcast group.
type JoinEvent struct {
	Room string `json:"room" validate:"required,max=128"`
	User string `json:"user" validate:"required,max=128"`
}

// LeaveEvent asks to leave a room's broadcast group. An empty User falls back
// to the identity the connection joined with.
type LeaveEvent struct {
	Room string `json:"room" validate:"required,max=128"`
	User string `json:"user" validate:"max=128"`
}

// MessageEvent carries text to every connection in a room's group. An empty
// body is relayed as is.
type MessageEvent struct {
	Room    string `json:"room" validate:"required,max=128"`
	User    string `json:"user" validate:"max=128"`
	Message string `json:"message"`
}

func (JoinEvent) Kind() string    { return EvtJoin }
func (LeaveEvent) Kind() string   { return EvtLeave }
func (MessageEvent) Kind() string { return EvtMessage }

func (e JoinEvent) RoomID() string    { return e.Room }
func (e LeaveEvent) RoomID() string   { return e.Room }
func (e MessageEvent) RoomID() string { return e.Room }

// Notification is a frame sent from the server to a connection.
type Notification struct {
	Type    string `json:"type"`
	Room    string `json:"room,omitempty"`
	User    string `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// MarshalJSON always writes the body of a message notification, even when it
// is empty; other kinds omit it.
func (n Notification) MarshalJSON() ([]byte, error) {
	type wire Notification
	if n.Type != EvtMessage {
		return json.Marshal(wire(n))
	}
	return json.Marshal(struct {
		wire
		Message string `json:"message"`
	}{wire(n), n.Message})
}

// ErrorMessage reports an error to the client.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// UserJoined builds the notification sent when a user enters a group.
func UserJoined(room, user string) Notification {
	return Notification{Type: EvtUserJoined, Room: room, User: user}
}

// UserLeft builds the notification sent when a user leaves a group.
func UserLeft(room, user string) Notification {
	return Notification{Type: EvtUserLeft, Room: room, User: user}
}

// Chat builds the notification relaying a message.
func Chat(room, user, text string) Notification {
	return Notification{Type: EvtMessage, Room: room, User: user, Message: text}
}

// Encode serializes a value to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// DecodeEvent parses a client frame into its typed event and validates it.
// Every failure wraps ErrInvalidEvent.
func DecodeEvent(data []byte) (Event, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidEvent)
	}

	var ev Event
	switch env.Type {
	case EvtJoin:
		var e JoinEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		ev = e
	case EvtLeave:
		var e LeaveEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		ev = e
	case EvtMessage:
		var e MessageEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		ev = e
	case "":
		return nil, fmt.Errorf("%w: type is required", ErrInvalidEvent)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, env.Type)
	}

	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func validateEvent(ev Event) error {
	err := validate.Struct(ev)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidEvent, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s exceeds %s characters", ErrInvalidEvent, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", ErrInvalidEvent, fe.Field())
	}
}

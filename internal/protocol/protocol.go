// Package protocol defines the wire format between browsers and the hub.
// Every frame is one flat JSON object discriminated by its "type" field.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type identifies what kind of event a frame carries.
type Type string

const (
	// Client → Hub
	TypeLogin             Type = "login"
	TypeDirectMessage     Type = "direct_message"
	TypeGroupMessage      Type = "group_message"
	TypeTyping            Type = "typing"
	TypeStopTyping        Type = "stop_typing"
	TypeJoinGroupRoom     Type = "join_group_room"
	TypeInitiateCall      Type = "initiate_call"
	TypeAnswerCall        Type = "answer_call"
	TypeDeclineCall       Type = "decline_call"
	TypeHangUp            Type = "hang_up"
	TypeJoinCallRoom      Type = "join_call_room"
	TypeRelaySignal       Type = "relay_signal"
	TypeRelayReturnSignal Type = "relay_return_signal"
	TypeLeaveCallRoom     Type = "leave_call_room"
	TypePing              Type = "ping"

	// Hub → Client
	TypeLoggedIn         Type = "logged_in"
	TypeSessionReplaced  Type = "session_replaced"
	TypeUserStatus       Type = "user_status"
	TypeOnlineUsers      Type = "online_users"
	TypeMessageAck       Type = "message_ack"
	TypeGroupJoined      Type = "group_joined"
	TypeIncomingCall     Type = "incoming_call"
	TypeCallRinging      Type = "call_ringing"
	TypeCallAccepted     Type = "call_accepted"
	TypeCallFailed       Type = "call_failed"
	TypeCallEnded        Type = "call_ended"
	TypeRoomParticipants Type = "room_participants"
	TypePeerJoined       Type = "peer_joined"
	TypeReturnSignal     Type = "return_signal"
	TypePeerLeft         Type = "peer_left"
	TypePong             Type = "pong"
	TypeError            Type = "error"
)

var (
	ErrUnknownType = errors.New("unknown event type")
	ErrBadPayload  = errors.New("bad payload")
)

// Event is a decoded, validated client event.
type Event interface {
	Kind() Type
	Validate() error
}

// Decode parses a frame into its typed variant and validates it.
// Errors wrap ErrUnknownType or ErrBadPayload.
func Decode(data []byte) (Event, error) {
	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	var ev Event
	switch env.Type {
	case TypeLogin:
		ev = &Login{}
	case TypeDirectMessage:
		ev = &DirectMessage{}
	case TypeGroupMessage:
		ev = &GroupMessage{}
	case TypeTyping:
		ev = &Typing{}
	case TypeStopTyping:
		ev = &Typing{Stop: true}
	case TypeJoinGroupRoom:
		ev = &JoinGroupRoom{}
	case TypeInitiateCall:
		ev = &InitiateCall{}
	case TypeAnswerCall:
		ev = &AnswerCall{}
	case TypeDeclineCall:
		ev = &DeclineCall{}
	case TypeHangUp:
		ev = &HangUp{}
	case TypeJoinCallRoom:
		ev = &JoinCallRoom{}
	case TypeRelaySignal:
		ev = &RelaySignal{}
	case TypeRelayReturnSignal:
		ev = &RelayReturnSignal{}
	case TypeLeaveCallRoom:
		ev = &LeaveCallRoom{}
	case TypePing:
		return Ping{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
	}
	return ev, nil
}

// Encode marshals an outbound event.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

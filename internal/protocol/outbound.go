package protocol

import (
	"encoding/json"

	"github.com/dkeye/Kairos/internal/domain"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type LoggedIn struct {
	Type   Type        `json:"type"`
	ConnID string      `json:"connId"`
	User   domain.User `json:"user"`
}

func NewLoggedIn(connID string, u domain.User) LoggedIn {
	return LoggedIn{Type: TypeLoggedIn, ConnID: connID, User: u}
}

type SessionReplaced struct {
	Type   Type          `json:"type"`
	UserID domain.UserID `json:"userId"`
}

func NewSessionReplaced(uid domain.UserID) SessionReplaced {
	return SessionReplaced{Type: TypeSessionReplaced, UserID: uid}
}

type UserStatus struct {
	Type   Type          `json:"type"`
	UserID domain.UserID `json:"userId"`
	Status string        `json:"status"`
}

func NewUserStatus(uid domain.UserID, online bool) UserStatus {
	st := StatusOffline
	if online {
		st = StatusOnline
	}
	return UserStatus{Type: TypeUserStatus, UserID: uid, Status: st}
}

type OnlineUsers struct {
	Type  Type            `json:"type"`
	Users []domain.UserID `json:"users"`
}

func NewOnlineUsers(users []domain.UserID) OnlineUsers {
	if users == nil {
		users = []domain.UserID{}
	}
	return OnlineUsers{Type: TypeOnlineUsers, Users: users}
}

// MessageEvent carries a persisted message to its recipients.
type MessageEvent struct {
	Type     Type          `json:"type"`
	TargetID domain.UserID `json:"targetId,omitempty"`
	domain.Message
}

func NewDirectMessage(target domain.UserID, m domain.Message) MessageEvent {
	return MessageEvent{Type: TypeDirectMessage, TargetID: target, Message: m}
}

func NewGroupMessage(m domain.Message) MessageEvent {
	return MessageEvent{Type: TypeGroupMessage, Message: m}
}

// MessageAck confirms to the sender that its message is durable.
type MessageAck struct {
	Type      Type          `json:"type"`
	ClientRef string        `json:"clientRef,omitempty"`
	TargetID  domain.UserID `json:"targetId,omitempty"`
	domain.Message
}

func NewMessageAck(clientRef string, target domain.UserID, m domain.Message) MessageAck {
	return MessageAck{Type: TypeMessageAck, ClientRef: clientRef, TargetID: target, Message: m}
}

type TypingEvent struct {
	Type    Type          `json:"type"`
	FromID  domain.UserID `json:"fromId"`
	Target  string        `json:"target"`
	IsGroup bool          `json:"isGroup"`
}

func NewTyping(from domain.UserID, target string, isGroup, stop bool) TypingEvent {
	t := TypeTyping
	if stop {
		t = TypeStopTyping
	}
	return TypingEvent{Type: t, FromID: from, Target: target, IsGroup: isGroup}
}

type GroupJoined struct {
	Type    Type           `json:"type"`
	GroupID domain.GroupID `json:"groupId"`
}

func NewGroupJoined(g domain.GroupID) GroupJoined {
	return GroupJoined{Type: TypeGroupJoined, GroupID: g}
}

type IncomingCall struct {
	Type     Type            `json:"type"`
	CallID   string          `json:"callId"`
	From     domain.UserID   `json:"from"`
	FromName string          `json:"fromName"`
	Signal   json.RawMessage `json:"signal"`
}

func NewIncomingCall(callID string, from domain.User, signal json.RawMessage) IncomingCall {
	return IncomingCall{Type: TypeIncomingCall, CallID: callID, From: from.ID, FromName: from.DisplayName, Signal: signal}
}

type CallRinging struct {
	Type   Type          `json:"type"`
	CallID string        `json:"callId"`
	Target domain.UserID `json:"target"`
}

func NewCallRinging(callID string, target domain.UserID) CallRinging {
	return CallRinging{Type: TypeCallRinging, CallID: callID, Target: target}
}

type CallAccepted struct {
	Type   Type            `json:"type"`
	CallID string          `json:"callId"`
	Signal json.RawMessage `json:"signal"`
}

func NewCallAccepted(callID string, signal json.RawMessage) CallAccepted {
	return CallAccepted{Type: TypeCallAccepted, CallID: callID, Signal: signal}
}

type CallFailed struct {
	Type   Type          `json:"type"`
	CallID string        `json:"callId,omitempty"`
	Target domain.UserID `json:"target,omitempty"`
	Reason string        `json:"reason"`
}

func NewCallFailed(callID string, target domain.UserID, reason string) CallFailed {
	return CallFailed{Type: TypeCallFailed, CallID: callID, Target: target, Reason: reason}
}

type CallEnded struct {
	Type   Type   `json:"type"`
	CallID string `json:"callId"`
	Reason string `json:"reason"`
}

func NewCallEnded(callID, reason string) CallEnded {
	return CallEnded{Type: TypeCallEnded, CallID: callID, Reason: reason}
}

// Participant labels one connection in a mesh call.
type Participant struct {
	ConnID      string        `json:"connId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
}

type RoomParticipants struct {
	Type         Type          `json:"type"`
	RoomID       domain.RoomID `json:"roomId"`
	Participants []Participant `json:"participants"`
}

func NewRoomParticipants(room domain.RoomID, ps []Participant) RoomParticipants {
	if ps == nil {
		ps = []Participant{}
	}
	return RoomParticipants{Type: TypeRoomParticipants, RoomID: room, Participants: ps}
}

type PeerJoined struct {
	Type   Type            `json:"type"`
	RoomID domain.RoomID   `json:"roomId"`
	Origin Participant     `json:"origin"`
	Signal json.RawMessage `json:"signal"`
}

func NewPeerJoined(room domain.RoomID, origin Participant, signal json.RawMessage) PeerJoined {
	return PeerJoined{Type: TypePeerJoined, RoomID: room, Origin: origin, Signal: signal}
}

type ReturnSignal struct {
	Type   Type            `json:"type"`
	RoomID domain.RoomID   `json:"roomId"`
	From   Participant     `json:"from"`
	Signal json.RawMessage `json:"signal"`
}

func NewReturnSignal(room domain.RoomID, from Participant, signal json.RawMessage) ReturnSignal {
	return ReturnSignal{Type: TypeReturnSignal, RoomID: room, From: from, Signal: signal}
}

type PeerLeft struct {
	Type   Type          `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	ConnID string        `json:"connId"`
	UserID domain.UserID `json:"userId,omitempty"`
}

func NewPeerLeft(room domain.RoomID, connID string, uid domain.UserID) PeerLeft {
	return PeerLeft{Type: TypePeerLeft, RoomID: room, ConnID: connID, UserID: uid}
}

type Pong struct {
	Type Type `json:"type"`
}

func NewPong() Pong { return Pong{Type: TypePong} }

type Error struct {
	Type    Type   `json:"type"`
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

func NewError(code, message, ref string) Error {
	return Error{Type: TypeError, Code: code, Message: message, Ref: ref}
}

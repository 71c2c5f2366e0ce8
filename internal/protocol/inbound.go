package protocol

import (
	"encoding/json"
	"errors"
)

var (
	errMissingUserID = errors.New("userId required")
	errMissingTarget = errors.New("target required")
	errMissingGroup  = errors.New("groupId required")
	errMissingRoom   = errors.New("roomId required")
	errMissingSignal = errors.New("signal required")
	errMissingCallID = errors.New("callId required")
)

type Login struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func (Login) Kind() Type { return TypeLogin }
func (e Login) Validate() error {
	if e.UserID == "" {
		return errMissingUserID
	}
	return nil
}

// DirectMessage is sent by the client without a sender: the hub stamps
// the identity bound to the connection.
type DirectMessage struct {
	TargetID  string `json:"targetId"`
	Text      string `json:"text,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	MediaRef  string `json:"mediaRef,omitempty"`
	ClientRef string `json:"clientRef,omitempty"`
}

func (DirectMessage) Kind() Type { return TypeDirectMessage }
func (e DirectMessage) Validate() error {
	if e.TargetID == "" {
		return errMissingTarget
	}
	return nil
}

type GroupMessage struct {
	GroupID   string `json:"groupId"`
	Text      string `json:"text,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	MediaRef  string `json:"mediaRef,omitempty"`
	ClientRef string `json:"clientRef,omitempty"`
}

func (GroupMessage) Kind() Type { return TypeGroupMessage }
func (e GroupMessage) Validate() error {
	if e.GroupID == "" {
		return errMissingGroup
	}
	return nil
}

// Typing covers both typing and stop_typing.
type Typing struct {
	Target  string `json:"target"`
	IsGroup bool   `json:"isGroup"`
	Stop    bool   `json:"-"`
}

func (e Typing) Kind() Type {
	if e.Stop {
		return TypeStopTyping
	}
	return TypeTyping
}
func (e Typing) Validate() error {
	if e.Target == "" {
		return errMissingTarget
	}
	return nil
}

type JoinGroupRoom struct {
	GroupID string `json:"groupId"`
}

func (JoinGroupRoom) Kind() Type { return TypeJoinGroupRoom }
func (e JoinGroupRoom) Validate() error {
	if e.GroupID == "" {
		return errMissingGroup
	}
	return nil
}

type InitiateCall struct {
	Target string          `json:"target"`
	Signal json.RawMessage `json:"signal"`
}

func (InitiateCall) Kind() Type { return TypeInitiateCall }
func (e InitiateCall) Validate() error {
	if e.Target == "" {
		return errMissingTarget
	}
	if len(e.Signal) == 0 {
		return errMissingSignal
	}
	return nil
}

// AnswerCall may omit CallID; the callee's ringing call is used then.
type AnswerCall struct {
	CallID string          `json:"callId,omitempty"`
	Signal json.RawMessage `json:"signal"`
}

func (AnswerCall) Kind() Type { return TypeAnswerCall }
func (e AnswerCall) Validate() error {
	if len(e.Signal) == 0 {
		return errMissingSignal
	}
	return nil
}

type DeclineCall struct {
	CallID string `json:"callId"`
}

func (DeclineCall) Kind() Type { return TypeDeclineCall }
func (e DeclineCall) Validate() error {
	if e.CallID == "" {
		return errMissingCallID
	}
	return nil
}

type HangUp struct {
	CallID string `json:"callId"`
}

func (HangUp) Kind() Type { return TypeHangUp }
func (e HangUp) Validate() error {
	if e.CallID == "" {
		return errMissingCallID
	}
	return nil
}

type JoinCallRoom struct {
	RoomID string `json:"roomId"`
}

func (JoinCallRoom) Kind() Type { return TypeJoinCallRoom }
func (e JoinCallRoom) Validate() error {
	if e.RoomID == "" {
		return errMissingRoom
	}
	return nil
}

type LeaveCallRoom struct {
	RoomID string `json:"roomId"`
}

func (LeaveCallRoom) Kind() Type { return TypeLeaveCallRoom }
func (e LeaveCallRoom) Validate() error {
	if e.RoomID == "" {
		return errMissingRoom
	}
	return nil
}

// RelaySignal forwards an opaque blob to another connection in the same call room.
type RelaySignal struct {
	Target string          `json:"target"`
	Signal json.RawMessage `json:"signal"`
}

func (RelaySignal) Kind() Type { return TypeRelaySignal }
func (e RelaySignal) Validate() error {
	if e.Target == "" {
		return errMissingTarget
	}
	if len(e.Signal) == 0 {
		return errMissingSignal
	}
	return nil
}

type RelayReturnSignal struct {
	Origin string          `json:"origin"`
	Signal json.RawMessage `json:"signal"`
}

func (RelayReturnSignal) Kind() Type { return TypeRelayReturnSignal }
func (e RelayReturnSignal) Validate() error {
	if e.Origin == "" {
		return errMissingTarget
	}
	if len(e.Signal) == 0 {
		return errMissingSignal
	}
	return nil
}

type Ping struct{}

func (Ping) Kind() Type      { return TypePing }
func (Ping) Validate() error { return nil }

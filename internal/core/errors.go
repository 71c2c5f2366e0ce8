package core

import (
	"errors"

	"github.com/dkeye/Kairos/internal/domain"
)

var (
	ErrBackpressure        = errors.New("backpressure")
	ErrConnClosed          = errors.New("connection closed")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrUnreachablePeer     = errors.New("peer unreachable")
	ErrPersistence         = errors.New("persistence failure")
	ErrInvalidSignalTarget = errors.New("invalid signal target")
	ErrInvalidTarget       = errors.New("invalid target")
	ErrNotInRoom           = errors.New("not in room")
	ErrNotGroupMember      = errors.New("not a group member")
	ErrBusy                = errors.New("peer busy")
	ErrNoSuchCall          = errors.New("no such call")
	ErrIdentityMismatch    = errors.New("user does not match token")
)

// Code maps an error to the stable code sent to clients.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, ErrUnreachablePeer):
		return "unreachable"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	case errors.Is(err, ErrInvalidSignalTarget):
		return "invalid_signal_target"
	case errors.Is(err, ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_group"
	case errors.Is(err, ErrNotGroupMember):
		return "not_group_member"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrNoSuchCall):
		return "no_such_call"
	case errors.Is(err, ErrIdentityMismatch):
		return "identity_mismatch"
	case isValidation(err):
		return "bad_payload"
	}
	return "internal"
}

func isValidation(err error) bool {
	for _, target := range []error{
		domain.ErrEmptyMessage,
		domain.ErrTextTooLong,
		domain.ErrUnknownMediaType,
		domain.ErrUserIDEmpty,
		domain.ErrUserIDTooLong,
		domain.ErrDisplayNameTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

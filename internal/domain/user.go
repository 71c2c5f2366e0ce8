// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen      = 64
	MaxDisplayNameLen = 64
)

var (
	ErrUserIDEmpty        = errors.New("user id empty")
	ErrUserIDTooLong      = errors.New("user id too long")
	ErrDisplayNameTooLong = errors.New("display name too long")
)

type UserID string

type User struct {
	ID          UserID `json:"userId"`
	DisplayName string `json:"displayName"`
}

// NewUser validates the identity a client presents on login.
// An empty display name falls back to the id.
func NewUser(id, displayName string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = id
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &User{ID: UserID(id), DisplayName: displayName}, nil
}

// PairKey orders two ids so (a, b) and (b, a) map to the same conversation.
func PairKey(a, b UserID) (UserID, UserID) {
	if a <= b {
		return a, b
	}
	return b, a
}

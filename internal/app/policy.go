package app

import "github.com/dkeye/Kairos/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(s core.Session) BackpressureAction
}

// SimplePolicy drops the frame; presence is self-healing and loss is accepted.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.Session) BackpressureAction {
	return DropFrame
}

// StrictPolicy disconnects clients that cannot keep up.
type StrictPolicy struct{}

func (StrictPolicy) OnBackPressure(core.Session) BackpressureAction {
	return KickMember
}

package domain

type CallState int

const (
	CallIdle CallState = iota
	CallRinging
	CallConnecting
	CallActive
	CallEnded
)

func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "idle"
	case CallRinging:
		return "ringing"
	case CallConnecting:
		return "connecting"
	case CallActive:
		return "active"
	case CallEnded:
		return "ended"
	}
	return "unknown"
}

// Reasons carried by call_failed and call_ended.
const (
	ReasonUnreachable  = "unreachable"
	ReasonBusy         = "busy"
	ReasonDeclined     = "declined"
	ReasonTimeout      = "timeout"
	ReasonHangup       = "hangup"
	ReasonCancelled    = "cancelled"
	ReasonDisconnected = "disconnected"
)

package core

// Frame is a raw encoded event.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks. A full buffer returns ErrBackpressure.
	TrySend(Frame) error
	Close()
}

package core

// ConnID is the opaque handle of one live socket.
type ConnID string

// Session binds a connection handle and its transport endpoint.
// This is what the registry stores and the hub fans out to.
type Session interface {
	ID() ConnID
	Signal() SignalConnection
}

type session struct {
	id  ConnID
	sig SignalConnection
}

func NewSession(id ConnID, sig SignalConnection) Session {
	return &session{id: id, sig: sig}
}

func (s *session) ID() ConnID               { return s.id }
func (s *session) Signal() SignalConnection { return s.sig }

package signal

import "github.com/dkeye/Kairos/internal/protocol"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, protocol.NewPong())
}

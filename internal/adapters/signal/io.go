package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/metrics"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func newConnID() string { return uuid.NewString() }

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				c.Close()
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cid core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(cid)).Msg("readPump closing")
		c.Close()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		ctl.handleSignal(ctx, cid, c, data)
	}
}

// handleSignal decodes one frame and routes it. Malformed frames are
// answered with an error event and never reach the orchestrator.
func (ctl *SignalWSController) handleSignal(ctx context.Context, cid core.ConnID, c *WsSignalConn, data []byte) {
	ev, err := protocol.Decode(data)
	if err != nil {
		code := "bad_payload"
		if errors.Is(err, protocol.ErrUnknownType) {
			code = "unknown_type"
		}
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(cid)).Msg("rejected frame")
		ctl.sendJSON(c, protocol.NewError(code, err.Error(), ""))
		return
	}
	metrics.EventsIn.WithLabelValues(string(ev.Kind())).Inc()

	switch e := ev.(type) {
	case *protocol.Login:
		ctl.handleLogin(ctx, cid, c, *e)
	case *protocol.JoinGroupRoom:
		ctl.handleJoinGroupRoom(ctx, cid, c, *e)
	case *protocol.DirectMessage:
		ctl.handleDirectMessage(ctx, cid, c, *e)
	case *protocol.GroupMessage:
		ctl.handleGroupMessage(ctx, cid, c, *e)
	case *protocol.Typing:
		ctl.handleTyping(cid, c, *e)
	case *protocol.InitiateCall:
		ctl.reply(c, ctl.Orch.InitiateCall(cid, *e), "")
	case *protocol.AnswerCall:
		ctl.reply(c, ctl.Orch.AnswerCall(cid, *e), e.CallID)
	case *protocol.DeclineCall:
		ctl.reply(c, ctl.Orch.DeclineCall(cid, *e), e.CallID)
	case *protocol.HangUp:
		ctl.reply(c, ctl.Orch.HangUp(cid, *e), e.CallID)
	case *protocol.JoinCallRoom:
		ctl.reply(c, ctl.Orch.JoinCallRoom(cid, *e), e.RoomID)
	case *protocol.RelaySignal:
		ctl.reply(c, ctl.Orch.RelaySignal(cid, *e), "")
	case *protocol.RelayReturnSignal:
		ctl.reply(c, ctl.Orch.RelayReturnSignal(cid, *e), "")
	case *protocol.LeaveCallRoom:
		ctl.reply(c, ctl.Orch.LeaveCallRoom(cid, *e), e.RoomID)
	case protocol.Ping:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", string(ev.Kind())).Msg("unhandled event")
	}
}

// reply reports a failed operation to the connection that asked for it.
func (ctl *SignalWSController) reply(c *WsSignalConn, err error, ref string) {
	if err == nil {
		return
	}
	log.Debug().Err(err).Str("module", "signal").Msg("event failed")
	ctl.sendJSON(c, protocol.NewError(core.Code(err), err.Error(), ref))
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

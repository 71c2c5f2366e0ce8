package signal

import (
	"context"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

const codeRateLimited = "rate_limited"

func (ctl *SignalWSController) allow(cid core.ConnID) bool {
	return ctl.limiter == nil || ctl.limiter.Allow(string(cid))
}

func (ctl *SignalWSController) handleDirectMessage(ctx context.Context, cid core.ConnID, conn *WsSignalConn, ev protocol.DirectMessage) {
	if !ctl.allow(cid) {
		ctl.sendJSON(conn, protocol.NewError(codeRateLimited, "too many messages", ev.ClientRef))
		return
	}
	ctl.reply(conn, ctl.Orch.SendDirect(ctx, cid, ev), ev.ClientRef)
}

func (ctl *SignalWSController) handleGroupMessage(ctx context.Context, cid core.ConnID, conn *WsSignalConn, ev protocol.GroupMessage) {
	if !ctl.allow(cid) {
		ctl.sendJSON(conn, protocol.NewError(codeRateLimited, "too many messages", ev.ClientRef))
		return
	}
	ctl.reply(conn, ctl.Orch.SendGroup(ctx, cid, ev), ev.ClientRef)
}

// handleTyping drops excess typing signals silently; they are advisory.
func (ctl *SignalWSController) handleTyping(cid core.ConnID, conn *WsSignalConn, ev protocol.Typing) {
	if !ctl.allow(cid) {
		log.Debug().Str("module", "signal").Str("conn", string(cid)).Msg("typing throttled")
		return
	}
	ctl.reply(conn, ctl.Orch.NotifyTyping(cid, ev), ev.Target)
}

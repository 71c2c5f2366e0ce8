package signal

import (
	"context"
	"fmt"

	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleLogin(ctx context.Context, cid core.ConnID, conn *WsSignalConn, ev protocol.Login) {
	if conn.subject != "" && ev.UserID != conn.subject {
		log.Warn().Str("module", "signal").Str("conn", string(cid)).Str("user", ev.UserID).Str("subject", conn.subject).Msg("login rejected")
		ctl.reply(conn, fmt.Errorf("login %s: %w", ev.UserID, core.ErrIdentityMismatch), ev.UserID)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("user", ev.UserID).Msg("login")
	ctl.reply(conn, ctl.Orch.Login(ctx, cid, ev), ev.UserID)
}

func (ctl *SignalWSController) handleJoinGroupRoom(ctx context.Context, cid core.ConnID, conn *WsSignalConn, ev protocol.JoinGroupRoom) {
	ctl.reply(conn, ctl.Orch.JoinGroupRoom(ctx, cid, ev), ev.GroupID)
}

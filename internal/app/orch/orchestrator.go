package orch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Kairos/internal/app"
	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/metrics"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

const defaultPersistTimeout = 5 * time.Second

// Orchestrator owns the live state of the hub. Every compound mutation of
// Registry, Rooms and Calls happens under mu; gateway calls never do.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Membership
	Calls    *app.CallBook
	Store    core.Persistence
	Presence core.PresenceMirror
	Events   core.MessagePublisher
	Policy   app.Policy

	RingTimeout    time.Duration
	PersistTimeout time.Duration

	mu            sync.Mutex
	convLocks     app.KeyLock
	presenceLocks app.KeyLock
}

// Connect attaches a freshly opened socket. It is not logged in yet.
func (o *Orchestrator) Connect(s core.Session) {
	o.Registry.Attach(s)
	metrics.Connections.Inc()
}

func (o *Orchestrator) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := o.PersistTimeout
	if d <= 0 {
		d = defaultPersistTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (o *Orchestrator) presence() core.PresenceMirror {
	if o.Presence == nil {
		return core.NopPresence{}
	}
	return o.Presence
}

func (o *Orchestrator) events() core.MessagePublisher {
	if o.Events == nil {
		return core.NopPublisher{}
	}
	return o.Events
}

// send delivers v to one connection. Delivery is fire-and-forget: a full
// or closed outbound queue never blocks the caller.
func (o *Orchestrator) send(cid core.ConnID, v any) {
	s, ok := o.Registry.Session(cid)
	if !ok {
		metrics.FramesDropped.WithLabelValues("gone").Inc()
		return
	}
	o.sendTo(s, v)
}

func (o *Orchestrator) sendTo(s core.Session, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode outbound")
		return
	}
	err = s.Signal().TrySend(data)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrBackpressure):
		metrics.FramesDropped.WithLabelValues("backpressure").Inc()
		o.onBackpressure(s)
	default:
		metrics.FramesDropped.WithLabelValues("closed").Inc()
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(s.ID())).Msg("send failed")
	}
}

func (o *Orchestrator) onBackpressure(s core.Session) {
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(s) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("conn", string(s.ID())).Msg("slow consumer kicked")
		// Closing ends the read pump, which reports the disconnect.
		s.Signal().Close()
	case app.DropFrame, app.NoAction:
	}
}

// broadcastLoggedIn sends v to every logged-in connection except skip.
func (o *Orchestrator) broadcastLoggedIn(skip core.ConnID, v any) {
	for _, snap := range o.Registry.LoggedIn() {
		if snap.Session.ID() == skip {
			continue
		}
		o.sendTo(snap.Session, v)
	}
}

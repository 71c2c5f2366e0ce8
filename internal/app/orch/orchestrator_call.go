package orch

import (
	"fmt"

	"github.com/dkeye/Kairos/internal/app"
	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/domain"
	"github.com/dkeye/Kairos/internal/metrics"
	"github.com/dkeye/Kairos/internal/protocol"
	"github.com/rs/zerolog/log"
)

// InitiateCall rings ev.Target. An offline or busy callee fails the call
// right away with call_failed to the caller.
func (o *Orchestrator) InitiateCall(cid core.ConnID, ev protocol.InitiateCall) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	caller, ok := o.Registry.UserOf(cid)
	if !ok {
		return core.ErrNotLoggedIn
	}
	target := domain.UserID(ev.Target)
	if target == caller.ID {
		return fmt.Errorf("call to self: %w", core.ErrInvalidTarget)
	}

	callee, ok := o.Registry.Lookup(target)
	if !ok {
		log.Debug().Err(core.ErrUnreachablePeer).Str("module", "orch").Str("target", string(target)).Msg("call failed")
		metrics.Calls.WithLabelValues(domain.ReasonUnreachable).Inc()
		o.send(cid, protocol.NewCallFailed("", target, domain.ReasonUnreachable))
		return nil
	}
	calleeUser, _ := o.Registry.UserOf(callee.ID())
	if o.inDirectCall(cid) || o.inDirectCall(callee.ID()) {
		metrics.Calls.WithLabelValues(domain.ReasonBusy).Inc()
		o.send(cid, protocol.NewCallFailed("", target, domain.ReasonBusy))
		return nil
	}

	call := o.Calls.StartDirect(cid, callee.ID(), caller, calleeUser)
	o.sendTo(callee, protocol.NewIncomingCall(call.ID, caller, ev.Signal))
	o.send(cid, protocol.NewCallRinging(call.ID, target))

	if o.RingTimeout > 0 {
		id := call.ID
		o.Calls.ArmTimer(id, o.RingTimeout, func() { o.ringExpired(id) })
	}
	return nil
}

func (o *Orchestrator) inDirectCall(cid core.ConnID) bool {
	_, ok := o.Calls.DirectOf(cid)
	return ok
}

// AnswerCall accepts a ringing call on the callee's side and relays the
// answer to the caller. Without a call id the callee's ringing call is used.
func (o *Orchestrator) AnswerCall(cid core.ConnID, ev protocol.AnswerCall) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	call, ok := o.ringingCall(cid, ev.CallID)
	if !ok {
		return fmt.Errorf("answer %q: %w", ev.CallID, core.ErrNoSuchCall)
	}
	if !o.Calls.Advance(call.ID, domain.CallRinging, domain.CallConnecting) {
		return fmt.Errorf("answer %q: %w", call.ID, core.ErrNoSuchCall)
	}
	o.send(call.Caller, protocol.NewCallAccepted(call.ID, ev.Signal))
	o.Calls.Advance(call.ID, domain.CallConnecting, domain.CallActive)
	metrics.Calls.WithLabelValues("accepted").Inc()
	return nil
}

// DeclineCall rejects a ringing call; the caller learns why.
func (o *Orchestrator) DeclineCall(cid core.ConnID, ev protocol.DeclineCall) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	call, ok := o.ringingCall(cid, ev.CallID)
	if !ok {
		return fmt.Errorf("decline %q: %w", ev.CallID, core.ErrNoSuchCall)
	}
	if _, ok := o.Calls.EndDirect(call.ID); !ok {
		return nil
	}
	metrics.Calls.WithLabelValues(domain.ReasonDeclined).Inc()
	o.send(call.Caller, protocol.NewCallFailed(call.ID, call.CalleeUser.ID, domain.ReasonDeclined))
	return nil
}

// HangUp ends a call from either side. A caller hanging up while it still
// rings cancels it.
func (o *Orchestrator) HangUp(cid core.ConnID, ev protocol.HangUp) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	call, ok := o.Calls.Direct(ev.CallID)
	if !ok || (call.Caller != cid && call.Callee != cid) {
		return fmt.Errorf("hang up %q: %w", ev.CallID, core.ErrNoSuchCall)
	}
	reason := domain.ReasonHangup
	if call.State == domain.CallRinging && call.Caller == cid {
		reason = domain.ReasonCancelled
	}
	o.endDirectLocked(call.ID, cid, reason)
	return nil
}

func (o *Orchestrator) ringingCall(callee core.ConnID, id string) (app.Call, bool) {
	if id == "" {
		return o.Calls.RingingFor(callee)
	}
	call, ok := o.Calls.Direct(id)
	if !ok || call.Callee != callee || call.State != domain.CallRinging {
		return app.Call{}, false
	}
	return call, true
}

// endDirectLocked ends a 1:1 call and tells the party other than by.
// Ending an already ended call does nothing.
func (o *Orchestrator) endDirectLocked(id string, by core.ConnID, reason string) {
	call, ok := o.Calls.EndDirect(id)
	if !ok {
		return
	}
	other := call.Callee
	if by == call.Callee {
		other = call.Caller
	}
	metrics.Calls.WithLabelValues(reason).Inc()
	o.send(other, protocol.NewCallEnded(call.ID, reason))
}

func (o *Orchestrator) ringExpired(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	call, ok := o.Calls.Direct(id)
	if !ok || call.State != domain.CallRinging {
		return
	}
	if _, ok := o.Calls.EndDirect(id); !ok {
		return
	}
	log.Info().Str("module", "orch").Str("call", id).Msg("ring timeout")
	metrics.Calls.WithLabelValues(domain.ReasonTimeout).Inc()
	o.send(call.Caller, protocol.NewCallFailed(call.ID, call.CalleeUser.ID, domain.ReasonTimeout))
	o.send(call.Callee, protocol.NewCallEnded(call.ID, domain.ReasonTimeout))
}

package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Kairos/internal/app/orch"
	"github.com/dkeye/Kairos/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const sendBuffer = 64

// SubjectKey is the gin context key holding the verified token subject.
// When set, the socket may only log in as that user.
const SubjectKey = "token_subject"

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	// Limit events per Interval per connection for chat and typing.
	RateLimit    int
	RateInterval time.Duration
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	opts    Options
	limiter *RateLimiter
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 32768
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	ctl := &SignalWSController{Orch: o, opts: opts}
	if opts.RateLimit > 0 && opts.RateInterval > 0 {
		ctl.limiter = NewRateLimiter(opts.RateLimit, opts.RateInterval)
	}
	return ctl
}

// WsSignalConn is the outbound side of one socket. TrySend never blocks.
type WsSignalConn struct {
	conn    *websocket.Conn
	send    chan core.Frame
	subject string

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, sendBuffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the socket until it closes.
// Every socket gets a fresh connection id; identity comes with login.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.opts.ReadLimit)

	conn := newWsSignalConn(ws)
	conn.subject = c.GetString(SubjectKey)
	cid := core.ConnID(newConnID())
	ctl.Orch.Connect(core.NewSession(cid, conn))
	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, cid, conn)
		ctl.Orch.OnDisconnect(context.Background(), cid)
		if ctl.limiter != nil {
			ctl.limiter.Forget(string(cid))
		}
	}()
}

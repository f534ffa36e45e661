package redisconn

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrcece/aedis/redis"
)

// Opts configures a Connection. Zero-value fields fall back to the
// defaults listed alongside each one; NewConnection normalizes them once
// at construction time.
type Opts struct {
	// Host and Port name the single upstream endpoint this connection
	// dials. Default "127.0.0.1" / "6379".
	Host string
	Port string

	// Username and Password, if either is set, are sent with the
	// handshake's HELLO AUTH clause.
	Username string
	Password string

	// ResolveTimeout bounds DNS resolution of Host. Default 10s.
	ResolveTimeout time.Duration
	// ConnectTimeout bounds each connection attempt. Default 10s.
	ConnectTimeout time.Duration
	// PingInterval controls both the health pinger's cadence and the
	// idle checker's threshold (2 * PingInterval). Default 1s.
	PingInterval time.Duration
	// ReconnectInterval is the pause between a failed run and the next
	// attempt, when EnableReconnect is set. Default 1s.
	ReconnectInterval time.Duration

	// MaxReadSize bounds any single bulk length, aggregate size, or
	// header line the decoder will accept. Zero means unbounded.
	MaxReadSize int64

	// DisableCoalescing turns off request coalescing at the writer,
	// overriding every request's own Coalesce flag. Coalescing is on by
	// default (coalesce_requests = true).
	DisableCoalescing bool
	// EnableEvents turns on publication of resolve/connect/hello events.
	EnableEvents bool
	// EnableReconnect makes the run coordinator retry after a run ends in
	// error instead of finishing with StateDone.
	EnableReconnect bool

	// Logger receives life cycle notifications. Defaults to NoopLogger.
	Logger Logger
}

func (o *Opts) normalize() {
	if o.Host == "" {
		o.Host = defaultHost
	}
	if o.Port == "" {
		o.Port = defaultPort
	}
	if o.ResolveTimeout == 0 {
		o.ResolveTimeout = defaultResolveTimeout
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.PingInterval == 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.ReconnectInterval == 0 {
		o.ReconnectInterval = defaultReconnectWait
	}
	if o.Logger == nil {
		o.Logger = NoopLogger{}
	}
}

// Connection is a single long-lived, multiplexed RESP3 client connection.
// One Connection drives one run at a time; Run blocks for the life of
// that run (or, with EnableReconnect, for every subsequent run) and
// returns when the connection is done for good.
type Connection struct {
	opts Opts
	addr string

	queue *redis.Queue
	push  *redis.PushChannel
	events *eventBus

	state int32 // atomic State

	mu         sync.Mutex
	conn       net.Conn
	lastData   int64 // atomic unix-nano
	runCancel  context.CancelFunc
}

// NewConnection builds a Connection ready to Run. It does not dial
// anything until Run is called.
func NewConnection(opts Opts) *Connection {
	opts.normalize()
	c := &Connection{
		opts:   opts,
		addr:   net.JoinHostPort(opts.Host, opts.Port),
		queue:  redis.NewQueue(),
		push:   redis.NewPushChannel(),
		events: newEventBus(),
	}
	atomic.StoreInt32(&c.state, int32(StateIdle))
	return c
}

// Addr is the "host:port" this connection dials.
func (c *Connection) Addr() string { return c.addr }

// State reports the run coordinator's current phase.
func (c *Connection) State() State { return State(atomic.LoadInt32(&c.state)) }

func (c *Connection) setState(s State) { atomic.StoreInt32(&c.state, int32(s)) }

// Submit enqueues req for sending and returns once the reply has been
// fully decoded (or the operation is aborted), yielding a size for its
// reply: the sum, over the reply's decoded nodes, of each node's data
// length plus one. This is not the exact wire byte count; header digits
// and CRLF terminators are not counted. Submitting is independent of Run's own
// goroutine: submitting before Run has been called only ever queues the
// request, unless req.CancelIfNotConnected is set.
func (c *Connection) Submit(ctx context.Context, req *redis.Request, adapter redis.Adapter) (int, error) {
	e, err := c.queue.Submit(req, adapter, false)
	if err != nil {
		return 0, err
	}
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := e.Wait()
		done <- result{n, err}
	}()
	select {
	case r := <-done:
		return r.n, r.err
	case <-ctx.Done():
		return 0, redis.OperationAborted.Wrap(ctx.Err(), "submit cancelled")
	}
}

// RunWith submits req exactly as Submit does and returns its outcome. It
// does not start Run: req is written only once Run is running, started
// separately by the caller.
func (c *Connection) RunWith(ctx context.Context, req *redis.Request, adapter redis.Adapter) (int, error) {
	return c.Submit(ctx, req, adapter)
}

// ReceivePush blocks until one push frame is available, decodes it
// through adapter, and returns the frame's size, measured the same way as
// Submit's.
func (c *Connection) ReceivePush(ctx context.Context, adapter redis.Adapter) (int, error) {
	frame, err := c.push.Receive(ctx)
	if err != nil {
		return 0, err
	}
	for _, node := range frame.Nodes {
		var adapterErr error
		adapter.Invoke(0, node, &adapterErr)
		if adapterErr != nil {
			return frame.BytesRead, adapterErr
		}
	}
	return frame.BytesRead, nil
}

// ReceiveEvent blocks until a life cycle event is published. It only ever
// observes events when Opts.EnableEvents is set; otherwise it blocks
// until ctx is done.
func (c *Connection) ReceiveEvent(ctx context.Context) (Event, error) {
	select {
	case ev := <-c.events.c:
		return ev, nil
	case <-ctx.Done():
		return Event{}, redis.OperationAborted.Wrap(ctx.Err(), "receive_event cancelled")
	}
}

// Cancel cancels the named operation kind and returns how many pending
// entries it woke. OperationReceive cancels the push rendezvous and
// always reports 1, whether or not a receiver was waiting.
// OperationReceiveEvent cancels nothing and reports 0; a pending
// ReceiveEvent returns only when its ctx is done.
func (c *Connection) Cancel(kind OperationKind) int {
	switch kind {
	case OperationExec:
		return c.queue.CancelExec()
	case OperationRun:
		n := c.queue.CancelRun()
		c.mu.Lock()
		if c.runCancel != nil {
			c.runCancel()
		}
		c.mu.Unlock()
		return n
	case OperationReceive:
		c.push.Cancel()
		return 1
	case OperationReceiveEvent:
		return 0
	default:
		return 0
	}
}

func (c *Connection) touchLastData() {
	atomic.StoreInt64(&c.lastData, time.Now().UnixNano())
}

func (c *Connection) idleSince() time.Duration {
	last := atomic.LoadInt64(&c.lastData)
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

func (c *Connection) socket() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Connection) setSocket(nc net.Conn) {
	c.mu.Lock()
	c.conn = nc
	c.mu.Unlock()
}

func (c *Connection) closeSocket() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
}

func (c *Connection) String() string {
	return fmt.Sprintf("redisconn.Connection{addr=%s, state=%s}", c.addr, c.State())
}

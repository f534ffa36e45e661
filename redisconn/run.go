package redisconn

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/mrcece/aedis/redis"
	"github.com/mrcece/aedis/resp"
)

// Run drives the connection through Idle -> Resolving -> Connecting ->
// Handshaking -> Running, looping back to Resolving after a failed run
// when Opts.EnableReconnect is set, until a non-retried failure or an
// explicit cancel(operation::run) ends it for good.
func (c *Connection) Run(ctx context.Context) error {
	for {
		runCtx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.runCancel = cancel
		c.mu.Unlock()

		err := c.runOnce(runCtx)
		cancel()

		c.queue.SettleAfterRunEnd(err)
		c.opts.Logger.Report(LogDisconnected, c, err)

		if err == nil || !c.opts.EnableReconnect || ctx.Err() != nil {
			c.setState(StateDone)
			return err
		}

		c.setState(StateReconnecting)
		select {
		case <-time.After(c.opts.ReconnectInterval):
		case <-ctx.Done():
			c.setState(StateDone)
			return ctx.Err()
		}
	}
}

// runOnce performs exactly one Resolving -> Connecting -> Handshaking ->
// Running cycle and returns the error that ended the Running phase (nil
// when runCtx was cancelled, whether or not requests were in flight).
func (c *Connection) runOnce(runCtx context.Context) error {
	c.setState(StateResolving)
	c.opts.Logger.Report(LogResolving, c)
	resolveCtx, cancel := context.WithTimeout(runCtx, c.opts.ResolveTimeout)
	addrs, err := net.DefaultResolver.LookupHost(resolveCtx, c.opts.Host)
	cancel()
	if err != nil {
		return redis.ResolveTimeout.Wrap(err, "resolving %s", c.opts.Host)
	}
	if c.opts.EnableEvents {
		c.events.publish(Event{Kind: EventResolve, Addr: c.addr})
	}

	c.setState(StateConnecting)
	c.opts.Logger.Report(LogConnecting, c)
	nc, err := c.connectAny(runCtx, addrs)
	if err != nil {
		return err
	}
	c.setSocket(nc)
	defer c.closeSocket()
	c.opts.Logger.Report(LogConnected, c, nc.LocalAddr().String(), nc.RemoteAddr().String())
	if c.opts.EnableEvents {
		c.events.publish(Event{Kind: EventConnect, Addr: c.addr})
	}

	// The handshake is written and read inline on the raw socket, the same
	// way the teacher's dial writes AUTH/PING/SELECT and reads their
	// replies before ever starting its reader/writer goroutines: the
	// queue-backed Submit path has nothing driving the socket until
	// runActivities starts those goroutines below, so routing the HELLO
	// through it here would block forever.
	r := bufio.NewReaderSize(nc, 64*1024)
	w := bufio.NewWriterSize(nc, 64*1024)

	c.setState(StateHandshaking)
	c.opts.Logger.Report(LogHandshaking, c)
	c.queue.SetConnected(true)
	if err := c.handshake(runCtx, nc, r, w); err != nil {
		c.queue.SetConnected(false)
		return err
	}
	if c.opts.EnableEvents {
		c.events.publish(Event{Kind: EventHello, Addr: c.addr})
	}

	c.setState(StateRunning)
	c.opts.Logger.Report(LogRunning, c)
	c.push.Reset()
	err = c.runActivities(runCtx, nc, r, w)
	c.queue.SetConnected(false)
	c.queue.DropCompletedPushOnlyEntries()
	return err
}

func (c *Connection) connectAny(ctx context.Context, addrs []string) (net.Conn, error) {
	var lastErr error
	dialer := net.Dialer{}
	for _, host := range addrs {
		connectCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
		addr := net.JoinHostPort(host, c.opts.Port)
		nc, err := dialer.DialContext(connectCtx, "tcp", addr)
		cancel()
		if err == nil {
			return nc, nil
		}
		lastErr = redis.ConnectTimeout.Wrap(err, "connecting to %s", addr)
	}
	if lastErr == nil {
		lastErr = redis.ConnectTimeout.New("no addresses to connect to")
	}
	return nil, lastErr
}

// handshake writes a priority HELLO (with an AUTH clause when credentials
// are configured) straight to the socket and decodes its reply inline,
// bounded by ConnectTimeout via nc's deadline -- mirroring the teacher's
// synchronous AUTH/PING/SELECT exchange in its dial method, which likewise
// runs before any reader/writer goroutine exists to service a queued
// request. Only once this returns successfully does the queue start
// serving requests through the normal reader/writer activities.
func (c *Connection) handshake(ctx context.Context, nc net.Conn, r *bufio.Reader, w *bufio.Writer) error {
	req := redis.NewRequest()

	var args []interface{}
	args = append(args, 3)
	if c.opts.Username != "" || c.opts.Password != "" {
		args = append(args, "AUTH", c.opts.Username, c.opts.Password)
	}
	if err := req.Push("HELLO", args...); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.opts.ConnectTimeout)
	}
	if err := nc.SetDeadline(deadline); err != nil {
		return redis.WrapTransportError(err)
	}
	defer nc.SetDeadline(time.Time{})

	if _, err := w.Write(req.Payload()); err != nil {
		return redis.WrapTransportError(err)
	}
	if err := w.Flush(); err != nil {
		return redis.WrapTransportError(err)
	}

	dec := resp.NewDecoder(r, c.opts.MaxReadSize)
	var nodes []resp.Node
	root, err := dec.DecodeFrame(func(n resp.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return redis.WrapTransportError(err)
	}
	if root == resp.TypeSimpleError || root == resp.TypeBlobError {
		msg := "HELLO failed"
		if len(nodes) > 0 {
			msg = string(nodes[0].Data)
		}
		return redis.NewResultError(msg)
	}
	return nil
}

// runActivities spawns the reader, writer, pinger, and idle-checker as a
// "first-to-finish" composition: whichever finishes first determines the
// run's terminal error, and the rest are cancelled immediately after. It
// reuses the buffered reader/writer the handshake already read from and
// wrote to, rather than wrapping the socket a second time and losing
// whatever the handshake left buffered.
func (c *Connection) runActivities(ctx context.Context, nc net.Conn, r *bufio.Reader, w *bufio.Writer) error {
	activityCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 4)
	go func() { errc <- c.readerLoop(activityCtx, r, nc) }()
	go func() { errc <- c.writerLoop(activityCtx, w, nc) }()
	go func() { errc <- c.pingerLoop(activityCtx) }()
	go func() { errc <- c.idleCheckerLoop(activityCtx, nc) }()

	err := <-errc
	cancel()
	// The reader only checks ctx between frames; expire its pending socket
	// read so it returns too. Writes are left to finish.
	nc.SetReadDeadline(time.Now())
	// drain the rest so their goroutines don't leak
	for i := 0; i < 3; i++ {
		<-errc
	}
	return err
}

package redisconn

import (
	"context"
	"net"
	"time"

	"github.com/mrcece/aedis/redis"
)

// pingerLoop submits a PING every PingInterval as connection housekeeping.
// These requests are internal: they carry closeOnRunCompletion so they
// never survive past the run that created them, and their failures never
// escape to a caller since nothing outside this activity waits on them.
func (c *Connection) pingerLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			req := redis.NewRequest()
			req.Coalesce = true
			req.CancelOnConnectionLost = true
			if err := req.Push("PING"); err != nil {
				return err
			}
			e, err := c.queue.Submit(req, redis.DiscardAdapter{}, true)
			if err != nil {
				continue // queue rejected it (e.g. disconnected mid-tick); next tick retries
			}
			go e.Wait() // don't block the pinger on the reply; errors are swallowed by design
		case <-ctx.Done():
			return nil
		}
	}
}

// idleCheckerLoop tears the run down with IdleTimeout if no bytes have
// been read from the socket for more than 2 * PingInterval, the same
// threshold the pinger's own cadence is built around.
func (c *Connection) idleCheckerLoop(ctx context.Context, nc net.Conn) error {
	threshold := 2 * c.opts.PingInterval
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	c.touchLastData() // treat connect time as the first data point
	for {
		select {
		case <-ticker.C:
			if c.idleSince() > threshold {
				nc.Close()
				return redis.IdleTimeout.New("no data for %s", threshold)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

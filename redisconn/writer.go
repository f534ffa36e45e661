package redisconn

import (
	"bufio"
	"context"
	"net"

	"github.com/mrcece/aedis/redis"
)

// writerLoop drains the queue's unwritten suffix and flushes it to the
// socket, then parks on the queue's wake channel -- a 1-buffered channel
// used as a binary semaphore, the Go stand-in for "a timer with infinite
// expiry that gets cancelled when new work arrives". Writes are the
// activity's only suspension point: once write() starts, cancellation is
// not observed until it returns, so no write is ever torn mid-frame.
func (c *Connection) writerLoop(ctx context.Context, w *bufio.Writer, nc net.Conn) error {
	for {
		for c.queue.HasUnwritten() {
			buf := c.queue.DrainForWrite(!c.opts.DisableCoalescing)
			if len(buf) == 0 {
				break
			}
			if _, err := w.Write(buf); err != nil {
				return redis.WrapTransportError(err)
			}
			if err := w.Flush(); err != nil {
				return redis.WrapTransportError(err)
			}
		}

		select {
		case <-c.queue.WriterWake():
		case <-ctx.Done():
			return nil
		}
	}
}

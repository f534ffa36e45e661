package redisconn

import (
	"bufio"
	"context"
	"net"

	"github.com/mrcece/aedis/redis"
	"github.com/mrcece/aedis/resp"
)

// readerLoop decodes frames off the socket until it hits a transport
// error, a clean EOF, or ctx is cancelled by a sibling activity or by
// cancel(operation::run). Every completed top-level frame is either
// routed to the push rendezvous (root type push) or dispatched node-by-
// node to the queue's head entry.
func (c *Connection) readerLoop(ctx context.Context, r *bufio.Reader, nc net.Conn) error {
	dec := resp.NewDecoder(r, c.opts.MaxReadSize)
	entryBytes := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		var frameNodes []resp.Node
		root, err := dec.DecodeFrame(func(n resp.Node) error {
			frameNodes = append(frameNodes, n)
			c.touchLastData()
			return nil
		})
		if err != nil {
			return redis.WrapTransportError(err)
		}

		if root == resp.TypePush {
			if err := c.push.Deliver(ctx, redis.PushFrame{Nodes: frameNodes, BytesRead: frameSize(frameNodes)}); err != nil {
				return err
			}
			continue
		}

		entryBytes += frameSize(frameNodes)
		var popped bool
		for i, n := range frameNodes {
			last := i == len(frameNodes)-1
			if c.queue.Head() == nil {
				break // frame with nothing queued to receive it; drop silently
			}
			if e := c.queue.DeliverToHead(n, last, entryBytes); e != nil {
				popped = true
			}
		}
		if popped {
			entryBytes = 0
		}
	}
}

func frameSize(nodes []resp.Node) int {
	total := 0
	for _, n := range nodes {
		total += len(n.Data) + 1
	}
	return total
}

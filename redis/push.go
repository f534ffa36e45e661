package redis

import (
	"context"

	"github.com/mrcece/aedis/resp"
)

// PushFrame is a fully decoded push frame handed from the reader to a
// PushChannel consumer. Nodes is not retained beyond the consumer's
// adapter callback, matching the "not copied beyond the lifetime of the
// receiver" rule.
type PushFrame struct {
	Nodes     []resp.Node
	BytesRead int
}

// PushChannel is a single-slot, cancellable rendezvous between the reader
// goroutine (Deliver) and at most one external consumer at a time
// (Receive). Deliver blocks the reader until a receiver takes the frame
// or the channel is cancelled, so a slow consumer applies backpressure to
// the whole connection exactly as the model requires.
type PushChannel struct {
	slot   chan PushFrame
	cancel chan struct{}
}

// NewPushChannel returns a ready-to-use rendezvous.
func NewPushChannel() *PushChannel {
	return &PushChannel{slot: make(chan PushFrame), cancel: make(chan struct{})}
}

// Deliver hands frame to the next Receive call, blocking until one
// arrives. It returns OperationAborted if the channel is cancelled first,
// per the reader activity's contract for push delivery.
func (p *PushChannel) Deliver(ctx context.Context, frame PushFrame) error {
	select {
	case p.slot <- frame:
		return nil
	case <-p.cancel:
		return OperationAborted.New("push rendezvous cancelled")
	case <-ctx.Done():
		return OperationAborted.Wrap(ctx.Err(), "push rendezvous cancelled")
	}
}

// Receive blocks until a push frame is delivered, the channel is
// cancelled (ChannelCancelled), or ctx is done.
func (p *PushChannel) Receive(ctx context.Context) (PushFrame, error) {
	select {
	case f := <-p.slot:
		return f, nil
	case <-p.cancel:
		return PushFrame{}, ChannelCancelled.New("push receive cancelled")
	case <-ctx.Done():
		return PushFrame{}, ChannelCancelled.Wrap(ctx.Err(), "push receive cancelled")
	}
}

// Cancel wakes any pending Deliver or Receive call. It is safe to call
// multiple times; only the first has any effect, matching the
// cancellation-idempotence guarantee the queue's exec cancellation gives.
func (p *PushChannel) Cancel() {
	select {
	case <-p.cancel:
	default:
		close(p.cancel)
	}
}

// Reset installs a fresh cancellation slot so the channel can be reused
// by the next run cycle after a prior Cancel.
func (p *PushChannel) Reset() {
	p.cancel = make(chan struct{})
}

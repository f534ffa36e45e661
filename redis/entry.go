package redis

import (
	"sync"

	"github.com/mrcece/aedis/resp"
)

// entry is the in-flight bookkeeping for one submitted Request. It is
// shared between the submitter (which waits on done) and the reader
// (which advances remaining as frames arrive), but every field besides
// done/err/bytesRead is only ever touched while the queue's mutex is
// held, so there is no need for atomics here.
type entry struct {
	req     *Request
	adapter Adapter

	// closeOnRunCompletion marks entries the connection generates for its
	// own housekeeping (the health pinger's PING) rather than ones a
	// caller submitted; it has no public equivalent on Request.
	closeOnRunCompletion bool

	written      bool
	cmdIndex     int // which top-level command the next frame belongs to
	cmdRemaining int // frames left to see for the current command
	remaining    int // total frames left across the whole request

	once      sync.Once
	done      chan struct{}
	err       error
	bytesRead int
}

func newEntry(req *Request, adapter Adapter, closeOnRunCompletion bool) *entry {
	e := &entry{
		req:                  req,
		adapter:              adapter,
		closeOnRunCompletion: closeOnRunCompletion,
		done:                 make(chan struct{}),
	}
	e.resetProgress()
	return e
}

func (e *entry) resetProgress() {
	e.written = false
	e.cmdIndex = 0
	e.remaining = e.req.TotalFrames()
	if len(e.req.cmds) > 0 {
		e.cmdRemaining = e.req.cmds[0].Cardinality
	}
}

// wake resolves the entry exactly once; later calls are no-ops, matching
// the queue's cancellation-idempotence guarantee.
func (e *entry) wake(err error, bytesRead int) {
	e.once.Do(func() {
		e.err = err
		e.bytesRead = bytesRead
		close(e.done)
	})
}

// deliver feeds one decoded node of the current top-level frame to the
// entry's adapter. frameComplete is set by the reader once the frame this
// node belongs to has been fully decoded; deliver only advances the
// per-command and per-request counters at that point, since a single top-
// level frame can carry many nodes (nested aggregates). It returns true
// once the entry has seen every frame its request expects.
func (e *entry) deliver(node resp.Node, frameComplete bool) (finished bool) {
	var adapterErr error
	e.adapter.Invoke(e.cmdIndex, node, &adapterErr)
	if adapterErr != nil && e.err == nil {
		e.err = adapterErr
	}
	if !frameComplete {
		return false
	}
	e.remaining--
	e.cmdRemaining--
	if e.cmdRemaining <= 0 {
		e.cmdIndex++
		if e.cmdIndex < len(e.req.cmds) {
			e.cmdRemaining = e.req.cmds[e.cmdIndex].Cardinality
		}
	}
	return e.remaining <= 0
}

// Wait blocks until the entry is resolved and returns its outcome.
func (e *entry) Wait() (int, error) {
	<-e.done
	return e.bytesRead, e.err
}

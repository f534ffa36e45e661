package redis

import (
	"sync"

	"github.com/mrcece/aedis/resp"
)

// Queue is the connection's single ordered pipeline: a deque of in-flight
// entries split by writtenBoundary into an already-written prefix and a
// not-yet-written suffix, per the "deque plus an index" implementation
// note. All mutation happens under mu; socket I/O never happens while it
// is held, so the mutex stands in for the single-threaded scheduling
// discipline the model assumes.
type Queue struct {
	mu              sync.Mutex
	entries         []*entry
	writtenBoundary int
	connected       bool

	// writerWake is a 1-buffered channel used as a binary semaphore: a
	// pending send is the Go equivalent of a timer with infinite expiry
	// that gets cancelled the moment there is work to do.
	writerWake chan struct{}
}

// NewQueue returns an empty, disconnected queue.
func NewQueue() *Queue {
	return &Queue{writerWake: make(chan struct{}, 1)}
}

// SetConnected flips the queue's connectivity flag, consulted by Submit
// when CancelIfNotConnected is set.
func (q *Queue) SetConnected(connected bool) {
	q.mu.Lock()
	q.connected = connected
	q.mu.Unlock()
}

func (q *Queue) wakeWriter() {
	select {
	case q.writerWake <- struct{}{}:
	default:
	}
}

// WriterWake is the channel the writer activity parks on between drains.
func (q *Queue) WriterWake() <-chan struct{} { return q.writerWake }

// Submit enqueues req with adapter and returns the in-flight entry a
// caller can Wait on. closeOnRunCompletion marks internal housekeeping
// requests (the health pinger's PING) that should never survive a run
// boundary regardless of the request's own flags.
func (q *Queue) Submit(req *Request, adapter Adapter, closeOnRunCompletion bool) (*entry, error) {
	if adapter.SupportedResponseSize() >= 0 && adapter.SupportedResponseSize() < req.CommandCount() {
		return nil, IncompatibleSize.New(
			"adapter supports %d commands, request has %d", adapter.SupportedResponseSize(), req.CommandCount())
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.connected && req.CancelIfNotConnected {
		return nil, NotConnected.New("no active run")
	}

	e := newEntry(req, adapter, closeOnRunCompletion)

	if req.HelloWithPriority && req.IsHello() {
		q.insertAt(q.writtenBoundary, e)
	} else {
		q.entries = append(q.entries, e)
	}
	q.wakeWriter()
	return e, nil
}

func (q *Queue) insertAt(i int, e *entry) {
	q.entries = append(q.entries, nil)
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = e
}

// DrainForWrite implements the writer-side coalescing rule: starting at
// the head of the unwritten suffix, it walks forward while entries are
// marked Coalesce, always including at least the head entry regardless of
// its own flag, and returns the concatenated payload to write. When
// coalesceEnabled is false (Opts.DisableCoalescing), exactly one entry is
// drained per call regardless of its Coalesce flag.
func (q *Queue) DrainForWrite(coalesceEnabled bool) []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.writtenBoundary >= len(q.entries) {
		return nil
	}

	var buf []byte
	i := q.writtenBoundary
	for i < len(q.entries) {
		e := q.entries[i]
		if i > q.writtenBoundary && (!coalesceEnabled || !e.req.Coalesce) {
			break
		}
		buf = append(buf, e.req.Payload()...)
		e.written = true
		i++
	}
	q.writtenBoundary = i
	return buf
}

// HasUnwritten reports whether the writer has anything left to flush.
func (q *Queue) HasUnwritten() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.writtenBoundary < len(q.entries)
}

// Head returns the entry at the front of the queue, written or not, or nil
// if the queue is empty. The reader dispatches every frame it decodes to this
// entry until it reports itself finished.
func (q *Queue) Head() *entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0]
}

// DeliverToHead feeds one node to the head entry and, once that entry has
// seen every frame its request expects, pops it and wakes its submitter.
// It returns the entry that was popped, or nil if the head entry is not
// yet finished.
func (q *Queue) DeliverToHead(node resp.Node, frameComplete bool, bytesRead int) *entry {
	q.mu.Lock()
	if len(q.entries) == 0 {
		q.mu.Unlock()
		return nil
	}
	head := q.entries[0]
	finished := head.deliver(node, frameComplete)
	if !finished {
		q.mu.Unlock()
		return nil
	}
	q.entries = q.entries[1:]
	if q.writtenBoundary > 0 {
		q.writtenBoundary--
	}
	err := head.err
	q.mu.Unlock()
	head.wake(err, bytesRead)
	return head
}

// CancelExec implements cancel(operation::exec): every queued entry,
// written or not, is dropped and woken with OperationAborted, and the
// queue is emptied. A second consecutive call is a no-op and returns 0,
// satisfying cancellation idempotence.
func (q *Queue) CancelExec() int {
	q.mu.Lock()
	dropped := q.entries
	q.entries = nil
	q.writtenBoundary = 0
	q.mu.Unlock()

	for _, e := range dropped {
		e.wake(OperationAborted.New("exec cancelled"), 0)
	}
	return len(dropped)
}

// CancelRun implements the user-invoked cancel(operation::run): only
// entries flagged closeOnRunCompletion are dropped (woken with
// OperationAborted); every other entry, written or not, survives for
// replay on the next connect.
func (q *Queue) CancelRun() int {
	q.mu.Lock()
	kept := q.entries[:0:0]
	var dropped []*entry
	writtenKept := 0
	for i, e := range q.entries {
		if e.closeOnRunCompletion {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
		if i < q.writtenBoundary {
			writtenKept++
		}
	}
	q.entries = kept
	q.writtenBoundary = writtenKept
	q.mu.Unlock()

	for _, e := range dropped {
		e.wake(OperationAborted.New("run cancelled"), 0)
	}
	return len(dropped)
}

// SettleAfterRunEnd is invoked by the run coordinator every time a run
// cycle ends, successfully or not. CancelOnConnectionLost entries and
// closeOnRunCompletion entries are dropped with OperationAborted
// regardless of write state. Written,
// unanswered entries that are neither CancelOnConnectionLost nor
// RetryOnConnectionLost are dropped with the run's terminal error, since
// nothing will ever resend them. Everything else -- RetryOnConnectionLost
// entries and any still-unwritten entries -- is retained and reset to
// unwritten, ready to be replayed once the next handshake completes.
func (q *Queue) SettleAfterRunEnd(runErr error) int {
	q.mu.Lock()
	var kept []*entry
	var dropped []*entry
	for i, e := range q.entries {
		written := i < q.writtenBoundary
		switch {
		case e.req.CancelOnConnectionLost || e.closeOnRunCompletion:
			dropped = append(dropped, e)
		case written && !e.req.RetryOnConnectionLost:
			dropped = append(dropped, e)
		default:
			e.resetProgress()
			kept = append(kept, e)
		}
	}
	q.entries = kept
	q.writtenBoundary = 0
	q.connected = false
	q.mu.Unlock()

	for _, e := range dropped {
		if e.req.CancelOnConnectionLost || e.closeOnRunCompletion {
			e.wake(OperationAborted.New("connection lost"), 0)
		} else {
			e.wake(runErr, 0)
		}
	}
	return len(dropped)
}

// DropCompletedPushOnlyEntries sweeps entries that were written and whose
// request expects zero reply frames -- subscribe-style requests whose
// confirmation and subsequent messages are both routed to the push
// rendezvous instead of to this entry. This implementation already pops
// an entry the instant its remaining count reaches zero, so in practice
// this is a defensive no-op kept for parity with the sweep the run
// coordinator performs at shutdown.
func (q *Queue) DropCompletedPushOnlyEntries() int {
	q.mu.Lock()
	kept := q.entries[:0:0]
	var dropped []*entry
	for i, e := range q.entries {
		if i < q.writtenBoundary && e.remaining == 0 {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	q.writtenBoundary -= len(dropped) // every dropped entry came from the written prefix
	q.mu.Unlock()

	for _, e := range dropped {
		e.wake(nil, 0)
	}
	return len(dropped)
}

// Len reports the number of entries currently queued, for tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

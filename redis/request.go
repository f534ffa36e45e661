package redis

import (
	"strings"

	"github.com/mrcece/aedis/resp"
)

// Command records one top-level command pushed into a Request, so the
// queue can compute how many reply frames it owes without re-parsing the
// encoded payload.
type Command struct {
	Name        string
	Cardinality int // number of top-level frames this command's reply spans
}

// Request is an append-only command batch. Commands accumulate via Push
// until the request is submitted; the encoded payload is never mutated
// again afterward, so it can be written to the socket without copying.
type Request struct {
	payload []byte
	cmds    []Command

	// Coalesce lets the writer append this request's payload onto an
	// earlier, still-unwritten request in the same write() call.
	Coalesce bool
	// CancelOnConnectionLost drops this entry with OperationAborted the
	// moment the current run ends, written or not.
	CancelOnConnectionLost bool
	// RetryOnConnectionLost keeps this entry queued (reset to unwritten)
	// across a reconnect instead of failing it.
	RetryOnConnectionLost bool
	// CancelIfNotConnected fails Submit synchronously with NotConnected
	// instead of queuing when no run is active.
	CancelIfNotConnected bool
	// HelloWithPriority inserts this request at the boundary between
	// written and unwritten entries instead of at the tail, provided its
	// first command is HELLO.
	HelloWithPriority bool
}

// NewRequest returns an empty request ready for Push calls.
func NewRequest() *Request {
	return &Request{}
}

// Push appends one command with a single-frame reply (the common case).
func (r *Request) Push(name string, args ...interface{}) error {
	return r.PushN(1, name, args...)
}

// PushN appends one command whose reply spans cardinality top-level
// frames (e.g. EXEC, whose reply is itself an array but is still counted
// as one frame at the top level; cardinality exists for protocols this
// codec doesn't special-case, such as a command that legitimately emits
// more than one top-level reply).
func (r *Request) PushN(cardinality int, name string, args ...interface{}) error {
	buf, err := resp.AppendCommand(r.payload, name, args...)
	if err != nil {
		return err
	}
	r.payload = buf
	r.cmds = append(r.cmds, Command{Name: name, Cardinality: cardinality})
	return nil
}

// IsHello reports whether the first pushed command is HELLO, matched
// case-insensitively per RESP3 handshake convention.
func (r *Request) IsHello() bool {
	if len(r.cmds) == 0 {
		return false
	}
	return strings.EqualFold(r.cmds[0].Name, "HELLO")
}

// Payload is the fully encoded, ready-to-write command batch.
func (r *Request) Payload() []byte { return r.payload }

// CommandCount is the number of top-level commands pushed so far.
func (r *Request) CommandCount() int { return len(r.cmds) }

// TotalFrames is the number of top-level reply frames this request
// expects, summed across all pushed commands.
func (r *Request) TotalFrames() int {
	total := 0
	for _, c := range r.cmds {
		total += c.Cardinality
	}
	return total
}


package redis

import (
	"errors"
	"io"

	"github.com/joomcode/errorx"
	"github.com/mrcece/aedis/resp"
)

// Namespace roots every error kind this package raises, so callers can
// tell "an error from this connector" apart from an error a command
// handler wraps around it.
var Namespace = errorx.NewNamespace("redis")

var (
	// TraitConnectivity marks a kind that means the socket is gone or was
	// never established: reconnect-worthy, never a reason to give up on
	// the request itself.
	TraitConnectivity = errorx.RegisterTrait("connectivity")
	// TraitTimeout marks a kind raised because a deadline elapsed rather
	// than because of an explicit failure signal.
	TraitTimeout = errorx.RegisterTrait("timeout")
)

// EKConnection carries the *redisconn.Connection responsible for an error,
// the way redisconn/error.go's EKConnection does in the original.
var EKConnection = errorx.RegisterProperty("connection")

var (
	// UnknownType: a frame's leading byte matched no RESP3 sigil.
	UnknownType = Namespace.NewType("unknown_type")
	// NotANumber: a header that should carry a base-10 length or count
	// could not be parsed as one.
	NotANumber = Namespace.NewType("not_a_number")
	// IncompatibleSize: an adapter received a reply whose declared shape
	// (arity, nesting) does not match what it expects to decode.
	IncompatibleSize = Namespace.NewType("incompatible_size")
	// ExceedsMaxReadSize: a bulk length, aggregate size, or header line
	// would exceed the connection's configured read budget.
	ExceedsMaxReadSize = Namespace.NewType("exceeds_max_read_size")
	// ResolveTimeout: DNS resolution of the configured address did not
	// complete before its deadline.
	ResolveTimeout = Namespace.NewType("resolve_timeout", TraitTimeout, TraitConnectivity)
	// ConnectTimeout: the TCP handshake did not complete before its
	// deadline.
	ConnectTimeout = Namespace.NewType("connect_timeout", TraitTimeout, TraitConnectivity)
	// IdleTimeout: no bytes were read from the socket for longer than the
	// configured idle budget; the run is torn down and reconnected.
	IdleTimeout = Namespace.NewType("idle_timeout", TraitTimeout, TraitConnectivity)
	// NotConnected: a request was submitted (or could not be replayed)
	// while the connection had no live run.
	NotConnected = Namespace.NewType("not_connected", TraitConnectivity)
	// OperationAborted: a queued or in-flight request was dropped by an
	// explicit cancellation rather than by a protocol or transport
	// failure.
	OperationAborted = Namespace.NewType("operation_aborted")
	// ChannelCancelled: a push receiver was woken by cancellation instead
	// of by a delivered push.
	ChannelCancelled = Namespace.NewType("channel_cancelled")
	// Eof: the peer closed the connection cleanly mid-frame.
	Eof = Namespace.NewType("eof", TraitConnectivity)
	// Transport: a socket read or write failed for a reason other than a
	// clean close (reset, broken pipe, network unreachable).
	Transport = Namespace.NewType("transport", TraitConnectivity)
	// Result: a well-formed simple_error or blob_error reply from the
	// server itself, as opposed to a protocol or transport failure.
	Result = Namespace.NewType("result")
)

// WrapTransportError classifies err (typically returned by a net.Conn
// read or write, or by the resp decoder reading from one) into an error
// kind of this package. The decoder's ErrUnknownType, ErrNotANumber and
// ErrExceedsMaxReadSize become UnknownType, NotANumber and
// ExceedsMaxReadSize. A clean close mid-frame surfaces from the decoder as
// the underlying io.EOF or io.ErrUnexpectedEOF and is classified as Eof;
// anything else (resp.ErrMalformedFrame, reset, broken pipe, network
// unreachable) is Transport.
func WrapTransportError(err error) *errorx.Error {
	if err == nil {
		return nil
	}
	if errorx.IsOfType(err, Eof) || errorx.IsOfType(err, Transport) {
		return err.(*errorx.Error)
	}
	switch {
	case errors.Is(err, resp.ErrUnknownType):
		return UnknownType.Wrap(err, "decoding reply")
	case errors.Is(err, resp.ErrNotANumber):
		return NotANumber.Wrap(err, "decoding reply")
	case errors.Is(err, resp.ErrExceedsMaxReadSize):
		return ExceedsMaxReadSize.Wrap(err, "decoding reply")
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Eof.Wrap(err, "peer closed connection")
	}
	return Transport.Wrap(err, "transport error")
}

// NewResultError builds the Result-kind error carried by a Node whose type
// is simple_error or blob_error, so adapters don't each reimplement the
// same translation.
func NewResultError(msg string) *errorx.Error {
	return Result.New(msg)
}

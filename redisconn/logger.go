package redisconn

import "go.uber.org/zap"

// LogKind identifies a life cycle event a Logger can be asked to report,
// mirroring the small fixed set of connection events the original
// log.Printf-based logger reported.
type LogKind int

const (
	LogResolving LogKind = iota
	LogConnecting
	LogConnected
	LogConnectFailed
	LogHandshaking
	LogRunning
	LogDisconnected
	LogReconnecting
	LogClosed
	LogMAX
)

func (k LogKind) String() string {
	switch k {
	case LogResolving:
		return "resolving"
	case LogConnecting:
		return "connecting"
	case LogConnected:
		return "connected"
	case LogConnectFailed:
		return "connect_failed"
	case LogHandshaking:
		return "handshaking"
	case LogRunning:
		return "running"
	case LogDisconnected:
		return "disconnected"
	case LogReconnecting:
		return "reconnecting"
	case LogClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Logger receives structured notifications of a Connection's life cycle.
// v carries event-specific detail (an error, an address, a duration) the
// way the original's log.Printf format arguments did.
type Logger interface {
	Report(event LogKind, conn *Connection, v ...interface{})
}

// zapLogger is the Logger NewZapLogger returns: structured, leveled
// logging instead of bare log.Printf calls. It is not the default;
// Opts.Logger falls back to NoopLogger.
type zapLogger struct {
	log *zap.Logger
}

// NewZapLogger wraps a *zap.Logger as a Logger. Passing nil builds a
// production JSON logger via zap.NewProductionConfig, matching the
// posture of a deployed service rather than the development console
// logger.
func NewZapLogger(base *zap.Logger) Logger {
	if base == nil {
		cfg := zap.NewProductionConfig()
		built, err := cfg.Build()
		if err != nil {
			built = zap.NewNop()
		}
		base = built
	}
	return &zapLogger{log: base}
}

func (l *zapLogger) Report(event LogKind, conn *Connection, v ...interface{}) {
	fields := []zap.Field{zap.String("event", event.String()), zap.String("addr", conn.Addr())}
	switch event {
	case LogConnectFailed, LogDisconnected:
		if len(v) > 0 {
			if err, ok := v[0].(error); ok {
				fields = append(fields, zap.Error(err))
			}
		}
		l.log.Warn("redis connection event", fields...)
	default:
		l.log.Info("redis connection event", fields...)
	}
}

// NoopLogger discards every event; the default for tests and for callers
// who don't want connection-level logging at all.
type NoopLogger struct{}

func (NoopLogger) Report(LogKind, *Connection, ...interface{}) {}

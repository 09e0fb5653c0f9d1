// Package obslog provides the package-level leveled logger every component
// in this module shares, in the shape of the teacher's log package
// (global Debug/Info/Warn/Error functions, a LOGLEVEL-style level gate) but
// backed by a structured zap.Logger instead of the teacher's bare
// *log.Logger-per-level, so call sites can attach fields (NodeId,
// AttrId, SubscriptionId) instead of formatting them into a string.
package obslog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger = mustBuild(zapcore.InfoLevel)
	level              = zapcore.InfoLevel
)

func mustBuild(lvl zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core)
}

// SetLevel reparents the shared logger to a new minimum level. Valid values
// mirror the teacher's LOGLEVEL flag: "debug", "info", "warn", "error",
// "crit" (mapped onto zap's DPanic). Anything else falls back to "info".
func SetLevel(lvl string) {
	z, ok := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"err":   zapcore.ErrorLevel,
		"error": zapcore.ErrorLevel,
		"crit":  zapcore.DPanicLevel,
	}[lvl]
	if !ok {
		z = zapcore.InfoLevel
	}
	mu.Lock()
	defer mu.Unlock()
	level = z
	logger = mustBuild(z)
}

// L returns the shared logger. Components that accept a *zap.Logger field
// (access.Access.Logger, dispatch.Dispatcher.Logger, ...) should be wired
// with L() unless the caller supplies its own.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Deduper suppresses repeat warnings for the same key (spec §7: "warn once
// per distinct NodeId" for ignored AddNode attributes such as
// MinimumSamplingInterval).
type Deduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper { return &Deduper{seen: make(map[string]struct{})} }

// WarnOnce logs msg at Warn level the first time key is seen, and is a
// no-op on every subsequent call with the same key.
func (d *Deduper) WarnOnce(key, msg string, fields ...zap.Field) {
	d.mu.Lock()
	_, already := d.seen[key]
	if !already {
		d.seen[key] = struct{}{}
	}
	d.mu.Unlock()
	if !already {
		Warn(msg, fields...)
	}
}

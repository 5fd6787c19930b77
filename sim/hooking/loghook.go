package hooking

import (
	"fmt"

	"go.uber.org/zap"
)

// LogHook writes every hook invocation to a zap logger at debug level.
type LogHook struct {
	logger *zap.Logger
}

// NewLogHook creates a LogHook that writes to the logger.
func NewLogHook(logger *zap.Logger) *LogHook {
	return &LogHook{logger: logger}
}

// Func logs the position, item and detail of the context.
func (h *LogHook) Func(ctx HookCtx) {
	if ce := h.logger.Check(zap.DebugLevel, ctx.Pos.Name); ce != nil {
		ce.Write(field("item", ctx.Item), field("detail", ctx.Detail))
	}
}

func field(key string, v interface{}) zap.Field {
	if s, ok := v.(fmt.Stringer); ok {
		return zap.Stringer(key, s)
	}

	return zap.Any(key, v)
}

// Package tracing records what the memory hierarchy and the pipeline do.
//
// Both hooks here implement sim.Hook and can be attached to any cache.Level
// or pipeline.Pipeline with AcceptHook.
package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/isasim/timing/cache"
	"github.com/sarchlab/isasim/timing/pipeline"
)

// LogHook writes every hooked event to a structured logger.
type LogHook struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogHook creates a hook that logs at the given level.
func NewLogHook(logger *slog.Logger, level slog.Level) *LogHook {
	return &LogHook{logger: logger, level: level}
}

// Func logs the event carried by ctx.
func (h *LogHook) Func(ctx sim.HookCtx) {
	if !h.logger.Enabled(context.Background(), h.level) {
		return
	}

	switch item := ctx.Item.(type) {
	case cache.AccessEvent:
		h.logger.Log(context.Background(), h.level, "cache access",
			"level", item.Level, "addr", hex(item.Addr),
			"write", item.Write, "hit", item.Hit)
	case cache.EvictEvent:
		h.logger.Log(context.Background(), h.level, "cache evict",
			"level", item.Level, "addr", hex(item.Addr), "dirty", item.Dirty)
	case cache.FillEvent:
		h.logger.Log(context.Background(), h.level, "cache fill",
			"level", item.Level, "addr", hex(item.Addr))
	case pipeline.Record:
		h.logger.Log(context.Background(), h.level, "pipeline "+eventName(ctx.Pos),
			"pc", hex(item.PC), "inst", item.Inst.String())
	}
}

func eventName(pos *sim.HookPos) string {
	switch pos {
	case pipeline.HookPosStall:
		return "stall"
	case pipeline.HookPosFlush:
		return "flush"
	case pipeline.HookPosRetire:
		return "retire"
	}
	return pos.Name
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}

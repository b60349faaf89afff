package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// sourceHandler attaches the caller location only to records whose level is in
// showFor. The wrapped handler must be built with AddSource disabled.
type sourceHandler struct {
	next    slog.Handler
	showFor map[slog.Level]struct{}
}

// NewConditionalSourceHandler wraps next so that source locations are emitted
// only for the given levels.
func NewConditionalSourceHandler(next slog.Handler, levels ...slog.Level) slog.Handler {
	showFor := make(map[slog.Level]struct{}, len(levels))
	for _, level := range levels {
		showFor[level] = struct{}{}
	}
	return &sourceHandler{next: next, showFor: showFor}
}

func (h *sourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if _, ok := h.showFor[r.Level]; ok && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		}))
	}
	return h.next.Handle(ctx, r)
}

func (h *sourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceHandler{next: h.next.WithAttrs(attrs), showFor: h.showFor}
}

func (h *sourceHandler) WithGroup(name string) slog.Handler {
	return &sourceHandler{next: h.next.WithGroup(name), showFor: h.showFor}
}

package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	SessionIDKey ContextKey = "clip.session.id"
	PaperIDKey   ContextKey = "clip.paper.id"
	StageKey     ContextKey = "clip.stage"
	ClipIDKey    ContextKey = "clip.id"
)

var contextKeys = []ContextKey{SessionIDKey, PaperIDKey, StageKey, ClipIDKey}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

func WithPaperID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, PaperIDKey, id)
}

// WithStage tags logs with the pipeline stage (compose, encode, publish).
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

func WithClipID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ClipIDKey, id)
}

package trace

import "context"

type ctxKey struct{}

// FromContext extracts the Tracer from context.
// If not found, returns Nop tracer.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

type spanContext struct {
	id    uint64
	depth int
}

type spanCtxKey struct{}

func currentSpan(ctx context.Context) spanContext {
	if ctx == nil {
		return spanContext{}
	}
	if sc, ok := ctx.Value(spanCtxKey{}).(spanContext); ok {
		return sc
	}
	return spanContext{}
}

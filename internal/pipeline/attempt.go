package pipeline

import (
	"context"

	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/metrics"
)

// orFallback runs op and swaps any error for fallback after logging it
// under component.
func orFallback[T any](ctx context.Context, component string, fallback T, op func(context.Context) (T, error)) T {
	out, err := op(ctx)
	if err != nil {
		logx.Error(component, "falling back: %v", err)
		metrics.Fallbacks.Inc(map[string]string{"component": component})
		return fallback
	}
	return out
}

func attempt(ctx context.Context, component, fallback string, op func(context.Context) (string, error)) string {
	return orFallback(ctx, component, fallback, op)
}

func attemptIntent(ctx context.Context, component string, fallback Intent, op func(context.Context) (Intent, error)) Intent {
	return orFallback(ctx, component, fallback, op)
}

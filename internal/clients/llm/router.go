package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/bytesolver-backend/internal/pkg/httpx"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

// Router tries providers in a fixed order. It moves to the next provider only
// when the current one is unreachable or failed with a retryable error, and
// for streams only while nothing has been emitted yet.
type Router struct {
	log       *logger.Logger
	providers []Client
}

func NewRouter(log *logger.Logger, providers ...Client) *Router {
	var ps []Client
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Router{log: log.With("service", "LLMRouter"), providers: ps}
}

func (r *Router) Name() string { return "router" }

func (r *Router) Providers() int { return len(r.providers) }

func (r *Router) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	if len(r.providers) == 0 {
		return "", ErrNoProviders
	}
	var lastErr error
	for i, p := range r.providers {
		out, err := p.Complete(ctx, system, messages)
		if err == nil {
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
		if !canFallBack(ctx, err) || i == len(r.providers)-1 {
			break
		}
		r.log.Warn("LLM provider failed; falling back", "provider", p.Name(), "next", r.providers[i+1].Name(), "error", err.Error())
	}
	return "", lastErr
}

func (r *Router) Stream(ctx context.Context, system string, messages []Message, onDelta func(string)) (string, error) {
	if len(r.providers) == 0 {
		return "", ErrNoProviders
	}
	var lastErr error
	for i, p := range r.providers {
		emitted := false
		out, err := p.Stream(ctx, system, messages, func(d string) {
			emitted = true
			if onDelta != nil {
				onDelta(d)
			}
		})
		if err == nil {
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
		if emitted {
			return out, lastErr
		}
		if !canFallBack(ctx, err) || i == len(r.providers)-1 {
			break
		}
		r.log.Warn("LLM provider stream failed; falling back", "provider", p.Name(), "next", r.providers[i+1].Name(), "error", err.Error())
	}
	return "", lastErr
}

func canFallBack(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	return httpx.IsUnreachable(err) || httpx.IsRetryableError(err)
}

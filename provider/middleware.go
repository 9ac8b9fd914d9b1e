package provider

import "context"

// Middleware decorates a RequestResponse. Decorators must forward Name and
// IsAvailable unchanged so registries and health checks see the provider.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares outermost first: Chain(tracing, retry)(p)
// opens one span around all retry attempts.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(p RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			p = middlewares[i](p)
		}
		return p
	}
}

// Around builds a Middleware from a function that receives the wrapped
// provider and decides how to call it.
func Around[I, O any](fn func(ctx context.Context, next RequestResponse[I, O], in I) (O, error)) Middleware[I, O] {
	return func(next RequestResponse[I, O]) RequestResponse[I, O] {
		return decorated[I, O]{RequestResponse: next, fn: fn}
	}
}

type decorated[I, O any] struct {
	RequestResponse[I, O]
	fn func(context.Context, RequestResponse[I, O], I) (O, error)
}

func (d decorated[I, O]) Execute(ctx context.Context, in I) (O, error) {
	return d.fn(ctx, d.RequestResponse, in)
}

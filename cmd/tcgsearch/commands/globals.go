package commands

import (
	"context"

	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardsearch"
)

type ctxKeyType int

var ctxKey ctxKeyType

type value struct {
	tel      telemetry.Telemetry
	client   cardsearch.Fetcher
	policy   cardsearch.OverlapPolicy
	renderer cardsearch.Renderer
}

func set(ctx context.Context, v *value) context.Context {
	return context.WithValue(ctx, ctxKey, v)
}

func get(ctx context.Context) *value {
	return ctx.Value(ctxKey).(*value)
}

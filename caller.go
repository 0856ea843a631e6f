package scarcity

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type callerKey struct{}

// WithCaller returns a context carrying the authenticated caller identity.
// The ledger reads it on every operation that acts on behalf of someone.
func WithCaller(ctx context.Context, caller common.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by WithCaller. The zero address is
// never a valid caller.
func CallerFrom(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(common.Address)
	if !ok || caller == (common.Address{}) {
		return common.Address{}, false
	}
	return caller, true
}

func requireCaller(ctx context.Context) (common.Address, error) {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return common.Address{}, ErrMissingCaller
	}
	return caller, nil
}

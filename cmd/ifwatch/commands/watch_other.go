//go:build !linux

package commands

import (
	"context"
)

// The subscription monitor is linux-only. Everywhere else a watch degrades
// to driving the one-shot change waiter in a loop.
func watchChanges(ctx context.Context, opts watchOptions) error {
	return pollChanges(ctx, opts)
}

// Package metadata is the device-local key/value table. Values are opaque
// bytes; callers own the encoding.
package metadata

import (
	"context"
)

type Repository interface {
	// Lookup reports found=false for a key that was never stored. A stored
	// empty value is found with a zero-length slice.
	Lookup(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

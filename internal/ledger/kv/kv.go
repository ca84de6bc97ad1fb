package kv

import "context"

// Store is the key-value persistence behind the simulated ledger backend.
// An in-memory map serves tests; a Postgres table serves production. Both
// satisfy the same interface so the simulation never knows the difference.
//
// Error Contract:
// - Get returns sentinel.ErrNotFound when the key does not exist
// - ListPrefix returns keys in unspecified order
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error)
}

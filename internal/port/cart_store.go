package port

import "context"

type CartStore interface {
	// Load returns the raw snapshot stored under key; ok is false when the key is absent
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save replaces the snapshot stored under key
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key entirely
	Delete(ctx context.Context, key string) error
}

type SubmitGuard interface {
	// Acquire marks key as in flight, returns false if it already is
	Acquire(ctx context.Context, key string) (bool, error)

	// Release clears the in-flight mark so the submission may be retried
	Release(ctx context.Context, key string) error
}

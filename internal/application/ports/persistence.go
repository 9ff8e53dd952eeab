package ports

import (
	"context"
)

// PersistenceProvider is durable key/value storage scoped to a client session.
// Get reports found=false, with no error, when nothing is stored under key.
type PersistenceProvider interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
}

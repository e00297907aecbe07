package sessions

import "context"

// Storage is the durable key/value cache the session snapshot is written to.
// It plays the part of browser local storage: the in-memory Store is the
// source of truth and Storage only survives restarts.
type Storage interface {
	// Get returns the stored bytes and whether the key exists.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Package blob stores uploaded audio payloads outside the record
// store and hands back opaque storage keys.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the referenced object is missing. For a key
	// taken from a live record that is a consistency fault, surfaced
	// to the caller rather than swallowed.
	ErrNotFound = errors.New("blob not found")

	// ErrUnavailable wraps I/O or object-store failures. A put
	// failing with it must abort the record creation it accompanies.
	ErrUnavailable = errors.New("blob storage unavailable")
)

// Object describes a stored blob, as reported by List.
type Object struct {
	Key          string
	LastModified time.Time
}

// Store is the audio blob store. Implementations provide per-object
// atomicity; there are no multi-object operations.
type Store interface {
	// Put writes r under key. On failure nothing retrievable may
	// remain under key.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Open returns a reader over the object's bytes.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, key string) error

	// List enumerates stored objects for the orphan sweeper.
	List(ctx context.Context) ([]Object, error)
}

// Presigner is implemented by stores that can resolve a key to a
// short-lived retrieval URL, letting handlers redirect instead of
// streaming.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// NewKey builds a collision-resistant storage key for an upload:
// owner + timestamp + random uuid + the original extension. Concurrent
// uploads from the same or different users never collide.
func NewKey(ownerID, filename string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("users/%s/%s_%s%s", ownerID, now.Format("20060102_150405"), uuid.NewString(), path.Ext(filename))
}

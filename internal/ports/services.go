// Package ports holds the interfaces the app layer needs from the outside
// world: where the collection is stored, where background images come from and
// how readiness is checked. Implementations return domain errors only.
package ports

import (
	"context"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// Well-known keys in the KeyValueStore.
const (
	// KeyQuotations holds the serialized verse collection.
	KeyQuotations = "dailyVerses"

	// KeyCredential holds the admin credential (a bcrypt hash, or legacy plaintext).
	KeyCredential = "adminPwd"
)

// KeyValueStore is the persistent string-keyed store the collection and the
// admin credential live in. It survives restarts.
//
// Implementations: bbolt (default), sqlite, and an in-memory map for tests.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying handle.
	Close() error
}

// ImageSource resolves a random background image for the viewer. It honors
// ctx's deadline and reports transport failures as domain.ErrUnavailable.
type ImageSource interface {
	// Random resolves a fresh image. seed makes each request unique so that
	// intermediaries never serve a cached image twice in a row.
	Random(ctx context.Context, seed int64) (*domain.Backdrop, error)
}

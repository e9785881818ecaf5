// Package bolt stores the verse collection in a single-file bbolt database.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// bucketKV holds every key of the store: key -> raw value.
const bucketKV = "kv"

// Store implements ports.KeyValueStore on bbolt.
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens (or creates) the database file at path.
// A second process holding the file lock makes Open fail after one second.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKV))

		return err
	}); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketKV)).Get([]byte(key))
		if v == nil {
			return domain.NewNotFoundError("key", key)
		}

		// bbolt values are only valid for the life of the transaction.
		out = append([]byte(nil), v...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketKV)).Put([]byte(key), value)
	})
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketKV)).Delete([]byte(key))
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "bolt"
}

// Check verifies the bucket is readable.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(bucketKV)) == nil {
			return domain.NewUnavailableError("bolt", "bucket missing in "+s.path)
		}

		return nil
	})
}

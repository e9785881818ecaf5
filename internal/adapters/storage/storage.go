// Package storage selects the KeyValueStore implementation for a driver name.
package storage

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/verse-service/internal/adapters/storage/bolt"
	"github.com/jsamuelsen/verse-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen/verse-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

// Supported driver names.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Store is a KeyValueStore that can also report its health.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
}

// Open returns the store for driver, rooted at path.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case DriverBolt:
		store, err := bolt.Open(path)
		if err != nil {
			return nil, err
		}

		return store, nil
	case DriverSQLite:
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}

		return store, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

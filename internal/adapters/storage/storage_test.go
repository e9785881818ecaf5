package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		driver   string
		file     string
		wantName string
		wantErr  bool
	}{
		{driver: DriverBolt, file: "verses.bolt", wantName: "bolt"},
		{driver: DriverSQLite, file: "verses.db", wantName: "sqlite"},
		{driver: DriverMemory, wantName: "memory"},
		{driver: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			store, err := Open(context.Background(), tt.driver, filepath.Join(t.TempDir(), tt.file))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.driver)

				return
			}

			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			assert.Equal(t, tt.wantName, store.Name())
			require.NoError(t, store.Check(context.Background()))
		})
	}
}

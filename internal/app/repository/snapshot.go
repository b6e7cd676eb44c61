package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banglehouse/bangles-backend/internal/storage"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

// ErrSnapshotUnavailable means the store could not be read. The snapshot may
// still exist, so callers must not overwrite it with an empty collection.
var ErrSnapshotUnavailable = errors.New("snapshot store unavailable")

// readSnapshot decodes the JSON value under key into v. It reports false when
// the key is missing or holds a value that does not parse; the caller then
// starts from an empty collection. A failed read returns
// ErrSnapshotUnavailable instead.
func readSnapshot(ctx context.Context, store storage.KeyValueStore, key string, v interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		logger.Debug("No snapshot stored", map[string]interface{}{
			"key": key,
		})
		return false, nil
	}
	if err != nil {
		logger.Warn("Failed to read snapshot", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("Discarding malformed snapshot", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
			"size":  len(raw),
		})
		return false, nil
	}
	return true, nil
}

// writeSnapshot overwrites the value under key with the JSON encoding of v.
// Failures are logged and dropped: durability is best-effort and the
// in-memory collection stays authoritative.
func writeSnapshot(ctx context.Context, store storage.KeyValueStore, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode snapshot", err, map[string]interface{}{
			"key": key,
		})
		return
	}

	if err := store.Set(ctx, key, string(data)); err != nil {
		logger.Warn("Snapshot write failed, keeping in-memory state", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	logger.Debug("Snapshot saved", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})
}

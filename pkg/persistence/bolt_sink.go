package persistence

import (
	"encoding/json"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/meshguard/sentinel/pkg/logx"
)

var (
	bucketSeenCells    = []byte("seen_cells")
	bucketTrustedCells = []byte("trusted_cells")
	bucketEvents       = []byte("events")
)

// BoltSink is the production Sink implementation: a bbolt-backed key-value
// store, a direct fit for spec.md §1's "key-value upserts over a handful of
// typed records" persistence store.
type BoltSink struct {
	mu        sync.Mutex
	db        *bolt.DB
	logger    *logx.Logger
	ephemeral bool
}

// OpenBoltSink opens (creating if necessary) a bbolt database at path and
// ensures all three buckets exist.
func OpenBoltSink(path string, logger *logx.Logger) (*BoltSink, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: open bbolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSeenCells, bucketTrustedCells, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persistence: init buckets: %w", err)
	}

	return &BoltSink{db: db, logger: logger}, nil
}

func (s *BoltSink) InsertSeenCell(entity SeenCellTowerEntity) error {
	if s.isEphemeral() {
		return nil
	}
	return s.put(bucketSeenCells, entity.CellID, entity)
}

func (s *BoltSink) InsertTrustedCell(entity TrustedCellEntity) error {
	if s.isEphemeral() {
		return nil
	}
	return s.put(bucketTrustedCells, entity.CellID, entity)
}

func (s *BoltSink) InsertEvent(entity CellularEventEntity) error {
	if s.isEphemeral() {
		return nil
	}
	key := fmt.Sprintf("%020d", entity.Timestamp)
	return s.put(bucketEvents, key, entity)
}

// TrimEvents keeps only the keep most recent events (keys are zero-padded
// timestamps, so lexicographic order is chronological).
func (s *BoltSink) TrimEvents(keep int) error {
	if s.isEphemeral() {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		n := b.Stats().KeyN
		if n <= keep {
			return nil
		}
		toDelete := n - keep
		c := b.Cursor()
		for k, _ := c.First(); k != nil && toDelete > 0; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
			toDelete--
		}
		return nil
	})
}

func (s *BoltSink) DeleteAllSeenCells() error    { return s.deleteAll(bucketSeenCells) }
func (s *BoltSink) DeleteAllTrustedCells() error { return s.deleteAll(bucketTrustedCells) }
func (s *BoltSink) DeleteAllEvents() error       { return s.deleteAll(bucketEvents) }

func (s *BoltSink) SnapshotSeenCells() ([]SeenCellTowerEntity, error) {
	var out []SeenCellTowerEntity
	err := s.view(bucketSeenCells, func(v []byte) error {
		var e SeenCellTowerEntity
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (s *BoltSink) SnapshotTrustedCells() ([]TrustedCellEntity, error) {
	var out []TrustedCellEntity
	err := s.view(bucketTrustedCells, func(v []byte) error {
		var e TrustedCellEntity
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (s *BoltSink) SnapshotEvents() ([]CellularEventEntity, error) {
	var out []CellularEventEntity
	err := s.view(bucketEvents, func(v []byte) error {
		var e CellularEventEntity
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

// SetEphemeral implements the off->on->off round trip from spec.md §4.10:
// enabling purges all persisted data; disabling re-persists whatever the
// caller's current in-memory tables are.
func (s *BoltSink) SetEphemeral(enabled bool, onDisableResync func() ([]TrustedCellEntity, []CellularEventEntity)) error {
	s.mu.Lock()
	wasEphemeral := s.ephemeral
	s.ephemeral = enabled
	s.mu.Unlock()

	if enabled && !wasEphemeral {
		if err := s.DeleteAllSeenCells(); err != nil {
			return err
		}
		if err := s.DeleteAllTrustedCells(); err != nil {
			return err
		}
		if err := s.DeleteAllEvents(); err != nil {
			return err
		}
		return nil
	}

	if !enabled && wasEphemeral && onDisableResync != nil {
		trusted, events := onDisableResync()
		for _, t := range trusted {
			if err := s.InsertTrustedCell(t); err != nil {
				return err
			}
		}
		for _, e := range events {
			if err := s.InsertEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BoltSink) Close() error { return s.db.Close() }

func (s *BoltSink) isEphemeral() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ephemeral
}

func (s *BoltSink) put(bucket []byte, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("persistence: marshal: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *BoltSink) deleteAll(bucket []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
}

func (s *BoltSink) view(bucket []byte, fn func(v []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			return fn(v)
		})
	})
}

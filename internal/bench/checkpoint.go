package bench

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// CheckpointStore is a resumable, per-item progress log for a
// benchmark run, keyed by (suite_version, item_id, run_index) so writes
// are idempotent and a crashed run can resume exactly where it left
// off (spec.md §5: "Benchmark checkpoint store: written with
// append-or-replace-per-item semantics; writes are idempotent").
//
// The key's third segment tracks which repetition of an item within a
// run produced the result (run_index, 0-based), not which overall
// benchmark invocation did (run_id): a suite run with --runs-per-case
// > 1 needs to tell repetitions of the same item apart, but resuming a
// crashed run reuses the same checkpoint regardless of which run_id
// the interrupted invocation carried, so run_id is deliberately not
// part of the key.
type CheckpointStore struct {
	db *badger.DB
}

// OpenCheckpointStore opens (creating if necessary) a badger-backed
// checkpoint database at dir.
func OpenCheckpointStore(dir string) (*CheckpointStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("bench: open checkpoint store %s: %w", dir, err)
	}
	return &CheckpointStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *CheckpointStore) Close() error {
	return s.db.Close()
}

func checkpointKey(suiteVersion, itemID string, runIndex int) []byte {
	return []byte(fmt.Sprintf("%s/%s/%d", suiteVersion, itemID, runIndex))
}

// Put writes (or idempotently overwrites) one item's result.
func (s *CheckpointStore) Put(suiteVersion string, result ItemResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("bench: marshal checkpoint for item %q: %w", result.ItemID, err)
	}
	key := checkpointKey(suiteVersion, result.ItemID, result.RunIndex)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// Get returns a previously checkpointed result, if any, for the given
// run index of an item.
func (s *CheckpointStore) Get(suiteVersion, itemID string, runIndex int) (ItemResult, bool, error) {
	var result ItemResult
	found := false
	key := checkpointKey(suiteVersion, itemID, runIndex)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return ItemResult{}, false, fmt.Errorf("bench: read checkpoint for item %q: %w", itemID, err)
	}
	return result, found, nil
}

// LoadAll returns every checkpointed result under a suite version,
// used to resume a run that was interrupted mid-suite.
func (s *CheckpointStore) LoadAll(suiteVersion string) ([]ItemResult, error) {
	var results []ItemResult
	prefix := []byte(suiteVersion + "/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var result ItemResult
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &result)
			})
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bench: load checkpoints for suite version %q: %w", suiteVersion, err)
	}
	return results, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"asyncga/internal/model"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	runPrefix        = "run/"
	generationPrefix = "gen/"
)

// LevelDBStore keeps run history in an embedded LevelDB directory. Generation
// keys embed a zero-padded generation number so a prefix scan returns them in
// order.
type LevelDBStore struct {
	path string

	mu sync.RWMutex
	db *leveldb.DB
}

func NewLevelDBStore(path string) *LevelDBStore {
	return &LevelDBStore{path: path}
}

func (s *LevelDBStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("leveldb path is required")
	}
	if s.db != nil {
		return nil
	}
	db, err := leveldb.OpenFile(s.path, nil)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *LevelDBStore) SaveRun(_ context.Context, run model.RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}
	return db.Put(runKey(run.ID), payload, nil)
}

func (s *LevelDBStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunRecord{}, false, err
	}
	payload, err := db.Get(runKey(id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *LevelDBStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	it := db.NewIterator(util.BytesPrefix([]byte(runPrefix)), nil)
	defer it.Release()

	var runs []model.RunRecord
	for it.Next() {
		run, err := DecodeRun(it.Value())
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", it.Key(), err)
		}
		runs = append(runs, run)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	slices.SortFunc(runs, func(a, b model.RunRecord) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return runs, nil
}

func (s *LevelDBStore) AppendGeneration(_ context.Context, record model.GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeGeneration(record)
	if err != nil {
		return err
	}
	return db.Put(generationKey(record.RunID, record.Diagnostics.Generation), payload, nil)
}

func (s *LevelDBStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	it := db.NewIterator(util.BytesPrefix(fmt.Appendf(nil, "%s%s/", generationPrefix, runID)), nil)
	defer it.Release()

	var records []model.GenerationRecord
	for it.Next() {
		record, err := DecodeGeneration(it.Value())
		if err != nil {
			return nil, false, fmt.Errorf("decode generation for run %s: %w", runID, err)
		}
		records = append(records, record)
	}
	if err := it.Error(); err != nil {
		return nil, false, err
	}
	return records, len(records) > 0, nil
}

func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *LevelDBStore) getDB() (*leveldb.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func runKey(id string) []byte {
	return fmt.Appendf(nil, "%s%s", runPrefix, id)
}

func generationKey(runID string, generation int) []byte {
	return fmt.Appendf(nil, "%s%s/%010d", generationPrefix, runID, generation)
}

package storage

import (
	"sync"
	"time"

	"logvault/pkg/models"
)

// MemoryStore keeps accepted log records in memory with level and time indexes. It is
// registered with the logger as a handler.
type MemoryStore struct {
	records      []models.LogRecord
	indexByLevel map[models.Level][]int // level -> record indices
	indexByTime  map[int64][]int        // minute bucket -> record indices
	mu           sync.RWMutex
	maxRecords   int
}

// NewMemoryStore creates a store holding at most maxRecords records.
func NewMemoryStore(maxRecords int) *MemoryStore {
	if maxRecords < 1 {
		maxRecords = 1
	}
	return &MemoryStore{
		records:      make([]models.LogRecord, 0, maxRecords),
		indexByLevel: make(map[models.Level][]int),
		indexByTime:  make(map[int64][]int),
		maxRecords:   maxRecords,
	}
}

// Handle stores the record. It never fails.
func (ms *MemoryStore) Handle(record models.LogRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	idx := len(ms.records)
	ms.records = append(ms.records, record)
	ms.index(idx, record)

	if len(ms.records) > ms.maxRecords {
		ms.evictOldest()
	}
	return nil
}

// GetByLevel returns all records of exactly the given level, oldest first.
func (ms *MemoryStore) GetByLevel(level models.Level) []models.LogRecord {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return ms.collect(ms.indexByLevel[level])
}

// GetAtOrAbove returns all records at least as severe as level, oldest first.
func (ms *MemoryStore) GetAtOrAbove(level models.Level) []models.LogRecord {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]models.LogRecord, 0)
	for _, r := range ms.records {
		if level.Allows(r.Level) {
			result = append(result, r)
		}
	}
	return result
}

// GetByTimeRange returns records with start <= timestamp <= end.
func (ms *MemoryStore) GetByTimeRange(start, end time.Time) []models.LogRecord {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]models.LogRecord, 0)
	for bucket := start.Unix() / 60; bucket <= end.Unix()/60; bucket++ {
		for _, idx := range ms.indexByTime[bucket] {
			r := ms.records[idx]
			if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
				result = append(result, r)
			}
		}
	}
	return result
}

// GetRecent returns a copy of the n most recent records, oldest first.
func (ms *MemoryStore) GetRecent(n int) []models.LogRecord {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	start := len(ms.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.LogRecord, len(ms.records)-start)
	copy(out, ms.records[start:])
	return out
}

// Count returns the number of records held.
func (ms *MemoryStore) Count() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.records)
}

func (ms *MemoryStore) collect(indices []int) []models.LogRecord {
	result := make([]models.LogRecord, 0, len(indices))
	for _, idx := range indices {
		result = append(result, ms.records[idx])
	}
	return result
}

func (ms *MemoryStore) index(idx int, r models.LogRecord) {
	ms.indexByLevel[r.Level] = append(ms.indexByLevel[r.Level], idx)
	bucket := r.Timestamp.Unix() / 60
	ms.indexByTime[bucket] = append(ms.indexByTime[bucket], idx)
}

// evictOldest drops the oldest 20% (at least one) of the records and reindexes.
func (ms *MemoryStore) evictOldest() {
	evictCount := ms.maxRecords / 5
	if evictCount < 1 {
		evictCount = 1
	}
	ms.records = append([]models.LogRecord(nil), ms.records[evictCount:]...)

	ms.indexByLevel = make(map[models.Level][]int)
	ms.indexByTime = make(map[int64][]int)
	for idx, r := range ms.records {
		ms.index(idx, r)
	}
}

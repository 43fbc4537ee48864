package services

import (
	"sync"

	"github.com/cardforge/deck-builder/backend/internal/metrics"
	"github.com/cardforge/deck-builder/backend/internal/models"
)

// RecordCache maps card names to the last-fetched catalog record. Entries are
// inserted opportunistically by the resolver and batch dispatcher and live
// for the whole session; the upstream dataset is small relative to process
// memory, so there is no eviction. A record is cached under the name used to
// look it up and under its canonical name when the two differ, so either
// spelling hits on later lookups.
type RecordCache struct {
	mu      sync.RWMutex
	records map[string]*models.CardRecord
}

func NewRecordCache() *RecordCache {
	return &RecordCache{
		records: make(map[string]*models.CardRecord),
	}
}

// Get returns the cached record for name, or nil and false on a miss.
func (c *RecordCache) Get(name string) (*models.CardRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[name]
	return record, ok
}

// Has reports whether name is cached without counting a hit or miss.
func (c *RecordCache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[name]
	return ok
}

// Put stores the record under name and, when different, under the record's
// canonical name. Existing entries are replaced wholesale.
func (c *RecordCache) Put(name string, record *models.CardRecord) {
	if record == nil {
		return
	}

	c.mu.Lock()
	c.records[name] = record
	if record.Name != "" && record.Name != name {
		c.records[record.Name] = record
	}
	size := len(c.records)
	c.mu.Unlock()

	metrics.RecordCacheSize.Set(float64(size))
}

// Len returns the number of cache keys (records cached under two spellings
// count twice).
func (c *RecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

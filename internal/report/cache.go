package report

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportStore is the persistence the cache needs: get/put of serialized
// reports keyed by (kind, period start). *store.Store satisfies it.
type ReportStore interface {
	GetReport(kind string, start time.Time) ([]byte, error)
	PutReport(kind string, start time.Time, data []byte) error
}

// Cache stores one finished report per PeriodKey. Entries have no TTL; only
// a forced regeneration replaces them.
type Cache struct {
	store ReportStore
}

func NewCache(store ReportStore) *Cache {
	return &Cache{store: store}
}

// Get returns the cached report for key, or nil when absent.
func (c *Cache) Get(key PeriodKey) (*Report, error) {
	data, err := c.store.GetReport(string(key.Kind), key.Start)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode cached report %s: %w", key, err)
	}
	return &r, nil
}

// Put serializes and upserts the report under its own PeriodKey.
func (c *Cache) Put(r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", r.Period, err)
	}
	return c.store.PutReport(string(r.Period.Kind), r.Period.Start, data)
}

// Has reports whether an entry exists without decoding it.
func (c *Cache) Has(key PeriodKey) (bool, error) {
	data, err := c.store.GetReport(string(key.Kind), key.Start)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

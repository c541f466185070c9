package database

import (
	"context"
	"sort"
	"sync"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Memory is a process-local store. Ids come from a counter and are never reused.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]models.PriceRecord
	lastID  int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[int64]models.PriceRecord)}
}

// Driver returns DriverMemory.
func (m *Memory) Driver() string {
	return DriverMemory
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Ping always succeeds unless ctx is done.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Insert stores a copy of p under a fresh id.
func (m *Memory) Insert(ctx context.Context, p models.PriceRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	p.ID = m.lastID
	m.records[p.ID] = p
	return p.ID, nil
}

// Get returns the record with the given id or models.ErrNotFound.
func (m *Memory) Get(ctx context.Context, id int64) (models.PriceRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.PriceRecord{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.records[id]
	if !ok {
		return models.PriceRecord{}, models.ErrNotFound
	}
	return p, nil
}

// List returns all records ordered by ascending price.
func (m *Memory) List(ctx context.Context) ([]models.PriceRecord, error) {
	return m.filter(ctx, func(models.PriceRecord) bool { return true })
}

// ListByFuelType returns the records of one fuel type ordered by ascending price.
func (m *Memory) ListByFuelType(ctx context.Context, fuelType string) ([]models.PriceRecord, error) {
	return m.filter(ctx, func(p models.PriceRecord) bool { return p.FuelType == fuelType })
}

func (m *Memory) filter(ctx context.Context, keep func(models.PriceRecord) bool) ([]models.PriceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]models.PriceRecord, 0, len(m.records))
	for _, p := range m.records {
		if keep(p) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update overwrites an existing record.
func (m *Memory) Update(ctx context.Context, p models.PriceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[p.ID]; !ok {
		return models.ErrNotFound
	}
	m.records[p.ID] = p
	return nil
}

// Delete removes a record.
func (m *Memory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// Count returns the number of stored records.
func (m *Memory) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// InsertAll stores all records under fresh ids.
func (m *Memory) InsertAll(ctx context.Context, records []models.PriceRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range records {
		m.lastID++
		p.ID = m.lastID
		m.records[p.ID] = p
	}
	return len(records), nil
}

// ReplaceAll drops every record and stores the given ones.
func (m *Memory) ReplaceAll(ctx context.Context, records []models.PriceRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[int64]models.PriceRecord, len(records))
	for _, p := range records {
		m.lastID++
		p.ID = m.lastID
		m.records[p.ID] = p
	}
	return len(records), nil
}

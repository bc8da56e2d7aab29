package storage

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/bin-packing/internal/comparison"
)

// DefaultCapacity is the number of reports kept when no capacity is configured.
const DefaultCapacity = 100

var (
	// ErrNotFound indicates no report exists for the requested id.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidCapacity indicates the store was configured with a non-positive capacity.
	ErrInvalidCapacity = errors.New("report capacity must be positive")
)

// Record is a stored comparison report.
type Record struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Report    comparison.Report `json:"report"`
}

// Storage keeps recent comparison reports.
type Storage interface {
	Save(report comparison.Report) (string, error)
	Get(id string) (Record, error)
	List(limit int) ([]Record, error)
}

// MemoryStorage keeps the most recent reports in-memory and guards access with a RWMutex.
// Once full, the oldest record is evicted.
type MemoryStorage struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	records  map[string]Record
	clock    func() time.Time
}

// Option configures MemoryStorage.
type Option func(*MemoryStorage)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// NewMemoryStorage creates a store holding at most capacity records.
func NewMemoryStorage(capacity int, opts ...Option) (*MemoryStorage, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	s := &MemoryStorage{
		capacity: capacity,
		records:  make(map[string]Record, capacity),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save stores the report under a fresh id.
func (s *MemoryStorage) Save(report comparison.Report) (string, error) {
	id := uuid.NewString()
	record := Record{ID: id, CreatedAt: s.clock(), Report: cloneReport(report)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
	}
	s.order = append(s.order, id)
	s.records[id] = record
	return id, nil
}

// Get returns a defensive copy of the record with the given id.
func (s *MemoryStorage) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	record.Report = cloneReport(record.Report)
	return record, nil
}

// List returns up to limit records, newest first. A non-positive limit returns all of them.
func (s *MemoryStorage) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]Record, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		record := s.records[s.order[i]]
		record.Report = cloneReport(record.Report)
		out = append(out, record)
	}
	return out, nil
}

func cloneReport(r comparison.Report) comparison.Report {
	r.Instance.Weights = slices.Clone(r.Instance.Weights)
	r.Greedy.Partition = r.Greedy.Partition.Clone()
	if r.Exact != nil {
		exact := *r.Exact
		exact.Partition = exact.Partition.Clone()
		r.Exact = &exact
	}
	return r
}

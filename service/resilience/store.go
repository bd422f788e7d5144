package resilience

import (
	"sync"
	"time"

	"media-engine-backend/service/cache"
)

type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half_open"
)

// CircuitRecord is the shared per-service circuit state. A zero
// OpenedAt means the circuit has never tripped.
type CircuitRecord struct {
	State        CircuitState `json:"state"`
	FailureCount int          `json:"failure_count"`
	OpenedAt     time.Time    `json:"opened_at"`
}

func (r CircuitRecord) equal(other CircuitRecord) bool {
	return r.State == other.State &&
		r.FailureCount == other.FailureCount &&
		r.OpenedAt.Equal(other.OpenedAt)
}

// CircuitStateStore holds circuit state shared by all workers, keyed
// by service name. CompareAndSwap is the only mutation primitive so
// two workers can never both win the same transition (a half-open
// trial in particular).
type CircuitStateStore interface {
	Get(service string) (CircuitRecord, bool)

	// CompareAndSwap replaces the record for service with next only if
	// the current record still equals old (old == nil expects no record
	// to exist yet). Reports whether the swap happened.
	CompareAndSwap(service string, old *CircuitRecord, next CircuitRecord) bool

	Forget(service string)
}

const circuitKeyPrefix = "circuit:"

// circuit state survives idle periods but not forever; a stale entry
// is equivalent to a closed circuit
const circuitTTL = 24 * time.Hour

// cacheStateStore implements CircuitStateStore on the shared cache.
// The mutex makes read-modify-write atomic within one process; a
// networked cache implementation would use its own CAS primitive.
type cacheStateStore struct {
	store cache.Store
	mu    sync.Mutex
}

func NewCacheStateStore(store cache.Store) CircuitStateStore {
	return &cacheStateStore{store: store}
}

func (s *cacheStateStore) Get(service string) (CircuitRecord, bool) {
	v, ok := s.store.Get(circuitKeyPrefix + service)
	if !ok {
		return CircuitRecord{}, false
	}
	rec, ok := v.(CircuitRecord)
	return rec, ok
}

func (s *cacheStateStore) CompareAndSwap(service string, old *CircuitRecord, next CircuitRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.Get(service)
	if old == nil {
		if ok {
			return false
		}
	} else {
		if !ok || !cur.equal(*old) {
			return false
		}
	}

	s.store.Put(circuitKeyPrefix+service, next, circuitTTL)
	return true
}

func (s *cacheStateStore) Forget(service string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Forget(circuitKeyPrefix + service)
}

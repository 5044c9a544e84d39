package positionmonitor

import "sync"

// LegBook is the per-position storage of legs. Add/Remove are serialized by
// mu; Snapshot and GetByToken never take it — they load an atomically
// published copy-on-write array and map, so a tick evaluating in progress
// never observes a partially rebuilt view (Design Note "LegBook mutation
// during iteration").
type LegBook struct {
	mu       sync.Mutex
	bySymbol map[string]*Leg

	array   atomicSlice
	byToken atomicTokenMap
}

// NewLegBook constructs an empty LegBook.
func NewLegBook() *LegBook {
	lb := &LegBook{
		bySymbol: make(map[string]*Leg),
	}
	lb.array.store(make([]*Leg, 0))
	lb.byToken.store(make(map[int64]*Leg))
	return lb
}

// Add inserts a leg, failing if its symbol is already present.
func (lb *LegBook) Add(leg *Leg) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if _, exists := lb.bySymbol[leg.Symbol]; exists {
		return newValidationError(ErrCodeDuplicateSymbol, "leg symbol already present: "+leg.Symbol)
	}
	lb.bySymbol[leg.Symbol] = leg
	lb.publishLocked()
	return nil
}

// Remove deletes a leg by symbol; a no-op if the symbol is absent.
func (lb *LegBook) Remove(symbol string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if _, exists := lb.bySymbol[symbol]; !exists {
		return
	}
	delete(lb.bySymbol, symbol)
	lb.publishLocked()
}

// publishLocked rebuilds the flat array and token map from bySymbol and
// atomically swaps both in. Callers must hold mu.
func (lb *LegBook) publishLocked() {
	array := make([]*Leg, 0, len(lb.bySymbol))
	byToken := make(map[int64]*Leg, len(lb.bySymbol))
	for _, leg := range lb.bySymbol {
		array = append(array, leg)
		byToken[leg.InstrumentToken] = leg
	}
	lb.array.store(array)
	lb.byToken.store(byToken)
}

// GetByToken is the O(1), lock-free lookup used on every tick.
func (lb *LegBook) GetByToken(token int64) (*Leg, bool) {
	leg, ok := lb.byToken.load()[token]
	return leg, ok
}

// GetBySymbol finds a leg by symbol in the published array, used off the
// tick hot path (e.g. capturing a leg's quantity before it is removed for
// replacement).
func (lb *LegBook) GetBySymbol(symbol string) (*Leg, bool) {
	for _, leg := range lb.array.load() {
		if leg.Symbol == symbol {
			return leg, true
		}
	}
	return nil, false
}

// Snapshot returns the currently published flat array. The returned slice is
// never mutated in place once published, so callers may iterate it without
// locking.
func (lb *LegBook) Snapshot() []*Leg {
	return lb.array.load()
}

// Len reports the number of legs currently in the book.
func (lb *LegBook) Len() int {
	return len(lb.array.load())
}

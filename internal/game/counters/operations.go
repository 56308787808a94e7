package counters

import "sort"

// Counters is a collection of named counters keyed by name.
type Counters struct {
	counters map[string]*Counter
}

// NewCounters creates an empty counter collection.
func NewCounters() *Counters {
	return &Counters{
		counters: make(map[string]*Counter),
	}
}

// Add adds the given amount to the named counter, creating it if needed.
func (cs *Counters) Add(name string, amount int) {
	if amount <= 0 {
		return
	}
	if existing, ok := cs.counters[name]; ok {
		existing.Add(amount)
		return
	}
	cs.counters[name] = NewCounter(name, amount)
}

// Remove removes the given amount from the named counter. Counters that
// reach zero are dropped from the collection.
func (cs *Counters) Remove(name string, amount int) {
	existing, ok := cs.counters[name]
	if !ok {
		return
	}
	existing.Remove(amount)
	if existing.Count == 0 {
		delete(cs.counters, name)
	}
}

// Count returns the current count of the named counter (0 if absent).
func (cs *Counters) Count(name string) int {
	if existing, ok := cs.counters[name]; ok {
		return existing.Count
	}
	return 0
}

// GetAll returns all counters sorted by name for deterministic iteration.
func (cs *Counters) GetAll() []*Counter {
	all := make([]*Counter, 0, len(cs.counters))
	for _, c := range cs.counters {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Copy creates a deep copy of the collection.
func (cs *Counters) Copy() *Counters {
	copied := NewCounters()
	for name, c := range cs.counters {
		copied.counters[name] = c.Copy()
	}
	return copied
}

package counters

// Counter represents a named marker pile on a board card or battlefield.
type Counter struct {
	Name  string
	Count int
}

// NewCounter creates a new counter with the given name and count.
func NewCounter(name string, count int) *Counter {
	if count <= 0 {
		count = 1
	}
	return &Counter{
		Name:  name,
		Count: count,
	}
}

// Add adds the specified amount to the counter.
func (c *Counter) Add(amount int) {
	if amount > 0 {
		c.Count += amount
	}
}

// Remove removes the specified amount from the counter.
// Will not allow the count to go below 0.
func (c *Counter) Remove(amount int) {
	if amount > 0 {
		if c.Count >= amount {
			c.Count -= amount
		} else {
			c.Count = 0
		}
	}
}

// Copy creates a deep copy of the counter.
func (c *Counter) Copy() *Counter {
	return &Counter{
		Name:  c.Name,
		Count: c.Count,
	}
}

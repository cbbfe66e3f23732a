package chips

// Bin is a named container of units with a fixed number of visible positions
// Units pushed past capacity are kept, but hidden
type Bin struct {
	name     string
	capacity int
	units    []*Unit
}

// NewBin returns an empty bin
func NewBin(name string, capacity int) *Bin {
	if capacity < 0 {
		capacity = 0
	}

	return &Bin{
		name:     name,
		capacity: capacity,
	}
}

// Name returns the name of the bin
func (b *Bin) Name() string {
	return b.name
}

// Capacity returns the number of visible positions
func (b *Bin) Capacity() int {
	return b.capacity
}

// Count returns the number of units in the bin, hidden ones included
func (b *Bin) Count() int {
	return len(b.units)
}

// IsFull returns true if every visible position is taken
func (b *Bin) IsFull() bool {
	return len(b.units) >= b.capacity
}

// Overflow returns the number of hidden units
func (b *Bin) Overflow() int {
	if len(b.units) > b.capacity {
		return len(b.units) - b.capacity
	}

	return 0
}

// Visible returns the units in position order
func (b *Bin) Visible() []*Unit {
	n := len(b.units)
	if n > b.capacity {
		n = b.capacity
	}

	visible := make([]*Unit, n)
	copy(visible, b.units[:n])
	return visible
}

// Push adds a unit to the top of the bin
func (b *Bin) Push(u *Unit) {
	b.units = append(b.units, u)
}

// TryPop removes the most recently pushed unit
func (b *Bin) TryPop() (*Unit, bool) {
	if len(b.units) == 0 {
		return nil, false
	}

	u := b.units[len(b.units)-1]
	b.units = b.units[:len(b.units)-1]
	return u, true
}

package pool

// Resettable is a constraint for types that have a Reset() method.
type Resettable interface {
	Reset()
}

// Poolable is a constraint for types that can be pooled.
type Poolable interface {
	Resettable
	comparable
}

// Pool is a generic fixed-capacity object pool. Get returns the zero
// value of T when the pool is empty; Put resets the object and discards
// it when the pool is full.
type Pool[T Poolable] struct {
	items chan T
}

// New creates a Pool holding at most capacity objects.
func New[T Poolable](capacity int) *Pool[T] {
	return &Pool[T]{
		items: make(chan T, capacity),
	}
}

// Get retrieves an object from the pool, or the zero value of T if the
// pool is empty.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		var zero T
		return zero
	}
}

// Put returns an object to the pool after calling its Reset() method.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item != zero {
		item.Reset()
	}

	select {
	case p.items <- item:
	default:
	}
}

// Len returns the number of objects currently held.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

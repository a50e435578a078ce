package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNotInitialized is returned by Cache.Get before Init has run.
var ErrNotInitialized = errors.New("dataset cache not initialized")

// Source produces a Dataset. *Loader satisfies it.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Cache holds the process-wide dataset. Init loads it exactly once; later
// calls return the outcome of the first. Get never triggers a load.
type Cache struct {
	source Source
	once   sync.Once
	state  atomic.Pointer[cacheState]
}

type cacheState struct {
	ds  *Dataset
	err error
}

// NewCache wraps source.
func NewCache(source Source) *Cache {
	return &Cache{source: source}
}

// NewStaticCache returns a cache that is already initialized with ds.
func NewStaticCache(ds *Dataset) *Cache {
	c := &Cache{}
	c.once.Do(func() {
		c.state.Store(&cacheState{ds: ds})
	})
	return c
}

// Init loads the dataset on first call and returns the load error, if any.
func (c *Cache) Init(ctx context.Context) error {
	c.once.Do(func() {
		ds, err := c.source.Load(ctx)
		c.state.Store(&cacheState{ds: ds, err: err})
	})
	return c.state.Load().err
}

// Get returns the loaded dataset.
func (c *Cache) Get() (*Dataset, error) {
	st := c.state.Load()
	if st == nil {
		return nil, ErrNotInitialized
	}
	return st.ds, st.err
}

package hostname

import (
	"sync"

	"github.com/golang/glog"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the initial capacity of each cache.
const DefaultCacheSize = 256

// Unbounded disables eviction for a cache when passed to CacheConfigure.
const Unbounded = -1

// CacheStats reports hit/miss counters and occupancy for one cache.
type CacheStats struct {
	Hits     uint64
	Misses   uint64
	Size     int
	Capacity int // Unbounded when eviction is disabled
}

// Info reports statistics for all host caches.
type Info struct {
	IDNAEncode   CacheStats
	IDNADecode   CacheStats
	IPAddress    CacheStats
	HostValidate CacheStats
}

// Sizes configures cache capacities for CacheConfigure. A zero field leaves
// the corresponding cache unchanged; Unbounded disables eviction.
type Sizes struct {
	IDNAEncode   int
	IDNADecode   int
	IPAddress    int
	HostValidate int
}

// memoCache is a bounded, mutex-guarded memoization cache. Only successful
// results are stored. capacity Unbounded switches to a plain map.
type memoCache[V any] struct {
	mu       sync.Mutex
	capacity int
	bounded  *lru.Cache[string, V]
	flat     map[string]V
	hits     uint64
	misses   uint64
}

func newMemoCache[V any](capacity int) *memoCache[V] {
	c := &memoCache[V]{}
	c.reset(capacity)
	return c
}

// reset replaces the backing store, dropping all entries and counters.
func (c *memoCache[V]) reset(capacity int) {
	c.capacity = capacity
	c.hits = 0
	c.misses = 0
	c.bounded = nil
	c.flat = nil
	if capacity < 0 {
		c.capacity = Unbounded
		c.flat = map[string]V{}
		return
	}
	bounded, err := lru.New[string, V](capacity)
	if err != nil {
		panic(err)
	}
	c.bounded = bounded
}

func (c *memoCache[V]) getOrCompute(key string, fn func(string) (V, error)) (V, error) {
	c.mu.Lock()
	var v V
	var ok bool
	if c.flat != nil {
		v, ok = c.flat[key]
	} else {
		v, ok = c.bounded.Get(key)
	}
	if ok {
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	c.misses++
	c.mu.Unlock()

	// Computed outside the lock; results are deterministic, so a concurrent
	// duplicate computation stores the same value.
	v, err := fn(key)
	if err != nil {
		return v, err
	}
	c.mu.Lock()
	if c.flat != nil {
		c.flat[key] = v
	} else {
		c.bounded.Add(key, v)
	}
	c.mu.Unlock()
	return v, nil
}

func (c *memoCache[V]) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	size := 0
	if c.flat != nil {
		size = len(c.flat)
	} else {
		size = c.bounded.Len()
	}
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: size, Capacity: c.capacity}
}

func (c *memoCache[V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(c.capacity)
}

func (c *memoCache[V]) configure(capacity int) {
	if capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(capacity)
}

var (
	idnaEncodeCache   = newMemoCache[string](DefaultCacheSize)
	idnaDecodeCache   = newMemoCache[string](DefaultCacheSize)
	ipAddressCache    = newMemoCache[ipResult](DefaultCacheSize)
	hostValidateCache = newMemoCache[Host](DefaultCacheSize)
)

// CacheInfo reports statistics for the four host caches.
func CacheInfo() Info {
	return Info{
		IDNAEncode:   idnaEncodeCache.stats(),
		IDNADecode:   idnaDecodeCache.stats(),
		IPAddress:    ipAddressCache.stats(),
		HostValidate: hostValidateCache.stats(),
	}
}

// CacheClear drops all cached entries and resets the counters.
func CacheClear() {
	idnaEncodeCache.clear()
	idnaDecodeCache.clear()
	ipAddressCache.clear()
	hostValidateCache.clear()
}

// CacheConfigure resizes the caches. Resized caches start empty.
func CacheConfigure(s Sizes) {
	glog.V(2).Infof("reconfiguring host caches: %+v", s)
	idnaEncodeCache.configure(s.IDNAEncode)
	idnaDecodeCache.configure(s.IDNADecode)
	ipAddressCache.configure(s.IPAddress)
	hostValidateCache.configure(s.HostValidate)
}

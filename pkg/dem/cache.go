/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/dem

/*****************************************************************************************************************/

package dem

/*****************************************************************************************************************/

import (
	"container/list"
	"log"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/vptree"
)

/*****************************************************************************************************************/

// IOError wraps a tile load failure. Per the error-handling design, DEM I/O
// errors are logged and degrade to sea level rather than aborting the
// render, so this type exists for observability, not control flow.
type IOError struct {
	LatFloor, LonFloor int
	Err                error
}

/*****************************************************************************************************************/

func (e *IOError) Error() string {
	return e.Err.Error()
}

/*****************************************************************************************************************/

func (e *IOError) Unwrap() error { return e.Err }

/*****************************************************************************************************************/

type cellKey struct{ lat, lon int }

/*****************************************************************************************************************/

type cacheEntry struct {
	tile *Tile
	elem *list.Element
}

/*****************************************************************************************************************/

// tileOrigin adapts a resident tile's origin into a gonum/vptree.Comparable
// so the hot-set probe can do a nearest-neighbor lookup instead of a linear
// scan over resident tiles.
type tileOrigin struct {
	key cellKey
}

/*****************************************************************************************************************/

func (o tileOrigin) Distance(c vptree.Comparable) float64 {
	other := c.(tileOrigin)
	dLat := float64(o.key.lat - other.key.lat)
	dLon := float64(o.key.lon - other.key.lon)
	return dLat*dLat + dLon*dLon
}

/*****************************************************************************************************************/

// Cache serves bilinearly interpolated terrain height, backed by an
// injected Loader and bounded by an LRU of at most Capacity resident
// tiles. It is safe for concurrent readers; the miss path (tile load and
// admission) is exclusive. Eviction only drops the cache's own map entry;
// any reader already holding a *Tile pointer keeps it alive for the
// lifetime of its render, since Go's GC retains reachable tiles regardless
// of cache membership.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	loader   Loader
	index    *TileIndex
	logger   *log.Logger

	entries map[cellKey]*cacheEntry
	order   *list.List // front = most recently used

	hotsetMu sync.Mutex
	hotset   *vptree.Tree
	origins  []cellKey
}

/*****************************************************************************************************************/

// NewCache constructs a Cache with the given bounded capacity. index may be
// nil to disable the known-missing persistence layer. logger may be nil to
// discard degrade-to-sea-level diagnostics.
func NewCache(loader Loader, capacity int, index *TileIndex, logger *log.Logger) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}
	return &Cache{
		capacity: capacity,
		loader:   loader,
		index:    index,
		logger:   logger,
		entries:  make(map[cellKey]*cacheEntry),
		order:    list.New(),
	}
}

/*****************************************************************************************************************/

type discard struct{}

/*****************************************************************************************************************/

func (discard) Write(p []byte) (int, error) { return len(p), nil }

/*****************************************************************************************************************/

// Height returns the terrain height at (lat, lon), reading sea level (0)
// for any cell with no tile on disk.
func (c *Cache) Height(lat, lon float64) float64 {
	_, tile := c.lookupOrLoad(lat, lon)
	if tile == nil {
		return 0
	}
	return tile.HeightAt(lat, lon)
}

/*****************************************************************************************************************/

// TileHint is a worker-local pointer to the last tile a goroutine queried,
// letting repeated lookups against the same resident cell skip the cache's
// locking path entirely: once loaded, a *Tile is immutable and safe to read
// without synchronization, so a caller that already holds one for the
// right cell never needs to touch Cache.mu again. Each render worker holds
// one; the zero value is a valid, empty hint.
type TileHint struct {
	key  cellKey
	set  bool
	tile *Tile
}

/*****************************************************************************************************************/

// HeightHinted is Height, but consults and updates hint first. A hint hit
// (the previous lookup landed in the same whole-degree cell) never takes
// Cache.mu; a miss falls back to the normal locked lookup and refreshes
// hint for the next call.
func (c *Cache) HeightHinted(lat, lon float64, hint *TileHint) float64 {
	latFloor, lonFloor := Floor(lat, lon)
	key := cellKey{latFloor, lonFloor}

	if hint.set && hint.key == key {
		if hint.tile == nil {
			return 0
		}
		return hint.tile.HeightAt(lat, lon)
	}

	key, tile := c.lookupOrLoad(lat, lon)
	hint.key, hint.tile, hint.set = key, tile, true

	if tile == nil {
		return 0
	}
	return tile.HeightAt(lat, lon)
}

/*****************************************************************************************************************/

// SeedHint sets hint to the resident tile, if any, nearest (latFloor,
// lonFloor), used to warm a worker's hot-tile pointer before it starts
// tracing rays, from the hot-set index built on the admission path.
func (c *Cache) SeedHint(latFloor, lonFloor int, hint *TileHint) {
	lat, lon, ok := c.NearestResident(latFloor, lonFloor)
	if !ok {
		return
	}
	key := cellKey{lat, lon}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return
	}
	hint.key, hint.tile, hint.set = key, entry.tile, true
}

/*****************************************************************************************************************/

// lookupOrLoad returns the resident or newly-admitted tile for (lat, lon),
// taking the shared RLock on the hit path and the exclusive lock only on
// the miss/admission path.
func (c *Cache) lookupOrLoad(lat, lon float64) (cellKey, *Tile) {
	latFloor, lonFloor := Floor(lat, lon)
	key := cellKey{latFloor, lonFloor}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.touch(entry)
		return key, entry.tile
	}

	tile := c.load(key)

	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		// Another goroutine admitted it first; use that entry.
		c.mu.Unlock()
		c.touch(existing)
		return key, existing.tile
	}
	c.admit(key, tile)
	c.mu.Unlock()

	return key, tile
}

/*****************************************************************************************************************/

func (c *Cache) load(key cellKey) *Tile {
	if c.index != nil && c.index.IsKnownMissing(key.lat, key.lon) {
		return nil
	}

	tile, err := c.loader.Load(key.lat, key.lon)
	if err != nil {
		c.logger.Printf("dem: tile (%d,%d) failed to load, degrading to sea level: %v", key.lat, key.lon, err)
		return nil
	}
	if tile == nil && c.index != nil {
		c.index.MarkMissing(key.lat, key.lon)
	}
	return tile
}

/*****************************************************************************************************************/

// admit must be called with c.mu held for writing.
func (c *Cache) admit(key cellKey, tile *Tile) {
	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	elem := c.order.PushFront(key)
	c.entries[key] = &cacheEntry{tile: tile, elem: elem}
	c.rebuildHotset()
}

/*****************************************************************************************************************/

// evictOldestLocked must be called with c.mu held for writing.
func (c *Cache) evictOldestLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	key := back.Value.(cellKey)
	c.order.Remove(back)
	delete(c.entries, key)
}

/*****************************************************************************************************************/

func (c *Cache) touch(entry *cacheEntry) {
	c.mu.Lock()
	c.order.MoveToFront(entry.elem)
	c.mu.Unlock()
}

/*****************************************************************************************************************/

// rebuildHotset must be called with c.mu held for writing. The hot-set is
// a small nearest-neighbor index over resident tile origins, queried by
// worker-local prefetch logic in pkg/frame to decide which tile a thread
// should keep pinned locally.
func (c *Cache) rebuildHotset() {
	c.hotsetMu.Lock()
	defer c.hotsetMu.Unlock()

	origins := make([]cellKey, 0, len(c.entries))
	for k := range c.entries {
		origins = append(origins, k)
	}
	c.origins = origins

	if len(origins) == 0 {
		c.hotset = nil
		return
	}

	comparables := make([]vptree.Comparable, len(origins))
	for i, o := range origins {
		comparables[i] = tileOrigin{key: o}
	}
	tree, err := vptree.New(comparables, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		c.hotset = nil
		return
	}
	c.hotset = tree
}

/*****************************************************************************************************************/

// NearestResident returns the resident tile origin nearest to (latFloor,
// lonFloor), used to seed a worker's hot-set pointer. ok is false if no
// tile is currently resident.
func (c *Cache) NearestResident(latFloor, lonFloor int) (lat, lon int, ok bool) {
	c.hotsetMu.Lock()
	tree := c.hotset
	c.hotsetMu.Unlock()

	if tree == nil {
		return 0, 0, false
	}
	nearest, _ := tree.Nearest(tileOrigin{key: cellKey{latFloor, lonFloor}})
	origin, isOrigin := nearest.(tileOrigin)
	if !isOrigin {
		return 0, 0, false
	}
	return origin.key.lat, origin.key.lon, true
}

/*****************************************************************************************************************/

// Len reports the number of tiles currently resident, for tests and stats.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

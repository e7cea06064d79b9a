package api

import (
	"container/list"
	"sync"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/andreiashu/korloc"
)

// nearestPrecision is the geohash length used for cache keys, about 1.2km x 0.6km.
// Positions inside one cell share an answer.
const nearestPrecision = 6

// nearestKey returns the cache key for a position.
func nearestKey(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, nearestPrecision)
}

type nearestEntry struct {
	key   string
	loc   korloc.Location
	found bool
	exp   time.Time
}

// nearestCache is an LRU with per-entry TTL in front of Index.Nearest.
// Misses (nothing within range) are cached too.
//
// Every position inside one geohash cell gets the answer computed for the
// first position looked up there. Near the edge of Nearest's range, or where
// two places are nearly equidistant, that can differ from what Nearest
// returns for the exact position.
type nearestCache struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	now  func() time.Time
	lst  *list.List
	dict map[string]*list.Element
}

func newNearestCache(capacity int, ttl time.Duration) *nearestCache {
	return &nearestCache{
		cap:  capacity,
		ttl:  ttl,
		now:  time.Now,
		lst:  list.New(),
		dict: make(map[string]*list.Element),
	}
}

func (c *nearestCache) get(k string) (loc korloc.Location, found, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, hit := c.dict[k]
	if !hit {
		return korloc.Location{}, false, false
	}
	it := e.Value.(nearestEntry)
	if !c.now().Before(it.exp) {
		c.lst.Remove(e)
		delete(c.dict, k)
		return korloc.Location{}, false, false
	}
	c.lst.MoveToFront(e)
	return it.loc, it.found, true
}

func (c *nearestCache) set(k string, loc korloc.Location, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := nearestEntry{key: k, loc: loc, found: found, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(nearestEntry).key)
		c.lst.Remove(back)
	}
}

func (c *nearestCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

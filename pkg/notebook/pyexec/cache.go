package pyexec

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// programCache is a thread-safe LRU of compiled expr programs keyed by
// source text, the same shape as mbflow's ConditionCache generalized from
// one boolean condition per edge to one expression per statement.
type programCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	mu       sync.Mutex
}

type programCacheEntry struct {
	key     string
	program *vm.Program
}

func newProgramCache(capacity int) *programCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &programCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func (c *programCache) get(source string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.cache[source]; ok {
		c.lruList.MoveToFront(el)
		return el.Value.(*programCacheEntry).program, true
	}
	return nil, false
}

func (c *programCache) put(source string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.cache[source]; ok {
		c.lruList.MoveToFront(el)
		el.Value.(*programCacheEntry).program = program
		return
	}
	el := c.lruList.PushFront(&programCacheEntry{key: source, program: program})
	c.cache[source] = el
	if c.lruList.Len() > c.capacity {
		oldest := c.lruList.Back()
		if oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.cache, oldest.Value.(*programCacheEntry).key)
		}
	}
}

// compile returns the cached program for source, compiling (and caching)
// it against env's current shape on a miss. Expressions are re-evaluated
// against a fresh map each call, so a cache hit from an earlier statement
// with different bindings is still valid: expr resolves identifiers
// dynamically against map[string]any envs rather than baking them in.
func (c *programCache) compile(source string, env map[string]any) (*vm.Program, error) {
	if program, ok := c.get(source); ok {
		return program, nil
	}
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, err
	}
	c.put(source, program)
	return program, nil
}

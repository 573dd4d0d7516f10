package errcode

import (
	"fmt"
	"sort"
	"sync"
)

// Registry guards against two errors sharing one code
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

var defaultRegistry = NewRegistry()

// Register records err in the default registry and returns it.
// Intended for package-level var blocks; panics on conflict.
func Register(err *LayeredError) *LayeredError {
	return defaultRegistry.Register(err)
}

// Registered lists every code known to the default registry
func Registered() []int {
	return defaultRegistry.Codes()
}

// Register panics when the code is already taken by a different module:msgKey.
// Re-registering the same error is a no-op.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok && existing != key {
		panic(fmt.Sprintf("errcode: code %d already registered as %s, cannot register %s", err.Code(), existing, key))
	}
	r.codes[err.Code()] = key
	return err
}

// Lookup returns the module:msgKey registered for code
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.codes[code]
	return key, ok
}

// Codes returns registered codes in ascending order
func (r *Registry) Codes() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.codes))
	for c := range r.codes {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

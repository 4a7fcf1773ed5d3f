package inference

import (
	"encoding/json"
	"sync"
)

// requestCache stores raw endpoint responses keyed by the canonical request
// serialization. Eviction is FIFO over insertion order, not LRU: once the
// cache exceeds its capacity the single oldest insertion is dropped.
type requestCache struct {
	mu       sync.Mutex
	entries  map[string]json.RawMessage
	order    []string
	capacity int
}

func newRequestCache(capacity int) *requestCache {
	return &requestCache{
		entries:  make(map[string]json.RawMessage),
		capacity: capacity,
	}
}

// cacheKey canonicalizes (model, inputs, parameters) into a stable string.
// The second return value is false when the inputs cannot be serialized, in
// which case the request is treated as uncacheable.
func cacheKey(model string, inputs any, parameters map[string]any) (string, bool) {
	payload := struct {
		Model      string         `json:"model"`
		Inputs     any            `json:"inputs"`
		Parameters map[string]any `json:"parameters"`
	}{Model: model, Inputs: inputs, Parameters: parameters}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (c *requestCache) get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.entries[key]
	return value, ok
}

func (c *requestCache) put(key string, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value

	if len(c.entries) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *requestCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]json.RawMessage)
	c.order = nil
}

func (c *requestCache) stats() (size, capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries), c.capacity
}

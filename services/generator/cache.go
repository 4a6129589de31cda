package generator

import "sync"

// requestCache holds resolved columns for exactly one request
type requestCache struct {
	mu      sync.Mutex
	rows    int
	columns map[string][]any
}

func newRequestCache(rows int) *requestCache {
	return &requestCache{rows: rows, columns: make(map[string][]any)}
}

// set stores a column. A later set for the same name overwrites the earlier one.
func (c *requestCache) set(name string, values []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns[name] = values
}

// value returns the cell for name at row, or "" when absent
func (c *requestCache) value(name string, row int) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	col, ok := c.columns[name]
	if !ok || row >= len(col) {
		return ""
	}
	return col[row]
}

package viewstate

import "sync"

// Token identifies one issued request. Larger tokens are newer.
type Token uint64

// Generations hands out monotonically increasing request tokens and applies a
// response only while its token is still the newest issued.
type Generations struct {
	mu      sync.Mutex
	current Token
}

// Next issues a new token, invalidating every earlier one.
func (g *Generations) Next() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// Current returns the newest issued token.
func (g *Generations) Current() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Apply runs fn under the lock if token is still current and reports whether
// it ran. Stale responses are dropped.
func (g *Generations) Apply(token Token, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.current {
		return false
	}
	fn()
	return true
}

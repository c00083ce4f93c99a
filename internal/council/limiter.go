package council

// LimitConfig carries the configured debate cycle caps.
type LimitConfig struct {
	DefaultLimit  int
	ExtendedLimit int
}

// ResolveDebateLimit returns the applicable cap: the extended cap when the
// session requested extended debate at creation, the default cap otherwise.
func ResolveDebateLimit(cfg LimitConfig, extendedRequested bool) int {
	if extendedRequested {
		return cfg.ExtendedLimit
	}
	return cfg.DefaultLimit
}

// HasReachedDebateLimit reports whether currentCycles has reached limit.
// A limit of zero counts as already reached, which is what stops debate
// before any cycle runs at all.
func HasReachedDebateLimit(currentCycles, limit int) bool {
	return currentCycles >= limit
}

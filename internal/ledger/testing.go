package ledger

// SeedBalance is a test helper that seeds a wallet balance when using the in-memory gateway.
func SeedBalance(g Gateway, ownerID string, amount int64) {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[ownerID] = amount
	}
}

// Records returns a copy of the audit trail when using the in-memory gateway.
func Records(g Gateway) []Record {
	mem, ok := g.(*inMemoryGateway)
	if !ok {
		return nil
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	out := make([]Record, len(mem.records))
	copy(out, mem.records)
	return out
}

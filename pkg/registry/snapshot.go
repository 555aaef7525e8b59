package registry

import "sync"

// Snapshot provides a thread-safe holder around a Registry that can be
// atomically replaced. Hot reload rebuilds the whole registry and swaps it
// here; readers never see a partially built state.
type Snapshot struct {
	mu     sync.RWMutex
	reg    *Registry
	report *Report
}

// NewSnapshot creates a holder around an initial registry.
func NewSnapshot(reg *Registry, report *Report) *Snapshot {
	return &Snapshot{reg: reg, report: report}
}

// Registry returns the current registry.
func (s *Snapshot) Registry() *Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg
}

// Report returns the report of the load that produced the current registry.
func (s *Snapshot) Report() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Swap atomically replaces the registry and its report.
func (s *Snapshot) Swap(reg *Registry, report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg = reg
	s.report = report
}

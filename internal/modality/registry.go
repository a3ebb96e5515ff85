package modality

import (
	"fmt"
	"sync"

	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
)

// Registry hands out one Truncation instance per finite grade.
type Registry struct {
	mu        sync.Mutex
	instances map[grade.Grade]*Truncation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[grade.Grade]*Truncation)}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// ForGrade returns the truncation modality at n, building it on first use.
func (r *Registry) ForGrade(n grade.Grade) (*Truncation, error) {
	if !n.IsFinite() {
		return nil, fmt.Errorf("%w: %s (finite and infinite truncation are separate theories)", ErrUnsupportedGrade, n)
	}
	if n < grade.MinusTwo {
		return nil, fmt.Errorf("%w: %s", grade.ErrInvalidGrade, n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.instances[n]; ok {
		return m, nil
	}
	m := newTruncation(n)
	r.instances[n] = m
	logging.Modality("registered modality %s", m.Name())
	return m, nil
}

// Len is the number of instances built so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// ForGrade uses the default registry.
func ForGrade(n grade.Grade) (*Truncation, error) {
	return Default.ForGrade(n)
}

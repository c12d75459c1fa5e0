package drill

import (
	"fmt"

	"github.com/quantlab/incident-drill/internal/domain"
)

// Gate enforces the monotonic, ordered unlocking of workflow phases.
// A fresh gate has Overview and Detect unlocked with Overview current.
// Unlocking never reverses, and the current phase is always unlocked
// by construction.
type Gate struct {
	enabled map[domain.Phase]bool
	current domain.Phase
}

// NewGate creates a gate at the start of the workflow.
func NewGate() *Gate {
	return &Gate{
		enabled: map[domain.Phase]bool{
			domain.PhaseOverview: true,
			domain.PhaseDetect:   true,
		},
		current: domain.PhaseOverview,
	}
}

// Clone returns an independent copy of the gate.
func (g *Gate) Clone() *Gate {
	enabled := make(map[domain.Phase]bool, len(g.enabled))
	for p, v := range g.enabled {
		enabled[p] = v
	}
	return &Gate{enabled: enabled, current: g.current}
}

// Current returns the phase the cursor points at.
func (g *Gate) Current() domain.Phase {
	return g.current
}

// IsEnabled reports whether p has been unlocked.
func (g *Gate) IsEnabled(p domain.Phase) bool {
	return g.enabled[p]
}

// Enabled returns the unlocked phases in workflow order.
func (g *Gate) Enabled() []domain.Phase {
	var out []domain.Phase
	for _, p := range domain.Phases() {
		if g.enabled[p] {
			out = append(out, p)
		}
	}
	return out
}

// Advance completes the current phase and moves to target. It fails with
// ErrInvalidTransition unless target is the immediate successor of the
// current phase; phases cannot be skipped. On success target is unlocked
// and becomes current in a single step.
func (g *Gate) Advance(target domain.Phase) error {
	next, ok := g.current.Next()
	if !ok || next != target {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.current, target)
	}
	g.enabled[target] = true
	g.current = target
	return nil
}

// Select moves the cursor to an already-unlocked phase without changing
// any unlock flags. Selecting a locked or unknown phase fails with
// ErrPhaseNotEnabled.
func (g *Gate) Select(p domain.Phase) error {
	if !g.enabled[p] {
		return fmt.Errorf("%w: %s", ErrPhaseNotEnabled, p)
	}
	g.current = p
	return nil
}

package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Phase is one named stage of the incident response workflow.
type Phase string

const (
	PhaseOverview    Phase = "overview"
	PhaseDetect      Phase = "detect"
	PhaseContain     Phase = "contain"
	PhaseInvestigate Phase = "investigate"
	PhaseRemediate   Phase = "remediate"
	PhaseDocument    Phase = "document"
	PhasePrevent     Phase = "prevent"
	PhaseFinalReport Phase = "final-report"
)

// phaseOrder is the total, fixed ordering of the workflow.
// Later phases unlock only after earlier ones are completed.
var phaseOrder = []Phase{
	PhaseOverview,
	PhaseDetect,
	PhaseContain,
	PhaseInvestigate,
	PhaseRemediate,
	PhaseDocument,
	PhasePrevent,
	PhaseFinalReport,
}

// Phases returns the workflow phases in order. The returned slice is a copy.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// ParsePhase converts a URL/JSON slug into a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown phase: %q", s)
	}
	return p, nil
}

// IsValid reports whether p is one of the workflow phases.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// Index returns the position of p in the workflow ordering, or -1.
func (p Phase) Index() int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// Next returns the immediate successor of p. ok is false for the last
// phase and for unknown phases.
func (p Phase) Next() (next Phase, ok bool) {
	i := p.Index()
	if i < 0 || i+1 >= len(phaseOrder) {
		return "", false
	}
	return phaseOrder[i+1], true
}

var phaseTitleCaser = cases.Title(language.English)

// Label returns the human-readable phase name, e.g. "Final Report".
func (p Phase) Label() string {
	return phaseTitleCaser.String(strings.ReplaceAll(string(p), "-", " "))
}

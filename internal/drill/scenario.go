// Package drill implements the core of the AI trading-model incident
// response drill: the phase gate, the scenario record transitions, the
// formal report formatter and the session service the HTTP layer drives.
//
// The scenario itself is fixed: a Tier 1 reinforcement-learning trading
// agent whose rolling AUC collapsed after a market regime shift. Every
// figure shown to the trainee is a curated literal, not a computation
// over live data; the single derived value is the containment timestamp.
package drill

import (
	"fmt"
	"time"

	"github.com/quantlab/incident-drill/internal/domain"
)

// IncidentID identifies the drill scenario incident.
const IncidentID = "AI-INC-2024-007"

const (
	modelName      = "Trading RL Agent v1.2"
	modelTier      = 1
	detectedBy     = "Monitoring Dashboard (AUC RED alert)"
	alertTrigger   = "Rolling AUC dropped below 0.70 threshold"
	aucBaseline    = 0.58
	aucCurrent     = 0.42
	timeToContain  = "2h 15m"
	impactEstimate = "$2.3M additional losses vs backup strategy over degradation period"
)

// containmentDelay is the fixed interval between the alert and the
// kill-switch confirmation in the scenario.
const containmentDelay = 2*time.Hour + 15*time.Minute

// alertTime is the logged alert timestamp: 2024-11-01 06:15:00.
var alertTime = time.Date(2024, time.November, 1, 6, 15, 0, 0, time.UTC)

// NewIncident builds the incident record as it exists the moment the
// alert fires: identity plus the Detect section. Later sections are
// populated one per phase by the transitions below.
func NewIncident() *domain.Incident {
	return &domain.Incident{
		ID:           IncidentID,
		Model:        modelName,
		Tier:         modelTier,
		Severity:     domain.SeverityHigh,
		DateDetected: alertTime.Format(domain.DateLayout),
		DetectedBy:   detectedBy,
		Detect: &domain.DetectSection{
			Trigger:        alertTrigger,
			AUCBaseline:    aucBaseline,
			AUCCurrent:     aucCurrent,
			AlertTimestamp: alertTime,
			Notified: []string{
				"AI Governance Officer",
				"Head of Trading",
				"Model Risk Management",
			},
		},
	}
}

// Contain records the kill-switch activation and fallback revert. The
// containment timestamp is derived from the alert timestamp plus the
// fixed containment delay. Requires the Detect section.
func Contain(inc *domain.Incident) error {
	if inc.Detect == nil {
		return fmt.Errorf("%w: phase_1_detect", ErrPreconditionNotMet)
	}

	inc.Contain = &domain.ContainSection{
		Action:                "Kill switch activated - model frozen",
		Timestamp:             inc.Detect.AlertTimestamp.Add(containmentDelay),
		TimeToContain:         timeToContain,
		Fallback:              "Reverted to rule-based momentum strategy (validated backup)",
		PositionsReviewed:     "All open positions from last 5 trading days reviewed by senior trader",
		EstimatedClientImpact: impactEstimate,
	}
	return nil
}

// Investigate records the root-cause findings. The financial impact
// figure is carried over verbatim from the containment estimate, never
// recomputed. Requires the Contain section.
func Investigate(inc *domain.Incident) error {
	if inc.Contain == nil {
		return fmt.Errorf("%w: phase_2_contain", ErrPreconditionNotMet)
	}

	inc.Investigate = &domain.InvestigateSection{
		RootCause: "Market regime shift: Fed rate cut cycle began in September. " +
			"RL agent trained on rate-hiking regime (2022-2024) learned patterns that reversed " +
			"in the new easing cycle. Momentum signals that worked in tightening became contrarian in easing.",
		ToolsUsed: []string{
			"Audit log analysis (D4-T1-C3): confirmed model recommendations were systematically wrong-directional from Oct 15 onward",
			"SHAP analysis (D4-T3-C1): momentum feature SHAP values flipped sign, confirming regime-dependent behavior",
			"Distribution shift test (D4-T1-C1): PSI = 0.42 on input features, confirming major population shift",
		},
		Timeline:   "Degradation began Oct 15 (rate cut announcement). Dashboard alerted Nov 1 (17 calendar days exposure).",
		WhyDelayed: "Rolling window (90-day) smoothed the AUC drop. A shorter 30-day window would have alerted 10 days earlier.",
		ClientImpact: domain.ClientImpact{
			TotalDecisionsAffected: "N/A (performance incident, financial impact is aggregate)",
			EstimatedUnfairDenials: "N/A (performance incident)",
			GroupsAffected:         "N/A (performance incident)",
			FinancialImpact:        inc.Contain.EstimatedClientImpact,
		},
	}
	return nil
}

// Remediate records the proposed fixes and their validation gates.
func Remediate(inc *domain.Incident) error {
	inc.Remediate = &domain.RemediateSection{
		Actions: []string{
			"Retrain RL agent including 2024 rate-cut data",
			"Add regime-detection layer: if regime indicator flips, auto-switch to conservative mode",
			"Reduce rolling AUC window from 90 to 30 days for faster detection",
			"Add regime-specific backtesting before redeployment",
		},
		Revalidation:      "Full D4-T1-C1 stress test + D4-T1-C2 validation required before reactivation",
		EstimatedTimeline: "30 days to retrain + 15 days for validation",
	}
	return nil
}

// Document records the report metadata, stamping the given report date.
func Document(inc *domain.Incident, reportDate time.Time) error {
	inc.Document = &domain.DocumentSection{
		ReportDate:  reportDate.Format(domain.DateLayout),
		PresentedTo: "AI Governance Committee, Head of Trading, Model Risk Management",
		ClientNotification: "Affected portfolio clients notified that model-assisted trading was temporarily suspended. " +
			"Performance impact disclosed in quarterly letter.",
		RegulatoryNotification: "Internal documentation only (no regulatory filing required for this incident type " +
			"under current rules, but logged for examination readiness).",
	}
	return nil
}

// PreventRecurrence records the durable control enhancements and the
// governance update proposed after the incident.
func PreventRecurrence(inc *domain.Incident) error {
	inc.Prevent = &domain.PreventSection{
		ControlEnhancements: []string{
			"Shorter monitoring window (90 -> 30 day rolling AUC)",
			"Regime-detection trigger added to monitoring dashboard",
			"Mandatory regime-change stress test added to validation protocol",
			"Kill-switch automation: auto-freeze if AUC < 0.50 for 3 consecutive days",
			"Quarterly review of backup strategy adequacy",
		},
		GovernanceUpdate: "Updated tiering: RL trading models now require regime-aware validation as standard for Tier 1 approval",
	}
	return nil
}

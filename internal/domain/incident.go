// Package domain contains the shared types of the incident drill:
// the incident record aggregate, the workflow phases and the
// monitoring policy the scenario is graded against.
package domain

import "time"

// TimestampLayout is the wall-clock layout used across the record and
// the formal report.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date layout used for detection and report dates.
const DateLayout = "2006-01-02"

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// IsValid reports whether s is a known severity level.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Incident is the aggregate record built up across the workflow phases.
// Each phase section is populated by exactly one transition and stays nil
// until the corresponding phase completes.
type Incident struct {
	ID           string   `json:"incident_id"`
	Model        string   `json:"model"`
	Tier         int      `json:"tier"`
	Severity     Severity `json:"severity"`
	DateDetected string   `json:"date_detected"`
	DetectedBy   string   `json:"detected_by"`

	Detect      *DetectSection      `json:"phase_1_detect,omitempty"`
	Contain     *ContainSection     `json:"phase_2_contain,omitempty"`
	Investigate *InvestigateSection `json:"phase_3_investigate,omitempty"`
	Remediate   *RemediateSection   `json:"phase_4_remediate,omitempty"`
	Document    *DocumentSection    `json:"phase_5_document,omitempty"`
	Prevent     *PreventSection     `json:"phase_6_prevent,omitempty"`
}

// DetectSection captures the alert as logged by the monitoring system.
type DetectSection struct {
	Trigger        string    `json:"trigger"`
	AUCBaseline    float64   `json:"auc_baseline"`
	AUCCurrent     float64   `json:"auc_current"`
	AlertTimestamp time.Time `json:"alert_timestamp"`
	Notified       []string  `json:"notified"`
}

// ContainSection records the kill-switch action and the incremental
// impact estimate produced during containment.
type ContainSection struct {
	Action                string    `json:"action"`
	Timestamp             time.Time `json:"timestamp"`
	TimeToContain         string    `json:"time_to_contain"`
	Fallback              string    `json:"fallback"`
	PositionsReviewed     string    `json:"positions_reviewed"`
	EstimatedClientImpact string    `json:"estimated_client_impact"`
}

// InvestigateSection records the root-cause analysis findings.
type InvestigateSection struct {
	RootCause    string       `json:"root_cause"`
	ToolsUsed    []string     `json:"tools_used"`
	Timeline     string       `json:"timeline"`
	WhyDelayed   string       `json:"why_delayed"`
	ClientImpact ClientImpact `json:"client_impact"`
}

// ClientImpact quantifies who was affected and by how much. For a pure
// performance incident only the financial figure is meaningful; it is
// carried over verbatim from the containment estimate, never recomputed.
type ClientImpact struct {
	TotalDecisionsAffected string `json:"total_decisions_affected"`
	EstimatedUnfairDenials string `json:"estimated_unfair_denials"`
	GroupsAffected         string `json:"groups_affected"`
	FinancialImpact        string `json:"financial_impact"`
}

// RemediateSection lists the proposed fixes and their validation gates.
type RemediateSection struct {
	Actions           []string `json:"actions"`
	Revalidation      string   `json:"revalidation"`
	EstimatedTimeline string   `json:"estimated_timeline"`
}

// DocumentSection holds the formal report metadata.
type DocumentSection struct {
	ReportDate             string `json:"report_date"`
	PresentedTo            string `json:"presented_to"`
	ClientNotification     string `json:"client_notification"`
	RegulatoryNotification string `json:"regulatory_notification"`
}

// PreventSection lists durable control enhancements and governance changes.
type PreventSection struct {
	ControlEnhancements []string `json:"control_enhancements"`
	GovernanceUpdate    string   `json:"governance_update"`
}

package drill

import (
	"fmt"
	"strings"

	"github.com/quantlab/incident-drill/internal/domain"
)

// preventPlaceholder is emitted when the report is generated before the
// prevention phase completed. All other sections are mandatory.
const preventPlaceholder = "  - No specific preventive measures documented yet."

var reportRule = strings.Repeat("=", 80)

// signOffRoles are the four sign-off lines of the formal report.
var signOffRoles = []string{
	"AI Governance Officer: _______________________ Date: ____________",
	"CRO: ___________________________________ Date: ____________",
	"CLO: ___________________________________ Date: ____________",
	"Board Risk Committee Chair: _______________ Date: ____________",
}

// FormatReport renders the committee-facing incident report as plain
// text. Every section except Prevent must be populated; a missing one
// fails with ErrIncompleteRecord naming the section. A missing Prevent
// section degrades to a placeholder line so a draft can be produced
// before the prevention phase completes.
func FormatReport(inc *domain.Incident) (string, error) {
	for _, s := range []struct {
		name    string
		present bool
	}{
		{"phase_1_detect", inc.Detect != nil},
		{"phase_2_contain", inc.Contain != nil},
		{"phase_3_investigate", inc.Investigate != nil},
		{"phase_4_remediate", inc.Remediate != nil},
		{"phase_5_document", inc.Document != nil},
	} {
		if !s.present {
			return "", fmt.Errorf("%w: %s", ErrIncompleteRecord, s.name)
		}
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(reportRule)
	line("FORMAL AI MODEL INCIDENT REPORT - %s", inc.ID)
	line(reportRule)
	line("Report Date: %s", inc.Document.ReportDate)
	line("Presented To: %s", inc.Document.PresentedTo)

	line("\n--- INCIDENT OVERVIEW ---")
	line("Incident ID: %s", inc.ID)
	line("Model: %s (Tier %d)", inc.Model, inc.Tier)
	line("Severity: %s", inc.Severity)
	line("Date Detected: %s", inc.DateDetected)
	line("Detected By: %s", inc.DetectedBy)

	line("\n--- TIMELINE ---")
	line("Detected: %s", inc.Detect.AlertTimestamp.Format(domain.TimestampLayout))
	line("Contained: %s (Time to Contain: %s)",
		inc.Contain.Timestamp.Format(domain.TimestampLayout), inc.Contain.TimeToContain)
	if first, _, ok := strings.Cut(inc.Investigate.Timeline, "."); ok {
		line("Degradation Started: %s", first)
	}
	line("Estimated Remediation Timeline: %s", inc.Remediate.EstimatedTimeline)

	line("\n--- ROOT CAUSE ---")
	line("%s", inc.Investigate.RootCause)
	line("Diagnostic Tools Used:")
	for _, tool := range inc.Investigate.ToolsUsed {
		line("  - %s", tool)
	}
	line("Reason for Delayed Alert: %s", inc.Investigate.WhyDelayed)

	line("\n--- CLIENT IMPACT ---")
	line("Estimated Financial Impact: %s", inc.Investigate.ClientImpact.FinancialImpact)
	line("Client Notification: %s", inc.Document.ClientNotification)

	line("\n--- REMEDIATION PLAN ---")
	for _, action := range inc.Remediate.Actions {
		line("  - %s", action)
	}
	line("Revalidation: %s", inc.Remediate.Revalidation)

	line("\n--- PREVENTIVE MEASURES (Proposed) ---")
	if inc.Prevent != nil {
		for _, enhancement := range inc.Prevent.ControlEnhancements {
			line("  - %s", enhancement)
		}
		line("Governance Update: %s", inc.Prevent.GovernanceUpdate)
	} else {
		line(preventPlaceholder)
	}

	line("\n--- REGULATORY STATUS ---")
	line("Regulatory Notification: %s", inc.Document.RegulatoryNotification)

	line("\n--- SIGN-OFF ---")
	for _, role := range signOffRoles {
		line(role)
	}
	line(reportRule)

	return b.String(), nil
}

// ReportFilename names the downloadable report artifact for an incident.
func ReportFilename(inc *domain.Incident) string {
	return fmt.Sprintf("incident_report_%s.txt", inc.ID)
}

// Summary is the executive digest shown above the full report.
type Summary struct {
	Incident          string `json:"incident"`
	PerformanceSignal string `json:"performance_signal"`
	Containment       string `json:"containment"`
	RootCause         string `json:"root_cause"`
	Prevention        string `json:"prevention"`
}

// Summarize builds the executive summary. Detect, Contain and
// Investigate contribute their figures when populated, with N/A
// substituted otherwise; the Prevention line is the static digest of
// the proposed controls regardless of record state. Unlike FormatReport
// it never fails: a partial digest is still useful mid-drill.
func Summarize(inc *domain.Incident) Summary {
	s := Summary{
		Incident:    fmt.Sprintf("%s • Model: %s (Tier %d)", inc.ID, inc.Model, inc.Tier),
		Containment: "Kill switch + fallback activated • Estimated incremental impact: N/A",
		RootCause:   "N/A",
		Prevention:  "Tightened monitoring + regime-aware validation + governance update",
	}
	if inc.Detect != nil {
		s.PerformanceSignal = fmt.Sprintf("AUC fell from %.2f (validated) to %.2f (live)",
			inc.Detect.AUCBaseline, inc.Detect.AUCCurrent)
	}
	if inc.Contain != nil {
		s.Containment = fmt.Sprintf("Kill switch + fallback activated • Estimated incremental impact: %s",
			inc.Contain.EstimatedClientImpact)
	}
	if inc.Investigate != nil {
		s.RootCause = inc.Investigate.RootCause
	}
	return s
}

package drill

import "github.com/quantlab/incident-drill/internal/domain"

// Formula is methodology documentation shown to the trainee. The
// expressions are display text only; the service never evaluates them.
type Formula struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Notes      string `json:"notes"`
}

// TrendPoint is one point of the illustrative AUC time series.
type TrendPoint struct {
	Date string  `json:"date"`
	AUC  float64 `json:"auc"`
}

// Checkpoint is a yes/no comprehension question attached to a phase.
// The correct answer and explanations stay server-side; grading goes
// through Service.GradeCheckpoint.
type Checkpoint struct {
	Question   string `json:"question"`
	TrueLabel  string `json:"true_label"`
	FalseLabel string `json:"false_label"`

	Correct              bool   `json:"-"`
	ExplanationCorrect   string `json:"-"`
	ExplanationIncorrect string `json:"-"`
}

// CheckpointResult is the graded outcome of a checkpoint answer.
type CheckpointResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Guide is the curriculum content for one phase: what the responder is
// trying to accomplish and the evidence a committee would expect. The
// presentation host renders it however it likes.
type Guide struct {
	Phase                domain.Phase `json:"phase"`
	Label                string       `json:"label"`
	Objective            string       `json:"objective"`
	Narrative            []string     `json:"narrative,omitempty"`
	DecisionTranslations []string     `json:"decision_translations,omitempty"`
	EvidencePack         []string     `json:"evidence_pack,omitempty"`
	Formulas             []Formula    `json:"formulas,omitempty"`
	AUCTrend             []TrendPoint `json:"auc_trend,omitempty"`
	Checkpoint           *Checkpoint  `json:"checkpoint,omitempty"`
}

// Guides returns the curriculum for all phases in workflow order.
func Guides() []Guide {
	out := make([]Guide, 0, len(phaseGuides))
	for _, p := range domain.Phases() {
		if g, ok := phaseGuides[p]; ok {
			out = append(out, g)
		}
	}
	return out
}

// GuideFor returns the curriculum content for one phase.
func GuideFor(p domain.Phase) (Guide, bool) {
	g, ok := phaseGuides[p]
	return g, ok
}

var phaseGuides = map[domain.Phase]Guide{
	domain.PhaseOverview: {
		Phase:     domain.PhaseOverview,
		Label:     domain.PhaseOverview.Label(),
		Objective: "Understand the disciplined, phase-based decision workflow: capital protection first, causal proof second, controlled change and governance last.",
		Narrative: []string{
			"Detect: Confirm the signal is real and policy-relevant.",
			"Contain: Stop the bleed; revert to validated fallback.",
			"Investigate: Prove cause (regime shift vs data/process break).",
			"Remediate: Restore edge without creating new risk.",
			"Document: Make it audit-ready.",
			"Prevent: Reduce detection lag and regime risk.",
			"Deliverable: Final Incident Report (board/committee-ready).",
		},
	},
	domain.PhaseDetect: {
		Phase:     domain.PhaseDetect,
		Label:     domain.PhaseDetect.Label(),
		Objective: "Determine whether the monitoring signal meets escalation/containment policy and whether the metric is interpretable for decisions.",
		Narrative: []string{
			"AUC is treated as a proxy for directional edge: the ability to separate good vs bad trades.",
			"The logged trigger mentions 0.70 while the approved policy uses RED=0.50 and YELLOW=0.60. Rely on the current approved policy and document the inconsistency as a control gap.",
			"The level relative to thresholds matters more than small day-to-day noise.",
		},
		DecisionTranslations: []string{
			"If Live AUC breaches RED, assume the model's edge is impaired and initiate containment (kill switch / fallback).",
			"If Live AUC is YELLOW but not RED, escalate monitoring frequency and begin drift diagnostics before losses compound.",
		},
		EvidencePack: []string{
			"AUC trend chart with thresholds annotated",
			"Baseline vs current window definition (dates, sample size assumptions)",
			"Alert log showing trigger text (and note any documentation mismatch)",
		},
		AUCTrend: []TrendPoint{
			{Date: "2024-10-25", AUC: 0.59},
			{Date: "2024-10-28", AUC: 0.58},
			{Date: "2024-10-31", AUC: 0.55},
			{Date: "2024-11-01", AUC: aucCurrent},
		},
		Checkpoint: &Checkpoint{
			Question:             "Does Live AUC (0.42) meet the RED containment threshold (0.50)?",
			TrueLabel:            "Yes, contain now",
			FalseLabel:           "No, just monitor",
			Correct:              true,
			ExplanationCorrect:   "Correct: Live AUC is below the RED threshold, so containment is justified to protect capital.",
			ExplanationIncorrect: "Recheck: Live AUC is below the RED threshold in this policy, which triggers containment.",
		},
	},
	domain.PhaseContain: {
		Phase:     domain.PhaseContain,
		Label:     domain.PhaseContain.Label(),
		Objective: "Prevent additional harm while investigation runs. For Tier 1 systems the containment target is under 4 hours.",
		Narrative: []string{
			"Freeze new model-driven trading decisions (kill switch).",
			"Revert to a validated fallback strategy.",
			"Produce an incremental impact estimate with explicit assumptions, no unexplained numbers.",
		},
		DecisionTranslations: []string{
			"If time-to-contain exceeds target, treat it as a control failure and escalate to governance.",
			"If incremental impact is material, prepare client communication and expand exposure review beyond the model itself.",
		},
		EvidencePack: []string{
			"Timestamped kill-switch confirmation",
			"Fallback activation proof (order routing / position constraints)",
			"Incremental loss estimate methodology + assumptions",
		},
		Formulas: []Formula{{
			Name:       "Financial Impact",
			Expression: "Financial Impact = Cumulative Losses before Containment - Cumulative Losses under Fallback Strategy",
			Notes: "The estimated additional losses due to the model's degradation: observed cumulative losses while the " +
				"model was underperforming minus the theoretical losses had a validated backup strategy been in place over the same period.",
		}},
	},
	domain.PhaseInvestigate: {
		Phase:     domain.PhaseInvestigate,
		Label:     domain.PhaseInvestigate.Label(),
		Objective: "Separate facts from interpretation and produce evidence that can withstand skepticism: regime shift, data/process break, or model behavior instability.",
		Narrative: []string{
			"Fact: audit log shows recommendations systematically wrong-directional from Oct 15 onward.",
			"Fact: PSI = 0.42 on inputs indicates a material population shift.",
			"Fact: momentum feature contribution flipped sign, suggesting regime-dependent behavior.",
			"Interpretation (hypothesis to validate): the market regime shift changed the payoff of momentum-like signals.",
		},
		DecisionTranslations: []string{
			"If PSI is material and feature relationships flip, assume the model's learned relationships are not stable in the new environment.",
			"Do not redeploy purely on recent fit; require regime-aware validation to avoid overfitting the last regime.",
		},
		EvidencePack: []string{
			"PSI value + bands + feature contributors (top-5) [in production]",
			"Audit log excerpt showing wrong-direction calls (timestamped)",
			"Feature behavior summary (sign flip table / SHAP plot in production)",
		},
		Formulas: []Formula{{
			Name:       "Population Stability Index",
			Expression: "PSI = sum_i ((Actual_Prop_i - Expected_Prop_i) * ln(Actual_Prop_i / Expected_Prop_i))",
			Notes: "N is the number of bins, Actual_Prop_i the proportion of current observations in bin i and " +
				"Expected_Prop_i the baseline proportion. A PSI of 0.42, as observed in this incident, typically signifies a major population shift.",
		}},
		Checkpoint: &Checkpoint{
			Question:             "Does PSI=0.42 fall into the material-shift band under the PSI interpretation rule?",
			TrueLabel:            "Yes (material shift)",
			FalseLabel:           "No (normal variation)",
			Correct:              true,
			ExplanationCorrect:   "Correct: PSI above the material threshold implies the input population meaningfully shifted.",
			ExplanationIncorrect: "Recheck the PSI bands: 0.42 is well above the material-shift threshold of 0.25.",
		},
	},
	domain.PhaseRemediate: {
		Phase:     domain.PhaseRemediate,
		Label:     domain.PhaseRemediate.Label(),
		Objective: "Convert diagnosis into controlled change with explicit revalidation gates. This is a governance decision, not just a modeling decision.",
		Narrative: []string{
			"Watch-out: a fix that looks great in the latest regime may fail when conditions revert.",
			"Watch-out: regained edge may vanish net of transaction costs and turnover.",
			"Watch-out: redeployment should require pre-specified performance and stress pass conditions.",
		},
		DecisionTranslations: []string{
			"If validation gates are ambiguous, do not restart automation; governance risk dominates.",
			"If remediation increases turnover materially, reassess net performance and liquidity constraints.",
		},
		EvidencePack: []string{
			"Pre-specified go/no-go criteria (metrics + stress tests)",
			"Net-of-cost performance evidence (not just gross backtest)",
			"Regime coverage summary (tests across multiple market environments)",
		},
	},
	domain.PhaseDocument: {
		Phase:     domain.PhaseDocument,
		Label:     domain.PhaseDocument.Label(),
		Objective: "Create a stand-alone narrative a skeptical reviewer can audit in 60 seconds: what happened, what it cost, why decisions were reasonable, what changed.",
		Narrative: []string{
			"Monitoring thresholds and window definition (RED/YELLOW + rolling window).",
			"Baseline vs current measurement windows, and why.",
			"Financial impact method and assumptions (counterfactual definition).",
			"Drift/diagnostic rules (PSI bands, evidence).",
			"Decisions, timestamps, sign-offs: who approved what.",
			"Guardrail: a claim of 'no filing required' must be backed by the firm's documented materiality/escalation policy.",
		},
	},
	domain.PhasePrevent: {
		Phase:     domain.PhasePrevent,
		Label:     domain.PhasePrevent.Label(),
		Objective: "Convert lessons into durable controls with explicit trade-offs: tighter monitoring reduces missed detections but increases false alarms.",
		Narrative: []string{
			"Too loose: detection lag, losses compound. Too tight: false positives, unnecessary shutdowns and opportunity cost.",
			"A robust policy states the tolerated false-alarm rate and the tolerated loss exposure from delay.",
		},
		DecisionTranslations: []string{
			"If rules are tightened, define acceptable false-alarm rate (Type I) vs missed-detection risk (Type II).",
			"If the kill-switch is automated, specify authority, override conditions and post-mortem requirements.",
		},
		EvidencePack: []string{
			"Revised monitoring policy (thresholds + window + breach logic)",
			"False-alarm/backtest of monitoring rule historically (in production)",
			"Updated validation protocol including regime coverage",
		},
	},
	domain.PhaseFinalReport: {
		Phase:     domain.PhaseFinalReport,
		Label:     domain.PhaseFinalReport.Label(),
		Objective: "Deliver a single coherent artifact: executive summary for a fast read, evidence with methods and assumptions, decisions and sign-offs for accountability.",
	},
}

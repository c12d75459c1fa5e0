package domain

// MonitoringPolicy is the monitoring and escalation policy the drill
// scenario is evaluated against. The values are scenario literals shown
// to the trainee; nothing in the service computes against live data.
type MonitoringPolicy struct {
	ModelTier                    int     `json:"model_tier"`
	AUCRed                       float64 `json:"auc_red"`
	AUCYellow                    float64 `json:"auc_yellow"`
	RollingWindowDaysCurrent     int     `json:"rolling_window_days_current"`
	RollingWindowDaysRecommended int     `json:"rolling_window_days_recommended"`
	ContainTargetHours           int     `json:"contain_target_hours"`
	PSIStableMax                 float64 `json:"psi_stable_max"`
	PSIWatchMax                  float64 `json:"psi_watch_max"`
}

// DefaultMonitoringPolicy returns the Tier 1 policy used by the drill:
// RED below 0.50 rolling AUC initiates containment, YELLOW below 0.60
// escalates monitoring, and PSI above 0.25 counts as a material shift.
func DefaultMonitoringPolicy() MonitoringPolicy {
	return MonitoringPolicy{
		ModelTier:                    1,
		AUCRed:                       0.50,
		AUCYellow:                    0.60,
		RollingWindowDaysCurrent:     90,
		RollingWindowDaysRecommended: 30,
		ContainTargetHours:           4,
		PSIStableMax:                 0.10,
		PSIWatchMax:                  0.25,
	}
}

//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/quantlab/incident-drill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurriculum_ListPhases(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/phases")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []struct {
			Phase string `json:"phase"`
			Label string `json:"label"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &envelope)

	require.Len(t, envelope.Data, 8)
	assert.Equal(t, "overview", envelope.Data[0].Phase)
	assert.Equal(t, "final-report", envelope.Data[7].Phase)
	assert.Equal(t, "Final Report", envelope.Data[7].Label)
}

func TestCurriculum_PhaseGuide(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/phases/detect/guide")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			Phase     string   `json:"phase"`
			Label     string   `json:"label"`
			Objective string   `json:"objective"`
			Narrative []string `json:"narrative"`
			AUCTrend  []struct {
				Date string  `json:"date"`
				AUC  float64 `json:"auc"`
			} `json:"auc_trend"`
			Checkpoint *struct {
				Question   string `json:"question"`
				TrueLabel  string `json:"true_label"`
				FalseLabel string `json:"false_label"`
			} `json:"checkpoint"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &envelope)

	guide := envelope.Data
	assert.Equal(t, "detect", guide.Phase)
	assert.NotEmpty(t, guide.Objective)
	assert.NotEmpty(t, guide.Narrative)
	require.NotEmpty(t, guide.AUCTrend)
	assert.Equal(t, 0.42, guide.AUCTrend[len(guide.AUCTrend)-1].AUC)
	require.NotNil(t, guide.Checkpoint)
	assert.NotEmpty(t, guide.Checkpoint.Question)
}

func TestCurriculum_UnknownPhaseGuide(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.GET("/api/v1/phases/postmortem/guide")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCurriculum_Policy(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/policy")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			ModelTier                    int     `json:"model_tier"`
			AUCRed                       float64 `json:"auc_red"`
			AUCYellow                    float64 `json:"auc_yellow"`
			RollingWindowDaysCurrent     int     `json:"rolling_window_days_current"`
			RollingWindowDaysRecommended int     `json:"rolling_window_days_recommended"`
			ContainTargetHours           int     `json:"contain_target_hours"`
			PSIWatchMax                  float64 `json:"psi_watch_max"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &envelope)

	policy := envelope.Data
	assert.Equal(t, 1, policy.ModelTier)
	assert.Equal(t, 0.50, policy.AUCRed)
	assert.Equal(t, 0.60, policy.AUCYellow)
	assert.Equal(t, 90, policy.RollingWindowDaysCurrent)
	assert.Equal(t, 30, policy.RollingWindowDaysRecommended)
	assert.Equal(t, 4, policy.ContainTargetHours)
	assert.Equal(t, 0.25, policy.PSIWatchMax)
}

func TestHealthEndpoints(t *testing.T) {
	client := newTestClient(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := client.GET(path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	resp, err := client.GET("/version")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var version map[string]string
	testutil.DecodeJSON(t, resp, &version)
	assert.Contains(t, version, "version")
}

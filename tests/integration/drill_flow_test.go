//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/quantlab/incident-drill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrillFlow_FullWorkflow(t *testing.T) {
	client := newTestClient(t)

	sess := createSession(t, client)
	assert.Equal(t, "overview", sess.CurrentPhase)
	assert.Equal(t, "AI-INC-2024-007", sess.Record.IncidentID)
	assert.Equal(t, "Trading RL Agent v1.2", sess.Record.Model)
	assert.Equal(t, "HIGH", sess.Record.Severity)
	require.NotNil(t, sess.Record.Detect, "detect section populated at alert time")
	assert.Nil(t, sess.Record.Contain)

	// Only Overview and Detect unlocked at the start.
	require.Len(t, sess.Phases, 8)
	assert.True(t, sess.Phases[0].Enabled)
	assert.True(t, sess.Phases[1].Enabled)
	for _, ps := range sess.Phases[2:] {
		assert.False(t, ps.Enabled, "phase %s should start locked", ps.Phase)
	}

	// Walk the whole workflow; each completion fills the matching section.
	sess = advanceTo(t, client, sess.ID, "detect")
	assert.Equal(t, "detect", sess.CurrentPhase)
	assert.Nil(t, sess.Record.Contain)

	sess = advanceTo(t, client, sess.ID, "contain")
	assert.Nil(t, sess.Record.Contain, "contain fills when the phase completes, not when it opens")

	sess = advanceTo(t, client, sess.ID, "investigate")
	require.NotNil(t, sess.Record.Contain)
	assert.Equal(t, "2h 15m", sess.Record.Contain["time_to_contain"])

	sess = advanceTo(t, client, sess.ID, "remediate")
	require.NotNil(t, sess.Record.Investigate)

	sess = advanceTo(t, client, sess.ID, "document")
	require.NotNil(t, sess.Record.Remediate)

	sess = advanceTo(t, client, sess.ID, "prevent")
	require.NotNil(t, sess.Record.Document)

	sess = advanceTo(t, client, sess.ID, "final-report")
	require.NotNil(t, sess.Record.Prevent)
	assert.Equal(t, "final-report", sess.CurrentPhase)

	// Every phase unlocked at the end.
	for _, ps := range sess.Phases {
		assert.True(t, ps.Enabled, "phase %s should be unlocked", ps.Phase)
	}
}

func TestDrillFlow_SessionsAreIsolated(t *testing.T) {
	client := newTestClient(t)

	a := createSession(t, client)
	b := createSession(t, client)
	require.NotEqual(t, a.ID, b.ID)

	advanceTo(t, client, a.ID, "detect")

	resp, err := client.GET("/api/v1/sessions/" + b.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope sessionEnvelope
	testutil.DecodeJSON(t, resp, &envelope)
	assert.Equal(t, "overview", envelope.Data.CurrentPhase)
}

func TestDrillFlow_DeleteSession(t *testing.T) {
	client := newTestClient(t)
	sess := createSession(t, client)

	resp, err := client.DELETE("/api/v1/sessions/" + sess.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/api/v1/sessions/" + sess.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session not found", decodeError(t, resp))
}

func TestDrillFlow_RecordEndpoint(t *testing.T) {
	client := newTestClient(t)
	sess := createSession(t, client)
	completeWorkflow(t, client, sess.ID)

	resp, err := client.GET("/api/v1/sessions/" + sess.ID + "/record")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data incidentRecord `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &envelope)

	rec := envelope.Data
	assert.Equal(t, "AI-INC-2024-007", rec.IncidentID)
	require.NotNil(t, rec.Investigate)
	assert.Contains(t, rec.Investigate["root_cause"], "Fed rate cut cycle")

	// The containment estimate is carried into the investigation verbatim.
	impact := rec.Investigate["client_impact"].(map[string]interface{})
	assert.Equal(t, rec.Contain["estimated_client_impact"], impact["financial_impact"])
}

func TestDrillFlow_Checkpoints(t *testing.T) {
	client := newTestClient(t)
	sess := createSession(t, client)

	resp, err := client.POST("/api/v1/sessions/"+sess.ID+"/checkpoints/detect",
		map[string]bool{"answer": true})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			Correct     bool   `json:"correct"`
			Explanation string `json:"explanation"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &envelope)
	assert.True(t, envelope.Data.Correct)
	assert.NotEmpty(t, envelope.Data.Explanation)

	// Wrong answer is graded, not rejected.
	resp, err = client.POST("/api/v1/sessions/"+sess.ID+"/checkpoints/detect",
		map[string]bool{"answer": false})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &envelope)
	assert.False(t, envelope.Data.Correct)
}

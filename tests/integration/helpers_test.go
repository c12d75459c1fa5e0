//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/quantlab/incident-drill/internal/testutil"
	"github.com/stretchr/testify/require"
)

// phaseState mirrors the API phase state object.
type phaseState struct {
	Phase   string `json:"phase"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Current bool   `json:"current"`
}

// incidentRecord mirrors the API incident record, decoded loosely.
type incidentRecord struct {
	IncidentID   string                 `json:"incident_id"`
	Model        string                 `json:"model"`
	Tier         int                    `json:"tier"`
	Severity     string                 `json:"severity"`
	DateDetected string                 `json:"date_detected"`
	DetectedBy   string                 `json:"detected_by"`
	Detect       map[string]interface{} `json:"phase_1_detect"`
	Contain      map[string]interface{} `json:"phase_2_contain"`
	Investigate  map[string]interface{} `json:"phase_3_investigate"`
	Remediate    map[string]interface{} `json:"phase_4_remediate"`
	Document     map[string]interface{} `json:"phase_5_document"`
	Prevent      map[string]interface{} `json:"phase_6_prevent"`
}

// sessionData mirrors the API session object.
type sessionData struct {
	ID           string         `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CurrentPhase string         `json:"current_phase"`
	Phases       []phaseState   `json:"phases"`
	Record       incidentRecord `json:"record"`
}

type sessionEnvelope struct {
	Data sessionData `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// workflowOrder is the full phase sequence after the starting phase.
var workflowOrder = []string{
	"detect", "contain", "investigate", "remediate", "document", "prevent", "final-report",
}

// createSession starts a fresh drill session and returns it.
func createSession(t *testing.T, client *testutil.Client) sessionData {
	t.Helper()

	resp, err := client.POST("/api/v1/sessions", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope sessionEnvelope
	testutil.DecodeJSON(t, resp, &envelope)
	require.NotEmpty(t, envelope.Data.ID)
	return envelope.Data
}

// advanceTo advances a session one step to the given phase.
func advanceTo(t *testing.T, client *testutil.Client, sessionID, phase string) sessionData {
	t.Helper()

	resp, err := client.POST("/api/v1/sessions/"+sessionID+"/phases/"+phase+"/advance", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "advance to %s", phase)

	var envelope sessionEnvelope
	testutil.DecodeJSON(t, resp, &envelope)
	return envelope.Data
}

// completeWorkflow advances a session through every phase to the end.
func completeWorkflow(t *testing.T, client *testutil.Client, sessionID string) sessionData {
	t.Helper()

	var sess sessionData
	for _, phase := range workflowOrder {
		sess = advanceTo(t, client, sessionID, phase)
	}
	return sess
}

// decodeError decodes an error envelope and returns the message.
func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()

	var envelope errorEnvelope
	testutil.DecodeJSON(t, resp, &envelope)
	return envelope.Error.Message
}

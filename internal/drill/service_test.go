package drill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantlab/incident-drill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements SessionRepository for testing.
type mockRepository struct {
	sessions  map[string]*Session
	getCalls  int
	createErr error
	updateErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[string]*Session),
	}
}

func (m *mockRepository) Create(_ context.Context, sess *Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *mockRepository) Get(_ context.Context, id string) (*Session, error) {
	m.getCalls++
	if sess, ok := m.sessions[id]; ok {
		return sess, nil
	}
	return nil, ErrSessionNotFound
}

func (m *mockRepository) Update(_ context.Context, sess *Session) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.sessions[sess.ID]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockRepository) Count(_ context.Context) (int, error) {
	return len(m.sessions), nil
}

func newTestService(repo SessionRepository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2024, time.November, 5, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateSession(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	sess, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.PhaseOverview, sess.Gate.Current())
	require.NotNil(t, sess.Incident)
	assert.Equal(t, IncidentID, sess.Incident.ID)
	assert.NotNil(t, sess.Incident.Detect, "detect section populated at start")
	assert.Len(t, repo.sessions, 1)
}

func TestCreateSession_SessionsAreIndependent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	a, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)

	_, err = svc.AdvancePhase(ctx, a.ID, domain.PhaseDetect)
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDetect, a.Gate.Current())
	assert.Equal(t, domain.PhaseOverview, b.Gate.Current())
}

func TestCreateSession_RepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.createErr = ErrTooManySessions
	svc := newTestService(repo)

	_, err := svc.CreateSession(context.Background())
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestAdvancePhase_FullWorkflow(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	for _, p := range domain.Phases()[1:] {
		sess, err = svc.AdvancePhase(ctx, sess.ID, p)
		require.NoError(t, err, "advance to %s", p)
	}

	assert.Equal(t, domain.PhaseFinalReport, sess.Gate.Current())

	inc := sess.Incident
	require.NotNil(t, inc.Contain)
	require.NotNil(t, inc.Investigate)
	require.NotNil(t, inc.Remediate)
	require.NotNil(t, inc.Document)
	require.NotNil(t, inc.Prevent)
	assert.Equal(t, "2024-11-05", inc.Document.ReportDate)
}

func TestAdvancePhase_SkipFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.AdvancePhase(ctx, sess.ID, domain.PhaseInvestigate)
	require.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, domain.PhaseOverview, sess.Gate.Current())
	assert.Nil(t, sess.Incident.Investigate)
}

func TestAdvancePhase_TransitionRunsOnCompletion(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	// Advancing out of Detect does not touch the Contain section yet.
	_, err = svc.AdvancePhase(ctx, sess.ID, domain.PhaseDetect)
	require.NoError(t, err)
	_, err = svc.AdvancePhase(ctx, sess.ID, domain.PhaseContain)
	require.NoError(t, err)
	assert.Nil(t, sess.Incident.Contain)

	// Completing Contain populates it.
	_, err = svc.AdvancePhase(ctx, sess.ID, domain.PhaseInvestigate)
	require.NoError(t, err)
	assert.NotNil(t, sess.Incident.Contain)
}

func TestAdvancePhase_SessionNotFound(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.AdvancePhase(context.Background(), "missing", domain.PhaseDetect)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSelectPhase(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.AdvancePhase(ctx, sess.ID, domain.PhaseDetect)
	require.NoError(t, err)

	sess, err = svc.SelectPhase(ctx, sess.ID, domain.PhaseOverview)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseOverview, sess.Gate.Current())

	_, err = svc.SelectPhase(ctx, sess.ID, domain.PhasePrevent)
	assert.ErrorIs(t, err, ErrPhaseNotEnabled)
}

func TestReport_BeforeDocumentFails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, _, err = svc.Report(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrIncompleteRecord)
}

func TestReport_DraftAfterDocument(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	// Complete everything through Document; Prevent still pending.
	for _, p := range domain.Phases()[1:7] {
		_, err = svc.AdvancePhase(ctx, sess.ID, p)
		require.NoError(t, err)
	}
	require.Nil(t, sess.Incident.Prevent)

	got, report, err := svc.Report(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Contains(t, report, "No specific preventive measures documented yet")
}

func TestReport_SingleRepositoryLookup(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	for _, p := range domain.Phases()[1:] {
		_, err = svc.AdvancePhase(ctx, sess.ID, p)
		require.NoError(t, err)
	}

	repo.getCalls = 0
	_, _, err = svc.Report(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGradeCheckpoint(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	// Detect is unlocked from the start and has a checkpoint.
	result, err := svc.GradeCheckpoint(ctx, sess.ID, domain.PhaseDetect, true)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Contains(t, result.Explanation, "Correct")

	result, err = svc.GradeCheckpoint(ctx, sess.ID, domain.PhaseDetect, false)
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Contains(t, result.Explanation, "Recheck")
}

func TestGradeCheckpoint_LockedPhase(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.GradeCheckpoint(ctx, sess.ID, domain.PhaseInvestigate, true)
	assert.ErrorIs(t, err, ErrPhaseNotEnabled)
}

func TestGradeCheckpoint_PhaseWithoutCheckpoint(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.GradeCheckpoint(ctx, sess.ID, domain.PhaseOverview, true)
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestDeleteSession(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, sess.ID))
	_, err = svc.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = svc.DeleteSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPhaseStates(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Advance(domain.PhaseDetect))

	states := PhaseStates(g)
	require.Len(t, states, 8)

	assert.Equal(t, domain.PhaseOverview, states[0].Phase)
	assert.True(t, states[0].Enabled)
	assert.False(t, states[0].Current)

	assert.Equal(t, domain.PhaseDetect, states[1].Phase)
	assert.Equal(t, "Detect", states[1].Label)
	assert.True(t, states[1].Enabled)
	assert.True(t, states[1].Current)

	assert.False(t, states[2].Enabled)
	assert.False(t, states[2].Current)
}

func TestPolicy(t *testing.T) {
	svc := newTestService(newMockRepository())

	p := svc.Policy()
	assert.Equal(t, 0.50, p.AUCRed)
	assert.Equal(t, 0.60, p.AUCYellow)
	assert.Equal(t, 4, p.ContainTargetHours)
}

func TestAdvancePhase_UpdateError(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	repo.updateErr = errors.New("boom")
	_, err = svc.AdvancePhase(ctx, sess.ID, domain.PhaseDetect)
	assert.ErrorContains(t, err, "update session")
}

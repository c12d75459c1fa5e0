package drill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quantlab/incident-drill/internal/domain"
)

// Service implements the drill business logic over explicit session
// objects. It owns no global state: every operation takes a session id
// and goes through the repository.
type Service struct {
	repo   SessionRepository
	policy domain.MonitoringPolicy
	now    func() time.Time
}

// NewService creates a drill service.
func NewService(repo SessionRepository) *Service {
	return &Service{
		repo:   repo,
		policy: domain.DefaultMonitoringPolicy(),
		now:    time.Now,
	}
}

// Policy returns the monitoring policy the scenario is graded against.
func (s *Service) Policy() domain.MonitoringPolicy {
	return s.policy
}

// CreateSession starts a fresh drill run: a new incident record with the
// Detect section populated and a gate at the Overview phase.
func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Incident:  NewIncident(),
		Gate:      NewGate(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	sessionsStartedTotal.Inc()
	return sess, nil
}

// GetSession retrieves a session by id.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.repo.Get(ctx, id)
}

// DeleteSession discards a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// SelectPhase moves the session's cursor to an already-unlocked phase.
func (s *Service) SelectPhase(ctx context.Context, id string, phase domain.Phase) (*Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sess.Gate.Select(phase); err != nil {
		return nil, err
	}

	sess.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}

// AdvancePhase completes the session's current phase and unlocks target.
// Completing a phase applies that phase's record transition before the
// gate moves, so the record and the gate never disagree: if the
// transition fails the session is left untouched.
func (s *Service) AdvancePhase(ctx context.Context, id string, target domain.Phase) (*Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current := sess.Gate.Current()
	if next, ok := current.Next(); !ok || next != target {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}

	if err := s.applyTransition(current, sess.Incident); err != nil {
		return nil, err
	}

	if err := sess.Gate.Advance(target); err != nil {
		return nil, err
	}

	sess.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	phasesAdvancedTotal.WithLabelValues(string(target)).Inc()
	return sess, nil
}

// applyTransition runs the record transition owned by the phase being
// completed. Overview and Detect contribute nothing beyond the initial
// record built at session creation.
func (s *Service) applyTransition(completed domain.Phase, inc *domain.Incident) error {
	switch completed {
	case domain.PhaseContain:
		return Contain(inc)
	case domain.PhaseInvestigate:
		return Investigate(inc)
	case domain.PhaseRemediate:
		return Remediate(inc)
	case domain.PhaseDocument:
		return Document(inc, s.now())
	case domain.PhasePrevent:
		return PreventRecurrence(inc)
	}
	return nil
}

// Report renders the formal report for a session, returning the session
// it was rendered from. Callable as soon as the Document phase
// completed; before Prevent completes the report carries the
// preventive-measures placeholder.
func (s *Service) Report(ctx context.Context, id string) (*Session, string, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	report, err := FormatReport(sess.Incident)
	if err != nil {
		return nil, "", err
	}

	reportsGeneratedTotal.Inc()
	return sess, report, nil
}

// GradeCheckpoint grades a yes/no checkpoint answer for a phase the
// session has already unlocked.
func (s *Service) GradeCheckpoint(ctx context.Context, id string, phase domain.Phase, answer bool) (CheckpointResult, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return CheckpointResult{}, err
	}

	if !sess.Gate.IsEnabled(phase) {
		return CheckpointResult{}, fmt.Errorf("%w: %s", ErrPhaseNotEnabled, phase)
	}

	guide, ok := GuideFor(phase)
	if !ok || guide.Checkpoint == nil {
		return CheckpointResult{}, fmt.Errorf("%w: %s", ErrNoCheckpoint, phase)
	}

	cp := guide.Checkpoint
	result := CheckpointResult{Correct: answer == cp.Correct}
	if result.Correct {
		result.Explanation = cp.ExplanationCorrect
	} else {
		result.Explanation = cp.ExplanationIncorrect
	}

	recordCheckpointAnswer(string(phase), result.Correct)
	return result, nil
}

// PhaseState is the host-facing view of one phase of a session.
type PhaseState struct {
	Phase   domain.Phase `json:"phase"`
	Label   string       `json:"label"`
	Enabled bool         `json:"enabled"`
	Current bool         `json:"current"`
}

// PhaseStates returns the full ordered phase list with unlock flags and
// the cursor position, as a pure query over the gate's stored state.
func PhaseStates(g *Gate) []PhaseState {
	phases := domain.Phases()
	out := make([]PhaseState, 0, len(phases))
	for _, p := range phases {
		out = append(out, PhaseState{
			Phase:   p,
			Label:   p.Label(),
			Enabled: g.IsEnabled(p),
			Current: g.Current() == p,
		})
	}
	return out
}

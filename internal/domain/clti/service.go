package clti

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/limbsalvage/clti/internal/platform/websocket"
)

var (
	ErrSessionNotFound  = errors.New("case session not found")
	ErrSessionForbidden = errors.New("case session belongs to another user")
	ErrStepBlocked      = errors.New("wizard step cannot be completed")
)

// EventCaseChanged is the websocket event type raised after every mutation
// of an open session.
const EventCaseChanged = "case.changed"

// SessionTopic is the websocket topic carrying the events of one session.
func SessionTopic(id uuid.UUID) string { return "session/" + id.String() }

// CaseView is the read model of an open session.
type CaseView struct {
	SessionID   uuid.UUID    `json:"session_id"`
	Revision    uint64       `json:"revision"`
	CurrentStep string       `json:"current_step"`
	Wizard      []StepStatus `json:"wizard"`
	Snapshot    Snapshot     `json:"snapshot"`
}

type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	state    *CaseState
	sub      Subscription
	owner    string
	revision uint64
	lastSeen time.Time
}

func (s *session) view() CaseView {
	return CaseView{
		SessionID:   s.id,
		Revision:    s.revision,
		CurrentStep: s.state.CurrentStep().String(),
		Wizard:      s.state.Wizard(),
		Snapshot:    s.state.Export(),
	}
}

// Service keeps the open case sessions of the server. Each session owns one
// CaseState; calls on the same session are serialized by its lock.
type Service struct {
	repo      CaseRepository
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	// SessionTTL is how long an untouched session stays open. Zero disables expiry.
	SessionTTL time.Duration
	// SweepInterval controls how often expired sessions are discarded.
	SweepInterval time.Duration
}

// NewService creates a case service. publisher may be nil.
func NewService(repo CaseRepository, publisher websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:          repo,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
		sessions:      make(map[uuid.UUID]*session),
		SessionTTL:    2 * time.Hour,
		SweepInterval: time.Minute,
	}
}

// Open starts an empty session owned by owner.
func (s *Service) Open(owner string) CaseView {
	sess := &session{
		id:       uuid.New(),
		state:    NewCaseState(),
		owner:    owner,
		lastSeen: s.now(),
	}
	sess.sub = sess.state.Subscribe(func() {
		sess.revision++
		s.publish(sess)
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sess.id.String()).Str("owner", owner).Msg("case session opened")
	return sess.view()
}

func (s *Service) publish(sess *session) {
	if s.publisher == nil {
		return
	}
	snap := sess.state.Export()
	data, err := json.Marshal(struct {
		Revision uint64   `json:"revision"`
		Snapshot Snapshot `json:"snapshot"`
	}{sess.revision, snap})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.id.String()).Msg("failed to encode case event")
		return
	}
	event := websocket.Event{
		Type:      EventCaseChanged,
		Topic:     SessionTopic(sess.id),
		SessionID: sess.id.String(),
		Timestamp: s.now().UTC(),
		Data:      data,
	}
	if snap.CaseID != nil {
		event.CaseID = snap.CaseID.String()
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.id.String()).Msg("failed to publish case event")
	}
}

func (s *Service) lookup(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// with runs fn on a locked session and refreshes its idle timer.
func (s *Service) with(id uuid.UUID, fn func(sess *session) error) (CaseView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return CaseView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = s.now()
	if err := fn(sess); err != nil {
		return CaseView{}, err
	}
	return sess.view(), nil
}

// Authorize reports whether caller may change the session. Sessions opened
// without an identity are open to everyone.
func (s *Service) Authorize(id uuid.UUID, caller string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	if sess.owner != "" && sess.owner != caller {
		return ErrSessionForbidden
	}
	return nil
}

// WatchableTopic reports whether topic names an open session.
func (s *Service) WatchableTopic(topic string) bool {
	raw, ok := strings.CutPrefix(topic, "session/")
	if !ok {
		return false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return false
	}
	_, err = s.lookup(id)
	return err == nil
}

func (s *Service) Get(id uuid.UUID) (CaseView, error) {
	return s.with(id, func(*session) error { return nil })
}

// Apply runs a batch of field updates. The batch is checked against a scratch
// copy first, so either every update is applied or none is.
func (s *Service) Apply(id uuid.UUID, updates []FieldUpdate) (CaseView, error) {
	return s.with(id, func(sess *session) error {
		scratch := NewCaseState()
		if err := scratch.Import(sess.state.Export()); err != nil {
			return fmt.Errorf("copy session state: %w", err)
		}
		for _, u := range updates {
			if err := scratch.Apply(u); err != nil {
				return err
			}
		}
		for _, u := range updates {
			if err := sess.state.Apply(u); err != nil {
				return err
			}
		}
		return nil
	})
}

// Complete marks a wizard step complete.
func (s *Service) Complete(id uuid.UUID, step Step) (CaseView, error) {
	return s.with(id, func(sess *session) error {
		if !sess.state.Complete(step) {
			return fmt.Errorf("%w: %s", ErrStepBlocked, step)
		}
		return nil
	})
}

func (s *Service) Reset(id uuid.UUID) (CaseView, error) {
	return s.with(id, func(sess *session) error {
		sess.state.Reset()
		return nil
	})
}

// Save persists the session snapshot. The first save creates a record and
// echoes its id back into the session; later saves update that record.
func (s *Service) Save(ctx context.Context, id uuid.UUID, label *string) (*CaseRecord, error) {
	var rec *CaseRecord
	_, err := s.with(id, func(sess *session) error {
		rec = &CaseRecord{ID: sess.state.CaseID(), Label: label}
		if sess.owner != "" {
			owner := sess.owner
			rec.CreatedBy = &owner
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
			sess.state.SetCaseID(rec.ID)
			rec.Snapshot = sess.state.Export()
			if err := s.repo.Create(ctx, rec); err != nil {
				sess.state.SetCaseID(uuid.Nil)
				return fmt.Errorf("create case: %w", err)
			}
			return nil
		}
		rec.Snapshot = sess.state.Export()
		err := s.repo.Update(ctx, rec)
		if errors.Is(err, ErrCaseNotFound) {
			err = s.repo.Create(ctx, rec)
		}
		if err != nil {
			return fmt.Errorf("update case %s: %w", rec.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("session_id", id.String()).Str("case_id", rec.ID.String()).Msg("case saved")
	return rec, nil
}

// Load replaces the session state with a stored case.
func (s *Service) Load(ctx context.Context, id, caseID uuid.UUID) (CaseView, error) {
	rec, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return CaseView{}, fmt.Errorf("load case %s: %w", caseID, err)
	}
	rec.Snapshot.CaseID = &rec.ID
	view, err := s.with(id, func(sess *session) error {
		return sess.state.Import(rec.Snapshot)
	})
	if err != nil {
		return CaseView{}, err
	}
	s.logger.Info().Str("session_id", id.String()).Str("case_id", caseID.String()).Msg("case loaded")
	return view, nil
}

// Discard closes a session without saving it.
func (s *Service) Discard(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.sub.Unsubscribe()
	sess.mu.Unlock()
	s.logger.Info().Str("session_id", id.String()).Msg("case session discarded")
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*CaseRecord, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) GetCase(ctx context.Context, caseID uuid.UUID) (*CaseRecord, error) {
	return s.repo.GetByID(ctx, caseID)
}

func (s *Service) DeleteCase(ctx context.Context, caseID uuid.UUID) error {
	if err := s.repo.Delete(ctx, caseID); err != nil {
		return err
	}
	s.logger.Info().Str("case_id", caseID.String()).Msg("case deleted")
	return nil
}

// Start discards idle sessions until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.SessionTTL <= 0 || s.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireSessions()
		}
	}
}

func (s *Service) expireSessions() {
	cutoff := s.now().Add(-s.SessionTTL)
	var expired []uuid.UUID
	s.mu.RLock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range expired {
		if err := s.Discard(id); err == nil {
			s.logger.Debug().Str("session_id", id.String()).Msg("idle case session expired")
		}
	}
}

package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStore abstracts persistence operations required by SessionService.
type SessionStore interface {
	InsertSession(s *Session) error
	GetSession(id string) (*Session, error)
	UpdateSession(s *Session) error
	DeleteSession(id string) (bool, error)
	ListSessions() ([]*Session, error)
}

// SessionService coordinates group dining sessions: creation, participant
// admission and the ready transition. It enforces no participant quorum;
// when to mark a session ready is caller policy.
type SessionService struct {
	store SessionStore
	now   func() time.Time
	newID func(time.Time) string
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: sessionID,
	}
}

// sessionID builds ids that sort roughly chronologically but cannot be
// enumerated: a timestamp prefix plus a random suffix.
func sessionID(now time.Time) string {
	return now.Format("20060102150405") + "-" + shortID(8)
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func (s *SessionService) Create(location string) (*Session, error) {
	if strings.TrimSpace(location) == "" {
		return nil, NewInvalidError("location required")
	}
	now := s.now()
	session := &Session{
		ID:           s.newID(now),
		Location:     location,
		CreatedAt:    now,
		Participants: []Preference{},
	}
	if err := s.store.InsertSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(id string) (*Session, error) {
	session, err := s.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NewNotFoundError("session not found")
	}
	return session, nil
}

// AddParticipant appends a preference to the session in arrival order.
// Duplicate names are allowed: names are display-only and two entries under
// the same name are two preference records.
func (s *SessionService) AddParticipant(id string, p Preference) (*Session, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, NewInvalidError("participant name required")
	}
	if p.MaxDistance < 0 {
		return nil, NewInvalidError("max_distance must not be negative")
	}
	if p.Budget != "" {
		if _, ok := budgetTiers[p.Budget]; !ok {
			return nil, NewInvalidError("budget must be one of $, $$, $$$, $$$$")
		}
	}
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	p.SubmittedAt = s.now()
	session.Participants = append(session.Participants, p)
	if err := s.store.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// MarkReady flags the session for scoring. Nothing stops later
// AddParticipant calls; callers decide whether to keep collecting.
func (s *SessionService) MarkReady(id string) (*Session, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	session.ResultsReady = true
	if err := s.store.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Delete(id string) error {
	ok, err := s.store.DeleteSession(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("session not found")
	}
	return nil
}

// List returns every stored session, for debugging and admin surfaces.
func (s *SessionService) List() ([]*Session, error) {
	return s.store.ListSessions()
}

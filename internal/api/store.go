package api

import (
	"sort"
	"sync"

	"github.com/dinesync/dinesync/internal/services"
)

// memoryStore is the in-memory Store used for tests and for running without
// a database. Records are deep-copied on the way in and out so callers
// cannot mutate stored state behind the lock.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*services.Session
	users    map[string]*services.UserProfile
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: map[string]*services.Session{},
		users:    map[string]*services.UserProfile{},
	}
}

func (m *memoryStore) InsertSession(s *services.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *memoryStore) GetSession(id string) (*services.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSession(m.sessions[id]), nil
}

func (m *memoryStore) UpdateSession(s *services.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *memoryStore) DeleteSession(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *memoryStore) ListSessions() ([]*services.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*services.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetUser(username string) (*services.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneProfile(m.users[username]), nil
}

func (m *memoryStore) PutUser(u *services.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = cloneProfile(u)
	return nil
}

func (m *memoryStore) DeleteUser(username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return false, nil
	}
	delete(m.users, username)
	return true, nil
}

func (m *memoryStore) ListUsers() ([]*services.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*services.UserProfile, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, cloneProfile(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func cloneSession(s *services.Session) *services.Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Participants = make([]services.Preference, len(s.Participants))
	for i, p := range s.Participants {
		cp := p
		cp.Cuisines = append([]string(nil), p.Cuisines...)
		cp.Dietary = append([]string(nil), p.Dietary...)
		cp.Ambiance = append([]string(nil), p.Ambiance...)
		cp.VetoItems = append([]string(nil), p.VetoItems...)
		c.Participants[i] = cp
	}
	return &c
}

func cloneProfile(u *services.UserProfile) *services.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	c.RecentScores = append([]float64(nil), u.RecentScores...)
	c.Badges = append([]string(nil), u.Badges...)
	c.Certificates = append([]services.Certificate(nil), u.Certificates...)
	c.Businesses = make(map[string]*services.BusinessProgress, len(u.Businesses))
	for name, bp := range u.Businesses {
		cb := *bp
		cb.CompletedScenarios = append([]int(nil), bp.CompletedScenarios...)
		cb.ScenarioTitles = append([]string(nil), bp.ScenarioTitles...)
		cb.Scores = append([]float64(nil), bp.Scores...)
		c.Businesses[name] = &cb
	}
	return &c
}

package api

import "github.com/dinesync/dinesync/internal/services"

type sessionStoreAdapter struct {
	store Store
}

func newSessionStoreAdapter(store Store) services.SessionStore {
	return &sessionStoreAdapter{store: store}
}

func (a *sessionStoreAdapter) InsertSession(s *services.Session) error { return a.store.InsertSession(s) }
func (a *sessionStoreAdapter) GetSession(id string) (*services.Session, error) {
	return a.store.GetSession(id)
}
func (a *sessionStoreAdapter) UpdateSession(s *services.Session) error { return a.store.UpdateSession(s) }
func (a *sessionStoreAdapter) DeleteSession(id string) (bool, error)  { return a.store.DeleteSession(id) }
func (a *sessionStoreAdapter) ListSessions() ([]*services.Session, error) {
	return a.store.ListSessions()
}

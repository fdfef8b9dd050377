package api

import "github.com/dinesync/dinesync/internal/services"

// Store is the persistence surface the router needs: sessions keyed by id,
// user profiles keyed by username. Implementations return nil (not an
// error) for missing records; services translate that into not_found.
type Store interface {
	InsertSession(s *services.Session) error
	GetSession(id string) (*services.Session, error)
	UpdateSession(s *services.Session) error
	DeleteSession(id string) (bool, error)
	ListSessions() ([]*services.Session, error)

	GetUser(username string) (*services.UserProfile, error)
	PutUser(u *services.UserProfile) error
	DeleteUser(username string) (bool, error)
	ListUsers() ([]*services.UserProfile, error)
}

var _ Store = (*memoryStore)(nil)

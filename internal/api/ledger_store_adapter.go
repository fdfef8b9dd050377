package api

import "github.com/dinesync/dinesync/internal/services"

type ledgerStoreAdapter struct {
	store Store
}

func newLedgerStoreAdapter(store Store) services.LedgerStore {
	return &ledgerStoreAdapter{store: store}
}

func (a *ledgerStoreAdapter) GetUser(username string) (*services.UserProfile, error) {
	return a.store.GetUser(username)
}
func (a *ledgerStoreAdapter) PutUser(u *services.UserProfile) error { return a.store.PutUser(u) }
func (a *ledgerStoreAdapter) DeleteUser(username string) (bool, error) {
	return a.store.DeleteUser(username)
}
func (a *ledgerStoreAdapter) ListUsers() ([]*services.UserProfile, error) {
	return a.store.ListUsers()
}

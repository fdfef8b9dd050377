// Package db implements the api.Store interface on SQLite. Sessions and
// user profiles are stored as JSON documents keyed by their natural id,
// which keeps the schema stable while the record shapes evolve.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dinesync/dinesync/internal/api"
	"github.com/dinesync/dinesync/internal/services"
)

type SQLiteStore struct {
	db  *sql.DB
	log logrus.FieldLogger
}

func NewSQLiteStore(db *sql.DB, log logrus.FieldLogger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func NewStore(db *sql.DB, log logrus.FieldLogger) (api.Store, error) {
	return NewSQLiteStore(db, log)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) InsertSession(sess *services.Session) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, doc, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		sess.ID, string(doc), sess.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(id string) (*services.Session, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM sessions WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess, ok := s.decodeSession(id, doc)
	if !ok {
		return nil, nil
	}
	return sess, nil
}

func (s *SQLiteStore) UpdateSession(sess *services.Session) error {
	return s.InsertSession(sess)
}

func (s *SQLiteStore) DeleteSession(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListSessions() ([]*services.Session, error) {
	rows, err := s.db.Query(`SELECT id, doc FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []*services.Session{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess, ok := s.decodeSession(id, doc); ok {
			out = append(out, sess)
		}
	}
	return out, rows.Err()
}

// decodeSession unpacks a stored document. Corrupt rows are logged and
// treated as absent rather than failing the whole operation.
func (s *SQLiteStore) decodeSession(id, doc string) (*services.Session, bool) {
	var sess services.Session
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		s.log.WithFields(logrus.Fields{"session_id": id, "error": err}).
			Warn("skipping corrupt session document")
		return nil, false
	}
	return &sess, true
}

func (s *SQLiteStore) GetUser(username string) (*services.UserProfile, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM user_profiles WHERE username = ?`, username).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u, ok := s.decodeProfile(username, doc)
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (s *SQLiteStore) PutUser(u *services.UserProfile) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO user_profiles (username, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		u.Username, string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteUser(username string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM user_profiles WHERE username = ?`, username)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListUsers() ([]*services.UserProfile, error) {
	rows, err := s.db.Query(`SELECT username, doc FROM user_profiles ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []*services.UserProfile{}
	for rows.Next() {
		var username, doc string
		if err := rows.Scan(&username, &doc); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u, ok := s.decodeProfile(username, doc); ok {
			out = append(out, u)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) decodeProfile(username, doc string) (*services.UserProfile, bool) {
	var u services.UserProfile
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		s.log.WithFields(logrus.Fields{"username": username, "error": err}).
			Warn("skipping corrupt user profile document")
		return nil, false
	}
	return &u, true
}

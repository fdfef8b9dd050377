package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dinesync/dinesync/internal/services"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	// A file-backed database: ":memory:" gives every pooled connection its
	// own empty database.
	path := filepath.Join(t.TempDir(), "test.db")
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := RunMigrations(sqlDB, ""); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := NewSQLiteStore(sqlDB, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)

	created := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	sess := &services.Session{
		ID:        "20250314150926-abcd1234",
		Location:  "Dallas, TX",
		CreatedAt: created,
		Participants: []services.Preference{
			{
				Name:        "Alice",
				Cuisines:    []string{"Italian"},
				Dietary:     []string{"Vegetarian"},
				Budget:      "$$",
				MaxDistance: 3,
				Ambiance:    []string{"Romantic"},
				VetoItems:   []string{"sushi"},
				SubmittedAt: created.Add(time.Minute),
			},
		},
		ResultsReady: true,
	}
	if err := store.InsertSession(sess); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("session not found after insert")
	}
	if got.Location != sess.Location || !got.ResultsReady || !got.CreatedAt.Equal(created) {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if len(got.Participants) != 1 {
		t.Fatalf("participants %v", got.Participants)
	}
	p := got.Participants[0]
	if p.Name != "Alice" || p.Budget != "$$" || len(p.VetoItems) != 1 || !p.SubmittedAt.Equal(created.Add(time.Minute)) {
		t.Fatalf("participant round trip %+v", p)
	}
}

func TestSessionUpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	sess := &services.Session{ID: "s1", Location: "Austin", CreatedAt: time.Now().UTC()}
	store.InsertSession(sess)

	sess.ResultsReady = true
	if err := store.UpdateSession(sess); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := store.GetSession("s1")
	if !got.ResultsReady {
		t.Fatalf("update not persisted")
	}

	ok, err := store.DeleteSession("s1")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, _ = store.DeleteSession("s1")
	if ok {
		t.Fatalf("double delete reported success")
	}
	got, _ = store.GetSession("s1")
	if got != nil {
		t.Fatalf("deleted session still present")
	}
}

func TestUserProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := &services.UserProfile{
		Username:  "John_Doe 123",
		CreatedAt: now,
		Businesses: map[string]*services.BusinessProgress{
			"Cozy Cafe": {
				Location:           "Oakland",
				BusinessType:       "cafe",
				TotalScenarios:     3,
				CompletedScenarios: []int{0, 2},
				ScenarioTitles:     []string{"a", "b", "c"},
				Scores:             []float64{7.5, 9.0},
				Attempts:           2,
				StartedAt:          now,
				LastUpdated:        now,
			},
		},
		TotalAttempts: 2,
		TotalScore:    16.5,
		RecentScores:  []float64{7.5, 9.0},
		Badges:        []string{"First Steps"},
		Certificates:  []services.Certificate{{BusinessName: "Cozy Cafe", AvgScore: 8.25, AwardedAt: now}},
	}
	if err := store.PutUser(u); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.GetUser(u.Username)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("user not found after put")
	}
	if got.TotalAttempts != 2 || got.TotalScore != 16.5 || len(got.Badges) != 1 || len(got.Certificates) != 1 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	bp := got.Businesses["Cozy Cafe"]
	if bp == nil || bp.TotalScenarios != 3 || len(bp.CompletedScenarios) != 2 || len(bp.Scores) != 2 {
		t.Fatalf("business progress round trip %+v", bp)
	}

	// Upsert replaces the document.
	u.TotalAttempts = 3
	store.PutUser(u)
	got, _ = store.GetUser(u.Username)
	if got.TotalAttempts != 3 {
		t.Fatalf("upsert not applied")
	}
}

func TestListUsersSkipsCorruptRows(t *testing.T) {
	store := newTestStore(t)
	store.PutUser(&services.UserProfile{Username: "good user"})
	if _, err := store.db.Exec(
		`INSERT INTO user_profiles (username, doc, updated_at) VALUES ('broken', '{not json', '2025-01-01')`,
	); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	users, err := store.ListUsers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Username != "good user" {
		t.Fatalf("corrupt row not skipped: %+v", users)
	}

	got, err := store.GetUser("broken")
	if err != nil || got != nil {
		t.Fatalf("corrupt row should read as absent, got %+v / %v", got, err)
	}
}

func TestMissingRecordsReadAsNil(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.GetSession("nope")
	if err != nil || sess != nil {
		t.Fatalf("missing session: %+v / %v", sess, err)
	}
	u, err := store.GetUser("nope")
	if err != nil || u != nil {
		t.Fatalf("missing user: %+v / %v", u, err)
	}
}

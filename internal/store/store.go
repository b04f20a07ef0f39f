// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists accepted profiles and their classified
// publications in SQLite. Publications are de-duplicated per profile by the
// phonetic key of their title, and each profile's batch is written in a
// single transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-audit/internal/similarity"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

// ErrLocked is returned by Open when another process holds the database.
var ErrLocked = errors.New("database is in use by another process")

// Store manages the audit SQLite database.
type Store struct {
	db   *sql.DB
	lock *flock.Flock

	mu       sync.Mutex
	profiles map[string]*sync.Mutex
}

// Stats holds row counts of the store.
type Stats struct {
	Profiles     int `json:"profiles" yaml:"profiles"`
	Publications int `json:"publications" yaml:"publications"`
	Valid        int `json:"valid" yaml:"valid"`
	Doubtful     int `json:"doubtful" yaml:"doubtful"`
}

// Open opens or creates the database at path and its schema. A lock file
// next to the database keeps a second process from writing concurrently.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking database: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, lock: lock, profiles: map[string]*sync.Mutex{}}
	if err := s.createSchema(); err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection and the lock file.
func (s *Store) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			affiliation TEXT,
			email TEXT,
			updated_at TEXT,
			classified_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_id INTEGER NOT NULL REFERENCES profiles(id),
			title TEXT NOT NULL CHECK (length(title) > 0),
			title_key TEXT NOT NULL,
			authors TEXT,
			year TEXT,
			venue TEXT,
			name_match INTEGER NOT NULL,
			affiliation_match INTEGER NOT NULL,
			sdg_related INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK (status IN ('YA', 'TIDAK')),
			source_url TEXT UNIQUE,
			created_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_profile ON publications(profile_id, title_key)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_status ON publications(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return s.migrateClassifiedAt()
}

// migrateClassifiedAt adds the completion column to databases created before
// it existed. Profiles that already have publications count as complete.
func (s *Store) migrateClassifiedAt() error {
	var n int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('profiles') WHERE name = 'classified_at'`,
	).Scan(&n); err != nil {
		return fmt.Errorf("inspecting profiles table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.db.Exec(`ALTER TABLE profiles ADD COLUMN classified_at TEXT`); err != nil {
		return fmt.Errorf("adding classified_at: %w", err)
	}
	if _, err := s.db.Exec(
		`UPDATE profiles SET classified_at = COALESCE(updated_at, '')
		 WHERE id IN (SELECT profile_id FROM publications)`,
	); err != nil {
		return fmt.Errorf("backfilling classified_at: %w", err)
	}
	return nil
}

func (s *Store) profileLock(externalID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.profiles[externalID]
	if !ok {
		m = &sync.Mutex{}
		s.profiles[externalID] = m
	}
	return m
}

// TitleKey is the de-duplication key of a title: its phonetic key, or the
// folded title when it has no letters.
func TitleKey(title string) string {
	if k := similarity.TitleKey(title); k != "" {
		return k
	}
	return "#" + similarity.Fold(title)
}

// Persist stores the publications of a fully classified profile and marks
// the profile complete. See PersistPartial for the write semantics.
func (s *Store) Persist(ctx context.Context, profile types.AcceptedProfile, pubs []types.PublicationRecord) (int, error) {
	return s.persist(ctx, profile, pubs, true)
}

// PersistPartial writes profile and its publications in one transaction and
// returns the number of publications inserted. It leaves the profile's
// completion mark as it was, so an interrupted profile is classified again
// by a later run. Publications whose title key
// is already stored for the profile, or repeats within pubs, are skipped, as
// are rows whose source URL is already stored. Any error rolls back the
// whole batch, profile upsert included. Replaying a batch inserts nothing.
func (s *Store) PersistPartial(ctx context.Context, profile types.AcceptedProfile, pubs []types.PublicationRecord) (int, error) {
	return s.persist(ctx, profile, pubs, false)
}

func (s *Store) persist(ctx context.Context, profile types.AcceptedProfile, pubs []types.PublicationRecord, complete bool) (int, error) {
	m := s.profileLock(profile.ExternalID)
	m.Lock()
	defer m.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	var classifiedAt sql.NullString
	if complete {
		classifiedAt = nullable(now)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (external_id, name, affiliation, email, updated_at, classified_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
			name = excluded.name,
			affiliation = excluded.affiliation,
			email = excluded.email,
			updated_at = excluded.updated_at,
			classified_at = COALESCE(excluded.classified_at, profiles.classified_at)`,
		profile.ExternalID, profile.DisplayName, profile.AffiliationText, profile.Email, now, classifiedAt,
	); err != nil {
		return 0, fmt.Errorf("upserting profile %s: %w", profile.ExternalID, err)
	}

	var profileID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM profiles WHERE external_id = ?`, profile.ExternalID,
	).Scan(&profileID); err != nil {
		return 0, fmt.Errorf("reading profile id %s: %w", profile.ExternalID, err)
	}

	seen, err := existingKeys(ctx, tx, profileID)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO publications
			(profile_id, title, title_key, authors, year, venue,
			 name_match, affiliation_match, sdg_related, status, source_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_url) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range pubs {
		key := TitleKey(p.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		res, err := stmt.ExecContext(ctx,
			profileID, p.Title, key, p.AuthorsText(), p.Year.String(), p.Venue,
			p.NameMatch, p.AffiliationMatch, p.SDGRelated, p.Status().Code(),
			nullable(p.SourceURL), now,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting publication %q: %w", p.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting inserted rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing profile %s: %w", profile.ExternalID, err)
	}
	return inserted, nil
}

func existingKeys(ctx context.Context, tx *sql.Tx, profileID int64) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT title_key FROM publications WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("loading title keys: %w", err)
	}
	defer rows.Close()

	keys := map[string]bool{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning title key: %w", err)
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ProcessedIDs returns the external IDs of profiles whose classification
// completed at least once.
func (s *Store) ProcessedIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT external_id FROM profiles WHERE classified_at IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("querying processed profiles: %w", err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning profile id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ReportRows returns every stored publication joined with its profile,
// doubtful rows first, then by name match and affiliation match descending,
// then by owner name and title.
func (s *Store) ReportRows(ctx context.Context) ([]types.ReportRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.external_id, p.name, COALESCE(p.affiliation, ''), COALESCE(p.email, ''),
			u.title, COALESCE(u.authors, ''), COALESCE(u.year, ''), COALESCE(u.venue, ''),
			u.name_match, u.affiliation_match, u.sdg_related, u.status, COALESCE(u.source_url, '')
		 FROM publications u JOIN profiles p ON u.profile_id = p.id
		 ORDER BY u.status ASC, u.name_match DESC, u.affiliation_match DESC, p.name ASC, u.title ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying report rows: %w", err)
	}
	defer rows.Close()

	var out []types.ReportRow
	for rows.Next() {
		var r types.ReportRow
		var code string
		if err := rows.Scan(&r.ExternalID, &r.Name, &r.Affiliation, &r.Email,
			&r.Title, &r.Authors, &r.Year, &r.Venue,
			&r.NameMatch, &r.AffiliationMatch, &r.SDGRelated, &code, &r.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		r.Status = types.StatusFromCode(code)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Counts returns row counts for the run summary.
func (s *Store) Counts(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM profiles`).Scan(&st.Profiles); err != nil {
		return st, fmt.Errorf("counting profiles: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(SUM(status = 'YA'), 0) FROM publications`,
	).Scan(&st.Publications, &st.Valid); err != nil {
		return st, fmt.Errorf("counting publications: %w", err)
	}
	st.Doubtful = st.Publications - st.Valid
	return st, nil
}

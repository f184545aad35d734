// Package flagstore persists the per-user flag sets (liked, bookmarked)
// as set membership in SQLite. Membership survives restarts; toggles
// notify subscribers so derived views can refresh.
package flagstore

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go driver

	xlog "github.com/reelfeed/reelfeed/internal/log"
)

// Set names used throughout the module. Arbitrary set names are
// accepted; these two are the ones the feed toggles.
const (
	SetLiked      = "liked"
	SetBookmarked = "bookmarked"
)

const schema = `
CREATE TABLE IF NOT EXISTS set_membership (
	set_name TEXT NOT NULL,
	video_id INTEGER NOT NULL,
	added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (set_name, video_id)
);`

// Store is a SQLite-backed collection of named int64 sets.
type Store struct {
	db  *sql.DB
	log zerolog.Logger

	mu        sync.Mutex
	nextSub   int
	listeners map[int]func(set string)
}

// Open opens (creating if needed) the store at dbPath. WAL mode and a
// busy timeout are enforced via DSN pragmas so they apply to every
// connection in the pool.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		dbPath, (5 * time.Second).Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("flagstore: open failed: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; reads are rare and tiny
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("flagstore: ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("flagstore: migrate failed: %w", err)
	}

	return &Store{
		db:        db,
		log:       xlog.WithComponent("flagstore"),
		listeners: make(map[int]func(string)),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsMember reports whether id belongs to set.
func (s *Store) IsMember(set string, id int64) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM set_membership WHERE set_name = ? AND video_id = ?`, set, id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("flagstore: query %s: %w", set, err)
	}
	return true, nil
}

// Toggle flips id's membership in set and returns the new state.
func (s *Store) Toggle(set string, id int64) (bool, error) {
	member, err := s.IsMember(set, id)
	if err != nil {
		return false, err
	}
	if err := s.SetMember(set, id, !member); err != nil {
		return false, err
	}
	return !member, nil
}

// SetMember adds or removes id from set. Idempotent in both directions.
func (s *Store) SetMember(set string, id int64, member bool) error {
	var err error
	if member {
		_, err = s.db.Exec(
			`INSERT OR IGNORE INTO set_membership (set_name, video_id) VALUES (?, ?)`, set, id)
	} else {
		_, err = s.db.Exec(
			`DELETE FROM set_membership WHERE set_name = ? AND video_id = ?`, set, id)
	}
	if err != nil {
		return fmt.Errorf("flagstore: write %s: %w", set, err)
	}
	s.log.Debug().
		Str(xlog.FieldSet, set).
		Int64(xlog.FieldVideoID, id).
		Bool("member", member).
		Msg("flag updated")
	s.notify(set)
	return nil
}

// AllMembers returns the ids in set, most recently added first.
func (s *Store) AllMembers(set string) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT video_id FROM set_membership WHERE set_name = ? ORDER BY added_at DESC, video_id DESC`, set)
	if err != nil {
		return nil, fmt.Errorf("flagstore: list %s: %w", set, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("flagstore: scan %s: %w", set, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flagstore: iterate %s: %w", set, err)
	}
	return ids, nil
}

// ClearAll empties every set.
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec(`DELETE FROM set_membership`); err != nil {
		return fmt.Errorf("flagstore: clear: %w", err)
	}
	return nil
}

// Subscribe registers fn to run after any membership change, with the
// affected set's name. Returns a cancel func. Callbacks run on the
// mutating goroutine and must not block.
func (s *Store) Subscribe(fn func(set string)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(set string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(set)
	}
}

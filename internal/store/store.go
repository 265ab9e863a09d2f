// Package store records gaze sessions in SQLite so they can be replayed later.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
	_ "modernc.org/sqlite"

	"gaze-heatmap/internal/monitoring"
	"gaze-heatmap/pkg/heatmap"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one recording: the painter settings it ran with and its samples.
type Session struct {
	ID        string
	CreatedAt time.Time
	Label     string
	Config    heatmap.Config
}

// Sample is one painted gaze sample.
type Sample struct {
	Seq        int
	RecordedAt time.Time
	UV         r2.Point
	World      r3.Vec
}

// Store is a SQLite-backed session log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases and pragmas consistent.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	n, err := migrate(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if n > 0 {
		monitoring.Logf("store %s: applied %d migrations", path, n)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession starts a new recording.
func (s *Store) CreateSession(label string, cfg heatmap.Config) (Session, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode session config: %w", err)
	}
	sess := Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Label:     label,
		Config:    cfg,
	}
	_, err = s.db.Exec(
		"INSERT INTO sessions (id, created_at, label, config) VALUES (?, ?, ?, ?)",
		sess.ID, sess.CreatedAt.UnixNano(), sess.Label, string(raw),
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

// Session loads one session by id.
func (s *Store) Session(id string) (Session, error) {
	row := s.db.QueryRow("SELECT id, created_at, label, config FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, err
}

// Sessions lists every session, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query("SELECT id, created_at, label, config FROM sessions ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess    Session
		created int64
		raw     string
	)
	if err := row.Scan(&sess.ID, &created, &sess.Label, &raw); err != nil {
		return Session{}, err
	}
	sess.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(raw), &sess.Config); err != nil {
		return Session{}, fmt.Errorf("failed to decode config of session %s: %w", sess.ID, err)
	}
	return sess, nil
}

// AppendSample stores the next sample of a session and returns its sequence number.
func (s *Store) AppendSample(sessionID string, uv r2.Point, world r3.Vec) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRow("SELECT COALESCE(MAX(seq), -1) + 1 FROM samples WHERE session_id = ?", sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sample seq: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO samples (session_id, seq, recorded_at, u, v, world_x, world_y, world_z)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, s.now().UnixNano(), uv.X, uv.Y, world.X, world.Y, world.Z,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sample: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sample: %w", err)
	}
	return seq, nil
}

// Samples returns a session's samples in recording order.
func (s *Store) Samples(sessionID string) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT seq, recorded_at, u, v, world_x, world_y, world_z
		 FROM samples WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			smp Sample
			at  int64
		)
		if err := rows.Scan(&smp.Seq, &at, &smp.UV.X, &smp.UV.Y, &smp.World.X, &smp.World.Y, &smp.World.Z); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		smp.RecordedAt = time.Unix(0, at).UTC()
		out = append(out, smp)
	}
	return out, rows.Err()
}

// AppendClear records that the heatmap was cleared after the samples stored so far.
// It returns the sequence number of the first sample the clear precedes. Repeated
// clears with no sample in between collapse into one.
func (s *Store) AppendClear(sessionID string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRow("SELECT COALESCE(MAX(seq), -1) + 1 FROM samples WHERE session_id = ?", sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate clear seq: %w", err)
	}
	_, err = tx.Exec(
		"INSERT INTO clears (session_id, seq, recorded_at) VALUES (?, ?, ?) ON CONFLICT (session_id, seq) DO NOTHING",
		sessionID, seq, s.now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert clear: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}
	return seq, nil
}

// Clears returns the clear markers of a session in ascending order. A marker n means
// the heatmap was cleared before sample n.
func (s *Store) Clears(sessionID string) ([]int, error) {
	rows, err := s.db.Query("SELECT seq FROM clears WHERE session_id = ? ORDER BY seq", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clears: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("failed to scan clear: %w", err)
		}
		out = append(out, seq)
	}
	return out, rows.Err()
}

// SessionRecorder appends gaze samples and clears to one session.
type SessionRecorder struct {
	store     *Store
	sessionID string
}

// Recorder returns a recorder for sessionID.
func (s *Store) Recorder(sessionID string) *SessionRecorder {
	return &SessionRecorder{store: s, sessionID: sessionID}
}

// RecordSample appends one sample.
func (r *SessionRecorder) RecordSample(uv r2.Point, world r3.Vec) error {
	_, err := r.store.AppendSample(r.sessionID, uv, world)
	return err
}

// RecordClear appends a clear marker.
func (r *SessionRecorder) RecordClear() error {
	_, err := r.store.AppendClear(r.sessionID)
	return err
}

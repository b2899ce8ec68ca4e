// Package storage keeps match history in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished online match.
type MatchRecord struct {
	ID           int64
	MatchID      string
	RoomID       int
	LevelID      string
	BlueSession  string
	GreenSession string
	Winner       string // colour; empty if nobody won
	EndReason    string // "defeat", "disconnect", "shutdown"
	Message      string
	Ticks        uint64
	Duration     int // seconds
	CreatedAt    time.Time
}

// SkirmishRecord is one finished single-player game.
type SkirmishRecord struct {
	ID        int64
	LevelID   string
	Team      string
	Won       bool
	Message   string
	Ticks     uint64
	CreatedAt time.Time
}

// TeamStats aggregates online results per colour.
type TeamStats struct {
	Team   string
	Wins   int
	Played int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath = config.ExpandHome(dbPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// one writer; the coordinator saves from goroutines
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			room_id INTEGER NOT NULL,
			level_id TEXT NOT NULL,
			blue_session TEXT NOT NULL,
			green_session TEXT NOT NULL,
			winner TEXT,
			end_reason TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_level ON matches(level_id);
		CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner);

		CREATE TABLE IF NOT EXISTS skirmishes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			team TEXT NOT NULL,
			won INTEGER NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_skirmishes_level ON skirmishes(level_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished online match and returns its row id.
func (s *Store) SaveMatch(m MatchRecord) (int64, error) {
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO matches
		 (match_id, room_id, level_id, blue_session, green_session, winner, end_reason, message, ticks, duration_secs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID,
		m.RoomID,
		m.LevelID,
		m.BlueSession,
		m.GreenSession,
		nullString(m.Winner),
		m.EndReason,
		m.Message,
		int64(m.Ticks),
		m.Duration,
		created.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// SaveMatchResult implements lockstep.MatchResultSaver.
func (s *Store) SaveMatchResult(data lockstep.MatchResultData) error {
	_, err := s.SaveMatch(MatchRecord{
		MatchID:      data.MatchID,
		RoomID:       data.RoomID,
		LevelID:      data.LevelID,
		BlueSession:  data.BlueSession,
		GreenSession: data.GreenSession,
		Winner:       data.Winner,
		EndReason:    data.EndReason,
		Message:      data.Message,
		Ticks:        data.Ticks,
		Duration:     data.DurationSecs,
		CreatedAt:    data.EndedAt,
	})
	return err
}

var _ lockstep.MatchResultSaver = (*Store)(nil)

const matchColumns = `id, match_id, room_id, level_id, blue_session, green_session,
	winner, end_reason, message, ticks, duration_secs, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (MatchRecord, error) {
	var (
		m         MatchRecord
		winner    sql.NullString
		ticks     int64
		createdAt any
	)
	err := row.Scan(
		&m.ID,
		&m.MatchID,
		&m.RoomID,
		&m.LevelID,
		&m.BlueSession,
		&m.GreenSession,
		&winner,
		&m.EndReason,
		&m.Message,
		&ticks,
		&m.Duration,
		&createdAt,
	)
	if err != nil {
		return m, err
	}
	m.Winner = winner.String
	m.Ticks = uint64(ticks)
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// MatchByID returns the match with the given match id, or nil.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	m, err := scanMatch(s.db.QueryRow(
		`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &m, nil
}

// RecentMatches returns the newest matches first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// TeamStats returns wins and games played per colour, ordered by colour.
// Matches without a winner count as played for both colours.
func (s *Store) TeamStats() ([]TeamStats, error) {
	rows, err := s.db.Query(`
		SELECT team, SUM(won), COUNT(*) FROM (
			SELECT 'blue' AS team, CASE WHEN winner = 'blue' THEN 1 ELSE 0 END AS won FROM matches
			UNION ALL
			SELECT 'green' AS team, CASE WHEN winner = 'green' THEN 1 ELSE 0 END AS won FROM matches
		)
		GROUP BY team
		ORDER BY team`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get team stats: %w", err)
	}
	defer rows.Close()

	var out []TeamStats
	for rows.Next() {
		var ts TeamStats
		if err := rows.Scan(&ts.Team, &ts.Wins, &ts.Played); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// SaveSkirmish records a finished single-player game.
func (s *Store) SaveSkirmish(r SkirmishRecord) (int64, error) {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	won := 0
	if r.Won {
		won = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO skirmishes (level_id, team, won, message, ticks, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.LevelID, r.Team, won, r.Message, int64(r.Ticks), created.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save skirmish: %w", err)
	}
	return res.LastInsertId()
}

// RecentSkirmishes returns the newest single-player games first.
func (s *Store) RecentSkirmishes(limit int) ([]SkirmishRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, level_id, team, won, message, ticks, created_at
		 FROM skirmishes ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query skirmishes: %w", err)
	}
	defer rows.Close()

	var out []SkirmishRecord
	for rows.Next() {
		var (
			r         SkirmishRecord
			won       int
			ticks     int64
			createdAt any
		)
		if err := rows.Scan(&r.ID, &r.LevelID, &r.Team, &won, &r.Message, &ticks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Won = won != 0
		r.Ticks = uint64(ticks)
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string values from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

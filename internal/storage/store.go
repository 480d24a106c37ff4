package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Room statuses recorded in the ledger.
const (
	StatusLobby    = "lobby"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// RoomRow represents a room in the database.
type RoomRow struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResultRow is the final score of a finished game.
type ResultRow struct {
	RoomID     string    `json:"roomId"`
	Team0Score int       `json:"team0Score"`
	Team1Score int       `json:"team1Score"`
	WinnerTeam int       `json:"winnerTeam"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Store is an SQLite ledger of rooms and finished games. Live game state
// is never written here.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// :memory: databases are per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS rooms (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL DEFAULT 'lobby',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS results (
			room_id     TEXT PRIMARY KEY,
			team0_score INTEGER NOT NULL,
			team1_score INTEGER NOT NULL,
			winner_team INTEGER NOT NULL,
			finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// CreateRoom inserts a new room in the lobby state.
func (s *Store) CreateRoom(id string) error {
	_, err := s.db.Exec("INSERT INTO rooms (id, status) VALUES (?, ?)", id, StatusLobby)
	return err
}

// GetRoom retrieves a room by id.
func (s *Store) GetRoom(id string) (*RoomRow, error) {
	row := s.db.QueryRow("SELECT id, status, created_at, updated_at FROM rooms WHERE id = ?", id)
	var r RoomRow
	if err := row.Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRoomStatus changes a room's status and touches updated_at.
func (s *Store) UpdateRoomStatus(id, status string) error {
	_, err := s.db.Exec(
		"UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	return err
}

// ListRooms returns all rooms with the given status (or all if status is empty).
func (s *Store) ListRooms(status string) ([]RoomRow, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query("SELECT id, status, created_at, updated_at FROM rooms ORDER BY created_at DESC, id")
	} else {
		rows, err = s.db.Query("SELECT id, status, created_at, updated_at FROM rooms WHERE status = ? ORDER BY created_at DESC, id", status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []RoomRow
	for rows.Next() {
		var r RoomRow
		if err := rows.Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecordResult stores the final score of a room and marks it finished.
// Recording the same room twice keeps the latest score.
func (s *Store) RecordResult(roomID string, scores [2]int, winner int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO results (room_id, team0_score, team1_score, winner_team, finished_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(room_id) DO UPDATE SET
			team0_score = excluded.team0_score,
			team1_score = excluded.team1_score,
			winner_team = excluded.winner_team,
			finished_at = excluded.finished_at
	`, roomID, scores[0], scores[1], winner); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	if _, err := tx.Exec(
		"UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		StatusFinished, roomID,
	); err != nil {
		return fmt.Errorf("finish room: %w", err)
	}
	return tx.Commit()
}

// GetResult retrieves the result for a room.
func (s *Store) GetResult(roomID string) (*ResultRow, error) {
	row := s.db.QueryRow(
		"SELECT room_id, team0_score, team1_score, winner_team, finished_at FROM results WHERE room_id = ?",
		roomID,
	)
	var r ResultRow
	if err := row.Scan(&r.RoomID, &r.Team0Score, &r.Team1Score, &r.WinnerTeam, &r.FinishedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResults returns up to limit results, newest first. A non-positive
// limit returns everything.
func (s *Store) ListResults(limit int) ([]ResultRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		"SELECT room_id, team0_score, team1_score, winner_team, finished_at FROM results ORDER BY finished_at DESC, room_id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ResultRow{}
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.RoomID, &r.Team0Score, &r.Team1Score, &r.WinnerTeam, &r.FinishedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteRoom removes a room. Its result, if any, is kept.
func (s *Store) DeleteRoom(id string) error {
	_, err := s.db.Exec("DELETE FROM rooms WHERE id = ?", id)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

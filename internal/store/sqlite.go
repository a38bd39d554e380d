package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devaloi/pairline/internal/domain"
)

// SQLiteStore implements RoomStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for a database that lives only as long as the process.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own database.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS members (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			user_id TEXT NOT NULL,
			joined_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_members_room_seq ON members(room_id, seq);
	`)
	return err
}

// CreateRoom inserts an empty room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO rooms (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING",
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert room %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert room %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrRoomExists
	}
	return nil
}

// AddMember appends a user to a room. Duplicate users are kept.
func (s *SQLiteStore) AddMember(ctx context.Context, id, user string) error {
	ok, err := s.roomExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrRoomNotFound
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO members (room_id, user_id, joined_at) VALUES (?, ?, ?)",
		id, user, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert member %s/%s: %w", id, user, err)
	}
	return nil
}

// Members returns a room's members in join order.
func (s *SQLiteStore) Members(ctx context.Context, id string) ([]string, error) {
	ok, err := s.roomExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM members WHERE room_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("query members %s: %w", id, err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// ListRooms returns every room with its members, ordered by id.
func (s *SQLiteStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, m.user_id FROM rooms r
		LEFT JOIN members m ON m.room_id = r.id
		ORDER BY r.id, m.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		var (
			id   string
			user sql.NullString
		)
		if err := rows.Scan(&id, &user); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		if len(rooms) == 0 || rooms[len(rooms)-1].ID != id {
			rooms = append(rooms, domain.Room{ID: id, Members: []string{}})
		}
		if user.Valid {
			last := &rooms[len(rooms)-1]
			last.Members = append(last.Members, user.String)
		}
	}
	return rooms, rows.Err()
}

func (s *SQLiteStore) roomExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup room %s: %w", id, err)
	}
	return true, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

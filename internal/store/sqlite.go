package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/tmaziere/taskboard/internal/models"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLite is the optional durable backend. The default DSN is ":memory:",
// which keeps state as volatile as the memory backend; pointing STORE_DSN
// at a file opts into durability.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database and applies the schema.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection serializes mutations and is required for an
	// in-memory database to see its own schema.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		username TEXT NOT NULL PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		username TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(sqlStmt)
	return err
}

func (s *SQLite) CreateUser(username, passwordHash string) error {
	// Let the primary key arbitrate duplicates: a check-then-insert would
	// race with a concurrent registration for the same name.
	_, err := s.db.Exec("INSERT INTO users(username, password_hash) VALUES(?, ?)", username, passwordHash)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrUsernameTaken
	}
	return err
}

func (s *SQLite) PasswordHash(username string) (string, error) {
	var hash string
	err := s.db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *SQLite) UserExists(username string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLite) ListTasks(username string) ([]models.Task, error) {
	// rowid preserves insertion order.
	rows, err := s.db.Query("SELECT id, description, created_at FROM tasks WHERE username = ? ORDER BY rowid", username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Description, &task.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLite) GetTask(username, taskID string) (models.Task, error) {
	var task models.Task
	row := s.db.QueryRow("SELECT id, description, created_at FROM tasks WHERE username = ? AND id = ?", username, taskID)
	err := row.Scan(&task.ID, &task.Description, &task.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// sqlTime renders a timestamp the way CURRENT_TIMESTAMP stores it, so text
// comparisons against the column stay exact.
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func (s *SQLite) InsertTask(username string, task models.Task) error {
	_, err := s.db.Exec("INSERT INTO tasks(id, username, description, created_at) VALUES(?, ?, ?, ?)",
		task.ID, username, task.Description, sqlTime(task.CreatedAt))
	return err
}

func (s *SQLite) UpdateTask(username, taskID, description string) error {
	res, err := s.db.Exec("UPDATE tasks SET description = ? WHERE username = ? AND id = ?", description, username, taskID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *SQLite) DeleteTask(username, taskID string) error {
	_, err := s.db.Exec("DELETE FROM tasks WHERE username = ? AND id = ?", username, taskID)
	return err
}

func (s *SQLite) InsertEvent(event models.Event) error {
	_, err := s.db.Exec("INSERT INTO events(id, type, level, message, username, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.Username, sqlTime(event.CreatedAt))
	return err
}

func (s *SQLite) RecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, username, created_at FROM events ORDER BY rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.Username, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *SQLite) PruneEvents(olderThan time.Time) (int, error) {
	res, err := s.db.Exec("DELETE FROM events WHERE created_at < ?", sqlTime(olderThan))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLite) Counts() (int, int, error) {
	var users, tasks int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&users); err != nil {
		return 0, 0, err
	}
	if err := s.db.QueryRow("SELECT COUNT(1) FROM tasks").Scan(&tasks); err != nil {
		return 0, 0, err
	}
	return users, tasks, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-notifier/entity"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// DateLayout is the storage format of task due dates.
const DateLayout = "2006-01-02"

// Store is the SQL repository behind the handlers.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (username, password, created_at) VALUES (?, ?, ?)",
		username, passwordHash, time.Now().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}
	return int(id), nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (entity.User, error) {
	var u entity.User
	err := s.DB.QueryRowContext(ctx, "SELECT id, password FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("query user: %w", err)
	}
	u.Username = username
	return u, nil
}

const taskColumns = "id, user_id, title, status, priority, due_date, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (entity.Task, error) {
	var (
		t                             entity.Task
		priority                      string
		dueDate, createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &priority, &dueDate, &createdAt, &updatedAt); err != nil {
		return t, err
	}
	t.Priority = entity.Priority(priority)
	t.DueDate = parseDate(dueDate)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return t, nil
}

// Malformed stored dates degrade to the zero time.
func parseDate(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (s *Store) CreateTask(ctx context.Context, t entity.Task) (entity.Task, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO tasks (user_id, title, status, priority, due_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.UserID, t.Title, t.Status, string(t.Priority), formatDate(t.DueDate), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return t, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return t, fmt.Errorf("task id: %w", err)
	}
	t.ID = int(id)
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, userID, id int) (entity.Task, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("query task %d: %w", id, err)
	}
	return t, nil
}

// TaskFilter narrows ListTasks. Zero values mean no filter.
type TaskFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// ListTasks returns one page of tasks and the total number of matches.
func (s *Store) ListTasks(ctx context.Context, userID int, f TaskFilter) ([]entity.Task, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	where := "WHERE user_id = ?"
	args := []interface{}{userID}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where += " AND LOWER(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks "+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func collectTasks(rows *sql.Rows) ([]entity.Task, error) {
	defer rows.Close()
	tasks := []entity.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask overwrites the mutable fields of t.
func (s *Store) UpdateTask(ctx context.Context, t entity.Task) (entity.Task, error) {
	t.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.DB.ExecContext(ctx,
		"UPDATE tasks SET title = ?, status = ?, priority = ?, due_date = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		t.Title, t.Status, string(t.Priority), formatDate(t.DueDate), t.UpdatedAt.Format(time.RFC3339), t.ID, t.UserID)
	if err != nil {
		return t, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return t, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if affected == 0 {
		return t, ErrNotFound
	}
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id int) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

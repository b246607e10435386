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

const notificationColumns = "id, user_id, task_id, kind, title, message, priority, read, created_at"

func scanNotification(row rowScanner) (entity.Notification, error) {
	var (
		n         entity.Notification
		priority  string
		createdAt string
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Kind, &n.Title, &n.Message, &priority, &n.Read, &createdAt); err != nil {
		return n, err
	}
	n.Priority = entity.Priority(priority)
	n.CreatedAt = parseTimestamp(createdAt)
	return n, nil
}

func collectNotifications(rows *sql.Rows) ([]entity.Notification, error) {
	defer rows.Close()
	ns := []entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

func (s *Store) InsertNotification(ctx context.Context, n entity.Notification) (int, error) {
	if n.Kind == "" {
		n.Kind = entity.KindGeneral
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, task_id, kind, title, message, priority, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		n.UserID, n.TaskID, n.Kind, n.Title, n.Message, string(n.Priority), n.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("notification id: %w", err)
	}
	return int(id), nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int) ([]entity.Notification, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return collectNotifications(rows)
}

// MarkNotificationsRead marks the given notifications of userID as read.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID int, ids []int) error {
	return s.flagNotifications(ctx, "read", userID, ids)
}

// DismissPopupNotifications keeps the given notifications out of future login popups.
func (s *Store) DismissPopupNotifications(ctx context.Context, userID int, ids []int) error {
	return s.flagNotifications(ctx, "popup_dismissed", userID, ids)
}

func (s *Store) flagNotifications(ctx context.Context, column string, userID int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	query := fmt.Sprintf("UPDATE notifications SET %s = 1 WHERE user_id = ? AND id IN (%s)", column, placeholders)
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("flag notifications %s: %w", column, err)
	}
	return nil
}

// LoadBundle assembles the login summary of userID as of now. Overdue and
// due-today tasks exclude done tasks; popup notifications are unread, not yet
// dismissed from a popup, newest first. Counts come from separate COUNT
// queries and are not derived from the lists.
func (s *Store) LoadBundle(ctx context.Context, userID int, now time.Time) (*entity.NotificationBundle, error) {
	today := now.Format(DateLayout)
	b := &entity.NotificationBundle{}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND status != ? AND due_date != '' AND due_date < ? ORDER BY due_date ASC, id ASC",
		userID, entity.StatusDone, today)
	if err != nil {
		return nil, fmt.Errorf("query overdue tasks: %w", err)
	}
	if b.OverdueTasks, err = collectTasks(rows); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? AND status != ? AND due_date = ? ORDER BY id ASC",
		userID, entity.StatusDone, today)
	if err != nil {
		return nil, fmt.Errorf("query tasks due today: %w", err)
	}
	if b.TasksDueToday, err = collectTasks(rows); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = ? AND read = 0 AND popup_dismissed = 0 AND kind != ? ORDER BY created_at DESC, id DESC",
		userID, entity.KindWelcome)
	if err != nil {
		return nil, fmt.Errorf("query popup notifications: %w", err)
	}
	if b.PopupNotifications, err = collectNotifications(rows); err != nil {
		return nil, err
	}

	welcome, err := scanNotification(s.DB.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = ? AND kind = ? AND read = 0 ORDER BY created_at DESC, id DESC LIMIT 1",
		userID, entity.KindWelcome))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("query welcome notification: %w", err)
	default:
		b.WelcomeNotification = &welcome
	}

	err = s.DB.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0),
		(SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status != ? AND due_date != '' AND due_date < ?),
		(SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status != ? AND due_date = ?)`,
		userID, userID, entity.StatusDone, today, userID, entity.StatusDone, today).
		Scan(&b.Summary.TotalUnread, &b.Summary.OverdueCount, &b.Summary.DueTodayCount)
	if err != nil {
		return nil, fmt.Errorf("count summary: %w", err)
	}
	return b, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Helmus101/confluence/internal/entity"
)

// ErrNotificationNotFound indicates the notification does not exist for the user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationsRepository persists in-app notifications.
type NotificationsRepository interface {
	Create(ctx context.Context, n entity.Notification) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

// PGXNotificationsRepository implements NotificationsRepository using pgx.
type PGXNotificationsRepository struct {
	pool pgxPool
}

// NewPGXNotificationsRepository wires a pgx backed repository.
func NewPGXNotificationsRepository(pool *pgxpool.Pool) *PGXNotificationsRepository {
	return &PGXNotificationsRepository{pool: pool}
}

const notificationColumns = `id, user_id, type, title, message, intro_request_id, read, created_at`

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IntroRequestID, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create stores a notification.
func (r *PGXNotificationsRepository) Create(ctx context.Context, in entity.Notification) (*entity.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `
        INSERT INTO notifications (user_id, type, title, message, intro_request_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+notificationColumns,
		in.UserID, in.Type, in.Title, in.Message, in.IntroRequestID))
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListByUser returns the newest notifications for a user.
func (r *PGXNotificationsRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// CountUnread returns the number of unread notifications.
func (r *PGXNotificationsRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one notification as read. Only the owner can do so.
func (r *PGXNotificationsRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (r *PGXNotificationsRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

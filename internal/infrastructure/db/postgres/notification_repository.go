package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const notificationColumns = `id, kind, title, message, link, is_read, created_at, updated_at`

type NotificationRepository struct {
	db *sqlx.DB
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationRow struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Link      string    `db:"link"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r notificationRow) toDomain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		Kind:      domain.NotificationKind(r.Kind),
		Title:     r.Title,
		Message:   r.Message,
		Link:      r.Link,
		Read:      r.IsRead,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, string(n.Kind), n.Title, n.Message, n.Link, n.Read, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, filter ports.NotificationFilter) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications`
	if filter.UnreadOnly {
		query += ` WHERE is_read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, filter.Limit); err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM notifications WHERE is_read = false`); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead does not filter on is_read so a second call still returns the row.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	var row notificationRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE notifications SET is_read = true, updated_at = $2
		WHERE id = $1
		RETURNING `+notificationColumns, id, at)
	if missing(err) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n := row.toDomain()
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, updated_at = $1 WHERE is_read = false
	`, at)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.RowsAffected()
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if missing(err) {
		return domain.ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return notFound(res, domain.ErrNotificationNotFound)
}

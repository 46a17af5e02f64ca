package catalogdb

import (
	"context"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateNotification(ctx context.Context, n *catalogmodel.Notification) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (id, type, message, read) VALUES ($1,$2,$3,$4) RETURNING created_at`,
		n.ID, n.Type, n.Message, n.Read).Scan(&n.CreatedAt)
}

func (s *PostgresStore) ListNotifications(ctx context.Context, unreadOnly bool) ([]*catalogmodel.Notification, error) {
	query := `SELECT id, type, message, read, created_at FROM notifications`
	if unreadOnly {
		query += ` WHERE NOT read`
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.Notification
	for rows.Next() {
		n := &catalogmodel.Notification{}
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE notifications SET read=true WHERE id=$1`, id)
	return err
}

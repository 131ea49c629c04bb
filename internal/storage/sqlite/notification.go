package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/kdiomande/rewards-platform/internal/notification"
)

type notificationSink struct {
	q dbtx
}

var _ notification.Sink = (*notificationSink)(nil)

// Append inserts a row; the table is append-only, never updated.
func (s *notificationSink) Append(ctx context.Context, accountID int64, message string) error {
	const q = `
		INSERT INTO notifications (account_id, message, created_at)
		VALUES (?, ?, ?)`

	if _, err := s.q.ExecContext(ctx, q, accountID, message, formatTime(time.Now())); err != nil {
		return fmt.Errorf("sqlite: append notification for account %d: %w", accountID, err)
	}
	return nil
}

func (s *notificationSink) ListByAccount(ctx context.Context, accountID int64) ([]notification.Notification, error) {
	const q = `
		SELECT id, account_id, message, created_at
		FROM   notifications
		WHERE  account_id = ?
		ORDER  BY created_at DESC, id DESC`

	rows, err := s.q.QueryContext(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list notifications for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		var n notification.Notification
		var created string
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Message, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan notification: %w", err)
		}
		if n.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

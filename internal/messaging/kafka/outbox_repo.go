package kafka

import (
	"context"
	"database/sql"
	"time"
	"unicode/utf8"
)

// A failed row waits RetryStep per attempt so far, up to MaxRetryDelay.
const (
	RetryStep     = 15 * time.Second
	MaxRetryDelay = 10 * RetryStep
)

const (
	insertOutboxSQL = `INSERT INTO outbox_events
    (id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	// Anything not yet sent is due once its retry time has passed.
	selectDueOutboxSQL = `SELECT id::text, COALESCE(request_id, ''), aggregate_type, aggregate_id,
       event_type, topic, payload, status, retry_count, COALESCE(next_retry_at, created_at)
  FROM outbox_events
 WHERE status <> $1
   AND COALESCE(next_retry_at, created_at) <= NOW()
 ORDER BY created_at, id
 LIMIT $2`

	markOutboxSentSQL = `UPDATE outbox_events
   SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW()
 WHERE id = $1`

	// retry_count on the right-hand side is the value before this update.
	markOutboxFailedSQL = `UPDATE outbox_events
   SET status = $2,
       retry_count = retry_count + 1,
       error_message = $3,
       next_retry_at = NOW() + LEAST((retry_count + 1) * make_interval(secs => $4), make_interval(secs => $5)),
       updated_at = NOW()
 WHERE id = $1`
)

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// sqlConn is satisfied by both *sql.DB and *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type outboxRepository struct {
	db   *sql.DB
	conn sqlConn
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db, conn: db}
}

// WithTx binds writes to tx so the event commits with the change it describes.
func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, conn: tx}
}

func (r *outboxRepository) Create(ctx context.Context, e OutboxEvent) error {
	if err := ValidateOutboxEvent(e); err != nil {
		return err
	}
	_, err := r.conn.ExecContext(ctx, insertOutboxSQL,
		e.ID, e.RequestID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, e.Payload, e.Status)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.conn.QueryContext(ctx, selectDueOutboxSQL, OutboxStatusSent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		dest := []any{
			&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID,
			&e.EventType, &e.Topic, &e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt,
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		due = append(due, e)
	}
	return due, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.conn.ExecContext(ctx, markOutboxSentSQL, id, OutboxStatusSent)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.conn.ExecContext(ctx, markOutboxFailedSQL,
		id, OutboxStatusFailed, truncateReason(reason), RetryStep.Seconds(), MaxRetryDelay.Seconds())
	return err
}

// truncateReason cuts reason to the stored width without splitting a rune.
func truncateReason(reason string) string {
	if len(reason) <= maxErrorMessageBytes {
		return reason
	}
	cut := maxErrorMessageBytes
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

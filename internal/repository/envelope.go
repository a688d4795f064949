package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/envelope-budget/backend/internal/models"
)

type EnvelopeRepository struct {
	db *pgxpool.Pool
}

// NewEnvelopeRepository создает репозиторий конвертов.
func NewEnvelopeRepository(db *pgxpool.Pool) *EnvelopeRepository {
	return &EnvelopeRepository{db: db}
}

// Create создает конверт пользователя.
func (r *EnvelopeRepository) Create(ctx context.Context, envelope models.Envelope) (models.Envelope, error) {
	var created models.Envelope
	var dueDate *time.Time

	err := r.db.QueryRow(ctx,
		`INSERT INTO envelopes (id, user_id, name, subtype, priority, target_cents, frequency, due_date, balance_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, user_id, name, subtype, priority, target_cents, frequency, due_date, balance_cents, created_at, updated_at`,
		uuid.New(), envelope.UserID, envelope.Name, envelope.Subtype, envelope.Priority,
		envelope.TargetCents, envelope.Frequency, envelope.DueDate, envelope.BalanceCents,
	).Scan(
		&created.ID, &created.UserID, &created.Name, &created.Subtype, &created.Priority,
		&created.TargetCents, &created.Frequency, &dueDate, &created.BalanceCents,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return created, ErrConflict
		}
		return created, err
	}

	created.DueDate = dueDate
	return created, nil
}

// GetByID возвращает конверт пользователя по идентификатору.
func (r *EnvelopeRepository) GetByID(ctx context.Context, userID, envelopeID uuid.UUID) (models.Envelope, error) {
	var envelope models.Envelope
	var dueDate *time.Time

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, subtype, priority, target_cents, frequency, due_date, balance_cents, created_at, updated_at
		 FROM envelopes
		 WHERE id = $1 AND user_id = $2`,
		envelopeID, userID,
	).Scan(
		&envelope.ID, &envelope.UserID, &envelope.Name, &envelope.Subtype, &envelope.Priority,
		&envelope.TargetCents, &envelope.Frequency, &dueDate, &envelope.BalanceCents,
		&envelope.CreatedAt, &envelope.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return envelope, ErrNotFound
		}
		return envelope, err
	}

	envelope.DueDate = dueDate
	return envelope, nil
}

// ListByUser возвращает конверты пользователя в порядке приоритета.
func (r *EnvelopeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Envelope, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, subtype, priority, target_cents, frequency, due_date, balance_cents, created_at, updated_at
		 FROM envelopes
		 WHERE user_id = $1
		 ORDER BY CASE priority
		     WHEN 'essential' THEN 0
		     WHEN 'important' THEN 1
		     ELSE 2
		 END, name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var envelopes []models.Envelope
	for rows.Next() {
		var envelope models.Envelope
		var dueDate *time.Time

		if err := rows.Scan(
			&envelope.ID, &envelope.UserID, &envelope.Name, &envelope.Subtype, &envelope.Priority,
			&envelope.TargetCents, &envelope.Frequency, &dueDate, &envelope.BalanceCents,
			&envelope.CreatedAt, &envelope.UpdatedAt,
		); err != nil {
			return nil, err
		}

		envelope.DueDate = dueDate
		envelopes = append(envelopes, envelope)
	}

	return envelopes, rows.Err()
}

// Update обновляет конверт пользователя.
func (r *EnvelopeRepository) Update(ctx context.Context, envelope models.Envelope) (models.Envelope, error) {
	var updated models.Envelope
	var dueDate *time.Time

	err := r.db.QueryRow(ctx,
		`UPDATE envelopes
		 SET name = $3, subtype = $4, priority = $5, target_cents = $6, frequency = $7, due_date = $8, balance_cents = $9, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, name, subtype, priority, target_cents, frequency, due_date, balance_cents, created_at, updated_at`,
		envelope.ID, envelope.UserID, envelope.Name, envelope.Subtype, envelope.Priority,
		envelope.TargetCents, envelope.Frequency, envelope.DueDate, envelope.BalanceCents,
	).Scan(
		&updated.ID, &updated.UserID, &updated.Name, &updated.Subtype, &updated.Priority,
		&updated.TargetCents, &updated.Frequency, &dueDate, &updated.BalanceCents,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	updated.DueDate = dueDate
	return updated, nil
}

// Delete удаляет конверт вместе с его распределениями.
func (r *EnvelopeRepository) Delete(ctx context.Context, userID, envelopeID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM envelopes
		 WHERE id = $1 AND user_id = $2`,
		envelopeID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/envelope-budget/backend/internal/models"
)

type AllocationRepository struct {
	db *pgxpool.Pool
}

// NewAllocationRepository создает репозиторий распределений дохода.
func NewAllocationRepository(db *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// ListByUser возвращает все распределения пользователя.
func (r *AllocationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeAllocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.envelope_id, a.income_source_id, a.amount_cents, a.is_locked, a.created_at, a.updated_at
		 FROM income_allocations a
		 JOIN envelopes e ON e.id = a.envelope_id
		 WHERE e.user_id = $1
		 ORDER BY a.created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAllocations(rows)
}

// ListByEnvelope возвращает распределения одного конверта.
func (r *AllocationRepository) ListByEnvelope(ctx context.Context, userID, envelopeID uuid.UUID) ([]models.IncomeAllocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.envelope_id, a.income_source_id, a.amount_cents, a.is_locked, a.created_at, a.updated_at
		 FROM income_allocations a
		 JOIN envelopes e ON e.id = a.envelope_id
		 WHERE a.envelope_id = $1 AND e.user_id = $2
		 ORDER BY a.created_at`,
		envelopeID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAllocations(rows)
}

// ReplaceForEnvelope перезаписывает распределения конверта одной транзакцией.
// Заблокированный конверт не переписывается: блокировку снимают явно.
func (r *AllocationRepository) ReplaceForEnvelope(ctx context.Context, userID, envelopeID uuid.UUID, allocations []models.IncomeAllocation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var lockedCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM income_allocations a
		 JOIN envelopes e ON e.id = a.envelope_id
		 WHERE a.envelope_id = $1 AND e.user_id = $2 AND a.is_locked`,
		envelopeID, userID,
	).Scan(&lockedCount)
	if err != nil {
		return err
	}
	if lockedCount > 0 {
		return ErrConflict
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM envelopes WHERE id = $1 AND user_id = $2)`,
		envelopeID, userID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM income_allocations WHERE envelope_id = $1`,
		envelopeID,
	)
	if err != nil {
		return err
	}

	for _, allocation := range allocations {
		_, err = tx.Exec(ctx,
			`INSERT INTO income_allocations (id, envelope_id, income_source_id, amount_cents, is_locked)
			 VALUES ($1, $2, $3, $4, FALSE)`,
			uuid.New(), envelopeID, allocation.IncomeSourceID, allocation.AmountCents,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SetLock выставляет или снимает блокировку распределений конверта.
func (r *AllocationRepository) SetLock(ctx context.Context, userID, envelopeID uuid.UUID, locked bool) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE income_allocations a
		 SET is_locked = $3, updated_at = NOW()
		 FROM envelopes e
		 WHERE a.envelope_id = $1 AND e.id = a.envelope_id AND e.user_id = $2`,
		envelopeID, userID, locked,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// LockedEnvelopeIDs возвращает конверты с заблокированными распределениями.
func (r *AllocationRepository) LockedEnvelopeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT a.envelope_id
		 FROM income_allocations a
		 JOIN envelopes e ON e.id = a.envelope_id
		 WHERE e.user_id = $1 AND a.is_locked`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]bool)
	for rows.Next() {
		var envelopeID uuid.UUID
		if err := rows.Scan(&envelopeID); err != nil {
			return nil, err
		}
		locked[envelopeID] = true
	}

	return locked, rows.Err()
}

func scanAllocations(rows pgx.Rows) ([]models.IncomeAllocation, error) {
	var allocations []models.IncomeAllocation
	for rows.Next() {
		var allocation models.IncomeAllocation

		if err := rows.Scan(
			&allocation.ID, &allocation.EnvelopeID, &allocation.IncomeSourceID,
			&allocation.AmountCents, &allocation.IsLocked,
			&allocation.CreatedAt, &allocation.UpdatedAt,
		); err != nil {
			return nil, err
		}

		allocations = append(allocations, allocation)
	}

	return allocations, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/envelope-budget/backend/internal/models"
)

type IncomeRepository struct {
	db *pgxpool.Pool
}

// NewIncomeRepository создает репозиторий источников дохода.
func NewIncomeRepository(db *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// Create создает источник дохода.
func (r *IncomeRepository) Create(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error) {
	var created models.IncomeSource

	err := r.db.QueryRow(ctx,
		`INSERT INTO income_sources (id, user_id, name, amount_cents, frequency, anchor_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, name, amount_cents, frequency, anchor_date, is_active, created_at, updated_at`,
		uuid.New(), income.UserID, income.Name, income.AmountCents, income.Frequency, income.AnchorDate, income.IsActive,
	).Scan(
		&created.ID, &created.UserID, &created.Name, &created.AmountCents,
		&created.Frequency, &created.AnchorDate, &created.IsActive,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return created, err
	}

	return created, nil
}

// GetByID возвращает источник дохода пользователя.
func (r *IncomeRepository) GetByID(ctx context.Context, userID, incomeID uuid.UUID) (models.IncomeSource, error) {
	var income models.IncomeSource

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, amount_cents, frequency, anchor_date, is_active, created_at, updated_at
		 FROM income_sources
		 WHERE id = $1 AND user_id = $2`,
		incomeID, userID,
	).Scan(
		&income.ID, &income.UserID, &income.Name, &income.AmountCents,
		&income.Frequency, &income.AnchorDate, &income.IsActive,
		&income.CreatedAt, &income.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return income, ErrNotFound
		}
		return income, err
	}

	return income, nil
}

// ListByUser возвращает все источники дохода пользователя.
func (r *IncomeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, amount_cents, frequency, anchor_date, is_active, created_at, updated_at
		 FROM income_sources
		 WHERE user_id = $1
		 ORDER BY amount_cents DESC, name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []models.IncomeSource
	for rows.Next() {
		var income models.IncomeSource

		if err := rows.Scan(
			&income.ID, &income.UserID, &income.Name, &income.AmountCents,
			&income.Frequency, &income.AnchorDate, &income.IsActive,
			&income.CreatedAt, &income.UpdatedAt,
		); err != nil {
			return nil, err
		}

		incomes = append(incomes, income)
	}

	return incomes, rows.Err()
}

// Update обновляет источник дохода.
func (r *IncomeRepository) Update(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error) {
	var updated models.IncomeSource

	err := r.db.QueryRow(ctx,
		`UPDATE income_sources
		 SET name = $3, amount_cents = $4, frequency = $5, anchor_date = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, name, amount_cents, frequency, anchor_date, is_active, created_at, updated_at`,
		income.ID, income.UserID, income.Name, income.AmountCents, income.Frequency, income.AnchorDate, income.IsActive,
	).Scan(
		&updated.ID, &updated.UserID, &updated.Name, &updated.AmountCents,
		&updated.Frequency, &updated.AnchorDate, &updated.IsActive,
		&updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет источник дохода вместе с его распределениями.
func (r *IncomeRepository) Delete(ctx context.Context, userID, incomeID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM income_sources
		 WHERE id = $1 AND user_id = $2`,
		incomeID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

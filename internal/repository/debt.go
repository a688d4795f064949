package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/envelope-budget/backend/internal/models"
)

type DebtRepository struct {
	db *pgxpool.Pool
}

// NewDebtRepository создает репозиторий долговых счетов.
func NewDebtRepository(db *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{db: db}
}

// Create создает долговой счет.
func (r *DebtRepository) Create(ctx context.Context, account models.DebtAccount) (models.DebtAccount, error) {
	var created models.DebtAccount

	err := r.db.QueryRow(ctx,
		`INSERT INTO debt_accounts (id, user_id, name, balance_cents, apr, min_payment_cents, monthly_payment_cents, extra_principal_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, user_id, name, balance_cents, apr, min_payment_cents, monthly_payment_cents, extra_principal_cents, created_at, updated_at`,
		uuid.New(), account.UserID, account.Name, account.BalanceCents, account.APR,
		account.MinPaymentCents, account.MonthlyPaymentCents, account.ExtraPrincipalCents,
	).Scan(
		&created.ID, &created.UserID, &created.Name, &created.BalanceCents, &created.APR,
		&created.MinPaymentCents, &created.MonthlyPaymentCents, &created.ExtraPrincipalCents,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return created, err
	}

	return created, nil
}

// GetByID возвращает долговой счет пользователя.
func (r *DebtRepository) GetByID(ctx context.Context, userID, accountID uuid.UUID) (models.DebtAccount, error) {
	var account models.DebtAccount

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, balance_cents, apr, min_payment_cents, monthly_payment_cents, extra_principal_cents, created_at, updated_at
		 FROM debt_accounts
		 WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	).Scan(
		&account.ID, &account.UserID, &account.Name, &account.BalanceCents, &account.APR,
		&account.MinPaymentCents, &account.MonthlyPaymentCents, &account.ExtraPrincipalCents,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account, ErrNotFound
		}
		return account, err
	}

	return account, nil
}

// ListByUser возвращает долговые счета пользователя.
func (r *DebtRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.DebtAccount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, balance_cents, apr, min_payment_cents, monthly_payment_cents, extra_principal_cents, created_at, updated_at
		 FROM debt_accounts
		 WHERE user_id = $1
		 ORDER BY balance_cents DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.DebtAccount
	for rows.Next() {
		var account models.DebtAccount

		if err := rows.Scan(
			&account.ID, &account.UserID, &account.Name, &account.BalanceCents, &account.APR,
			&account.MinPaymentCents, &account.MonthlyPaymentCents, &account.ExtraPrincipalCents,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Update обновляет долговой счет.
func (r *DebtRepository) Update(ctx context.Context, account models.DebtAccount) (models.DebtAccount, error) {
	var updated models.DebtAccount

	err := r.db.QueryRow(ctx,
		`UPDATE debt_accounts
		 SET name = $3, balance_cents = $4, apr = $5, min_payment_cents = $6, monthly_payment_cents = $7, extra_principal_cents = $8, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, name, balance_cents, apr, min_payment_cents, monthly_payment_cents, extra_principal_cents, created_at, updated_at`,
		account.ID, account.UserID, account.Name, account.BalanceCents, account.APR,
		account.MinPaymentCents, account.MonthlyPaymentCents, account.ExtraPrincipalCents,
	).Scan(
		&updated.ID, &updated.UserID, &updated.Name, &updated.BalanceCents, &updated.APR,
		&updated.MinPaymentCents, &updated.MonthlyPaymentCents, &updated.ExtraPrincipalCents,
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

// Delete удаляет долговой счет.
func (r *DebtRepository) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM debt_accounts
		 WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

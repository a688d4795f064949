package engine

import (
	"time"

	"example.com/envelope-budget/backend/internal/models"
)

type OpeningBalanceResult struct {
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	AccumulatedCents    int64  `json:"accumulated_cents"`
	CyclesUntilDue      int    `json:"cycles_until_due"`
	FullyFunded         bool   `json:"fully_funded"`
	Warning             string `json:"warning,omitempty"`
}

// OpeningBalance считает стартовую сумму, без которой первый срок будет пропущен.
func OpeningBalance(
	now time.Time,
	targetCents int64,
	payFrequency models.Frequency,
	payAnchor, dueDate time.Time,
	perCycleCents int64,
) (OpeningBalanceResult, error) {
	var result OpeningBalanceResult

	if targetCents < 0 || perCycleCents < 0 {
		return result, ErrInvalidAmount
	}

	cycles, err := CyclesBetween(payFrequency, payAnchor, now, dueDate)
	if err != nil {
		return result, err
	}

	accumulated := perCycleCents * int64(cycles)
	needed := targetCents - accumulated
	if needed < 0 {
		needed = 0
	}

	result = OpeningBalanceResult{
		OpeningBalanceCents: needed,
		AccumulatedCents:    accumulated,
		CyclesUntilDue:      cycles,
		FullyFunded:         needed == 0,
	}

	if perCycleCents == 0 && targetCents > 0 {
		result.Warning = "envelope has no per-cycle allocation and cannot self-fund"
	}

	return result, nil
}

package engine

import (
	"testing"
	"time"

	"example.com/envelope-budget/backend/internal/models"
)

// TestOpeningBalanceFullyFunded проверяет нулевую стартовую сумму при достаточных циклах.
func TestOpeningBalanceFullyFunded(t *testing.T) {
	now := date(2025, time.January, 1)
	anchor := date(2025, time.January, 10)
	due := date(2025, time.March, 10)

	// Выплаты 10.01, 24.01, 07.02, 21.02, 07.03: 5 циклов по 12000.
	result, err := OpeningBalance(now, 60000, models.FrequencyFortnightly, anchor, due, 12000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CyclesUntilDue != 5 {
		t.Fatalf("expected 5 cycles, got %d", result.CyclesUntilDue)
	}
	if result.OpeningBalanceCents != 0 {
		t.Fatalf("expected zero opening balance, got %d", result.OpeningBalanceCents)
	}
	if !result.FullyFunded {
		t.Fatal("expected fully funded")
	}
}

// TestOpeningBalanceShortfall проверяет расчет недостающей стартовой суммы.
func TestOpeningBalanceShortfall(t *testing.T) {
	now := date(2025, time.January, 1)
	anchor := date(2025, time.January, 10)
	due := date(2025, time.February, 1)

	// До срока успевают выплаты 10.01 и 24.01: накоплено 20000 из 50000.
	result, err := OpeningBalance(now, 50000, models.FrequencyFortnightly, anchor, due, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AccumulatedCents != 20000 {
		t.Fatalf("expected accumulated 20000, got %d", result.AccumulatedCents)
	}
	if result.OpeningBalanceCents != 30000 {
		t.Fatalf("expected opening balance 30000, got %d", result.OpeningBalanceCents)
	}
	if result.FullyFunded {
		t.Fatal("expected not fully funded")
	}
}

// TestOpeningBalanceZeroAllocationWarning проверяет предупреждение без взносов.
func TestOpeningBalanceZeroAllocationWarning(t *testing.T) {
	result, err := OpeningBalance(
		date(2025, time.January, 1),
		40000,
		models.FrequencyMonthly,
		date(2025, time.January, 15),
		date(2025, time.June, 1),
		0,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Warning == "" {
		t.Fatal("expected warning for zero per-cycle allocation")
	}
	if result.OpeningBalanceCents != 40000 {
		t.Fatalf("expected full target as opening balance, got %d", result.OpeningBalanceCents)
	}
}

// TestOpeningBalanceNegativeAmount проверяет отказ на отрицательной цели.
func TestOpeningBalanceNegativeAmount(t *testing.T) {
	_, err := OpeningBalance(
		date(2025, time.January, 1),
		-1,
		models.FrequencyMonthly,
		date(2025, time.January, 15),
		date(2025, time.June, 1),
		1000,
	)
	if err == nil {
		t.Fatal("expected error for negative target")
	}
}

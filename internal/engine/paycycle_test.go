package engine

import (
	"testing"
	"time"

	"example.com/envelope-budget/backend/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestOccurrencesAscending проверяет строгий порядок дат для всех частот.
func TestOccurrencesAscending(t *testing.T) {
	frequencies := []models.Frequency{
		models.FrequencyWeekly,
		models.FrequencyFortnightly,
		models.FrequencyTwiceMonthly,
		models.FrequencyMonthly,
		models.FrequencyQuarterly,
		models.FrequencyAnnually,
	}

	anchor := date(2024, time.January, 10)
	horizon := date(2026, time.June, 30)

	for _, freq := range frequencies {
		occurrences, err := Occurrences(freq, anchor, horizon)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", freq, err)
		}
		if len(occurrences) == 0 {
			t.Fatalf("%s: expected occurrences", freq)
		}

		for i, occurrence := range occurrences {
			if occurrence.Before(anchor) || occurrence.After(horizon) {
				t.Fatalf("%s: occurrence %s outside [%s, %s]", freq, occurrence, anchor, horizon)
			}
			if i > 0 && !occurrences[i-1].Before(occurrence) {
				t.Fatalf("%s: dates not strictly ascending at %d", freq, i)
			}
		}
	}
}

// TestOccurrencesWeeklyStep проверяет шаг в 7 дней от якоря.
func TestOccurrencesWeeklyStep(t *testing.T) {
	occurrences, err := Occurrences(models.FrequencyWeekly, date(2025, time.March, 3), date(2025, time.March, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occurrences) != 5 {
		t.Fatalf("expected 5 occurrences, got %d", len(occurrences))
	}

	for i, occurrence := range occurrences {
		want := date(2025, time.March, 3+7*i)
		if !occurrence.Equal(want) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, want, occurrence)
		}
	}
}

// TestOccurrencesMonthlyClamp проверяет прижатие 31-го числа к концу февраля.
func TestOccurrencesMonthlyClamp(t *testing.T) {
	occurrences, err := Occurrences(models.FrequencyMonthly, date(2025, time.January, 31), date(2025, time.April, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
	}

	if len(occurrences) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(occurrences))
	}
	for i := range want {
		if !occurrences[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, want[i], occurrences[i])
		}
	}
}

// TestOccurrencesMonthlyClampLeapYear проверяет 29 февраля в високосном году.
func TestOccurrencesMonthlyClampLeapYear(t *testing.T) {
	occurrences, err := Occurrences(models.FrequencyMonthly, date(2024, time.January, 31), date(2024, time.February, 29))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occurrences) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occurrences))
	}
	if !occurrences[1].Equal(date(2024, time.February, 29)) {
		t.Fatalf("expected 2024-02-29, got %s", occurrences[1])
	}
}

// TestOccurrencesTwiceMonthly проверяет пару дней из корзины якоря.
func TestOccurrencesTwiceMonthly(t *testing.T) {
	occurrences, err := Occurrences(models.FrequencyTwiceMonthly, date(2025, time.January, 1), date(2025, time.February, 28))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{
		date(2025, time.January, 1),
		date(2025, time.January, 15),
		date(2025, time.February, 1),
		date(2025, time.February, 15),
	}

	if len(occurrences) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(occurrences))
	}
	for i := range want {
		if !occurrences[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, want[i], occurrences[i])
		}
	}
}

// TestOccurrencesEmptyWhenAnchorPastHorizon проверяет пустую выборку без ошибки.
func TestOccurrencesEmptyWhenAnchorPastHorizon(t *testing.T) {
	occurrences, err := Occurrences(models.FrequencyWeekly, date(2025, time.June, 1), date(2025, time.May, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occurrences) != 0 {
		t.Fatalf("expected empty sequence, got %d occurrences", len(occurrences))
	}
}

// TestOccurrencesInvalidFrequency проверяет отказ на незнакомой частоте.
func TestOccurrencesInvalidFrequency(t *testing.T) {
	if _, err := Occurrences(models.Frequency("daily"), date(2025, time.January, 1), date(2025, time.February, 1)); err == nil {
		t.Fatal("expected error for unknown frequency")
	}

	if _, err := Occurrences(models.FrequencyNone, date(2025, time.January, 1), date(2025, time.February, 1)); err == nil {
		t.Fatal("expected error for non-recurring frequency")
	}
}

// TestCyclesBetween проверяет счет событий в полуоткрытом интервале.
func TestCyclesBetween(t *testing.T) {
	cycles, err := CyclesBetween(models.FrequencyFortnightly, date(2025, time.January, 3), date(2025, time.January, 3), date(2025, time.February, 28))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Выплаты 17.01, 31.01, 14.02, 28.02; сам якорь не считается.
	if cycles != 4 {
		t.Fatalf("expected 4 cycles, got %d", cycles)
	}
}

// TestPerYearClosedSet проверяет закрытое множество частот.
func TestPerYearClosedSet(t *testing.T) {
	want := map[models.Frequency]int{
		models.FrequencyWeekly:       52,
		models.FrequencyFortnightly:  26,
		models.FrequencyTwiceMonthly: 24,
		models.FrequencyMonthly:      12,
		models.FrequencyQuarterly:    4,
		models.FrequencyAnnually:     1,
	}

	for freq, expected := range want {
		got, err := PerYear(freq)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", freq, err)
		}
		if got != expected {
			t.Fatalf("%s: expected %d, got %d", freq, expected, got)
		}
	}

	if _, err := PerYear(models.FrequencyNone); err == nil {
		t.Fatal("expected error for frequency none")
	}
}

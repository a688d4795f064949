package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/envelope-budget/backend/internal/models"
)

func fortnightlyIncome(id uuid.UUID, amountCents int64, anchor time.Time) models.IncomeSource {
	return models.IncomeSource{
		ID:          id,
		Name:        "pay",
		AmountCents: amountCents,
		Frequency:   models.FrequencyFortnightly,
		AnchorDate:  anchor,
		IsActive:    true,
	}
}

// TestPredictOnTrackThroughHorizon проверяет полный цикл: два источника
// закрывают месячный счет на всем 90-дневном горизонте.
func TestPredictOnTrackThroughHorizon(t *testing.T) {
	now := date(2025, time.January, 1)
	horizon := now.AddDate(0, 0, 90)

	firstDue := date(2025, time.February, 1)
	envelope := models.Envelope{
		ID:          uuid.New(),
		Name:        "Rent",
		Subtype:     models.SubtypeBill,
		Priority:    models.PriorityEssential,
		TargetCents: 60000,
		Frequency:   models.FrequencyMonthly,
		DueDate:     &firstDue,
	}

	mainJob := fortnightlyIncome(uuid.New(), 100000, date(2025, time.January, 10))
	sideJob := fortnightlyIncome(uuid.New(), 40000, date(2025, time.January, 10))

	allocations := []models.IncomeAllocation{
		{EnvelopeID: envelope.ID, IncomeSourceID: mainJob.ID, AmountCents: 15000},
		{EnvelopeID: envelope.ID, IncomeSourceID: sideJob.ID, AmountCents: 15000},
	}

	prediction, err := Predict(now, horizon, envelope, allocations, []models.IncomeSource{mainJob, sideJob})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.Status != models.FundingOnTrack {
		t.Fatalf("expected on_track, got %s (shortfall %d)", prediction.Status, prediction.ShortfallCents)
	}
	if prediction.ShortfallCents != 0 {
		t.Fatalf("expected zero shortfall, got %d", prediction.ShortfallCents)
	}
	if len(prediction.Points) == 0 {
		t.Fatal("expected projection points")
	}
}

// TestPredictCriticalWithoutFunding проверяет критический статус без поступлений.
func TestPredictCriticalWithoutFunding(t *testing.T) {
	now := date(2025, time.January, 1)
	due := date(2025, time.January, 20)

	envelope := models.Envelope{
		ID:          uuid.New(),
		Subtype:     models.SubtypeBill,
		TargetCents: 20000,
		Frequency:   models.FrequencyNone,
		DueDate:     &due,
	}

	prediction, err := Predict(now, now.AddDate(0, 0, 90), envelope, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.Status != models.FundingCritical {
		t.Fatalf("expected critical, got %s", prediction.Status)
	}
	if prediction.ShortfallCents != 20000 {
		t.Fatalf("expected shortfall 20000, got %d", prediction.ShortfallCents)
	}
}

// TestPredictBehindWithPartialFunding проверяет статус behind при частичном покрытии.
func TestPredictBehindWithPartialFunding(t *testing.T) {
	now := date(2025, time.January, 1)
	due := date(2025, time.January, 20)

	envelope := models.Envelope{
		ID:           uuid.New(),
		Subtype:      models.SubtypeBill,
		TargetCents:  60000,
		Frequency:    models.FrequencyNone,
		DueDate:      &due,
		BalanceCents: 10000,
	}

	income := fortnightlyIncome(uuid.New(), 100000, date(2025, time.January, 10))
	allocations := []models.IncomeAllocation{
		{EnvelopeID: envelope.ID, IncomeSourceID: income.ID, AmountCents: 30000},
	}

	prediction, err := Predict(now, now.AddDate(0, 0, 60), envelope, allocations, []models.IncomeSource{income})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.Status != models.FundingBehind {
		t.Fatalf("expected behind, got %s", prediction.Status)
	}
	// К 20 января накоплено 10000 + 30000 при цели 60000.
	if prediction.ShortfallCents != 20000 {
		t.Fatalf("expected shortfall 20000, got %d", prediction.ShortfallCents)
	}
}

// TestPredictSkipsPastDueOccurrences проверяет, что оплаченные прошлые сроки
// регулярного счета не вычитаются из текущего баланса повторно.
func TestPredictSkipsPastDueOccurrences(t *testing.T) {
	now := date(2026, time.September, 1)
	firstDue := date(2026, time.June, 1)

	envelope := models.Envelope{
		ID:           uuid.New(),
		Subtype:      models.SubtypeBill,
		TargetCents:  10000,
		Frequency:    models.FrequencyMonthly,
		DueDate:      &firstDue,
		BalanceCents: 10000,
	}

	income := models.IncomeSource{
		ID:          uuid.New(),
		Name:        "pay",
		AmountCents: 100000,
		Frequency:   models.FrequencyMonthly,
		AnchorDate:  date(2026, time.June, 15),
		IsActive:    true,
	}
	allocations := []models.IncomeAllocation{
		{EnvelopeID: envelope.ID, IncomeSourceID: income.ID, AmountCents: 10000},
	}

	prediction, err := Predict(now, now.AddDate(0, 0, 30), envelope, allocations, []models.IncomeSource{income})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.Status != models.FundingOnTrack {
		t.Fatalf("expected on_track, got %s (shortfall %d)", prediction.Status, prediction.ShortfallCents)
	}
	for _, point := range prediction.Points {
		if point.Date.Before(now) {
			t.Fatalf("projection contains past event %s", point.Date)
		}
		if point.BalanceCents < 0 {
			t.Fatalf("balance went negative at %s: %d", point.Date, point.BalanceCents)
		}
	}
}

// TestPredictNoDueDateAlwaysOnTrack проверяет накопительные конверты без срока.
func TestPredictNoDueDateAlwaysOnTrack(t *testing.T) {
	envelope := models.Envelope{
		ID:          uuid.New(),
		Subtype:     models.SubtypeSavings,
		TargetCents: 100000,
		Frequency:   models.FrequencyMonthly,
	}

	prediction, err := Predict(date(2025, time.January, 1), date(2025, time.April, 1), envelope, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.Status != models.FundingOnTrack {
		t.Fatalf("expected on_track, got %s", prediction.Status)
	}
}

// TestPredictInactiveIncomeIgnored проверяет, что выключенный источник не кормит конверт.
func TestPredictInactiveIncomeIgnored(t *testing.T) {
	now := date(2025, time.January, 1)
	due := date(2025, time.January, 31)

	envelope := models.Envelope{
		ID:          uuid.New(),
		Subtype:     models.SubtypeBill,
		TargetCents: 10000,
		Frequency:   models.FrequencyNone,
		DueDate:     &due,
	}

	income := fortnightlyIncome(uuid.New(), 100000, date(2025, time.January, 10))
	income.IsActive = false

	allocations := []models.IncomeAllocation{
		{EnvelopeID: envelope.ID, IncomeSourceID: income.ID, AmountCents: 10000},
	}

	prediction, err := Predict(now, now.AddDate(0, 0, 60), envelope, allocations, []models.IncomeSource{income})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.Status != models.FundingCritical {
		t.Fatalf("expected critical, got %s", prediction.Status)
	}
}

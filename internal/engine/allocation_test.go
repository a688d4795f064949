package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/envelope-budget/backend/internal/models"
)

func essentialEnvelope(name string, targetCents int64) models.Envelope {
	return models.Envelope{
		ID:          uuid.New(),
		Name:        name,
		Subtype:     models.SubtypeBill,
		Priority:    models.PriorityEssential,
		TargetCents: targetCents,
		Frequency:   models.FrequencyFortnightly,
	}
}

// TestSuggestPartialFundingInPriorityOrder проверяет сценарий нехватки дохода:
// три конверта по 20000 против источника на 50000 за цикл.
func TestSuggestPartialFundingInPriorityOrder(t *testing.T) {
	income := fortnightlyIncome(uuid.New(), 50000, date(2025, time.January, 10))
	envelopes := []models.Envelope{
		essentialEnvelope("rent", 20000),
		essentialEnvelope("power", 20000),
		essentialEnvelope("groceries", 20000),
	}

	result, err := Suggest([]models.IncomeSource{income}, envelopes, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.NoIncomeCapacity {
		t.Fatal("expected no income capacity flag")
	}
	if result.ShortfallCents != 10000 {
		t.Fatalf("expected shortfall 10000, got %d", result.ShortfallCents)
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(result.Suggestions))
	}

	wantAllocated := []int64{20000, 20000, 10000}
	for i, suggestion := range result.Suggestions {
		if suggestion.AllocatedCents != wantAllocated[i] {
			t.Fatalf("envelope %d: expected %d, got %d", i, wantAllocated[i], suggestion.AllocatedCents)
		}
	}

	if result.Suggestions[2].FullyFunded {
		t.Fatal("expected third envelope to be partially funded")
	}
}

// TestSuggestProportionalSplit проверяет деление по долям дохода источников.
func TestSuggestProportionalSplit(t *testing.T) {
	mainJob := fortnightlyIncome(uuid.New(), 100000, date(2025, time.January, 10))
	sideJob := fortnightlyIncome(uuid.New(), 25000, date(2025, time.January, 10))
	envelope := essentialEnvelope("rent", 50000)

	result, err := Suggest([]models.IncomeSource{mainJob, sideJob}, []models.Envelope{envelope}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(result.Suggestions))
	}

	suggestion := result.Suggestions[0]
	if !suggestion.FullyFunded {
		t.Fatal("expected fully funded envelope")
	}
	if suggestion.BySource[mainJob.ID] != 40000 {
		t.Fatalf("expected 40000 from main job, got %d", suggestion.BySource[mainJob.ID])
	}
	if suggestion.BySource[sideJob.ID] != 10000 {
		t.Fatalf("expected 10000 from side job, got %d", suggestion.BySource[sideJob.ID])
	}
}

// TestSuggestEssentialClaimsFirst проверяет, что необязательный конверт
// не отбирает доход у обязательного независимо от порядка на входе.
func TestSuggestEssentialClaimsFirst(t *testing.T) {
	income := fortnightlyIncome(uuid.New(), 30000, date(2025, time.January, 10))

	fun := essentialEnvelope("streaming", 25000)
	fun.Priority = models.PriorityDiscretionary
	rent := essentialEnvelope("rent", 25000)

	result, err := Suggest([]models.IncomeSource{income}, []models.Envelope{fun, rent}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byEnvelope := make(map[uuid.UUID]EnvelopeSuggestion)
	for _, suggestion := range result.Suggestions {
		byEnvelope[suggestion.EnvelopeID] = suggestion
	}

	if !byEnvelope[rent.ID].FullyFunded {
		t.Fatal("expected essential envelope fully funded")
	}
	if byEnvelope[fun.ID].AllocatedCents != 5000 {
		t.Fatalf("expected discretionary remainder 5000, got %d", byEnvelope[fun.ID].AllocatedCents)
	}
}

// TestSuggestLockedEnvelopePassThrough проверяет, что блокировка исключает
// конверт из пересчета, но съедает емкость источника.
func TestSuggestLockedEnvelopePassThrough(t *testing.T) {
	income := fortnightlyIncome(uuid.New(), 50000, date(2025, time.January, 10))
	lockedEnvelope := essentialEnvelope("rent", 10000)
	openEnvelope := essentialEnvelope("power", 50000)

	existing := []models.IncomeAllocation{
		{EnvelopeID: lockedEnvelope.ID, IncomeSourceID: income.ID, AmountCents: 30000, IsLocked: true},
	}
	locked := map[uuid.UUID]bool{lockedEnvelope.ID: true}

	result, err := Suggest([]models.IncomeSource{income}, []models.Envelope{lockedEnvelope, openEnvelope}, existing, locked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byEnvelope := make(map[uuid.UUID]EnvelopeSuggestion)
	for _, suggestion := range result.Suggestions {
		byEnvelope[suggestion.EnvelopeID] = suggestion
	}

	lockedSuggestion := byEnvelope[lockedEnvelope.ID]
	if !lockedSuggestion.Locked {
		t.Fatal("expected locked suggestion")
	}
	if lockedSuggestion.BySource[income.ID] != 30000 {
		t.Fatalf("expected locked allocation pass-through 30000, got %d", lockedSuggestion.BySource[income.ID])
	}

	// Свободному конверту остается 20000 из 50000.
	openSuggestion := byEnvelope[openEnvelope.ID]
	if openSuggestion.AllocatedCents != 20000 {
		t.Fatalf("expected 20000 for open envelope, got %d", openSuggestion.AllocatedCents)
	}
	if !result.NoIncomeCapacity {
		t.Fatal("expected no income capacity flag")
	}
}

// TestSuggestNeverOverdrawsSource проверяет свойство: сумма распределений
// источника по всем конвертам не превышает его выплату.
func TestSuggestNeverOverdrawsSource(t *testing.T) {
	frequencies := []models.Frequency{
		models.FrequencyWeekly,
		models.FrequencyFortnightly,
		models.FrequencyTwiceMonthly,
		models.FrequencyMonthly,
		models.FrequencyQuarterly,
		models.FrequencyAnnually,
	}
	priorities := []models.EnvelopePriority{
		models.PriorityEssential,
		models.PriorityImportant,
		models.PriorityDiscretionary,
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		incomes := make([]models.IncomeSource, 1+rng.Intn(4))
		for i := range incomes {
			incomes[i] = models.IncomeSource{
				ID:          uuid.New(),
				AmountCents: int64(rng.Intn(500000)),
				Frequency:   frequencies[rng.Intn(len(frequencies))],
				AnchorDate:  date(2025, time.January, 1+rng.Intn(28)),
				IsActive:    rng.Intn(5) > 0,
			}
		}

		envelopes := make([]models.Envelope, 1+rng.Intn(6))
		for i := range envelopes {
			envelopes[i] = models.Envelope{
				ID:          uuid.New(),
				Priority:    priorities[rng.Intn(len(priorities))],
				TargetCents: int64(rng.Intn(300000)),
				Frequency:   frequencies[rng.Intn(len(frequencies))],
			}
		}

		result, err := Suggest(incomes, envelopes, nil, nil)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}

		totals := make(map[uuid.UUID]int64)
		for _, suggestion := range result.Suggestions {
			for sourceID, amount := range suggestion.BySource {
				if amount < 0 {
					t.Fatalf("trial %d: negative allocation %d", trial, amount)
				}
				totals[sourceID] += amount
			}
		}

		for _, income := range incomes {
			if totals[income.ID] > income.AmountCents {
				t.Fatalf("trial %d: source overdrawn: %d > %d", trial, totals[income.ID], income.AmountCents)
			}
		}
	}
}

// TestSuggestInvalidAmount проверяет отказ на отрицательном доходе.
func TestSuggestInvalidAmount(t *testing.T) {
	income := fortnightlyIncome(uuid.New(), -1, date(2025, time.January, 10))
	if _, err := Suggest([]models.IncomeSource{income}, nil, nil, nil); err == nil {
		t.Fatal("expected error for negative income amount")
	}
}

// TestValidateAllocationsOverflow проверяет отказ при перерасходе источника.
func TestValidateAllocationsOverflow(t *testing.T) {
	income := fortnightlyIncome(uuid.New(), 50000, date(2025, time.January, 10))

	good := []models.IncomeAllocation{
		{EnvelopeID: uuid.New(), IncomeSourceID: income.ID, AmountCents: 30000},
		{EnvelopeID: uuid.New(), IncomeSourceID: income.ID, AmountCents: 20000},
	}
	if err := ValidateAllocations([]models.IncomeSource{income}, good); err != nil {
		t.Fatalf("expected exact fit to pass, got %v", err)
	}

	overflow := append(good, models.IncomeAllocation{
		EnvelopeID:     uuid.New(),
		IncomeSourceID: income.ID,
		AmountCents:    1,
	})
	if err := ValidateAllocations([]models.IncomeSource{income}, overflow); err == nil {
		t.Fatal("expected overflow error")
	}
}

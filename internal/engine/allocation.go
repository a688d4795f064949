package engine

import (
	"sort"

	"github.com/google/uuid"

	"example.com/envelope-budget/backend/internal/models"
)

type EnvelopeSuggestion struct {
	EnvelopeID       uuid.UUID           `json:"envelope_id"`
	IdealPerPayCents int64               `json:"ideal_per_pay_cents"`
	AllocatedCents   int64               `json:"allocated_cents"`
	FullyFunded      bool                `json:"fully_funded"`
	Locked           bool                `json:"locked"`
	BySource         map[uuid.UUID]int64 `json:"by_source"`
}

type SuggestResult struct {
	ReferenceFrequency models.Frequency     `json:"reference_frequency"`
	Suggestions        []EnvelopeSuggestion `json:"suggestions"`
	ShortfallCents     int64                `json:"shortfall_cents"`
	NoIncomeCapacity   bool                 `json:"no_income_capacity"`
}

// sourceCapacity — остаток емкости источника в пересчете на опорный цикл.
type sourceCapacity struct {
	id        uuid.UUID
	frequency models.Frequency
	perYear   int64
	capacity  int64
	remaining int64
}

// Suggest распределяет доход по конвертам в порядке приоритета.
//
// Суммы нормализуются к циклу самого частого источника, чтобы не делить
// событие выплаты на дробные части. Заблокированные конверты не пересчитываются,
// но их действующие распределения первыми съедают емкость источников.
func Suggest(
	incomes []models.IncomeSource,
	envelopes []models.Envelope,
	existing []models.IncomeAllocation,
	locked map[uuid.UUID]bool,
) (SuggestResult, error) {
	result := SuggestResult{Suggestions: []EnvelopeSuggestion{}}

	for _, income := range incomes {
		if income.AmountCents < 0 {
			return result, ErrInvalidAmount
		}
	}
	for _, envelope := range envelopes {
		if envelope.TargetCents < 0 {
			return result, ErrInvalidAmount
		}
	}

	referencePerYear, referenceFrequency, err := referenceCycle(incomes)
	if err != nil {
		return result, err
	}
	result.ReferenceFrequency = referenceFrequency

	sources, totalCapacity, err := buildCapacities(incomes, referencePerYear)
	if err != nil {
		return result, err
	}

	if totalCapacity == 0 {
		result.NoIncomeCapacity = demandExists(envelopes, locked)
		return result, nil
	}

	consumeLocked(sources, existing, locked, referencePerYear)

	ordered := make([]models.Envelope, len(envelopes))
	copy(ordered, envelopes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return models.PriorityRank(ordered[i].Priority) < models.PriorityRank(ordered[j].Priority)
	})

	for _, envelope := range ordered {
		if locked[envelope.ID] {
			result.Suggestions = append(result.Suggestions, lockedSuggestion(envelope, existing))
			continue
		}

		if envelope.TargetCents == 0 || envelope.Frequency == models.FrequencyNone {
			continue
		}

		envelopePerYear, err := PerYear(envelope.Frequency)
		if err != nil {
			return result, err
		}

		ideal := envelope.TargetCents * int64(envelopePerYear) / int64(referencePerYear)
		suggestion := distribute(envelope.ID, ideal, sources, totalCapacity, referencePerYear)

		if !suggestion.FullyFunded {
			result.NoIncomeCapacity = true
			result.ShortfallCents += suggestion.IdealPerPayCents - suggestion.AllocatedCents
		}

		result.Suggestions = append(result.Suggestions, suggestion)
	}

	return result, nil
}

// ValidateAllocations отклоняет распределения, превышающие сумму выплаты источника.
func ValidateAllocations(incomes []models.IncomeSource, allocations []models.IncomeAllocation) error {
	totals := make(map[uuid.UUID]int64)
	for _, allocation := range allocations {
		if allocation.AmountCents < 0 {
			return ErrInvalidAmount
		}
		totals[allocation.IncomeSourceID] += allocation.AmountCents
	}

	amounts := make(map[uuid.UUID]int64, len(incomes))
	for _, income := range incomes {
		amounts[income.ID] = income.AmountCents
	}

	for sourceID, total := range totals {
		amount, ok := amounts[sourceID]
		if !ok {
			return ErrAllocationOverflow
		}
		if total > amount {
			return ErrAllocationOverflow
		}
	}

	return nil
}

// referenceCycle выбирает самый частый цикл среди активных источников.
func referenceCycle(incomes []models.IncomeSource) (int, models.Frequency, error) {
	best := 0
	frequency := models.FrequencyMonthly

	for _, income := range incomes {
		if !income.IsActive {
			continue
		}
		perYear, err := PerYear(income.Frequency)
		if err != nil {
			return 0, frequency, err
		}
		if perYear > best {
			best = perYear
			frequency = income.Frequency
		}
	}

	if best == 0 {
		// Нет активных источников: нормализуем к месяцу, емкость будет нулевой.
		return 12, models.FrequencyMonthly, nil
	}

	return best, frequency, nil
}

func buildCapacities(incomes []models.IncomeSource, referencePerYear int) ([]*sourceCapacity, int64, error) {
	var sources []*sourceCapacity
	var total int64

	for _, income := range incomes {
		if !income.IsActive {
			continue
		}
		perYear, err := PerYear(income.Frequency)
		if err != nil {
			return nil, 0, err
		}

		capacity := income.AmountCents * int64(perYear) / int64(referencePerYear)
		sources = append(sources, &sourceCapacity{
			id:        income.ID,
			frequency: income.Frequency,
			perYear:   int64(perYear),
			capacity:  capacity,
			remaining: capacity,
		})
		total += capacity
	}

	return sources, total, nil
}

// consumeLocked списывает емкость, занятую заблокированными распределениями.
func consumeLocked(sources []*sourceCapacity, existing []models.IncomeAllocation, locked map[uuid.UUID]bool, referencePerYear int) {
	bySource := make(map[uuid.UUID]*sourceCapacity, len(sources))
	for _, source := range sources {
		bySource[source.id] = source
	}

	for _, allocation := range existing {
		if !locked[allocation.EnvelopeID] {
			continue
		}
		source, ok := bySource[allocation.IncomeSourceID]
		if !ok {
			continue
		}

		consumed := allocation.AmountCents * source.perYear / int64(referencePerYear)
		source.remaining -= consumed
		if source.remaining < 0 {
			source.remaining = 0
		}
	}
}

// distribute делит идеальную сумму пропорционально емкости источников.
func distribute(envelopeID uuid.UUID, ideal int64, sources []*sourceCapacity, totalCapacity int64, referencePerYear int) EnvelopeSuggestion {
	suggestion := EnvelopeSuggestion{
		EnvelopeID:       envelopeID,
		IdealPerPayCents: ideal,
		BySource:         make(map[uuid.UUID]int64),
	}

	need := ideal

	// Первый проход: доля каждого источника от общего дохода.
	for _, source := range sources {
		if need == 0 {
			break
		}
		want := ideal * source.capacity / totalCapacity
		take := minInt64(want, minInt64(need, source.remaining))
		if take == 0 {
			continue
		}
		claim(&suggestion, source, take, referencePerYear)
		need -= take
	}

	// Добор остатка из источников, у которых еще есть емкость.
	for _, source := range sources {
		if need == 0 {
			break
		}
		take := minInt64(need, source.remaining)
		if take == 0 {
			continue
		}
		claim(&suggestion, source, take, referencePerYear)
		need -= take
	}

	suggestion.AllocatedCents = ideal - need
	suggestion.FullyFunded = need == 0
	return suggestion
}

// claim переводит взятую емкость в сумму на событие выплаты источника.
func claim(suggestion *EnvelopeSuggestion, source *sourceCapacity, take int64, referencePerYear int) {
	source.remaining -= take
	perEvent := take * int64(referencePerYear) / source.perYear
	suggestion.BySource[source.id] += perEvent
}

func lockedSuggestion(envelope models.Envelope, existing []models.IncomeAllocation) EnvelopeSuggestion {
	suggestion := EnvelopeSuggestion{
		EnvelopeID:  envelope.ID,
		Locked:      true,
		FullyFunded: true,
		BySource:    make(map[uuid.UUID]int64),
	}

	for _, allocation := range existing {
		if allocation.EnvelopeID != envelope.ID {
			continue
		}
		suggestion.BySource[allocation.IncomeSourceID] = allocation.AmountCents
		suggestion.AllocatedCents += allocation.AmountCents
	}

	suggestion.IdealPerPayCents = suggestion.AllocatedCents
	return suggestion
}

func demandExists(envelopes []models.Envelope, locked map[uuid.UUID]bool) bool {
	for _, envelope := range envelopes {
		if locked[envelope.ID] {
			continue
		}
		if envelope.TargetCents > 0 && envelope.Frequency != models.FrequencyNone {
			return true
		}
	}
	return false
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"example.com/envelope-budget/backend/internal/models"
)

type PredictionPoint struct {
	Date         time.Time `json:"date"`
	BalanceCents int64     `json:"balance_cents"`
}

type Prediction struct {
	EnvelopeID     uuid.UUID            `json:"envelope_id"`
	Status         models.FundingStatus `json:"status"`
	ShortfallCents int64                `json:"shortfall_cents"`
	Points         []PredictionPoint    `json:"points"`
}

// balanceEvent — одно событие прогноза: поступление или списание по сроку.
type balanceEvent struct {
	date   time.Time
	amount int64
	isDue  bool
}

// Predict строит прогноз баланса конверта до горизонта и классифицирует риск.
func Predict(
	now, horizonEnd time.Time,
	envelope models.Envelope,
	allocations []models.IncomeAllocation,
	incomes []models.IncomeSource,
) (Prediction, error) {
	prediction := Prediction{
		EnvelopeID: envelope.ID,
		Status:     models.FundingOnTrack,
		Points:     []PredictionPoint{},
	}

	if envelope.TargetCents < 0 {
		return prediction, ErrInvalidAmount
	}

	dueDates, err := dueOccurrences(envelope, now, horizonEnd)
	if err != nil {
		return prediction, err
	}

	events, err := fundingEvents(envelope, allocations, incomes, now, horizonEnd)
	if err != nil {
		return prediction, err
	}

	for _, due := range dueDates {
		events = append(events, balanceEvent{date: due, amount: envelope.TargetCents, isDue: true})
	}

	// Поступления того же дня применяются раньше списания.
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].date.Equal(events[j].date) {
			return events[i].date.Before(events[j].date)
		}
		return !events[i].isDue && events[j].isDue
	})

	balance := envelope.BalanceCents
	fundingSeen := false
	worst := models.FundingOnTrack

	for _, event := range events {
		if !event.isDue {
			balance += event.amount
			fundingSeen = true
			prediction.Points = append(prediction.Points, PredictionPoint{Date: event.date, BalanceCents: balance})
			continue
		}

		status := classifyDueEvent(balance, envelope.TargetCents, fundingSeen)
		if statusSeverity(status) > statusSeverity(worst) {
			worst = status
			if shortfall := envelope.TargetCents - balance; shortfall > 0 {
				prediction.ShortfallCents = shortfall
			}
		}

		balance -= envelope.TargetCents
		prediction.Points = append(prediction.Points, PredictionPoint{Date: event.date, BalanceCents: balance})
	}

	prediction.Status = worst
	return prediction, nil
}

// dueOccurrences возвращает даты списаний конверта внутри горизонта.
func dueOccurrences(envelope models.Envelope, now, horizonEnd time.Time) ([]time.Time, error) {
	if envelope.DueDate == nil || envelope.TargetCents == 0 {
		return nil, nil
	}

	if envelope.Frequency == models.FrequencyNone {
		due := dateOnly(*envelope.DueDate)
		if due.Before(dateOnly(now)) || due.After(dateOnly(horizonEnd)) {
			return nil, nil
		}
		return []time.Time{due}, nil
	}

	occurrences, err := Occurrences(envelope.Frequency, *envelope.DueDate, horizonEnd)
	if err != nil {
		return nil, err
	}

	// Прошедшие сроки уже оплачены и в прогноз не входят.
	upcoming := occurrences[:0]
	for _, occurrence := range occurrences {
		if occurrence.Before(dateOnly(now)) {
			continue
		}
		upcoming = append(upcoming, occurrence)
	}

	return upcoming, nil
}

func fundingEvents(
	envelope models.Envelope,
	allocations []models.IncomeAllocation,
	incomes []models.IncomeSource,
	now, horizonEnd time.Time,
) ([]balanceEvent, error) {
	incomesByID := make(map[uuid.UUID]models.IncomeSource, len(incomes))
	for _, income := range incomes {
		incomesByID[income.ID] = income
	}

	var events []balanceEvent
	for _, allocation := range allocations {
		if allocation.EnvelopeID != envelope.ID || allocation.AmountCents <= 0 {
			continue
		}

		income, ok := incomesByID[allocation.IncomeSourceID]
		if !ok || !income.IsActive {
			continue
		}

		payDates, err := Occurrences(income.Frequency, income.AnchorDate, horizonEnd)
		if err != nil {
			return nil, err
		}

		for _, payDate := range payDates {
			if payDate.Before(dateOnly(now)) {
				continue
			}
			events = append(events, balanceEvent{date: payDate, amount: allocation.AmountCents})
		}
	}

	return events, nil
}

// classifyDueEvent оценивает одно списание: хватает ли средств на дату срока.
func classifyDueEvent(balance, target int64, fundingSeen bool) models.FundingStatus {
	switch {
	case balance >= target:
		return models.FundingOnTrack
	case balance <= 0 || !fundingSeen:
		return models.FundingCritical
	default:
		return models.FundingBehind
	}
}

func statusSeverity(status models.FundingStatus) int {
	switch status {
	case models.FundingCritical:
		return 2
	case models.FundingBehind:
		return 1
	default:
		return 0
	}
}

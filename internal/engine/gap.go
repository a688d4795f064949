package engine

import (
	"github.com/google/uuid"

	"example.com/envelope-budget/backend/internal/models"
)

// DefaultGapToleranceCents — граница "небольшого отклонения" ($50).
// Порог задан в валютных единицах и настраивается через конфигурацию.
const DefaultGapToleranceCents int64 = 5000

type GapRecord struct {
	EnvelopeID       uuid.UUID        `json:"envelope_id"`
	IdealPerPayCents int64            `json:"ideal_per_pay_cents"`
	CyclesElapsed    int              `json:"cycles_elapsed"`
	ExpectedCents    int64            `json:"expected_cents"`
	ActualCents      int64            `json:"actual_cents"`
	GapCents         int64            `json:"gap_cents"`
	Status           models.GapStatus `json:"status"`
	Locked           bool             `json:"locked"`
}

// AnalyzeGap сравнивает фактический баланс с ожидаемым за прошедшие циклы.
func AnalyzeGap(
	envelopeID uuid.UUID,
	idealPerPayCents int64,
	cyclesElapsed int,
	actualCents int64,
	locked bool,
	toleranceCents int64,
) GapRecord {
	if toleranceCents <= 0 {
		toleranceCents = DefaultGapToleranceCents
	}

	expected := idealPerPayCents * int64(cyclesElapsed)
	gap := actualCents - expected

	status := models.GapOnTrack
	switch {
	case gap >= 0:
		status = models.GapOnTrack
	case gap >= -toleranceCents:
		status = models.GapSlightDeviation
	default:
		status = models.GapNeedsAttention
	}

	return GapRecord{
		EnvelopeID:       envelopeID,
		IdealPerPayCents: idealPerPayCents,
		CyclesElapsed:    cyclesElapsed,
		ExpectedCents:    expected,
		ActualCents:      actualCents,
		GapCents:         gap,
		Status:           status,
		Locked:           locked,
	}
}

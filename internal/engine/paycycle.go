package engine

import (
	"fmt"
	"time"

	"example.com/envelope-budget/backend/internal/models"
)

// maxOccurrences ограничивает генерацию дат при патологических горизонтах.
const maxOccurrences = 1000

// PerYear возвращает число событий цикла за год.
func PerYear(freq models.Frequency) (int, error) {
	switch freq {
	case models.FrequencyWeekly:
		return 52, nil
	case models.FrequencyFortnightly:
		return 26, nil
	case models.FrequencyTwiceMonthly:
		return 24, nil
	case models.FrequencyMonthly:
		return 12, nil
	case models.FrequencyQuarterly:
		return 4, nil
	case models.FrequencyAnnually:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, freq)
	}
}

// Occurrences возвращает упорядоченные даты цикла в пределах [anchor, horizonEnd].
func Occurrences(freq models.Frequency, anchor, horizonEnd time.Time) ([]time.Time, error) {
	if _, err := PerYear(freq); err != nil {
		return nil, err
	}

	anchor = dateOnly(anchor)
	horizonEnd = dateOnly(horizonEnd)
	if anchor.After(horizonEnd) {
		return []time.Time{}, nil
	}

	switch freq {
	case models.FrequencyWeekly:
		return daySteps(anchor, horizonEnd, 7), nil
	case models.FrequencyFortnightly:
		return daySteps(anchor, horizonEnd, 14), nil
	case models.FrequencyTwiceMonthly:
		return twiceMonthly(anchor, horizonEnd), nil
	case models.FrequencyMonthly:
		return monthSteps(anchor, horizonEnd, 1), nil
	case models.FrequencyQuarterly:
		return monthSteps(anchor, horizonEnd, 3), nil
	default:
		return monthSteps(anchor, horizonEnd, 12), nil
	}
}

// CyclesBetween считает события цикла в интервале (from, until].
func CyclesBetween(freq models.Frequency, anchor, from, until time.Time) (int, error) {
	occurrences, err := Occurrences(freq, anchor, until)
	if err != nil {
		return 0, err
	}

	from = dateOnly(from)
	count := 0
	for _, occurrence := range occurrences {
		if occurrence.After(from) {
			count++
		}
	}

	return count, nil
}

func daySteps(anchor, horizonEnd time.Time, step int) []time.Time {
	var out []time.Time
	for current := anchor; !current.After(horizonEnd) && len(out) < maxOccurrences; current = current.AddDate(0, 0, step) {
		out = append(out, current)
	}
	return out
}

// monthSteps шагает по месяцам, прижимая день к концу короткого месяца.
func monthSteps(anchor, horizonEnd time.Time, stepMonths int) []time.Time {
	day := anchor.Day()
	firstOfAnchor := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())

	var out []time.Time
	for i := 0; len(out) < maxOccurrences; i++ {
		first := firstOfAnchor.AddDate(0, i*stepMonths, 0)
		if first.After(horizonEnd) {
			break
		}

		occurrence := time.Date(first.Year(), first.Month(), clampDay(day, first.Year(), first.Month()), 0, 0, 0, 0, anchor.Location())
		if occurrence.Before(anchor) {
			continue
		}
		if occurrence.After(horizonEnd) {
			break
		}
		out = append(out, occurrence)
	}
	return out
}

// twiceMonthly дает два дня в месяц из корзины дня якоря (например, 1-е и 15-е).
func twiceMonthly(anchor, horizonEnd time.Time) []time.Time {
	lowDay := anchor.Day()
	if lowDay > 15 {
		lowDay -= 14
	}
	highDay := lowDay + 14
	firstOfAnchor := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())

	var out []time.Time
	for i := 0; len(out) < maxOccurrences; i++ {
		first := firstOfAnchor.AddDate(0, i, 0)
		if first.After(horizonEnd) {
			break
		}

		for _, day := range [2]int{lowDay, highDay} {
			occurrence := time.Date(first.Year(), first.Month(), clampDay(day, first.Year(), first.Month()), 0, 0, 0, 0, anchor.Location())
			if occurrence.Before(anchor) || occurrence.After(horizonEnd) {
				continue
			}
			out = append(out, occurrence)
		}
	}
	return out
}

func clampDay(day, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

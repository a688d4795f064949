package server

import "testing"

// TestValidatorFrequencyTag проверяет доменную валидацию периодичности дохода.
func TestValidatorFrequencyTag(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Frequency string `validate:"required,frequency"`
	}

	for _, raw := range []string{"weekly", "fortnightly", "twice_monthly", "monthly", "quarterly", "annually"} {
		if err := v.Validate(payload{Frequency: raw}); err != nil {
			t.Fatalf("frequency %q: неожиданная ошибка: %v", raw, err)
		}
	}

	for _, raw := range []string{"none", "daily", "biweekly", ""} {
		if err := v.Validate(payload{Frequency: raw}); err == nil {
			t.Fatalf("frequency %q: ожидалась ошибка валидации", raw)
		}
	}
}

// TestValidatorFrequencyOrNoneTag проверяет, что none допустим для конвертов.
func TestValidatorFrequencyOrNoneTag(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Frequency string `validate:"required,frequency_or_none"`
	}

	if err := v.Validate(payload{Frequency: "none"}); err != nil {
		t.Fatalf("none должен проходить: %v", err)
	}
	if err := v.Validate(payload{Frequency: "daily"}); err == nil {
		t.Fatal("daily должен отклоняться")
	}
}

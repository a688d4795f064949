package server

import (
	"github.com/go-playground/validator/v10"

	"example.com/envelope-budget/backend/internal/models"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator создает валидатор с доменными проверками периодичности.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("frequency", validFrequency)
	_ = v.RegisterValidation("frequency_or_none", validFrequencyOrNone)
	return &CustomValidator{validator: v}
}

// Validate запускает проверку структуры по тегам.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validFrequency принимает только повторяющиеся циклы: у источника дохода
// не бывает разовой периодичности.
func validFrequency(fl validator.FieldLevel) bool {
	switch models.Frequency(fl.Field().String()) {
	case models.FrequencyWeekly, models.FrequencyFortnightly, models.FrequencyTwiceMonthly,
		models.FrequencyMonthly, models.FrequencyQuarterly, models.FrequencyAnnually:
		return true
	}
	return false
}

// validFrequencyOrNone дополнительно допускает none для разовых конвертов.
func validFrequencyOrNone(fl validator.FieldLevel) bool {
	return models.Frequency(fl.Field().String()) == models.FrequencyNone || validFrequency(fl)
}

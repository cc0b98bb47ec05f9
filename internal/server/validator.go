package server

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"example.com/subscription-reaper/backend/internal/models"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds a go-playground validator with the domain tags registered:
// frequency, category, currency_code, default_currency and country_code.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		_, err := models.ParseFrequency(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCategory(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return models.IsCurrencyCode(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	_ = v.RegisterValidation("default_currency", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCurrency(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("country_code", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCountry(fl.Field().String())
		return err == nil
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

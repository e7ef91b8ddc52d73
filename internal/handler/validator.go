package handler

import (
	"fmt"

	"listingguide/internal/config"
	"listingguide/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validInputTypes = map[string]bool{
	model.InputImage:       true,
	model.InputText:        true,
	model.InputFieldUpdate: true,
}

// RegisterValidators adds the input_type and locale binding tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("input_type", validateInputType); err != nil {
		return fmt.Errorf("failed to register input_type: %w", err)
	}
	if err := v.RegisterValidation("locale", validateLocale); err != nil {
		return fmt.Errorf("failed to register locale: %w", err)
	}
	return nil
}

func validateInputType(fl validator.FieldLevel) bool {
	return validInputTypes[fl.Field().String()]
}

func validateLocale(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case config.LocaleEnglish, config.LocaleRomanian:
		return true
	default:
		return false
	}
}

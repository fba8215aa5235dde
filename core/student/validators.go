package student

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-roster/core"
)

var (
	statusTag   = "status"
	statusText  = "status must start with a letter"
	statusRegex = regexp.MustCompile(`^\pL[^\pC]*$`)

	dateTag  = "datetime"
	dateText = "must be a date formatted as YYYY-MM-DD"
)

// InitValidators registers the student specific validators.
// core.InitValidators must have been called on validate first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
	core.RegisterCustomTranslation(validate, translator, dateTag, dateText, true)
}

// NewValidator returns a ready to use validator for student forms.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	InitValidators(validate, translator)
	return validate
}

// statusValidation accepts free text starting with a letter, without control characters.
func statusValidation(fl validator.FieldLevel) bool {
	return statusRegex.MatchString(fl.Field().String())
}

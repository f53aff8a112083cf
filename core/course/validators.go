package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/darisacademy/daris/core"
)

var (
	levelTag  = "courselevel"
	levelText = "must be one of: beginner, intermediate, advanced"

	statusTag  = "coursestatus"
	statusText = "must be one of: draft, published, archived"
)

// InitValidators registers course-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func levelValidation(fl validator.FieldLevel) bool {
	return Level(fl.Field().String()).Valid()
}

func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Valid()
}

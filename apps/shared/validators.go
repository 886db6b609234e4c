// Package shared holds the setup the console's apps have in common.
package shared

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
)

// NewValidator returns a validator with the english translations and every custom validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

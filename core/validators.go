package core

import (
	"reflect"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	MaxPrice    = 9999.99
	MaxProgress = 100
	MaxGrade    = 100
	MinRating   = 1
	MaxRating   = 5
)

var (
	// custom validation tags & texts
	priceTag  = "price"
	priceText = "Price must be between 0 and 9999.99"

	progressTag  = "progress"
	progressText = "Progress must be between 0 and 100"

	ratingTag  = "rating"
	ratingText = "Rating must be between 1 and 5"

	gradeTag  = "grade"
	gradeText = "Grade must be between 0 and 100"

	dateTag  = "date"
	dateText = "enter a valid date (YYYY-MM-DD)"

	idTag  = "id"
	idText = "select a valid option"

	requiredTag  = "required"
	requiredText = "this field is required"

	emailTag  = "email"
	emailText = "enter a valid email address"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(priceTag, priceValidation)
	RegisterCustomTranslation(validate, translator, priceTag, priceText)

	_ = validate.RegisterValidation(progressTag, progressValidation)
	RegisterCustomTranslation(validate, translator, progressTag, progressText)

	_ = validate.RegisterValidation(ratingTag, ratingValidation)
	RegisterCustomTranslation(validate, translator, ratingTag, ratingText)

	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(dateTag, dateValidation)
	RegisterCustomTranslation(validate, translator, dateTag, dateText)

	_ = validate.RegisterValidation(idTag, idValidation)
	RegisterCustomTranslation(validate, translator, idTag, idText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, emailTag, emailText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// priceValidation accepts decimals in [0, MaxPrice].
func priceValidation(fl validator.FieldLevel) bool {
	v, err := ParseDecimal(fl.Field().String())
	return err == nil && v >= 0 && v <= MaxPrice
}

// progressValidation accepts integers in [0, MaxProgress].
func progressValidation(fl validator.FieldLevel) bool {
	return intInRange(fl.Field().String(), 0, MaxProgress)
}

// ratingValidation accepts integers in [MinRating, MaxRating].
func ratingValidation(fl validator.FieldLevel) bool {
	return intInRange(fl.Field().String(), MinRating, MaxRating)
}

// gradeValidation accepts decimals in [0, MaxGrade].
func gradeValidation(fl validator.FieldLevel) bool {
	v, err := ParseDecimal(fl.Field().String())
	return err == nil && v >= 0 && v <= MaxGrade
}

func dateValidation(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// idValidation accepts positive integer ids.
func idValidation(fl validator.FieldLevel) bool {
	return ParseID(fl.Field().String()) > 0
}

func intInRange(s string, min, max int) bool {
	v, err := strconv.Atoi(CleanString(s))
	return err == nil && v >= min && v <= max
}

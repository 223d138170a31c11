// Package validate runs go-playground/validator with English messages and
// returns project Validation errors naming the first bad field
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel is what a custom tag function receives
type FieldLevel = validator.FieldLevel

type engine struct {
	v     *validator.Validate
	trans ut.Translator
}

var get = sync.OnceValue(func() *engine {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	e := &engine{v: v, trans: trans}
	for tag, text := range map[string]string{
		"min":      "{0} must be at least {1}",
		"max":      "{0} must be at most {1}",
		"gtefield": "{0} must be greater than or equal to {1}",
		"ltefield": "{0} must be less than or equal to {1}",
	} {
		e.message(tag, text)
	}
	return e
})

// jsonName reports fields by their JSON key so messages match the documents
// users edit
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func (e *engine) message(tag, text string) {
	_ = e.v.RegisterTranslation(tag, e.trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// RegisterValidation adds a custom tag. msg may use {0} for the field name;
// empty msg keeps the validator's generic text. Register before validating
// anything that uses the tag
func RegisterValidation(tag string, fn validator.Func, msg string) error {
	e := get()
	if err := e.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if msg != "" {
		e.message(tag, msg)
	}
	return nil
}

// Struct validates v. A failure is a Validation error whose field and message
// come from the first failing rule; a non-struct v is InvalidArgument
func Struct(v any) error {
	err := get().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeInvalidArgument, "cannot validate value")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
}

// FieldAndMessage extracts the first failing field and its English message
func FieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &verrs) && len(verrs) > 0:
		return verrs[0].Field(), verrs[0].Translate(get().trans)
	default:
		return "", err.Error()
	}
}

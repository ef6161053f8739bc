package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// customValidation is a validation tag this package adds on top of the validator's built-ins.
type customValidation struct {
	tag     string
	fn      validator.Func
	message string
}

var customValidations = []customValidation{
	{tag: "file", fn: isFileReadable, message: "{0} must be an existing and readable file"},
	// required accepts "   ", which the store later rejects as an empty side
	{tag: "notblank", fn: isNotBlank, message: "{0} must not be blank"},
}

// NewValidator returns a validator with English translations whose field
// names come from the given struct tag, "mapstructure" for configuration
// and "json" for API requests.
func NewValidator(tagKey string) (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get(tagKey), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for _, v := range customValidations {
		if err := registerValidation(validate, trans, v); err != nil {
			return nil, nil, err
		}
	}
	return validate, trans, nil
}

func registerValidation(validate *validator.Validate, trans ut.Translator, v customValidation) error {
	if err := validate.RegisterValidation(v.tag, v.fn); err != nil {
		return fmt.Errorf("failed to register %s validation: %w", v.tag, err)
	}
	err := validate.RegisterTranslation(v.tag, trans, func(ut ut.Translator) error {
		return ut.Add(v.tag, v.message, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(v.tag, fieldPath(fe))
		return t
	})
	if err != nil {
		return fmt.Errorf("failed to register %s translation: %w", v.tag, err)
	}
	return nil
}

// fieldPath is the namespace without the root struct, e.g. "ai.prompt_file".
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

// TranslateErrors flattens validator errors into one readable message.
func TranslateErrors(err error, trans ut.Translator) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Translate(trans))
	}
	return strings.Join(msgs, ", ")
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o400 != 0
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

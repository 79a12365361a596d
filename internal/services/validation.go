package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pura-ai/call-tracker/internal/model"
)

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ValidationOptions struct {
	// ClinicRequired rejects calls without a clinic.
	ClinicRequired bool
	// StrictTime only accepts 24h HH:MM appointment times.
	StrictTime bool
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator(opts ValidationOptions) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	must(v.RegisterValidation("notblank", notBlank))
	must(v.RegisterValidation("clinic", func(fl validator.FieldLevel) bool {
		return !opts.ClinicRequired || notBlank(fl)
	}))
	must(v.RegisterValidation("apptime", func(fl validator.FieldLevel) bool {
		return !opts.StrictTime || hhmm.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("callstatus", func(fl validator.FieldLevel) bool {
		return model.CallStatus(fl.Field().String()).Valid()
	}))

	return &Validator{validate: v}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s and reports the first failing field as a validation error.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError("invalid request: %v", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "notblank", "clinic":
		return validationError("%s is required", fe.Field())
	case "apptime":
		return validationError("%s must be a 24h time in HH:MM format", fe.Field())
	case "callstatus":
		return validationError("%s must be one of %s, %s, %s", fe.Field(),
			model.CallStatusNoAnswer, model.CallStatusConfirmed, model.CallStatusRedirected)
	default:
		return validationError("%s is invalid", fe.Field())
	}
}

package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"movietracker/internal/microservices/http-api/models"

	"github.com/go-playground/validator/v10"
)

// newValidator registers the catalog enumerations as validation tags and
// reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	must("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	must("format", func(fl validator.FieldLevel) bool {
		return models.Format(fl.Field().String()).Valid()
	})
	must("yesno", func(fl validator.FieldLevel) bool {
		return models.YesNo(fl.Field().String()).Valid()
	})
	must("digital_type", func(fl validator.FieldLevel) bool {
		return models.DigitalType(fl.Field().String()).Valid()
	})
	must("case_type", func(fl validator.FieldLevel) bool {
		return models.CaseType(fl.Field().String()).Valid()
	})
	must("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct runs the struct tags and folds any failures into a ValidationError.
func validateStruct(v *validator.Validate, s any) *ValidationError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "format":
		return "must be one of " + joinLabels(models.Formats)
	case "yesno":
		return "must be Y or N"
	case "digital_type":
		return "must be one of " + joinLabels(models.DigitalTypes)
	case "case_type":
		return "must be one of " + joinLabels(models.CaseTypes)
	case "status":
		return "must be one of " + joinLabels(models.Statuses)
	default:
		return "is invalid"
	}
}

func joinLabels[T ~string](values []T) string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = string(v)
	}
	return strings.Join(labels, ", ")
}

// isTuesday is the release-day rule for US disc releases.
func isTuesday(t time.Time) bool {
	return t.Weekday() == time.Tuesday
}

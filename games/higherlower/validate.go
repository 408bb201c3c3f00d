/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return "connection"
		case "":
			return f.Name
		}
		return name
	})

	return v
}

// check validates in against its struct tags and folds every failing field
// into a single validation error.
func check(v *validator.Validate, in any) error {
	if in == nil || reflect.ValueOf(in).IsNil() {
		return invalid("missing payload")
	}

	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return invalid(err.Error())
	}

	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, describe(fe))
	}

	return invalid(strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "number":
		return field + " must contain only digits"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Package validation turns struct-tag validation failures into field-level
// messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name, as it appears in JSON, to a human readable
// message. A non-empty Errors is an error.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Merge adds every message of other that e does not have yet.
func (e Errors) Merge(other Errors) {
	for field, msg := range other {
		e.Add(field, msg)
	}
}

// Err returns e as an error, or nil when it is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags. It returns Errors for
// rule violations and a plain error if s cannot be validated at all.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	out := Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), Message(fe.Field(), fe.Tag(), fe.Param(), isText(fe.Type())))
	}
	return out
}

// Message renders the message for a failed rule.
func Message(field, tag, param string, text bool) string {
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "max":
		if text {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", field, param)
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", field, param)
	case "min":
		if text && param == "1" {
			return fmt.Sprintf("The %s field is required.", field)
		}
		if text {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, param)
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, param)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

func isText(t reflect.Type) bool {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.String
}

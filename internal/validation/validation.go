// Package validation checks request payloads with go-playground/validator
// and reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"shareit/internal/domain"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("dotted_domain", dottedDomain)

	return &Validator{validate: v}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// dottedDomain requires the part after '@' to contain an inner dot.
func dottedDomain(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	domainPart := s[at+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}

// Struct validates a tagged struct.
func (v *Validator) Struct(s any) error {
	return v.translate(v.validate.Struct(s), "")
}

// Var validates a single value under the given field name.
func (v *Validator) Var(field string, value any, tag string) error {
	return v.translate(v.validate.Var(value, tag), field)
}

func (v *Validator) translate(err error, field string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		messages = append(messages, fmt.Sprintf("%s: %s", name, describe(fe)))
	}
	return domain.Validation("%s", strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email", "dotted_domain":
		return "must be a valid email address"
	case "excludesall":
		return "must not contain whitespace"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// Package validation checks client payloads with go-playground/validator.
package validation

import (
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"
)

// presentTag accepts any non-null value, including zero values such as 0 or "".
const presentTag = "present"

// Validator checks decoded JSON objects.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation(presentTag, isPresent, true)
	return &Validator{validate: v}
}

func isPresent(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() {
		return false
	}
	switch field.Kind() {
	case reflect.Ptr, reflect.Interface:
		return !field.IsNil()
	}
	return true
}

// MissingFields returns, sorted, the names in fields that are absent from
// input or null.
func (v *Validator) MissingFields(input map[string]any, fields []string) []string {
	if len(fields) == 0 {
		return nil
	}

	rules := make(map[string]any, len(fields))
	for _, name := range fields {
		rules[name] = presentTag
	}

	failed := v.validate.ValidateMap(input, rules)
	if len(failed) == 0 {
		return nil
	}

	missing := make([]string, 0, len(failed))
	for name := range failed {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

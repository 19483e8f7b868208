package account

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Rule tags understood by Validate. Schemas are ordered lists of tags per
// field, mirroring the wire-facing shape callers configure.
const (
	RuleRequired = "required"
	RuleString   = "type:string"
	RuleNumber   = "type:number"
	RuleEmail    = "email"
	RuleAny      = "any"
)

// Schema maps a field name to the ordered rules applied to it.
type Schema map[string][]string

// Validate checks data against schema. Every field is evaluated
// independently and all failures are collected into a single validation
// error carrying a field->reason map, so callers always see the complete
// picture rather than the first failing field.
func Validate(schema Schema, data map[string]any) error {
	failures := map[string]string{}

	for field, rules := range schema {
		value, present := data[field]
		if reason := validateField(value, present, rules); reason != "" {
			failures[field] = reason
		}
	}

	if len(failures) > 0 {
		return NewValidationError(failures)
	}

	return nil
}

// validateField applies the rules in order and reports the first failing
// one. Rules other than required and any are skipped for absent values.
func validateField(value any, present bool, rules []string) string {
	for _, rule := range rules {
		switch rule {
		case RuleRequired:
			if !present {
				return "cannot be blank"
			}
			if err := validation.Validate(value, validation.Required); err != nil {
				return err.Error()
			}
		case RuleAny:
			if !present {
				return "must be present"
			}
		case RuleString:
			if !present || value == nil {
				continue
			}
			if _, ok := value.(string); !ok {
				return "must be a string"
			}
		case RuleNumber:
			if !present || value == nil {
				continue
			}
			if !isNumeric(value) {
				return "must be a number"
			}
		case RuleEmail:
			if !present || value == nil || value == "" {
				continue
			}
			if err := validation.Validate(value, is.Email); err != nil {
				return err.Error()
			}
		default:
			return fmt.Sprintf("unknown rule: %s", rule)
		}
	}

	return ""
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

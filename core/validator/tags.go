package validator

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/noticket/waf/core/waf"
)

// ValidatorFunc builds the Rule for one tag on one field.
type ValidatorFunc func(field string, value reflect.Value, params []string) Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required": requiredValidator,
		"email":    emailValidator,
		"integer":  integerValidator,
		"float":    floatValidator,
		"uuid":     uuidValidator,
		"name":     nameValidator,
		"datetime": datetimeValidator,
		"mode":     modeValidator,
	}
)

// RegisterValidator adds a custom validator function to the registry.
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct validates a struct based on its `validate` field tags.
// Rules are separated by semicolons, parameters follow a colon and are
// separated by commas:
//
//	type Booking struct {
//		TripID string `validate:"required;uuid"`
//		Seats  string `validate:"required;integer:1,9"`
//		Email  string `validate:"required;email"`
//		Note   string `validate:"mode:text"`
//	}
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidTarget
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	var errs ValidationErrors
	validateStructRecursive(rv, "", &errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func validateStructRecursive(rv reflect.Value, prefix string, errs *ValidationErrors) {
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		structField := rt.Field(i)
		tag := structField.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		fieldPath := structField.Name
		if prefix != "" {
			fieldPath = prefix + "." + structField.Name
		}

		if field.Kind() == reflect.Struct && tag == "" {
			validateStructRecursive(field, fieldPath, errs)
			continue
		}

		if field.Kind() == reflect.Pointer {
			switch {
			case field.IsNil():
				if tag != "" {
					validateField(fieldPath, field, tag, errs)
				}
			case field.Elem().Kind() == reflect.Struct && tag == "":
				validateStructRecursive(field.Elem(), fieldPath, errs)
			case tag != "":
				validateField(fieldPath, field.Elem(), tag, errs)
			}
			continue
		}

		if tag == "" {
			continue
		}
		validateField(fieldPath, field, tag, errs)
	}
}

func validateField(fieldPath string, field reflect.Value, tag string, errs *ValidationErrors) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, ruleStr := range strings.Split(tag, ";") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		parts := strings.SplitN(ruleStr, ":", 2)
		ruleName := strings.TrimSpace(parts[0])

		var params []string
		if len(parts) > 1 {
			if paramStr := strings.TrimSpace(parts[1]); paramStr != "" {
				params = strings.Split(paramStr, ",")
				for i := range params {
					params[i] = strings.TrimSpace(params[i])
				}
			}
		}

		validatorFn, ok := registry[ruleName]
		if !ok {
			continue
		}
		// Empty optional fields are only checked by "required".
		if ruleName != "required" && isEmptyString(field) {
			continue
		}
		if rule := validatorFn(fieldPath, field, params); !rule.Check() {
			errs.Add(rule.Error)
		}
	}
}

func isEmptyString(v reflect.Value) bool {
	return v.Kind() == reflect.String && v.Len() == 0
}

func pass() Rule { return Rule{Check: func() bool { return true }} }

// invalidParams fails the field when the tag itself cannot be read.
func invalidParams(field, rule string, params []string) Rule {
	return Rule{
		Check: func() bool { return false },
		Error: fieldError(field, fmt.Sprintf("has invalid %s rule parameters %q", rule, strings.Join(params, ",")),
			"validation.params", map[string]any{"rule": rule}),
	}
}

func fieldError(field, message, key string, values map[string]any) ValidationError {
	tv := map[string]any{"field": field}
	for k, v := range values {
		tv[k] = v
	}
	return ValidationError{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: tv,
	}
}

func requiredValidator(field string, value reflect.Value, _ []string) Rule {
	return Rule{
		Check: func() bool {
			switch value.Kind() {
			case reflect.String:
				return strings.TrimSpace(value.String()) != ""
			case reflect.Slice, reflect.Map, reflect.Array:
				return value.Len() > 0
			case reflect.Pointer, reflect.Interface:
				return !value.IsNil()
			default:
				return !value.IsZero()
			}
		},
		Error: fieldError(field, "field is required", "validation.required", nil),
	}
}

func emailValidator(field string, value reflect.Value, _ []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return Rule{
		Check: func() bool { return ValidEmail(value.String()) },
		Error: fieldError(field, "must be a valid email address", "validation.email", nil),
	}
}

func integerValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	lo, errLo := int64Bound(params, 0)
	hi, errHi := int64Bound(params, 1)
	if errLo != nil || errHi != nil {
		return invalidParams(field, "integer", params)
	}
	return Rule{
		Check: func() bool { return ValidInteger(value.String(), lo, hi) },
		Error: fieldError(field, "must be an integer"+boundsSuffix(params), "validation.integer", boundsValues(params)),
	}
}

func floatValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	lo, errLo := float64Bound(params, 0)
	hi, errHi := float64Bound(params, 1)
	if errLo != nil || errHi != nil {
		return invalidParams(field, "float", params)
	}
	return Rule{
		Check: func() bool { return ValidFloat(value.String(), lo, hi) },
		Error: fieldError(field, "must be a number"+boundsSuffix(params), "validation.float", boundsValues(params)),
	}
}

func uuidValidator(field string, value reflect.Value, _ []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return Rule{
		Check: func() bool { return ValidUUID(value.String()) },
		Error: fieldError(field, "must be a 32 character hex identifier", "validation.uuid", nil),
	}
}

func nameValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	minLen, maxLen := DefaultNameMinLength, DefaultNameMaxLength
	var err error
	if len(params) > 0 && params[0] != "" {
		if minLen, err = strconv.Atoi(params[0]); err != nil {
			return invalidParams(field, "name", params)
		}
	}
	if len(params) > 1 && params[1] != "" {
		if maxLen, err = strconv.Atoi(params[1]); err != nil {
			return invalidParams(field, "name", params)
		}
	}
	return Rule{
		Check: func() bool { return ValidName(value.String(), minLen, maxLen) },
		Error: fieldError(field, fmt.Sprintf("must be a name of %d to %d characters", minLen, maxLen), "validation.name",
			map[string]any{"min": minLen, "max": maxLen}),
	}
}

func datetimeValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	layout := DefaultDateLayout
	if len(params) > 0 && params[0] != "" {
		layout = strings.Join(params, ",")
	}
	return Rule{
		Check: func() bool { return ValidDateTime(value.String(), layout) },
		Error: fieldError(field, "must be a date in format "+layout, "validation.datetime",
			map[string]any{"layout": layout}),
	}
}

// modeValidator applies only the character whitelist of a waf mode. Attack
// patterns are the engine's job. A missing or unknown mode name fails the field.
func modeValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	if len(params) != 1 {
		return invalidParams(field, "mode", params)
	}
	mode, err := waf.LookupMode(params[0])
	if err != nil {
		return invalidParams(field, "mode", params)
	}
	return Rule{
		Check: func() bool { return waf.AllowedByMode(value.String(), mode) },
		Error: fieldError(field, "contains characters not allowed in "+mode.String()+" mode", "validation.mode",
			map[string]any{"mode": mode.String()}),
	}
}

// int64Bound returns nil for an absent bound and an error for one that does
// not parse.
func int64Bound(params []string, i int) (*int64, error) {
	if len(params) <= i || params[i] == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(params[i], 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func float64Bound(params []string, i int) (*float64, error) {
	if len(params) <= i || params[i] == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(params[i], 64)
	if err != nil || math.IsNaN(f) {
		return nil, fmt.Errorf("validator: bad float bound %q", params[i])
	}
	return &f, nil
}

func boundsSuffix(params []string) string {
	switch {
	case len(params) > 1 && params[0] != "" && params[1] != "":
		return fmt.Sprintf(" between %s and %s", params[0], params[1])
	case len(params) > 0 && params[0] != "":
		return " of at least " + params[0]
	case len(params) > 1 && params[1] != "":
		return " of at most " + params[1]
	}
	return ""
}

func boundsValues(params []string) map[string]any {
	out := map[string]any{}
	if len(params) > 0 && params[0] != "" {
		out["min"] = params[0]
	}
	if len(params) > 1 && params[1] != "" {
		out["max"] = params[1]
	}
	return out
}

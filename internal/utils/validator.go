package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single violated constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a value
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// Normalizer is implemented by request types that clean their fields before validation
type Normalizer interface {
	Normalize()
}

// Validator wraps the go-playground validator and reports violations by JSON field name
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that names fields after their json tags
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Validator{validate: validate}
}

// Struct validates an already populated struct
func (v *Validator) Struct(dst any) error {
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}

	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

// Bind maps a decoded payload onto dst and validates it. The payload must be a JSON
// object; with strict set, fields dst does not declare are reported as violations.
func (v *Validator) Bind(value any, dst any, strict bool) error {
	if value == nil {
		value = map[string]any{}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Errors: []FieldError{{Field: "body", Message: "body must be a JSON object"}}}
	}

	var violations []FieldError
	reported := make(map[string]bool)

	if strict {
		known := knownFields(dst)
		var unknown []string
		for key := range obj {
			if !known[key] {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			violations = append(violations, FieldError{Field: key, Message: fmt.Sprintf("%s is not allowed", key)})
			reported[key] = true
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return fmt.Errorf("failed to map payload: %w", err)
		}
		field := typeErr.Field
		violations = append(violations, FieldError{Field: field, Message: fmt.Sprintf("%s must be a %s", field, typeName(typeErr.Type))})
		reported[field] = true
	}

	if err := v.Struct(dst); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, fe := range verr.Errors {
			if !reported[fe.Field] {
				violations = append(violations, fe)
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Errors: violations}
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func knownFields(dst any) map[string]bool {
	known := make(map[string]bool)
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return known
	}
	for i := 0; i < t.NumField(); i++ {
		if name := jsonFieldName(t.Field(i)); name != "" {
			known[name] = true
		}
	}
	return known
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return "object"
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

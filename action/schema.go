package action

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// ValidationError carries the first failing field of a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Schema decodes [Input] into T and validates it. Field names come from the `form` tag,
// rules from the `validate` tag, and an optional `msg` tag replaces the generated message
// for that field.
type Schema[T any] struct {
	decoder  *form.Decoder
	validate *validator.Validate
	messages map[string]string
}

// NewSchema builds a Schema for T. It panics if T is not a struct, which is a
// programming error caught at start-up.
func NewSchema[T any]() *Schema[T] {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("action: schema type %T must be a struct", zero))
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	messages := make(map[string]string)
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if msg := f.Tag.Get("msg"); msg != "" {
			messages[f.Name] = msg
		}
	}

	return &Schema[T]{
		decoder:  form.NewDecoder(),
		validate: v,
		messages: messages,
	}
}

// Parse decodes and validates in. A failure is always a *ValidationError describing the
// first failing field in declaration order.
func (s *Schema[T]) Parse(in Input) (T, error) {
	var out T

	if err := s.decoder.Decode(&out, in); err != nil {
		var decodeErrs form.DecodeErrors
		if errors.As(err, &decodeErrs) {
			return out, s.firstDecodeError(decodeErrs)
		}
		return out, &ValidationError{Message: "Invalid input"}
	}

	if err := s.validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			msg, ok := s.messages[fe.StructField()]
			if !ok {
				msg = defaultMessage(fe)
			}
			return out, &ValidationError{Field: fe.Field(), Message: msg}
		}
		return out, &ValidationError{Message: "Invalid input"}
	}

	return out, nil
}

func (s *Schema[T]) firstDecodeError(errs form.DecodeErrors) error {
	var zero T
	rt := reflect.TypeOf(zero)
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			name = f.Name
		}
		if _, ok := errs[name]; !ok {
			continue
		}
		if msg, ok := s.messages[f.Name]; ok {
			return &ValidationError{Field: name, Message: msg}
		}
		return &ValidationError{Field: name, Message: typeMismatchMessage(f.Type)}
	}
	return &ValidationError{Message: "Invalid input"}
}

func typeMismatchMessage(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "Expected number, received nan"
	case reflect.Bool:
		return "Expected boolean, received string"
	default:
		return "Invalid input"
	}
}

// defaultMessage renders the wording form clients already display for these rules.
func defaultMessage(fe validator.FieldError) string {
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("Number must be less than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	case "gt":
		return fmt.Sprintf("Number must be greater than %s", fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		return fmt.Sprintf("Invalid enum value. Expected '%s', received '%v'", strings.Join(options, "' | '"), fe.Value())
	default:
		return "Invalid input"
	}
}

// Package validation configures gin's validator and turns its errors into
// per-field messages for the response envelope.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Tag aliases usable in `binding:` and `validate:` tags.
var aliases = map[string]string{
	"pwd":     "min=6",
	"handle":  "min=1,max=30,excludesall=/@",
	"nonzero": "required",
}

var (
	configureOnce sync.Once
	engine        *validator.Validate
)

// shared returns gin's binding validator, configured once, so services and
// handlers enforce identical rules.
func shared() *validator.Validate {
	configureOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			v = validator.New()
		}
		Configure(v)
		engine = v
	})
	return engine
}

// Init configures the validator behind gin's binding.
func Init() { shared() }

// Var validates a single value against tag, e.g. Var(s, "required,email").
func Var(value any, tag string) error {
	return shared().Var(value, tag)
}

// Email reports whether s is a well-formed email address.
func Email(s string) bool {
	return Var(s, "required,email") == nil
}

// Configure reports fields by their json name and registers the aliases.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for alias, tags := range aliases {
		v.RegisterAlias(alias, tags)
	}
}

// ToDetails maps a binding error to field -> message. Body-level problems are
// reported under "payload".
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return map[string]string{"payload": "request body is empty"}
	case errors.As(err, &ute) && ute.Field != "":
		return map[string]string{ute.Field: "must be of type " + ute.Type.String()}
	case errors.As(err, &se), errors.As(err, &ute):
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = message(fe)
		}
		return out
	}
	return map[string]string{"payload": "invalid payload"}
}

var fixedMessages = map[string]string{
	"required": "is required",
	"nonzero":  "is required",
	"email":    "must be a valid email",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"uuid4":    "must be a valid UUID",
	"datauri":  "must be a valid data URI",
	"handle":   "must be 1-30 characters without / or @",
}

func message(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()
	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}
	unit := " characters long"
	if isNumberKind(fe.Kind()) {
		unit = ""
	}
	switch tag {
	case "pwd":
		return "must be at least 6" + unit
	case "min":
		return "must be at least " + param + unit
	case "max":
		return "must be at most " + param + unit
	case "required_with":
		return "is required when " + param + " is present"
	case "excludesall":
		return "must not contain any of '" + param + "'"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	}
	if param != "" {
		return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
	}
	return fmt.Sprintf("validation failed for '%s'", tag)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

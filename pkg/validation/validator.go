package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags and the objectid rule.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the project rules to v
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("objectid", isObjectID)
	v.RegisterAlias("pwd", "min=8") // password minimum length
	v.RegisterAlias("strongpwd", "min=8,containsany=!@#$%^&*(),containsany=0123456789,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=abcdefghijklmnopqrstuvwxyz")
}

func isObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

// IsObjectID reports whether s is a 24 char hex object id
func IsObjectID(s string) bool { return primitive.IsValidObjectID(s) }

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}
	if errors.As(err, &ute) {
		if ute.Field != "" {
			return map[string]string{ute.Field: "must be of type " + ute.Type.String()}
		}
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// fieldPath drops the root struct name from the namespace, e.g. Book.stats.favorites -> stats.favorites
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

var fixedMessages = map[string]string{
	"required":  "is required",
	"email":     "must be a valid email",
	"url":       "must be a valid URL",
	"uri":       "must be a valid URI",
	"isbn":      "must be a valid ISBN number",
	"isbn10":    "must be a valid ISBN-10 number",
	"isbn13":    "must be a valid ISBN-13 number",
	"objectid":  "must be a valid object id",
	"uuid":      "must be a valid UUID",
	"alphanum":  "must contain alphanumeric characters only",
	"numeric":   "must be numeric",
	"unique":    "must contain unique items",
	"datetime":  "must be a valid datetime",
	"pwd":       "min length 8",
	"strongpwd": "must be at least 8 characters with uppercase, lowercase, number and special character",
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if msg, ok := fixedMessages[tag]; ok {
		if tag == "datetime" && param != "" {
			return "must match datetime format: " + param
		}
		return msg
	}

	switch tag {
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min", "max":
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		switch {
		case isNumberKind(fe.Kind()):
			return "must be " + bound + " " + param
		case fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map:
			return "must contain " + bound + " " + param + " items"
		default:
			return "must be " + bound + " " + param + " characters long"
		}
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lt":
		return "must be less than " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "containsany":
		return "must contain at least one of '" + param + "'"
	case "dive":
		return "array validation failed"
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

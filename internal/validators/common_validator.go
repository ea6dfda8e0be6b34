package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"gbtravel/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

var (
	phoneRegex    = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

func init() {
	validate = validator.New()

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("currency_code", validateCurrencyCode)
	validate.RegisterValidation("future_date", validateFutureDate)
	validate.RegisterValidation("past_date", validatePastDate)
}

// ValidateStruct validates s and returns one entry per failing field, or nil.
func ValidateStruct(s interface{}) []utils.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []utils.FieldError{{Field: "body", Message: err.Error()}}
	}

	fieldErrors := make([]utils.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, utils.FieldError{
			Field:   fieldPath(fe),
			Message: getErrorMessage(fe),
		})
	}
	return fieldErrors
}

// BindJSON decodes the request body into dst and validates it. Malformed JSON
// is a 400, failed rules a 422.
func BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return utils.NewBadRequestError("Request body is required")
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return utils.NewBadRequestError("Malformed JSON body").Wrap(err)
		case errors.As(err, &typeErr):
			return utils.NewValidationError([]utils.FieldError{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()),
			}})
		default:
			return utils.NewBadRequestError("Invalid request body").Wrap(err)
		}
	}
	return Validate(dst)
}

// Validate wraps ValidateStruct failures in a 422 AppError.
func Validate(s interface{}) error {
	if errs := ValidateStruct(s); len(errs) > 0 {
		return utils.NewValidationError(errs)
	}
	return nil
}

// fieldPath drops the root struct name from the namespace, e.g.
// "contactInfo.email" instead of "CreateBookingRequest.contactInfo.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Please provide a valid email"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", err.Field())
	case "min":
		if isNumeric(err.Kind()) {
			return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		}
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		if isNumeric(err.Kind()) {
			return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s cannot contain more than %s items", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s characters", err.Field(), err.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), orZero(err.Param()))
	case "lte", "lt":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", err.Field(), lowerFirst(err.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
	case "object_id":
		return fmt.Sprintf("Invalid %s format", err.Field())
	case "phone_number":
		return "Invalid phone number format"
	case "currency_code":
		return "Invalid currency code"
	case "future_date":
		return "Date must be in the future"
	case "past_date":
		return "Date must be in the past"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func orZero(p string) string {
	if p == "" {
		return "0"
	}
	return p
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	return primitive.IsValidObjectID(value)
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return phoneRegex.MatchString(phone)
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" {
		return true
	}
	return currencyRegex.MatchString(code)
}

func validateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	return ok && date.After(time.Now())
}

func validatePastDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	return ok && !date.After(time.Now())
}

package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var registerOnce sync.Once

// Register installs the custom tags on gin's binding engine and makes
// validation messages use JSON field names. Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		if e := v.RegisterValidation("isodate", validateISODate); e != nil {
			err = e
			return
		}
		err = v.RegisterValidation("decision", validateDecision)
	})
	return err
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true // "required" decides about emptiness
	}
	_, err := ParseDate(s)
	return err == nil
}

// decision: the only states a pending request may move to
func validateDecision(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "approved", "rejected":
		return true
	}
	return false
}

func jsonFieldName(fld reflect.StructField) string {
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
}

// Describe turns a binding error into a single user-facing sentence.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "email":
		return fmt.Sprintf("field '%s' must be a valid email address", field)
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("field '%s' must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, fe.Param())
	case "isodate":
		return fmt.Sprintf("field '%s' must be a date in YYYY-MM-DD format", field)
	case "decision":
		return fmt.Sprintf("field '%s' must be 'approved' or 'rejected'", field)
	case "uuid":
		return fmt.Sprintf("field '%s' must be a UUID", field)
	default:
		return fmt.Sprintf("field '%s' failed validation '%s'", field, fe.Tag())
	}
}

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-rental-billing/internal/billing"
)

// New returns a validator that names fields by their JSON keys and
// checks item numerics at struct level.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(itemStructValidation, Item{})

	return v
}

func itemStructValidation(sl validatorv10.StructLevel) {
	it := sl.Current().Interface().(Item)
	check := func(n Numeric, field, structField string) {
		switch {
		case !n.Set:
			sl.ReportError(n.Raw, field, structField, "required", "")
		case !n.OK:
			sl.ReportError(n.Raw, field, structField, "number", "")
		}
	}
	check(it.Price, "price", "Price")
	check(it.Quantity, "quantity", "Quantity")
}

var itemIndex = regexp.MustCompile(`\.items\[(\d+)\]\.`)

// toValidationError reduces validator output to the first failure,
// phrased for API clients.
func toValidationError(err error) *billing.ValidationError {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return &billing.ValidationError{Message: err.Error()}
	}
	return &billing.ValidationError{Message: message(ve[0])}
}

func message(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	switch {
	case fe.Tag() == "max" && strings.Contains(ns, ".customer."):
		return fmt.Sprintf("customer %s must be at most %s characters", fe.Field(), fe.Param())
	case strings.Contains(ns, ".customer."):
		return billing.MsgMissingFields
	case fe.Field() == "items":
		return billing.MsgNoItems
	case fe.Tag() == "datetime":
		return fmt.Sprintf("invalid %s: expected YYYY-MM-DD", fe.Field())
	}

	if m := itemIndex.FindStringSubmatch(ns); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("item %d: %s is required", n+1, fe.Field())
		case "number":
			return fmt.Sprintf("item %d: %s must be a number", n+1, fe.Field())
		case "max":
			return fmt.Sprintf("item %d: %s must be at most %s characters", n+1, fe.Field(), fe.Param())
		}
	}
	return fmt.Sprintf("invalid %s", fe.Field())
}

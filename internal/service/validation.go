package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so the API can attach messages to form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct tags and converts failures into a ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := ve.Fields[fe.Field()]; !seen {
			ve.Fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "alphanum":
		return "Enter a valid username. This value may contain only letters and numbers."
	case "eqfield":
		return "The two password fields didn't match."
	case "oneof":
		return fmt.Sprintf("Select a valid choice. Must be one of: %s.", fe.Param())
	}
	return "Enter a valid value."
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// maxPrice is the exclusive upper bound of a numeric(10,2) column.
var maxPrice = decimal.New(1, 8)

// ParsePrice accepts a non-negative amount with at most two fraction digits.
func ParsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, NewValidationError("price", "Enter a number.")
	}
	if d.IsNegative() {
		return decimal.Zero, NewValidationError("price", "Ensure this value is greater than or equal to 0.")
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, NewValidationError("price", "Ensure that there are no more than 2 decimal places.")
	}
	if d.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, NewValidationError("price", "Ensure that there are no more than 8 digits before the decimal point.")
	}
	return d.Round(2), nil
}

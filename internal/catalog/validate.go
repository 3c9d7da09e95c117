package catalog

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"JSONShop/internal/filestore"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// required lists the create-time fields in the order they are checked; the
// first one missing is the one reported.
type required struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Code        string `json:"code"        validate:"required"`
	Price       bool   `json:"price"       validate:"required"`
	Stock       bool   `json:"stock"       validate:"required"`
	Category    string `json:"category"    validate:"required"`
}

func checkCreate(in ProductInput) error {
	r := required{
		Title:       deref(in.Title),
		Description: deref(in.Description),
		Code:        deref(in.Code),
		Price:       present(in.Price),
		Stock:       present(in.Stock),
		Category:    deref(in.Category),
	}
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return checkNumbers(in)
}

func checkPatch(patch ProductInput) error {
	if err := validate.Struct(patch); err != nil {
		return validationError(err)
	}
	return checkNumbers(patch)
}

func checkNumbers(in ProductInput) error {
	if in.Price != nil && !in.Price.Valid {
		return filestore.Validationf("field price must be a number")
	}
	if in.Stock != nil {
		if !in.Stock.Valid {
			return filestore.Validationf("field stock must be a number")
		}
		if in.Stock.Value != math.Trunc(in.Stock.Value) {
			return filestore.Validationf("field stock must be a whole number")
		}
		if math.Abs(in.Stock.Value) >= 1<<63 {
			return filestore.Validationf("field stock is out of range")
		}
	}
	return nil
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return filestore.Validationf("invalid product: %v", err)
	}

	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return filestore.Validationf("field %s is required", fe.Field())
	case "min":
		return filestore.Validationf("field %s must not be empty", fe.Field())
	default:
		return filestore.Validationf("field %s failed on rule %s", fe.Field(), fe.Tag())
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// present reports whether a number was sent with a non-falsy raw value. A
// malformed value counts as present so it is reported as malformed instead.
func present(n *Number) bool {
	return n != nil && !n.Blank
}

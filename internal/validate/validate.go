// Package validate checks drafts before they are sent to the server.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

func get() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(model.Date); ok {
				return d.String()
			}
			return nil
		}, model.Date{})
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("category_type", validateType)
		_ = v.RegisterValidation("transaction_type", validateType)
		engine = v
	})
	return engine
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateType(fl validator.FieldLevel) bool {
	return model.Type(fl.Field().String()).Valid()
}

// Category normalizes and checks a category draft.
func Category(d *model.CategoryDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Color = strings.TrimSpace(d.Color)
	return check(d)
}

// Transaction normalizes and checks a transaction draft.
func Transaction(d *model.TransactionDraft) error {
	d.Description = strings.TrimSpace(d.Description)
	return check(d)
}

// Budget checks a budget draft.
func Budget(d *model.BudgetDraft) error {
	return check(d)
}

// Credentials checks login input.
func Credentials(c *model.Credentials) error {
	c.Email = strings.TrimSpace(c.Email)
	return check(c)
}

// Registration checks sign-up input.
func Registration(r *model.Registration) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return check(r)
}

// TypeMatchesCategory enforces that a transaction's type equals the type of
// the category it is filed under.
func TypeMatchesCategory(d model.TransactionDraft, c model.Category) error {
	if d.Type != c.Type {
		return apperr.Invalid("type", fmt.Sprintf("%s transaction cannot use %s category %q", d.Type, c.Type, c.Name))
	}
	return nil
}

func check(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, apperr.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "hex_color":
		return "must be a hex color such as #FF6B6B"
	case "category_type", "transaction_type":
		return "must be income or expense"
	}
	return "is invalid"
}

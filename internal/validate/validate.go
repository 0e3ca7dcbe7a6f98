// Package validate centralizes field validation so create and update
// apply the same rules. All rules are checked independently and every
// violation is reported, not just the first.
package validate

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/model"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// Syntactic check only; "2024-02-31" passes. Calendar validation
	// would change observable behavior.
	_ = val.RegisterValidation("dateformat", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || datePattern.MatchString(s)
	})
	return val
}

// itemRules mirrors model.ItemInput with the validation tags attached.
// Field order is message order. Name is pre-trimmed so the max rule
// applies to what would actually be stored.
type itemRules struct {
	Name     *string `validate:"omitnil,notblank,max=100"`
	Memo     *string `validate:"omitnil,max=500"`
	Quantity *int    `validate:"omitnil,min=1"`
	Stock    *int    `validate:"omitnil,min=0"`
	Category *string `validate:"omitnil,oneof=food daily drink snack frozen other"`
	Priority *string `validate:"omitnil,oneof=high medium low"`
	Deadline *string `validate:"omitnil,dateformat"`
}

// Item validates a candidate field set and returns the violated rules
// as human-readable messages, in rule order. An empty slice means
// valid. When creating, name must be supplied; when updating, an
// omitted field means "leave unchanged" and is not checked.
func Item(in model.ItemInput, creating bool) []string {
	var msgs []string

	if creating && in.Name == nil {
		msgs = append(msgs, "name is required")
	}

	rules := itemRules{
		Name:     in.Name,
		Memo:     in.Memo,
		Quantity: in.Quantity,
		Stock:    in.Stock,
		Category: in.Category,
		Priority: in.Priority,
		Deadline: in.Deadline,
	}
	if rules.Name != nil {
		trimmed := strings.TrimSpace(*rules.Name)
		rules.Name = &trimmed
	}

	err := v.Struct(rules)
	if err == nil {
		return msgs
	}
	for _, fe := range err.(validator.ValidationErrors) {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Name":
		if fe.Tag() == "max" {
			return "name must be 100 characters or less"
		}
		return "name is required"
	case "Memo":
		return "memo must be 500 characters or less"
	case "Quantity":
		return "quantity must be a positive integer"
	case "Stock":
		return "stock must be a non-negative integer"
	case "Category":
		return "invalid category"
	case "Priority":
		return "invalid priority"
	case "Deadline":
		return "deadline must be in YYYY-MM-DD format"
	}
	return "invalid value for " + fe.StructField()
}

package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrorMessage turns gin binding failures into a readable message
// instead of the raw validator dump.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, field+" is too short")
		case "max":
			parts = append(parts, field+" is too long")
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

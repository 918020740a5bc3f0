package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs tag validation and returns the failing field names in
// declaration order, lowercased to match the wire names of the request.
func ValidateStruct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{"body"}
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		fields = append(fields, strings.ToLower(name[:1])+name[1:])
	}
	return fields
}

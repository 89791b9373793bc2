package validation

import (
	"fmt"
	"strings"

	apperrors "go-skin-inspector/internal/errors"
	"go-skin-inspector/pkg/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateProfile checks the enum and range tags of a user profile.
// A nil profile is valid; analyzers use their defaults.
func ValidateProfile(profile *models.UserProfile) error {
	if profile == nil {
		return nil
	}
	if err := validate.Struct(profile); err != nil {
		return apperrors.NewValidationError(describe(err), err)
	}
	return nil
}

func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid profile"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "gte", "lte":
			parts = append(parts, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

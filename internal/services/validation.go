package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskforge-api/internal/dto"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
)

// enumValidations maps custom tags to the model's own membership check.
var enumValidations = map[string]func(string) bool{
	"role":           func(s string) bool { return models.Role(s).Valid() },
	"task_status":    func(s string) bool { return models.TaskStatus(s).Valid() },
	"task_priority":  func(s string) bool { return models.TaskPriority(s).Valid() },
	"project_status": func(s string) bool { return models.ProjectStatus(s).Valid() },
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	for tag, valid := range enumValidations {
		valid := valid
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// validateInput checks input against its validate tags and converts any
// violation into a ValidationError listing every failing field.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	details := make([]dto.FieldError, len(verrs))
	for i, fe := range verrs {
		details[i] = dto.FieldError{Field: fe.Field(), Message: fieldMessage(fe)}
	}
	return apierrors.ValidationError(details[0].Message).WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", fe.Field())
	case "role":
		return fmt.Sprintf("%s must be one of: Admin, Manager, Member", fe.Field())
	case "task_status":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), joinValues(models.TaskStatuses))
	case "task_priority":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), joinValues(models.TaskPriorities))
	case "project_status":
		return fmt.Sprintf("%s must be one of: active, on-hold, completed, archived", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

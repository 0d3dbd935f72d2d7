// Package validation registers the custom binding tags used by request structs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"advanced-blog/pkg/models"
	"advanced-blog/pkg/roles"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// Register adds the "role" and "post_status" tags to gin's validator.
// It is safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(fieldName)
		if err = v.RegisterValidation("role", validRole); err != nil {
			return
		}
		err = v.RegisterValidation("post_status", validPostStatus)
	})
	return err
}

// fieldName reports fields by their json or form name so errors match the
// request payload.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func validRole(fl validator.FieldLevel) bool {
	return roles.Role(fl.Field().String()).Valid()
}

func validPostStatus(fl validator.FieldLevel) bool {
	switch models.PostStatus(fl.Field().String()) {
	case models.StatusDraft, models.StatusPublished:
		return true
	}
	return false
}

// FieldErrors flattens binding errors into field name -> message.
func FieldErrors(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["non_field_errors"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "role":
		return "Select a valid role."
	case "post_status":
		return "Select a valid status."
	case "oneof":
		return fmt.Sprintf("Select one of: %s.", fe.Param())
	}
	return fmt.Sprintf("Invalid value (%s).", fe.Tag())
}

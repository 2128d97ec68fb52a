package store

import (
	"errors"
	"fmt"
	"strings"

	"toolbar-cli/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errIDExhausted = errors.New("could not allocate a unique button id")

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func errNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError flattens validator field errors into one message.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid: " + strings.Join(e.Fields, "; ")
}

func ValidateButton(b model.Button) error {
	return validationError(validate.Struct(b))
}

func ValidateConfig(c Config) error {
	return validationError(validate.Struct(c))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fmt.Sprintf("%s: failed %s", fieldPath(fe.Namespace()), describeTag(fe)))
	}
	return out
}

// fieldPath drops the root struct name ("Button.Name" -> "Name").
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

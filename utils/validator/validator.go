package validator

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/errs"
)

var ErrValidator = errors.New("validation error")

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// ValidateUUID checks if the provided ID is a valid UUID.
func ValidateUUID(id string) error {
	_, err := uuid.Parse(id)
	if err != nil {
		return errs.Wrap(ErrValidator, err)
	}

	return nil
}

// ValidateStruct checks v against its `validate` struct tags.
func ValidateStruct(v any) error {
	err := instance().Struct(v)
	if err != nil {
		return errs.Wrap(ErrValidator, err)
	}

	return nil
}

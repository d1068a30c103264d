package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/govlink/govlink/utils/validator"
)

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{
			name:    "valid UUID",
			id:      "123e4567-e89b-12d3-a456-426614174000",
			wantErr: false,
		},
		{
			name:    "invalid UUID",
			id:      "invalid-uuid",
			wantErr: true,
		},
		{
			name:    "empty string",
			id:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateUUID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUUID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	type account struct {
		ID    string `validate:"required,len=12,numeric"`
		Email string `validate:"omitempty,email"`
	}

	t.Run("Should accept valid struct", func(t *testing.T) {
		assert.NoError(t, validator.ValidateStruct(account{ID: "123456789012", Email: "a@example.com"}))
	})

	t.Run("Should reject invalid fields", func(t *testing.T) {
		err := validator.ValidateStruct(account{ID: "12345", Email: "not-an-email"})
		assert.ErrorIs(t, err, validator.ErrValidator)
	})
}

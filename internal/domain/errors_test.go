package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		text     string
		sentinel error
		user     string
	}{
		{"quotation missing", NewNotFoundError("quotation", "7f1c"), `quotation with id "7f1c" not found`, ErrNotFound, `quotation with id "7f1c" not found`},
		{"nothing to show", NewNotFoundError("backdrop", ""), "backdrop not found", ErrNotFound, "backdrop not found"},
		{"import busy", NewConflictError("import", MsgImportInProgress), "import conflict: " + MsgImportInProgress, ErrConflict, MsgImportInProgress},
		{"blank field", NewValidationError("zh", MsgFillAllFields), "validation failed for zh: " + MsgFillAllFields, ErrValidation, MsgFillAllFields},
		{"unparsable document", NewValidationError("", MsgBadFileFormat), "validation failed: " + MsgBadFileFormat, ErrValidation, MsgBadFileFormat},
		{"wrong password", NewUnauthorizedError(MsgWrongPassword), "unauthorized: " + MsgWrongPassword, ErrUnauthorized, MsgWrongPassword},
		{"no session", NewUnauthorizedError(""), "unauthorized", ErrUnauthorized, "unauthorized"},
		{"store closed", NewUnavailableError("verse-store", "bucket missing"), `service "verse-store" unavailable: bucket missing`, ErrUnavailable, `service "verse-store" unavailable: bucket missing`},
		{"image service down", NewUnavailableError("picsum", ""), `service "picsum" unavailable`, ErrUnavailable, `service "picsum" unavailable`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.user, UserMessage(tt.err))

			wrapped := fmt.Errorf("perform: %w", tt.err)
			require.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.user, UserMessage(wrapped))
		})
	}
}

func TestErrors_Fields(t *testing.T) {
	var notFound *NotFoundError
	require.ErrorAs(t, fmt.Errorf("delete: %w", NewNotFoundError("quotation", "123")), &notFound)
	assert.Equal(t, "quotation", notFound.Entity)
	assert.Equal(t, "123", notFound.ID)

	var invalid *ValidationError
	require.ErrorAs(t, NewValidationError("password", MsgPasswordTooShort), &invalid)
	assert.Equal(t, "password", invalid.Field)
	assert.Empty(t, invalid.Problems)
}

func TestValidationError_Problems(t *testing.T) {
	err := NewValidationError("file", MsgBadFileFormat, "element 2: zh is missing", "element 5: refEn is missing")

	assert.Equal(t, "validation failed for file: "+MsgBadFileFormat+" (element 2: zh is missing; element 5: refEn is missing)", err.Error())
	assert.Equal(t, MsgBadFileFormat, UserMessage(err))

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"element 2: zh is missing", "element 5: refEn is missing"}, invalid.Problems)
}

// Every error kind is matched by exactly one Is helper.
func TestIsHelpers(t *testing.T) {
	helpers := []struct {
		name string
		is   func(error) bool
	}{
		{"IsNotFound", IsNotFound},
		{"IsConflict", IsConflict},
		{"IsValidation", IsValidation},
		{"IsUnauthorized", IsUnauthorized},
		{"IsUnavailable", IsUnavailable},
	}

	errs := []error{
		NewNotFoundError("quotation", "1"),
		NewConflictError("import", "busy"),
		fmt.Errorf("import: %w", ErrValidation),
		NewUnauthorizedError(MsgWrongPassword),
		NewUnavailableError("bolt", "closed"),
	}

	for i, err := range errs {
		for j, h := range helpers {
			assert.Equal(t, i == j, h.is(err), "%s(%v)", h.name, err)
		}
	}

	for _, h := range helpers {
		assert.False(t, h.is(nil), "%s(nil)", h.name)
		assert.False(t, h.is(errors.New("disk full")), "%s(plain)", h.name)
	}
}

func TestUserMessage_PlainError(t *testing.T) {
	assert.Equal(t, "disk full", UserMessage(errors.New("disk full")))
}

package crud

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateSaveError_KnownKinds(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
		wantMsg  string
	}{
		{NewUniqueError("email already taken"), "UNIQUE_VIOLATION", "email already taken"},
		{NewValidationError("Validation failed", []errs.FieldError{{Field: "name", Error: "is required"}}), "VALIDATION_FAILED", "Validation failed"},
		{NewVerificationError("contact 9 does not exist"), "VERIFICATION_FAILED", "contact 9 does not exist"},
		{NewUploadError("avatar upload failed", errors.New("s3 down")), "UPLOAD_FAILED", "avatar upload failed"},
		{NewEntityError("", errors.New("bad body")), "INVALID_ENTITY", "bad body"},
		{fmt.Errorf("wrapped: %w", NewUniqueError("dup")), "UNIQUE_VIOLATION", "dup"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			err := TranslateSaveError(tt.err)

			var httpErr *errs.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestTranslateSaveError_FieldErrorsKept(t *testing.T) {
	fields := []errs.FieldError{{Field: "email", Error: "must be a valid email address"}}

	var httpErr *errs.HTTPError
	require.True(t, errors.As(TranslateSaveError(NewValidationError("Validation failed", fields)), &httpErr))
	assert.Equal(t, fields, httpErr.Errors)
}

func TestTranslateSaveError_PassThrough(t *testing.T) {
	assert.NoError(t, TranslateSaveError(nil))

	other := errors.New("connection reset")
	assert.Same(t, other, TranslateSaveError(other))
}

func TestTranslateDeleteError(t *testing.T) {
	assert.NoError(t, TranslateDeleteError(nil))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(TranslateDeleteError(errors.New("still referenced")), &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "still referenced", httpErr.Message)

	assert.Equal(t, http.StatusBadRequest, ErrNotRemoved().Status)
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("save: %w", NewUploadError("avatar", nil))

	assert.True(t, errors.Is(err, ErrUpload))
	assert.False(t, errors.Is(err, ErrUnique))
}

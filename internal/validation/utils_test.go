package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"required,email"`
}

func (r *signupRequest) Validate() error {
	return Struct(r)
}

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate_OK(t *testing.T) {
	req := &signupRequest{}
	require.NoError(t, BindAndValidate(newContext(`{"name":"ada","email":"ada@example.com"}`), req))
	assert.Equal(t, "ada", req.Name)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":"too long name","email":"nope"}`), &signupRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "name", Error: "must not exceed 5 characters"},
		{Field: "email", Error: "must be a valid email address"},
	}, httpErr.Errors)
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(`{"name":`), &signupRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NotEmpty(t, httpErr.Message)
}

func TestFieldErrors_CustomAndPlain(t *testing.T) {
	msg, fields := FieldErrors(CustomValidationErrors{{Field: "id", Message: "unknown"}})
	assert.Equal(t, "Validation failed", msg)
	assert.Equal(t, []errs.FieldError{{Field: "id", Error: "unknown"}}, fields)

	msg, fields = FieldErrors(errors.New("something else"))
	assert.Equal(t, "something else", msg)
	assert.Nil(t, fields)
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("3f2c8a34-5b1e-4c6a-9d0e-7f8a9b0c1d2e"))
	assert.False(t, IsValidUUID("not-a-uuid"))
}

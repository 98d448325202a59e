package crud

import (
	"errors"
	"net/http"

	"github.com/deppfellow/go-crud/internal/errs"
)

// Kind classifies the failures a service may report while saving an entity.
//
// Every kind is a client problem: the save handler turns all of them into a
// 400 Bad Request carrying the service message.
type Kind uint8

const (
	// KindUnique: a unique constraint would be violated (e.g. duplicated email).
	KindUnique Kind = iota + 1
	// KindValidation: the submitted fields break validation rules.
	KindValidation
	// KindVerification: a business verification failed (e.g. updating an unknown id).
	KindVerification
	// KindUpload: handling an uploaded file failed.
	KindUpload
	// KindEntity: the entity could not be built from the request.
	KindEntity
)

var kindCodes = map[Kind]string{
	KindUnique:       "UNIQUE_VIOLATION",
	KindValidation:   "VALIDATION_FAILED",
	KindVerification: "VERIFICATION_FAILED",
	KindUpload:       "UPLOAD_FAILED",
	KindEntity:       "INVALID_ENTITY",
}

// Code is the machine-friendly error code sent to clients.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
}

func (k Kind) String() string {
	switch k {
	case KindUnique:
		return "unique"
	case KindValidation:
		return "validation"
	case KindVerification:
		return "verification"
	case KindUpload:
		return "upload"
	case KindEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Error is a service error of a known Kind.
type Error struct {
	Kind    Kind
	Message string

	// Fields carries per-field details, mostly for KindValidation.
	Fields []errs.FieldError

	// Err is the underlying cause, if any.
	Err error
}

// Sentinels usable with errors.Is; matching compares Kind only.
var (
	ErrUnique       = &Error{Kind: KindUnique}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrVerification = &Error{Kind: KindVerification}
	ErrUpload       = &Error{Kind: KindUpload}
	ErrEntity       = &Error{Kind: KindEntity}
)

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NewUniqueError(message string) *Error {
	return &Error{Kind: KindUnique, Message: message}
}

func NewValidationError(message string, fields []errs.FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewVerificationError(message string) *Error {
	return &Error{Kind: KindVerification, Message: message}
}

func NewUploadError(message string, err error) *Error {
	return &Error{Kind: KindUpload, Message: message, Err: err}
}

func NewEntityError(message string, err error) *Error {
	return &Error{Kind: KindEntity, Message: message, Err: err}
}

// TranslateSaveError maps the known save failure kinds to a 400 HTTPError.
//
// Anything else is returned untouched so the global error handler can decide
// (database errors, 500s, ...).
func TranslateSaveError(err error) error {
	if err == nil {
		return nil
	}

	var crudErr *Error
	if errors.As(err, &crudErr) {
		code := crudErr.Kind.Code()
		return errs.NewBadRequestError(crudErr.Error(), true, &code, crudErr.Fields, nil)
	}

	return err
}

// TranslateDeleteError turns any delete failure into a 400 carrying its message.
func TranslateDeleteError(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusBadRequest {
		return httpErr
	}

	return errs.NewBadRequestError(err.Error(), false, nil, nil, nil)
}

// ErrNotRemoved is returned when the service reports that nothing was deleted.
func ErrNotRemoved() *errs.HTTPError {
	return errs.NewBadRequestError(http.StatusText(http.StatusBadRequest), false, nil, nil, nil)
}

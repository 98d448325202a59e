// Package errs defines the error shape returned to API clients.
//
// Every failure that reaches the global error handler ends up as an HTTPError:
// a stable machine code, a human message, the HTTP status and optional
// field-level details for forms.
package errs

// Package errors defines the user-visible error taxonomy returned by the
// wallet engine. Callers receive a structured code and message; internal
// failures are wrapped before crossing the service boundary.
package errors

import "fmt"

// DomainError is a structured error with a stable code callers can branch
// on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match two DomainErrors by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

package service

import "fmt"

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

var (
	// NOT_AUTHORIZED
	ErrNotAuthorized = &DomainError{
		Code:    "NOT_AUTHORIZED",
		Message: "command is not authorized",
	}

	// UPSTREAM_FAILURE
	ErrUpstreamFailure = &DomainError{
		Code:    "UPSTREAM_FAILURE",
		Message: "gitlab request failed",
	}
)

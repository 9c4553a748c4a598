package cardsearch

import (
	"fmt"
)

const UnknownErrorMessage = "An unknown error occurred."

// TransportError is returned when the request never produced a response
// (dns, refused connection, timeout, cancellation).
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return e.Cause.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// APIError is a non-2xx response that carried an error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// UnknownError is a non-2xx response without a readable error message.
type UnknownError struct {
	Status int
}

func (e *UnknownError) Error() string {
	return UnknownErrorMessage
}

// DecodeError is a 2xx response whose body did not contain a list of cards,
// it is only produced when strict decoding is enabled.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %s", e.Cause.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

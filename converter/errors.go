package converter

import "errors"

// ServiceError is a non-success status reported by a reachable endpoint.
// Message is the server-provided text and is shown to the user verbatim.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

// TransportError covers every failure that is not a service verdict:
// network errors, timeouts, unexpected HTTP statuses and malformed bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// IsServiceError reports whether err carries a service verdict
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

package questrade

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfig marks missing or malformed local configuration.
	ErrConfig = errors.New("questrade: configuration error")
	// ErrTransport marks network failures and non-2xx responses.
	ErrTransport = errors.New("questrade: transport error")
	// ErrProtocol marks responses that lack a required key or field.
	ErrProtocol = errors.New("questrade: protocol error")
	// ErrTypeInvalid marks caller arguments of unsupported shape.
	ErrTypeInvalid = errors.New("questrade: invalid argument")
	// ErrNotAuthenticated is returned by a client that never authenticated.
	ErrNotAuthenticated = errors.New("questrade: client not authenticated")

	ErrSymbolNotFound = errors.New("symbol not found")
	ErrOrderNotFound  = errors.New("order not found")
)

func configError(err error) error {
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// TransportError is a failed HTTP exchange. StatusCode is zero when no
// response was received, in which case Err holds the cause.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("questrade: %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("questrade: %s %s: API error %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// ProtocolError is a response that does not have the documented shape.
type ProtocolError struct {
	Path string
	Key  string
	Err  error
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Key != "" && e.Err != nil:
		return fmt.Sprintf("questrade: %s: invalid %q: %v", e.Path, e.Key, e.Err)
	case e.Key != "":
		return fmt.Sprintf("questrade: %s: response missing %q", e.Path, e.Key)
	case e.Err != nil:
		return fmt.Sprintf("questrade: %s: invalid response: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("questrade: %s: invalid response", e.Path)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }
func (e *ProtocolError) Unwrap() error        { return e.Err }

// TypeInvalidError names the argument that could not be used.
type TypeInvalidError struct {
	Arg    string
	Value  any
	Reason string
}

func (e *TypeInvalidError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("questrade: invalid %s: %s", e.Arg, e.Reason)
	}
	return fmt.Sprintf("questrade: invalid type %T for %s", e.Value, e.Arg)
}

func (e *TypeInvalidError) Is(target error) bool { return target == ErrTypeInvalid }

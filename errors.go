package anvil

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeServiceNotFound
	ErrCodeCircularDependency
	ErrCodeCircularImport
	ErrCodeInvalidKey
	ErrCodeInvalidClass
	ErrCodeInvalidProvider
	ErrCodeTypeMismatch
	ErrCodeConstructionFailed
	ErrCodeInitFailed
	ErrCodeDestroyFailed
	ErrCodeProviderFailed
	ErrCodeBootstrapFailed
	ErrCodeValidationFailed
	ErrCodeHealthCheckFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:            "UNKNOWN",
	ErrCodeServiceNotFound:    "SERVICE_NOT_FOUND",
	ErrCodeCircularDependency: "CIRCULAR_DEPENDENCY",
	ErrCodeCircularImport:     "CIRCULAR_IMPORT",
	ErrCodeInvalidKey:         "INVALID_KEY",
	ErrCodeInvalidClass:       "INVALID_CLASS",
	ErrCodeInvalidProvider:    "INVALID_PROVIDER",
	ErrCodeTypeMismatch:       "TYPE_MISMATCH",
	ErrCodeConstructionFailed: "CONSTRUCTION_FAILED",
	ErrCodeInitFailed:         "INIT_FAILED",
	ErrCodeDestroyFailed:      "DESTROY_FAILED",
	ErrCodeProviderFailed:     "PROVIDER_FAILED",
	ErrCodeBootstrapFailed:    "BOOTSTRAP_FAILED",
	ErrCodeValidationFailed:   "VALIDATION_FAILED",
	ErrCodeHealthCheckFailed:  "HEALTH_CHECK_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the error type returned by every container operation. Errors
// raised while resolving nested dependencies are chained through Cause.
type Error struct {
	Code    ErrorCode
	Message string
	Service string
	Cause   error
	Stack   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Code.String())
	b.WriteString("]")

	if e.Service != "" {
		fmt.Fprintf(&b, " service=%s:", e.Service)
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so
// errors.Is(err, &anvil.Error{Code: anvil.ErrCodeProviderFailed}) works at
// any depth of the chain.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

func (e *Error) WithStack(stack []string) *Error {
	e.Stack = stack
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errServiceNotFound(service string) *Error {
	return newError(
		ErrCodeServiceNotFound,
		fmt.Sprintf("nothing registered or constructible for %s", service),
		nil,
	).WithService(service)
}

func errCircularDependency(chain []string) *Error {
	return newError(
		ErrCodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(chain, " -> ")),
		nil,
	).WithStack(chain)
}

func errCircularImport(chain []string) *Error {
	return newError(
		ErrCodeCircularImport,
		fmt.Sprintf("circular module import: %s", strings.Join(chain, " -> ")),
		nil,
	).WithStack(chain)
}

func errInvalidKey(reason string) *Error {
	return newError(ErrCodeInvalidKey, reason, nil)
}

func errInvalidClass(service string, cause error) *Error {
	return newError(
		ErrCodeInvalidClass,
		"invalid class declaration",
		cause,
	).WithService(service)
}

func errInvalidProvider(service string, reason string) *Error {
	return newError(ErrCodeInvalidProvider, reason, nil).WithService(service)
}

func errTypeMismatch(service string, cause error) *Error {
	return newError(
		ErrCodeTypeMismatch,
		"resolved value does not fit the injection point",
		cause,
	).WithService(service)
}

func errConstructionFailed(service string, cause error) *Error {
	return newError(
		ErrCodeConstructionFailed,
		fmt.Sprintf("constructor for %s returned error", service),
		cause,
	).WithService(service)
}

func errInitFailed(service string, cause error) *Error {
	return newError(
		ErrCodeInitFailed,
		fmt.Sprintf("OnInit of %s failed", service),
		cause,
	).WithService(service)
}

func errDestroyFailed(service string, cause error) *Error {
	return newError(
		ErrCodeDestroyFailed,
		fmt.Sprintf("OnDestroy of %s failed", service),
		cause,
	).WithService(service)
}

func errProviderFailed(service string, cause error) *Error {
	return newError(
		ErrCodeProviderFailed,
		fmt.Sprintf("provider for %s returned error", service),
		cause,
	).WithService(service)
}

func errBootstrapFailed(module string, cause error) *Error {
	return newError(
		ErrCodeBootstrapFailed,
		fmt.Sprintf("bootstrap of %s failed", module),
		cause,
	).WithService(module)
}

func errValidationFailed(cause error) *Error {
	return newError(ErrCodeValidationFailed, "container validation failed", cause)
}

func errHealthCheckFailed(service string, cause error) *Error {
	return newError(
		ErrCodeHealthCheckFailed,
		fmt.Sprintf("health check of %s failed", service),
		cause,
	).WithService(service)
}

// hasCode walks the whole chain, so a wrapped cause is found even when an
// outer *Error carries a different code.
func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeServiceNotFound)
}

func IsCircularDependency(err error) bool {
	return hasCode(err, ErrCodeCircularDependency)
}

func IsCircularImport(err error) bool {
	return hasCode(err, ErrCodeCircularImport)
}

func IsInvalidKey(err error) bool {
	return hasCode(err, ErrCodeInvalidKey)
}

func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

func IsConstructionFailed(err error) bool {
	return hasCode(err, ErrCodeConstructionFailed)
}

func IsProviderFailed(err error) bool {
	return hasCode(err, ErrCodeProviderFailed)
}

func IsBootstrapFailed(err error) bool {
	return hasCode(err, ErrCodeBootstrapFailed)
}

package container

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeDuplicateBeanID
	ErrCodeBeanNotFound
	ErrCodeAmbiguousDependency
	ErrCodeUnresolvedDependency
	ErrCodeCircularDependency
	ErrCodeLifecycleCallbackFailure
	ErrCodeProducerFailed
	ErrCodeRegistrationClosed
	ErrCodeInvalidDefinition
	ErrCodeInvalidTransition
	ErrCodeStartupFailed
	ErrCodeShutdownFailed
	ErrCodeContainerClosed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                  "UNKNOWN",
	ErrCodeDuplicateBeanID:          "DUPLICATE_BEAN_ID",
	ErrCodeBeanNotFound:             "BEAN_NOT_FOUND",
	ErrCodeAmbiguousDependency:      "AMBIGUOUS_DEPENDENCY",
	ErrCodeUnresolvedDependency:     "UNRESOLVED_DEPENDENCY",
	ErrCodeCircularDependency:       "CIRCULAR_DEPENDENCY",
	ErrCodeLifecycleCallbackFailure: "LIFECYCLE_CALLBACK_FAILURE",
	ErrCodeProducerFailed:           "PRODUCER_FAILED",
	ErrCodeRegistrationClosed:       "REGISTRATION_CLOSED",
	ErrCodeInvalidDefinition:        "INVALID_DEFINITION",
	ErrCodeInvalidTransition:        "INVALID_TRANSITION",
	ErrCodeStartupFailed:            "STARTUP_FAILED",
	ErrCodeShutdownFailed:           "SHUTDOWN_FAILED",
	ErrCodeContainerClosed:          "CONTAINER_CLOSED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the single error type surfaced by the container. Two errors are
// equal under errors.Is when their codes match.
type Error struct {
	Code    ErrorCode
	Message string
	Bean    string
	Cause   error
	Path    []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Bean != "" {
		b.WriteString(fmt.Sprintf(" bean=%q:", e.Bean))
	}

	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithBean(id string) *Error {
	e.Bean = id
	return e
}

func (e *Error) WithPath(path []string) *Error {
	e.Path = path
	return e
}

func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func errDuplicateBeanID(id string) *Error {
	return NewError(ErrCodeDuplicateBeanID, "bean id already registered", nil).WithBean(id)
}

func errBeanNotFound(id string) *Error {
	return NewError(ErrCodeBeanNotFound, "no definition with this id", nil).WithBean(id)
}

func errCapabilityNotFound(key string) *Error {
	return NewError(ErrCodeBeanNotFound, fmt.Sprintf("no definition provides %s", key), nil)
}

func errAmbiguous(key string, ids []string) *Error {
	return NewError(
		ErrCodeAmbiguousDependency,
		fmt.Sprintf("%d definitions provide %s: [%s]", len(ids), key, strings.Join(ids, ", ")),
		nil,
	)
}

func errUnresolved(id, message string, cause error) *Error {
	return NewError(ErrCodeUnresolvedDependency, message, cause).WithBean(id)
}

func errCircular(path []string) *Error {
	return NewError(
		ErrCodeCircularDependency,
		fmt.Sprintf("circular dependency: %s", strings.Join(path, " -> ")),
		nil,
	).WithPath(path)
}

func errCallback(id string, state State, cause error) *Error {
	return NewError(
		ErrCodeLifecycleCallbackFailure,
		fmt.Sprintf("%s callback failed", state),
		cause,
	).WithBean(id)
}

func errProducer(id string, cause error) *Error {
	return NewError(ErrCodeProducerFailed, "producer returned error", cause).WithBean(id)
}

func errInvalidDefinition(id, message string) *Error {
	return NewError(ErrCodeInvalidDefinition, message, nil).WithBean(id)
}

func errInvalidTransition(id string, from, to State) *Error {
	return NewError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("cannot move from %s to %s", from, to),
		nil,
	).WithBean(id)
}

func errCreateWhileStopping(id string) *Error {
	return NewError(ErrCodeContainerClosed, "cannot create a singleton while the container is stopping", nil).WithBean(id)
}

var (
	errRegistrationClosed = NewError(ErrCodeRegistrationClosed, "registration is closed once startup begins", nil)
	errContainerClosed    = NewError(ErrCodeContainerClosed, "container is closed", nil)
)

package beanpod

import (
	"errors"

	"github.com/danpasecinic/beanpod/internal/container"
)

type (
	Error     = container.Error
	ErrorCode = container.ErrorCode
)

const (
	ErrCodeUnknown                  = container.ErrCodeUnknown
	ErrCodeDuplicateBeanID          = container.ErrCodeDuplicateBeanID
	ErrCodeBeanNotFound             = container.ErrCodeBeanNotFound
	ErrCodeAmbiguousDependency      = container.ErrCodeAmbiguousDependency
	ErrCodeUnresolvedDependency     = container.ErrCodeUnresolvedDependency
	ErrCodeCircularDependency       = container.ErrCodeCircularDependency
	ErrCodeLifecycleCallbackFailure = container.ErrCodeLifecycleCallbackFailure
	ErrCodeProducerFailed           = container.ErrCodeProducerFailed
	ErrCodeRegistrationClosed       = container.ErrCodeRegistrationClosed
	ErrCodeInvalidDefinition        = container.ErrCodeInvalidDefinition
	ErrCodeInvalidTransition        = container.ErrCodeInvalidTransition
	ErrCodeStartupFailed            = container.ErrCodeStartupFailed
	ErrCodeShutdownFailed           = container.ErrCodeShutdownFailed
	ErrCodeContainerClosed          = container.ErrCodeContainerClosed
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrDuplicateBeanID          = &Error{Code: ErrCodeDuplicateBeanID}
	ErrBeanNotFound             = &Error{Code: ErrCodeBeanNotFound}
	ErrAmbiguousDependency      = &Error{Code: ErrCodeAmbiguousDependency}
	ErrUnresolvedDependency     = &Error{Code: ErrCodeUnresolvedDependency}
	ErrCircularDependency       = &Error{Code: ErrCodeCircularDependency}
	ErrLifecycleCallbackFailure = &Error{Code: ErrCodeLifecycleCallbackFailure}
	ErrProducerFailed           = &Error{Code: ErrCodeProducerFailed}
	ErrRegistrationClosed       = &Error{Code: ErrCodeRegistrationClosed}
	ErrInvalidDefinition        = &Error{Code: ErrCodeInvalidDefinition}
	ErrStartupFailed            = &Error{Code: ErrCodeStartupFailed}
	ErrShutdownFailed           = &Error{Code: ErrCodeShutdownFailed}
	ErrContainerClosed          = &Error{Code: ErrCodeContainerClosed}
)

func newError(code ErrorCode, message string, cause error) *Error {
	return container.NewError(code, message, cause)
}

func errStartupFailed(cause error) *Error {
	return newError(ErrCodeStartupFailed, "container startup failed", cause)
}

func errShutdownFailed(cause error) *Error {
	return newError(ErrCodeShutdownFailed, "container shutdown failed", cause)
}

func errInvalidDefinition(id string, cause error) *Error {
	return newError(ErrCodeInvalidDefinition, "invalid definition", cause).WithBean(id)
}

func IsDuplicateBeanID(err error) bool {
	return errors.Is(err, ErrDuplicateBeanID)
}

func IsBeanNotFound(err error) bool {
	return errors.Is(err, ErrBeanNotFound)
}

func IsAmbiguousDependency(err error) bool {
	return errors.Is(err, ErrAmbiguousDependency)
}

func IsUnresolvedDependency(err error) bool {
	return errors.Is(err, ErrUnresolvedDependency)
}

func IsCircularDependency(err error) bool {
	return errors.Is(err, ErrCircularDependency)
}

func IsLifecycleCallbackFailure(err error) bool {
	return errors.Is(err, ErrLifecycleCallbackFailure)
}

func IsStartupFailed(err error) bool {
	return errors.Is(err, ErrStartupFailed)
}

func IsShutdownFailed(err error) bool {
	return errors.Is(err, ErrShutdownFailed)
}

// CyclePath returns the definition ids of the first circular dependency
// found in err, closed on the repeated id.
func CyclePath(err error) []string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return nil
		}
		if e.Code == ErrCodeCircularDependency {
			return e.Path
		}
		err = e.Cause
	}
	return nil
}

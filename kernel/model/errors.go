package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. All of them propagate directly to the
// façade caller; the engine never retries or masks a configured fault.
var (
	ErrUnknownScenario  = errors.New("unknown scenario")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
)

// Defaults used when a fault is injected without an explicit code/message.
const (
	DefaultFailureCode    = "SimulatedFailure"
	DefaultFailureMessage = "injected failure"
)

// InjectedFailure is deliberately raised by the fault injector, carrying the
// caller-supplied error code and message verbatim. It satisfies the
// aws/awserr.Error interface so code under test sees the same shape as a
// real AWS API error.
type InjectedFailure struct {
	Op      string
	ErrCode string
	Msg     string
}

// NewInjectedFailure builds an InjectedFailure from a policy, filling in the
// default code and message when the policy leaves them blank.
func NewInjectedFailure(op string, p FailurePolicy) *InjectedFailure {
	f := &InjectedFailure{Op: op, ErrCode: p.ErrorCode, Msg: p.ErrorMessage}
	if f.ErrCode == "" {
		f.ErrCode = DefaultFailureCode
	}
	if f.Msg == "" {
		f.Msg = DefaultFailureMessage
	}
	return f
}

func (f *InjectedFailure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Op, f.ErrCode, f.Msg)
}

// Code implements awserr.Error.
func (f *InjectedFailure) Code() string { return f.ErrCode }

// Message implements awserr.Error.
func (f *InjectedFailure) Message() string { return f.Msg }

// OrigErr implements awserr.Error.
func (f *InjectedFailure) OrigErr() error { return nil }

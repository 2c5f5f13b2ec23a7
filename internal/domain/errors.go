package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityFormat signals a user identity that is not email-shaped.
	ErrIdentityFormat = errors.New("invalid user identity format")
	// ErrReceiptNotFound signals a missing receipt.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrPassNotFound signals a missing wallet pass.
	ErrPassNotFound = errors.New("wallet pass not found")
	// ErrFilterSynthesis signals that the model failed to produce a usable filter.
	ErrFilterSynthesis = errors.New("filter synthesis failed")
	// ErrAnswerSynthesis signals that the model failed to produce an answer.
	ErrAnswerSynthesis = errors.New("answer synthesis failed")
	// ErrQueryExecution signals a store failure while executing a filter.
	ErrQueryExecution = errors.New("query execution failed")
	// ErrSecurityInvariant signals that a filter reached the executor without
	// the enforced identity clause. Always a programming error.
	ErrSecurityInvariant = errors.New("security invariant violated")
	// ErrSessionClosed signals an operation on a terminated session.
	ErrSessionClosed = errors.New("session closed")
	// ErrLLMProvider signals a text generation provider failure.
	ErrLLMProvider = errors.New("llm provider error")
)

// ExecutionError wraps ErrQueryExecution with the store failure.
type ExecutionError struct {
	Inner error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrQueryExecution.Error(), e.Inner)
}

func (e *ExecutionError) Unwrap() error { return ErrQueryExecution }

// NewExecutionError creates an execution error around a store failure.
func NewExecutionError(inner error) error {
	return &ExecutionError{Inner: inner}
}

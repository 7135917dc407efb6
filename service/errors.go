package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfTarget is returned when an actor tries to score themselves
	// and is not on the self-exemption allow-list
	ErrSelfTarget = errors.New("cannot change your own score")

	// ErrPermissionDenied is returned when a delta exceeds the actor's
	// allowance under the chat's multi-point policy
	ErrPermissionDenied = errors.New("delta exceeds your allowance in this chat")

	// ErrNoPendingAction is returned when an actor completes an amount
	// step without a pending target selection
	ErrNoPendingAction = errors.New("no pending action for this actor")

	// ErrAmountRetry is returned when the amount message cannot be parsed;
	// the pending action stays armed so the actor can try again
	ErrAmountRetry = errors.New("amount not recognized, pending action kept")
)

// TargetNotFoundError reports a mention that resolves to no account
type TargetNotFoundError struct {
	Name string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("no account named %q in this chat", e.Name)
}

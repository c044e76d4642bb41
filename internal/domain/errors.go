package domain

import "errors"

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnauthorized     = errors.New("caller is not the order buyer")
	ErrInvalidState     = errors.New("order is not in the required state")
	ErrAmountMismatch   = errors.New("supplied funds do not match the declared delta")
	ErrInsufficientPool = errors.New("pool below release threshold")
	ErrAlreadyReleased  = errors.New("funds already released")
	ErrRecipientUnset   = errors.New("project recipient not set")
	ErrProjectReleased  = errors.New("project funds released, pool is frozen")
	ErrOrderNotFound    = errors.New("order not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrInvalidID        = errors.New("invalid id")
)

package ledger

import (
	"errors"
)

// Operation errors, all returned at the violated precondition with the
// ledger state untouched.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrAlreadyRevoked  = errors.New("ticket already revoked")
	ErrIrrevocable     = errors.New("ticket is irrevocable")
	ErrNoBalance       = errors.New("no balance left")
	ErrTransferFailed  = errors.New("token transfer failed")
)

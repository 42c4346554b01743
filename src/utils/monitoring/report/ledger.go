package report

import (
	"go.uber.org/atomic"
)

type LedgerErrors struct {
	DbTicketInsert  atomic.Int64 `json:"db_ticket_insert"`
	DbTicketUpdate  atomic.Int64 `json:"db_ticket_update"`
	DbTicketCounter atomic.Int64 `json:"db_ticket_counter"`
	TransferIn      atomic.Int64 `json:"transfer_in"`
	TransferOut     atomic.Int64 `json:"transfer_out"`
	Unauthorized    atomic.Int64 `json:"unauthorized"`
	InvalidRequest  atomic.Int64 `json:"invalid_request"`
}

type LedgerState struct {
	StartTimestamp atomic.Int64  `json:"start_timestamp"`
	UpForSeconds   atomic.Uint64 `json:"up_for_seconds"`

	TicketsCreated  atomic.Uint64 `json:"tickets_created"`
	TokensDeposited atomic.Uint64 `json:"tokens_deposited"`
	ClaimsExecuted  atomic.Uint64 `json:"claims_executed"`
	TokensClaimed   atomic.Uint64 `json:"tokens_claimed"`
	TicketsRevoked  atomic.Uint64 `json:"tickets_revoked"`
	TokensReturned  atomic.Uint64 `json:"tokens_returned"`

	AverageClaimsPerMinute atomic.Float64 `json:"average_claims_per_minute"`
}

type LedgerReport struct {
	State  LedgerState  `json:"state"`
	Errors LedgerErrors `json:"errors"`
}

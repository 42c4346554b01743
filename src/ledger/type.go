package ledger

import (
	"time"
)

type CreateParams struct {
	Asset       string
	Grantor     string
	Beneficiary string

	CliffDays   uint64
	VestingDays uint64
	Amount      uint64

	Irrevocable bool

	Now time.Time
}

type CreateTicketRequest struct {
	Asset       string `json:"asset"`
	Beneficiary string `json:"beneficiary"`
	CliffDays   uint64 `json:"cliff_days"`
	VestingDays uint64 `json:"vesting_days"`
	Amount      uint64 `json:"amount"`
	Irrevocable bool   `json:"irrevocable"`
}

type CreateTicketResponse struct {
	TicketId uint64 `json:"ticket_id"`
}

type ClaimResponse struct {
	TicketId uint64 `json:"ticket_id"`
	Amount   uint64 `json:"amount"`
}

type RevokeResponse struct {
	TicketId uint64 `json:"ticket_id"`
	Returned uint64 `json:"returned"`
}

type AvailableResponse struct {
	TicketId  uint64 `json:"ticket_id"`
	Available uint64 `json:"available"`
}

type CliffedResponse struct {
	TicketId uint64 `json:"ticket_id"`
	Cliffed  bool   `json:"cliffed"`
}

type ListTicketsResponse struct {
	TicketIds []uint64 `json:"ticket_ids"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

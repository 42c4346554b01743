package model

import (
	"encoding/json"
)

const (
	EventTicketCreated = "ticket_created"
	EventClaimed       = "claimed"
	EventRevoked       = "revoked"
)

// Fire-and-forget lifecycle notification, published to Redis.
// Order is preserved per ticket.
type TicketNotification struct {
	Event    string `json:"event"`
	TicketId uint64 `json:"ticket_id"`

	// Set for ticket_created and claimed
	Asset  string `json:"asset,omitempty"`
	Amount uint64 `json:"amount,omitempty"`

	// Set for ticket_created
	Irrevocable *bool `json:"irrevocable,omitempty"`

	// Set for revoked, amount returned to the grantor
	RemainingBalance uint64 `json:"remaining_balance,omitempty"`
}

func (self *TicketNotification) MarshalBinary() (data []byte, err error) {
	return json.Marshal(self)
}

package model

import (
	"database/sql"
)

const (
	TableTicket = "tickets"
)

// A single vesting grant. Rows are never deleted, revoked and fully
// claimed tickets stay queryable for audit.
type Ticket struct {
	// Sequential, starts at 0. Allocated from the states counter row.
	Id uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`

	// Address of the ERC20 contract being vested
	Asset string `json:"asset"`

	// Account that funded the grant and may revoke it
	Grantor string `gorm:"index" json:"grantor"`

	// Account entitled to claim
	Beneficiary string `gorm:"index" json:"beneficiary"`

	// Schedule, in days. VestingDays >= CliffDays
	CliffDays   uint64 `json:"cliff_days"`
	VestingDays uint64 `json:"vesting_days"`

	// Total granted quantity, fixed at creation
	Amount uint64 `json:"amount"`

	// Cumulative quantity withdrawn so far. Balance + Claimed == Amount
	// until the ticket is revoked.
	Claimed uint64 `json:"claimed"`

	// Quantity still escrowed for this ticket
	Balance uint64 `json:"balance"`

	// Grant start, unix seconds. Supplied by the caller, not the database.
	CreatedAt int64 `json:"created_at"`

	// Audit fields updated on each claim
	LastClaimedAt sql.NullInt64 `json:"last_claimed_at"`
	NumClaims     uint64        `json:"num_claims"`

	Irrevocable bool `json:"irrevocable"`

	IsRevoked bool          `json:"is_revoked"`
	RevokedAt sql.NullInt64 `json:"revoked_at"`
}

func (Ticket) TableName() string {
	return TableTicket
}

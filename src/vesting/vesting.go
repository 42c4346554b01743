package vesting

import (
	"math/big"
	"time"

	"github.com/vestlock/vestd/src/utils/model"
)

const SecondsPerDay = 86400

// Pure schedule math over a ticket snapshot and a caller supplied "now".
// Never touches the clock or the database.
type Calculator struct {
	linear bool
}

func NewCalculator() (self *Calculator) {
	self = new(Calculator)
	return
}

// Switches from the original all-or-nothing unlock to a true linear vest.
// The original contract computed floor(daysLapsed/vestingDays) * amount,
// which unlocks nothing until the whole vesting period elapsed. That
// contradicts its own documentation, so the corrected formula
// min(amount, daysLapsed*amount/vestingDays) is available behind this flag.
func (self *Calculator) WithLinearUnlock(v bool) *Calculator {
	self.linear = v
	return self
}

// True iff now is strictly past the end of the cliff period
func (self *Calculator) HasCliffed(ticket *model.Ticket, now time.Time) bool {
	return now.Unix() > ticket.CreatedAt+int64(ticket.CliffDays)*SecondsPerDay
}

// Total amount unlocked since the grant started, saturated at Amount.
// Zero before the cliff.
func (self *Calculator) UnlockedTotal(ticket *model.Ticket, now time.Time) uint64 {
	if !self.HasCliffed(ticket, now) {
		return 0
	}

	daysLapsed := (now.Unix() - ticket.CreatedAt) / SecondsPerDay

	if ticket.VestingDays == 0 {
		// Only possible with a zero cliff, vests immediately
		return ticket.Amount
	}

	if self.linear {
		unlocked := new(big.Int).Mul(big.NewInt(daysLapsed), new(big.Int).SetUint64(ticket.Amount))
		unlocked.Div(unlocked, new(big.Int).SetUint64(ticket.VestingDays))
		if !unlocked.IsUint64() || unlocked.Uint64() > ticket.Amount {
			return ticket.Amount
		}
		return unlocked.Uint64()
	}

	if uint64(daysLapsed) >= ticket.VestingDays {
		return ticket.Amount
	}
	return 0
}

// Amount the beneficiary may withdraw right now. Unlocked minus already
// claimed, clamped to [0, Balance].
func (self *Calculator) Claimable(ticket *model.Ticket, now time.Time) uint64 {
	unlocked := self.UnlockedTotal(ticket, now)
	if unlocked <= ticket.Claimed {
		return 0
	}

	claimable := unlocked - ticket.Claimed
	if claimable > ticket.Balance {
		claimable = ticket.Balance
	}
	return claimable
}

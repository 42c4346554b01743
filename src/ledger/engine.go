package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vestlock/vestd/src/utils/config"
	"github.com/vestlock/vestd/src/utils/model"
	"github.com/vestlock/vestd/src/utils/monitoring"
	"github.com/vestlock/vestd/src/utils/task"
	"github.com/vestlock/vestd/src/utils/token"
	"github.com/vestlock/vestd/src/vesting"
)

// The vesting ledger core. Validates authorization and ticket state,
// consults the schedule math and applies state transitions together with
// the external token transfer inside one database transaction.
//
// Mutations of a single ticket are additionally serialized with a
// per-ticket mutex, creations with a shared one guarding the id counter.
type Engine struct {
	*task.Task

	store      Store
	transferor token.Transferor
	calc       *vesting.Calculator
	monitor    monitoring.Monitor

	// Lifecycle notifications, order-preserving per ticket
	Output chan *model.TicketNotification

	createMtx  sync.Mutex
	ticketMtxs sync.Map
}

func NewEngine(config *config.Config) (self *Engine) {
	self = new(Engine)

	self.calc = vesting.NewCalculator().
		WithLinearUnlock(config.Ledger.LinearUnlock)

	self.Output = make(chan *model.TicketNotification, config.Ledger.NotificationBufferSize)

	self.Task = task.NewTask(config, "engine").
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Engine) WithStore(v Store) *Engine {
	self.store = v
	return self
}

func (self *Engine) WithTransferor(v token.Transferor) *Engine {
	self.transferor = v
	return self
}

func (self *Engine) WithMonitor(v monitoring.Monitor) *Engine {
	self.monitor = v
	return self
}

func (self *Engine) lockTicket(id uint64) (unlock func()) {
	v, _ := self.ticketMtxs.LoadOrStore(id, &sync.Mutex{})
	mtx := v.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock
}

// Notifications are fire-and-forget, a full channel drops the message
// rather than stall the operation
func (self *Engine) emit(notification *model.TicketNotification) {
	select {
	case self.Output <- notification:
	default:
		self.Log.WithField("ticket_id", notification.TicketId).Warn("Notification channel full, message dropped")
	}
}

func (self *Engine) Create(ctx context.Context, params CreateParams) (id uint64, err error) {
	if params.Beneficiary == "" || token.IsZeroAddress(params.Beneficiary) {
		self.monitor.GetReport().Ledger.Errors.InvalidRequest.Inc()
		return 0, fmt.Errorf("%w: beneficiary must not be the zero address", ErrInvalidArgument)
	}
	if params.Amount == 0 {
		self.monitor.GetReport().Ledger.Errors.InvalidRequest.Inc()
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if params.VestingDays < params.CliffDays {
		self.monitor.GetReport().Ledger.Errors.InvalidRequest.Inc()
		return 0, fmt.Errorf("%w: vesting period shorter than cliff", ErrInvalidArgument)
	}

	ticket := &model.Ticket{
		Asset:       token.Normalize(params.Asset),
		Grantor:     token.Normalize(params.Grantor),
		Beneficiary: token.Normalize(params.Beneficiary),
		CliffDays:   params.CliffDays,
		VestingDays: params.VestingDays,
		Amount:      params.Amount,
		Balance:     params.Amount,
		CreatedAt:   params.Now.Unix(),
		Irrevocable: params.Irrevocable,
	}

	self.createMtx.Lock()
	defer self.createMtx.Unlock()

	err = self.store.Transaction(ctx, func(tx Store) (err error) {
		id, err = tx.NextTicketId(ctx)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.DbTicketCounter.Inc()
			return
		}
		ticket.Id = id

		err = tx.CreateTicket(ctx, ticket)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.DbTicketInsert.Inc()
			return
		}

		// Pull the granted amount into custody. A failure rolls the
		// ticket insert back, no partial ticket is ever recorded.
		err = self.transferor.TransferIn(ctx, ticket.Asset, ticket.Grantor, ticket.Amount)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.TransferIn.Inc()
			return fmt.Errorf("%w: %s", ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	self.monitor.GetReport().Ledger.State.TicketsCreated.Inc()
	self.monitor.GetReport().Ledger.State.TokensDeposited.Add(ticket.Amount)

	irrevocable := ticket.Irrevocable
	self.emit(&model.TicketNotification{
		Event:       model.EventTicketCreated,
		TicketId:    id,
		Asset:       ticket.Asset,
		Amount:      ticket.Amount,
		Irrevocable: &irrevocable,
	})

	self.Log.WithField("ticket_id", id).WithField("amount", ticket.Amount).Info("Ticket created")

	return
}

func (self *Engine) Claim(ctx context.Context, id uint64, caller string, now time.Time) (amount uint64, err error) {
	caller = token.Normalize(caller)

	unlock := self.lockTicket(id)
	defer unlock()

	var asset string
	err = self.store.Transaction(ctx, func(tx Store) (err error) {
		ticket, err := tx.GetTicketForUpdate(ctx, id)
		if err != nil {
			return
		}

		if !strings.EqualFold(caller, ticket.Beneficiary) {
			self.monitor.GetReport().Ledger.Errors.Unauthorized.Inc()
			return ErrUnauthorized
		}
		if ticket.IsRevoked {
			return ErrAlreadyRevoked
		}
		if ticket.Balance == 0 {
			return ErrNoBalance
		}

		amount = self.calc.Claimable(ticket, now)
		if amount == 0 {
			// Nothing unlocked yet, trivially successful with no
			// transfer and no state advanced
			return nil
		}

		ticket.Claimed += amount
		ticket.Balance -= amount
		ticket.LastClaimedAt = sql.NullInt64{Int64: now.Unix(), Valid: true}
		ticket.NumClaims += 1

		err = tx.UpdateTicket(ctx, ticket)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.DbTicketUpdate.Inc()
			return
		}

		asset = ticket.Asset

		err = self.transferor.TransferOut(ctx, ticket.Asset, caller, amount)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.TransferOut.Inc()
			return fmt.Errorf("%w: %s", ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if amount == 0 {
		return
	}

	self.monitor.GetReport().Ledger.State.ClaimsExecuted.Inc()
	self.monitor.GetReport().Ledger.State.TokensClaimed.Add(amount)

	self.emit(&model.TicketNotification{
		Event:    model.EventClaimed,
		TicketId: id,
		Asset:    asset,
		Amount:   amount,
	})

	self.Log.WithField("ticket_id", id).WithField("amount", amount).Info("Claim executed")

	return
}

func (self *Engine) Revoke(ctx context.Context, id uint64, caller string, now time.Time) (returned uint64, err error) {
	caller = token.Normalize(caller)

	unlock := self.lockTicket(id)
	defer unlock()

	err = self.store.Transaction(ctx, func(tx Store) (err error) {
		ticket, err := tx.GetTicketForUpdate(ctx, id)
		if err != nil {
			return
		}

		if !strings.EqualFold(caller, ticket.Grantor) {
			self.monitor.GetReport().Ledger.Errors.Unauthorized.Inc()
			return ErrUnauthorized
		}
		if ticket.Irrevocable {
			return ErrIrrevocable
		}
		if ticket.IsRevoked {
			return ErrAlreadyRevoked
		}
		if ticket.Balance == 0 {
			return ErrNoBalance
		}

		// The whole remainder goes back to the grantor, vested or not
		returned = ticket.Balance
		ticket.Balance = 0
		ticket.IsRevoked = true
		ticket.RevokedAt = sql.NullInt64{Int64: now.Unix(), Valid: true}

		err = tx.UpdateTicket(ctx, ticket)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.DbTicketUpdate.Inc()
			return
		}

		err = self.transferor.TransferOut(ctx, ticket.Asset, ticket.Grantor, returned)
		if err != nil {
			self.monitor.GetReport().Ledger.Errors.TransferOut.Inc()
			return fmt.Errorf("%w: %s", ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	self.monitor.GetReport().Ledger.State.TicketsRevoked.Inc()
	self.monitor.GetReport().Ledger.State.TokensReturned.Add(returned)

	self.emit(&model.TicketNotification{
		Event:            model.EventRevoked,
		TicketId:         id,
		RemainingBalance: returned,
	})

	self.Log.WithField("ticket_id", id).WithField("returned", returned).Info("Ticket revoked")

	return
}

// Authorization shared by the read-only queries: only the two parties of
// the grant may inspect it
func (self *Engine) authorizeParty(ticket *model.Ticket, caller string) (err error) {
	if strings.EqualFold(caller, ticket.Grantor) || strings.EqualFold(caller, ticket.Beneficiary) {
		return nil
	}
	self.monitor.GetReport().Ledger.Errors.Unauthorized.Inc()
	return ErrUnauthorized
}

func (self *Engine) Available(ctx context.Context, id uint64, caller string, now time.Time) (amount uint64, err error) {
	ticket, err := self.store.GetTicket(ctx, id)
	if err != nil {
		return
	}

	err = self.authorizeParty(ticket, token.Normalize(caller))
	if err != nil {
		return
	}

	if ticket.IsRevoked {
		return 0, ErrAlreadyRevoked
	}
	if ticket.Balance == 0 {
		return 0, ErrNoBalance
	}

	return self.calc.Claimable(ticket, now), nil
}

func (self *Engine) HasCliffed(ctx context.Context, id uint64, caller string, now time.Time) (cliffed bool, err error) {
	ticket, err := self.store.GetTicket(ctx, id)
	if err != nil {
		return
	}

	err = self.authorizeParty(ticket, token.Normalize(caller))
	if err != nil {
		return
	}

	return self.calc.HasCliffed(ticket, now), nil
}

func (self *Engine) GetTicket(ctx context.Context, id uint64) (*model.Ticket, error) {
	return self.store.GetTicket(ctx, id)
}

func (self *Engine) ListByGrantor(ctx context.Context, grantor string) ([]uint64, error) {
	return self.store.TicketIdsByGrantor(ctx, token.Normalize(grantor))
}

func (self *Engine) ListByBeneficiary(ctx context.Context, beneficiary string) ([]uint64, error) {
	return self.store.TicketIdsByBeneficiary(ctx, token.Normalize(beneficiary))
}

package ledger

import (
	"context"
	"errors"

	"github.com/vestlock/vestd/src/utils/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persistence consumed by the engine. The gorm implementation below is
// used in production, tests plug in an in-memory fake.
type Store interface {
	// Runs f with a transactional view of the store. Everything written
	// through the passed Store commits or rolls back as one unit.
	Transaction(ctx context.Context, f func(tx Store) error) error

	// Allocates the next sequential ticket id, starting at 0
	NextTicketId(ctx context.Context) (uint64, error)

	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	UpdateTicket(ctx context.Context, ticket *model.Ticket) error

	GetTicket(ctx context.Context, id uint64) (*model.Ticket, error)

	// Like GetTicket but locks the row until the surrounding transaction ends
	GetTicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error)

	TicketIdsByGrantor(ctx context.Context, grantor string) ([]uint64, error)
	TicketIdsByBeneficiary(ctx context.Context, beneficiary string) ([]uint64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (self *GormStore) {
	self = new(GormStore)
	self.db = db
	return
}

func (self *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}

func (self *GormStore) NextTicketId(ctx context.Context) (id uint64, err error) {
	var state model.State
	err = self.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", model.StateTicketCounter).
		First(&state).
		Error
	if err != nil {
		return
	}

	id = state.NextTicketId

	err = self.db.WithContext(ctx).
		Model(&model.State{Name: model.StateTicketCounter}).
		Update("next_ticket_id", id+1).
		Error
	return
}

func (self *GormStore) CreateTicket(ctx context.Context, ticket *model.Ticket) (err error) {
	return self.db.WithContext(ctx).Create(ticket).Error
}

func (self *GormStore) UpdateTicket(ctx context.Context, ticket *model.Ticket) (err error) {
	return self.db.WithContext(ctx).Save(ticket).Error
}

func (self *GormStore) getTicket(ctx context.Context, id uint64, forUpdate bool) (ticket *model.Ticket, err error) {
	ticket = new(model.Ticket)

	query := self.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	err = query.Where("id = ?", id).First(ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *GormStore) GetTicket(ctx context.Context, id uint64) (*model.Ticket, error) {
	return self.getTicket(ctx, id, false)
}

func (self *GormStore) GetTicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error) {
	return self.getTicket(ctx, id, true)
}

func (self *GormStore) ticketIdsBy(ctx context.Context, column, address string) (ids []uint64, err error) {
	err = self.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where(column+" = ?", address).
		Order("id ASC").
		Pluck("id", &ids).
		Error
	return
}

func (self *GormStore) TicketIdsByGrantor(ctx context.Context, grantor string) ([]uint64, error) {
	return self.ticketIdsBy(ctx, "grantor", grantor)
}

func (self *GormStore) TicketIdsByBeneficiary(ctx context.Context, beneficiary string) ([]uint64, error) {
	return self.ticketIdsBy(ctx, "beneficiary", beneficiary)
}

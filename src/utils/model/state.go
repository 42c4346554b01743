package model

const (
	// Name of the row holding the ticket id counter
	StateTicketCounter = "ticket_counter"
)

type State struct {
	Name string `gorm:"primaryKey"`

	// Id that will be assigned to the next created ticket
	NextTicketId uint64
}

func (State) TableName() string {
	return "states"
}

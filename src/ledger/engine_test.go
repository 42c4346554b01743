package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/vestlock/vestd/src/utils/config"
	"github.com/vestlock/vestd/src/utils/model"
	monitor_ledger "github.com/vestlock/vestd/src/utils/monitoring/ledger"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"testing"
)

const (
	grantor     = "0x1111111111111111111111111111111111111111"
	beneficiary = "0x2222222222222222222222222222222222222222"
	stranger    = "0x3333333333333333333333333333333333333333"
	asset       = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	zeroAddress = "0x0000000000000000000000000000000000000000"
)

// In-memory Store with copy-on-write transactions
type memStore struct {
	tickets map[uint64]*model.Ticket
	nextId  uint64
}

func newMemStore() *memStore {
	return &memStore{tickets: make(map[uint64]*model.Ticket)}
}

func (self *memStore) clone() *memStore {
	out := newMemStore()
	out.nextId = self.nextId
	for id, ticket := range self.tickets {
		copied := *ticket
		out.tickets[id] = &copied
	}
	return out
}

func (self *memStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	tx := self.clone()
	err := f(tx)
	if err != nil {
		return err
	}
	self.tickets = tx.tickets
	self.nextId = tx.nextId
	return nil
}

func (self *memStore) NextTicketId(ctx context.Context) (uint64, error) {
	id := self.nextId
	self.nextId += 1
	return id, nil
}

func (self *memStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	copied := *ticket
	self.tickets[ticket.Id] = &copied
	return nil
}

func (self *memStore) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	copied := *ticket
	self.tickets[ticket.Id] = &copied
	return nil
}

func (self *memStore) GetTicket(ctx context.Context, id uint64) (*model.Ticket, error) {
	ticket, ok := self.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (self *memStore) GetTicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error) {
	return self.GetTicket(ctx, id)
}

func (self *memStore) ticketIdsBy(match func(*model.Ticket) bool) (ids []uint64, err error) {
	for id, ticket := range self.tickets {
		if match(ticket) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return
}

func (self *memStore) TicketIdsByGrantor(ctx context.Context, grantor string) ([]uint64, error) {
	return self.ticketIdsBy(func(t *model.Ticket) bool { return t.Grantor == grantor })
}

func (self *memStore) TicketIdsByBeneficiary(ctx context.Context, beneficiary string) ([]uint64, error) {
	return self.ticketIdsBy(func(t *model.Ticket) bool { return t.Beneficiary == beneficiary })
}

type transferCall struct {
	asset   string
	account string
	amount  uint64
	in      bool
}

type fakeTransferor struct {
	failIn  bool
	failOut bool
	calls   []transferCall
}

func (self *fakeTransferor) TransferIn(ctx context.Context, asset, from string, amount uint64) error {
	if self.failIn {
		return errors.New("transfer rejected")
	}
	self.calls = append(self.calls, transferCall{asset: asset, account: from, amount: amount, in: true})
	return nil
}

func (self *fakeTransferor) TransferOut(ctx context.Context, asset, to string, amount uint64) error {
	if self.failOut {
		return errors.New("transfer rejected")
	}
	self.calls = append(self.calls, transferCall{asset: asset, account: to, amount: amount, in: false})
	return nil
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

type EngineTestSuite struct {
	suite.Suite

	ctx context.Context
	t0  time.Time

	engine     *Engine
	store      *memStore
	transferor *fakeTransferor
}

func (s *EngineTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.t0 = time.Unix(1700000000, 0)
}

func (s *EngineTestSuite) SetupTest() {
	s.setupEngine(true)
}

func (s *EngineTestSuite) setupEngine(linear bool) {
	conf := config.Default()
	conf.Ledger.LinearUnlock = linear

	s.store = newMemStore()
	s.transferor = new(fakeTransferor)

	s.engine = NewEngine(conf).
		WithStore(s.store).
		WithTransferor(s.transferor).
		WithMonitor(monitor_ledger.NewMonitor().WithMaxHistorySize(10))
}

func (s *EngineTestSuite) create(cliffDays, vestingDays, amount uint64, irrevocable bool) uint64 {
	id, err := s.engine.Create(s.ctx, CreateParams{
		Asset:       asset,
		Grantor:     grantor,
		Beneficiary: beneficiary,
		CliffDays:   cliffDays,
		VestingDays: vestingDays,
		Amount:      amount,
		Irrevocable: irrevocable,
		Now:         s.t0,
	})
	require.Nil(s.T(), err)
	return id
}

func (s *EngineTestSuite) afterDays(days int64) time.Time {
	return s.t0.Add(time.Duration(days) * 24 * time.Hour)
}

func (s *EngineTestSuite) requireInvariant(id uint64) {
	ticket, err := s.store.GetTicket(s.ctx, id)
	require.Nil(s.T(), err)
	if !ticket.IsRevoked {
		require.Equal(s.T(), ticket.Amount, ticket.Balance+ticket.Claimed)
	}
	require.LessOrEqual(s.T(), ticket.Claimed, ticket.Amount)
}

func (s *EngineTestSuite) TestCreateValidation() {
	cases := []struct {
		name   string
		params CreateParams
	}{
		{"zero beneficiary", CreateParams{Asset: asset, Grantor: grantor, Beneficiary: zeroAddress, VestingDays: 90, Amount: 900, Now: s.t0}},
		{"empty beneficiary", CreateParams{Asset: asset, Grantor: grantor, Beneficiary: "", VestingDays: 90, Amount: 900, Now: s.t0}},
		{"zero amount", CreateParams{Asset: asset, Grantor: grantor, Beneficiary: beneficiary, VestingDays: 90, Amount: 0, Now: s.t0}},
		{"vesting shorter than cliff", CreateParams{Asset: asset, Grantor: grantor, Beneficiary: beneficiary, CliffDays: 91, VestingDays: 90, Amount: 900, Now: s.t0}},
	}

	for _, testCase := range cases {
		_, err := s.engine.Create(s.ctx, testCase.params)
		require.ErrorIs(s.T(), err, ErrInvalidArgument, testCase.name)
	}

	require.Empty(s.T(), s.transferor.calls)
	require.Empty(s.T(), s.store.tickets)
}

func (s *EngineTestSuite) TestCreateAssignsSequentialIds() {
	first := s.create(30, 90, 900, false)
	second := s.create(0, 10, 100, false)

	require.EqualValues(s.T(), 0, first)
	require.EqualValues(s.T(), 1, second)

	ticket, err := s.store.GetTicket(s.ctx, first)
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 900, ticket.Amount)
	require.EqualValues(s.T(), 900, ticket.Balance)
	require.Zero(s.T(), ticket.Claimed)
	require.Equal(s.T(), s.t0.Unix(), ticket.CreatedAt)

	// Funds were pulled into custody once per ticket
	require.Len(s.T(), s.transferor.calls, 2)
	require.True(s.T(), s.transferor.calls[0].in)
	require.Equal(s.T(), grantor, s.transferor.calls[0].account)
	require.EqualValues(s.T(), 900, s.transferor.calls[0].amount)
}

func (s *EngineTestSuite) TestCreateTransferFailureRollsBack() {
	s.transferor.failIn = true

	_, err := s.engine.Create(s.ctx, CreateParams{
		Asset: asset, Grantor: grantor, Beneficiary: beneficiary,
		CliffDays: 30, VestingDays: 90, Amount: 900, Now: s.t0,
	})
	require.ErrorIs(s.T(), err, ErrTransferFailed)
	require.Empty(s.T(), s.store.tickets)

	// The id was not burnt by the failed attempt
	s.transferor.failIn = false
	id := s.create(30, 90, 900, false)
	require.EqualValues(s.T(), 0, id)
}

func (s *EngineTestSuite) TestClaimLinearFlow() {
	id := s.create(30, 90, 900, false)

	amount, err := s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(45))
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 450, amount)
	s.requireInvariant(id)

	// The second claim only yields what unlocked since, not 900 again
	amount, err = s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(90))
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 450, amount)
	s.requireInvariant(id)

	ticket, err := s.store.GetTicket(s.ctx, id)
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 900, ticket.Claimed)
	require.Zero(s.T(), ticket.Balance)
	require.EqualValues(s.T(), 2, ticket.NumClaims)
	require.Equal(s.T(), s.afterDays(90).Unix(), ticket.LastClaimedAt.Int64)

	// Exhausted tickets reject further claims
	_, err = s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(120))
	require.ErrorIs(s.T(), err, ErrNoBalance)
}

func (s *EngineTestSuite) TestClaimStepSemantics() {
	s.setupEngine(false)
	id := s.create(30, 90, 900, false)

	// Mid-vesting nothing is unlocked under the original step arithmetic
	amount, err := s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(45))
	require.Nil(s.T(), err)
	require.Zero(s.T(), amount)

	amount, err = s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(90))
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 900, amount)
	s.requireInvariant(id)
}

func (s *EngineTestSuite) TestClaimBeforeCliffSucceedsWithZero() {
	id := s.create(30, 90, 900, false)

	amount, err := s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(29))
	require.Nil(s.T(), err)
	require.Zero(s.T(), amount)

	// No transfer and no audit fields advanced
	ticket, err := s.store.GetTicket(s.ctx, id)
	require.Nil(s.T(), err)
	require.Zero(s.T(), ticket.NumClaims)
	require.False(s.T(), ticket.LastClaimedAt.Valid)
	require.Len(s.T(), s.transferor.calls, 1) // only the create deposit
}

func (s *EngineTestSuite) TestClaimUnauthorized() {
	id := s.create(30, 90, 900, false)

	for _, caller := range []string{grantor, stranger} {
		_, err := s.engine.Claim(s.ctx, id, caller, s.afterDays(90))
		require.ErrorIs(s.T(), err, ErrUnauthorized)
	}
	s.requireInvariant(id)
}

func (s *EngineTestSuite) TestClaimUnknownTicket() {
	_, err := s.engine.Claim(s.ctx, 42, beneficiary, s.t0)
	require.ErrorIs(s.T(), err, ErrTicketNotFound)
}

func (s *EngineTestSuite) TestClaimTransferFailureRollsBack() {
	id := s.create(30, 90, 900, false)
	s.transferor.failOut = true

	_, err := s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(90))
	require.ErrorIs(s.T(), err, ErrTransferFailed)

	ticket, err := s.store.GetTicket(s.ctx, id)
	require.Nil(s.T(), err)
	require.Zero(s.T(), ticket.Claimed)
	require.EqualValues(s.T(), 900, ticket.Balance)
	require.Zero(s.T(), ticket.NumClaims)
}

func (s *EngineTestSuite) TestRevokeBeforeCliff() {
	id := s.create(30, 90, 900, false)

	returned, err := s.engine.Revoke(s.ctx, id, grantor, s.afterDays(10))
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 900, returned)

	ticket, err := s.store.GetTicket(s.ctx, id)
	require.Nil(s.T(), err)
	require.True(s.T(), ticket.IsRevoked)
	require.Zero(s.T(), ticket.Balance)
	require.Equal(s.T(), s.afterDays(10).Unix(), ticket.RevokedAt.Int64)

	// The remainder went back to the grantor
	last := s.transferor.calls[len(s.transferor.calls)-1]
	require.False(s.T(), last.in)
	require.Equal(s.T(), grantor, last.account)
	require.EqualValues(s.T(), 900, last.amount)

	// Revoked is terminal for claims and repeated revocations
	_, err = s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(90))
	require.ErrorIs(s.T(), err, ErrAlreadyRevoked)

	_, err = s.engine.Revoke(s.ctx, id, grantor, s.afterDays(11))
	require.ErrorIs(s.T(), err, ErrAlreadyRevoked)
}

func (s *EngineTestSuite) TestRevokeAfterPartialClaim() {
	id := s.create(30, 90, 900, false)

	_, err := s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(45))
	require.Nil(s.T(), err)

	returned, err := s.engine.Revoke(s.ctx, id, grantor, s.afterDays(46))
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 450, returned)
}

func (s *EngineTestSuite) TestRevokeIrrevocable() {
	id := s.create(30, 90, 900, true)

	_, err := s.engine.Revoke(s.ctx, id, grantor, s.afterDays(10))
	require.ErrorIs(s.T(), err, ErrIrrevocable)
	s.requireInvariant(id)
}

func (s *EngineTestSuite) TestRevokeUnauthorized() {
	id := s.create(30, 90, 900, false)

	for _, caller := range []string{beneficiary, stranger} {
		_, err := s.engine.Revoke(s.ctx, id, caller, s.afterDays(10))
		require.ErrorIs(s.T(), err, ErrUnauthorized)
	}
}

func (s *EngineTestSuite) TestRevokeTransferFailureRollsBack() {
	id := s.create(30, 90, 900, false)
	s.transferor.failOut = true

	_, err := s.engine.Revoke(s.ctx, id, grantor, s.afterDays(10))
	require.ErrorIs(s.T(), err, ErrTransferFailed)

	ticket, err := s.store.GetTicket(s.ctx, id)
	require.Nil(s.T(), err)
	require.False(s.T(), ticket.IsRevoked)
	require.EqualValues(s.T(), 900, ticket.Balance)
}

func (s *EngineTestSuite) TestAvailableAuthorization() {
	id := s.create(30, 90, 900, false)

	_, err := s.engine.Available(s.ctx, id, stranger, s.afterDays(45))
	require.ErrorIs(s.T(), err, ErrUnauthorized)

	// Both parties of the grant may query
	for _, caller := range []string{grantor, beneficiary} {
		amount, err := s.engine.Available(s.ctx, id, caller, s.afterDays(45))
		require.Nil(s.T(), err)
		require.EqualValues(s.T(), 450, amount)
	}
}

func (s *EngineTestSuite) TestAvailableBeforeCliff() {
	id := s.create(30, 90, 900, false)

	amount, err := s.engine.Available(s.ctx, id, beneficiary, s.afterDays(29))
	require.Nil(s.T(), err)
	require.Zero(s.T(), amount)

	cliffed, err := s.engine.HasCliffed(s.ctx, id, beneficiary, s.afterDays(29))
	require.Nil(s.T(), err)
	require.False(s.T(), cliffed)
}

func (s *EngineTestSuite) TestAvailableOnRevokedTicket() {
	id := s.create(30, 90, 900, false)

	_, err := s.engine.Revoke(s.ctx, id, grantor, s.afterDays(10))
	require.Nil(s.T(), err)

	_, err = s.engine.Available(s.ctx, id, beneficiary, s.afterDays(45))
	require.ErrorIs(s.T(), err, ErrAlreadyRevoked)
}

func (s *EngineTestSuite) TestHasCliffedAuthorization() {
	id := s.create(30, 90, 900, false)

	_, err := s.engine.HasCliffed(s.ctx, id, stranger, s.afterDays(45))
	require.ErrorIs(s.T(), err, ErrUnauthorized)

	cliffed, err := s.engine.HasCliffed(s.ctx, id, grantor, s.afterDays(45))
	require.Nil(s.T(), err)
	require.True(s.T(), cliffed)
}

func (s *EngineTestSuite) TestListByParty() {
	first := s.create(30, 90, 900, false)
	second := s.create(0, 10, 100, false)

	ids, err := s.engine.ListByGrantor(s.ctx, grantor)
	require.Nil(s.T(), err)
	require.Equal(s.T(), []uint64{first, second}, ids)

	ids, err = s.engine.ListByBeneficiary(s.ctx, beneficiary)
	require.Nil(s.T(), err)
	require.Equal(s.T(), []uint64{first, second}, ids)

	ids, err = s.engine.ListByGrantor(s.ctx, stranger)
	require.Nil(s.T(), err)
	require.Empty(s.T(), ids)
}

func (s *EngineTestSuite) TestNotifications() {
	id := s.create(30, 90, 900, false)

	notification := <-s.engine.Output
	require.Equal(s.T(), model.EventTicketCreated, notification.Event)
	require.Equal(s.T(), id, notification.TicketId)
	require.EqualValues(s.T(), 900, notification.Amount)
	require.NotNil(s.T(), notification.Irrevocable)
	require.False(s.T(), *notification.Irrevocable)

	_, err := s.engine.Claim(s.ctx, id, beneficiary, s.afterDays(45))
	require.Nil(s.T(), err)

	notification = <-s.engine.Output
	require.Equal(s.T(), model.EventClaimed, notification.Event)
	require.EqualValues(s.T(), 450, notification.Amount)

	_, err = s.engine.Revoke(s.ctx, id, grantor, s.afterDays(46))
	require.Nil(s.T(), err)

	notification = <-s.engine.Output
	require.Equal(s.T(), model.EventRevoked, notification.Event)
	require.EqualValues(s.T(), 450, notification.RemainingBalance)
}

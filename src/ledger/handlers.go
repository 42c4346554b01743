package ledger

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vestlock/vestd/src/utils/token"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
)

const callerHeader = "X-Caller-Address"

// Resolved caller identity set by the upstream relayer
func (self *Server) caller(c *gin.Context) (address string, ok bool) {
	address = c.GetHeader(callerHeader)
	if address == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + callerHeader + " header"})
		return "", false
	}
	if !token.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed caller address"})
		return "", false
	}
	return token.Normalize(address), true
}

func (self *Server) ticketId(c *gin.Context) (id uint64, ok bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed ticket id"})
		return 0, false
	}
	return id, true
}

func (self *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrAlreadyRevoked), errors.Is(err, ErrIrrevocable), errors.Is(err, ErrNoBalance):
		status = http.StatusConflict
	case errors.Is(err, ErrTransferFailed):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		self.Log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("Request failed")
	}

	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (self *Server) onCreateTicket(c *gin.Context) {
	caller, ok := self.caller(c)
	if !ok {
		return
	}

	var in CreateTicketRequest
	err := c.ShouldBindJSON(&in)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return
	}

	if !token.IsHexAddress(in.Asset) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed asset address"})
		return
	}
	if in.Beneficiary != "" && !token.IsHexAddress(in.Beneficiary) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed beneficiary address"})
		return
	}

	id, err := self.engine.Create(c.Request.Context(), CreateParams{
		Asset:       in.Asset,
		Grantor:     caller,
		Beneficiary: in.Beneficiary,
		CliffDays:   in.CliffDays,
		VestingDays: in.VestingDays,
		Amount:      in.Amount,
		Irrevocable: in.Irrevocable,
		Now:         time.Now(),
	})
	if err != nil {
		self.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateTicketResponse{TicketId: id})
}

func (self *Server) onClaim(c *gin.Context) {
	caller, ok := self.caller(c)
	if !ok {
		return
	}
	id, ok := self.ticketId(c)
	if !ok {
		return
	}

	amount, err := self.engine.Claim(c.Request.Context(), id, caller, time.Now())
	if err != nil {
		self.writeError(c, err)
		return
	}

	self.ticketCache.Delete(c.Param("id"))

	c.JSON(http.StatusOK, ClaimResponse{TicketId: id, Amount: amount})
}

func (self *Server) onRevoke(c *gin.Context) {
	caller, ok := self.caller(c)
	if !ok {
		return
	}
	id, ok := self.ticketId(c)
	if !ok {
		return
	}

	returned, err := self.engine.Revoke(c.Request.Context(), id, caller, time.Now())
	if err != nil {
		self.writeError(c, err)
		return
	}

	self.ticketCache.Delete(c.Param("id"))

	c.JSON(http.StatusOK, RevokeResponse{TicketId: id, Returned: returned})
}

func (self *Server) onGetTicket(c *gin.Context) {
	id, ok := self.ticketId(c)
	if !ok {
		return
	}

	if cached, found := self.ticketCache.Get(c.Param("id")); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	ticket, err := self.engine.GetTicket(c.Request.Context(), id)
	if err != nil {
		self.writeError(c, err)
		return
	}

	self.ticketCache.Set(c.Param("id"), ticket, cache.DefaultExpiration)

	c.JSON(http.StatusOK, ticket)
}

func (self *Server) onAvailable(c *gin.Context) {
	caller, ok := self.caller(c)
	if !ok {
		return
	}
	id, ok := self.ticketId(c)
	if !ok {
		return
	}

	amount, err := self.engine.Available(c.Request.Context(), id, caller, time.Now())
	if err != nil {
		self.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailableResponse{TicketId: id, Available: amount})
}

func (self *Server) onHasCliffed(c *gin.Context) {
	caller, ok := self.caller(c)
	if !ok {
		return
	}
	id, ok := self.ticketId(c)
	if !ok {
		return
	}

	cliffed, err := self.engine.HasCliffed(c.Request.Context(), id, caller, time.Now())
	if err != nil {
		self.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, CliffedResponse{TicketId: id, Cliffed: cliffed})
}

func (self *Server) onListTickets(c *gin.Context) {
	grantor := c.Query("grantor")
	beneficiary := c.Query("beneficiary")

	var ids []uint64
	var err error
	switch {
	case grantor != "" && token.IsHexAddress(grantor):
		ids, err = self.engine.ListByGrantor(c.Request.Context(), grantor)
	case beneficiary != "" && token.IsHexAddress(beneficiary):
		ids, err = self.engine.ListByBeneficiary(c.Request.Context(), beneficiary)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "grantor or beneficiary address required"})
		return
	}
	if err != nil {
		self.writeError(c, err)
		return
	}

	if ids == nil {
		ids = []uint64{}
	}

	c.JSON(http.StatusOK, ListTicketsResponse{TicketIds: ids})
}

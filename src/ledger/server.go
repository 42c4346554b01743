package ledger

import (
	"context"
	"net/http"

	"github.com/vestlock/vestd/src/utils/config"
	"github.com/vestlock/vestd/src/utils/task"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/xid"
	"go.uber.org/ratelimit"
)

// Rest API server, the query and mutation surface of the ledger.
// Caller identity arrives already resolved in the X-Caller-Address header,
// set by the upstream relayer.
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	engine *Engine

	// Short lived cache for ticket reads
	ticketCache *cache.Cache

	// Limits mutating requests
	limiter ratelimit.Limiter
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:              config.Gateway.ListenAddress,
		Handler:           self.Router,
		ReadHeaderTimeout: config.Gateway.ServerRequestTimeout,
	}

	self.ticketCache = cache.New(config.Gateway.TicketCacheTTL, config.Gateway.TicketCacheCleanupInterval)

	if config.Gateway.RateLimit > 0 {
		self.limiter = ratelimit.New(config.Gateway.RateLimit)
	} else {
		self.limiter = ratelimit.NewUnlimited()
	}

	return
}

func (self *Server) WithEngine(engine *Engine) *Server {
	self.engine = engine
	return self
}

func (self *Server) requestId(c *gin.Context) {
	id := xid.New().String()
	c.Header("X-Request-Id", id)
	c.Set("request_id", id)
	c.Next()
}

func (self *Server) rateLimited(c *gin.Context) {
	self.limiter.Take()
	c.Next()
}

func (self *Server) setupRoutes() {
	v1 := self.Router.Group("v1")
	v1.Use(self.requestId)
	{
		v1.POST("tickets", self.rateLimited, self.onCreateTicket)
		v1.POST("tickets/:id/claim", self.rateLimited, self.onClaim)
		v1.POST("tickets/:id/revoke", self.rateLimited, self.onRevoke)

		v1.GET("tickets", self.onListTickets)
		v1.GET("tickets/:id", self.onGetTicket)
		v1.GET("tickets/:id/available", self.onAvailable)
		v1.GET("tickets/:id/cliffed", self.onHasCliffed)
	}
}

func (self *Server) run() (err error) {
	self.setupRoutes()

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

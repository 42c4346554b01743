package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// REST API address
	ListenAddress string

	// Max time a request handler may run
	ServerRequestTimeout time.Duration

	// Mutating requests per second, 0 disables the limiter
	RateLimit int

	// How long ticket reads are served from cache
	TicketCacheTTL time.Duration

	// How often expired cache entries are purged
	TicketCacheCleanupInterval time.Duration
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.ListenAddress", ":8080")
	viper.SetDefault("Gateway.ServerRequestTimeout", "30s")
	viper.SetDefault("Gateway.RateLimit", "50")
	viper.SetDefault("Gateway.TicketCacheTTL", "2s")
	viper.SetDefault("Gateway.TicketCacheCleanupInterval", "1m")
}

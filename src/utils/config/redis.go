package config

import (
	"time"

	"github.com/spf13/viper"
)

type Redis struct {
	Port     uint16
	Host     string
	User     string
	Password string
	DB       int

	Enabled bool

	// Name of the pub/sub channel notifications are published to
	ChannelName string

	MinIdleConns    int
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	ClientKey  string
	ClientCert string
	CaCert     string

	// Publishing retries
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration

	MaxWorkers int
}

func setRedisDefaults() {
	viper.SetDefault("Redis.Port", "6379")
	viper.SetDefault("Redis.Host", "127.0.0.1")
	viper.SetDefault("Redis.User", "")
	viper.SetDefault("Redis.Password", "")
	viper.SetDefault("Redis.DB", "0")
	viper.SetDefault("Redis.Enabled", "true")
	viper.SetDefault("Redis.ChannelName", "tickets")
	viper.SetDefault("Redis.MinIdleConns", "1")
	viper.SetDefault("Redis.MaxIdleConns", "5")
	viper.SetDefault("Redis.MaxOpenConns", "10")
	viper.SetDefault("Redis.ConnMaxIdleTime", "5m")
	viper.SetDefault("Redis.ConnMaxLifetime", "1h")
	viper.SetDefault("Redis.MaxElapsedTime", "5m")
	viper.SetDefault("Redis.MaxInterval", "30s")
	viper.SetDefault("Redis.MaxWorkers", "5")
}

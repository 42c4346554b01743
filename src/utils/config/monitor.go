package config

import (
	"github.com/spf13/viper"
)

type Monitor struct {
	// REST API address. Used for health checks and metrics.
	RESTListenAddress string

	// Number of per-minute samples kept for rolling averages
	MaxHistorySize int

	// Enables pprof endpoints on the monitoring server
	ProfilerEnabled bool
}

func setMonitorDefaults() {
	viper.SetDefault("Monitor.RESTListenAddress", ":7777")
	viper.SetDefault("Monitor.MaxHistorySize", "30")
	viper.SetDefault("Monitor.ProfilerEnabled", "false")
}

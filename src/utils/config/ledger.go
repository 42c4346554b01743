package config

import (
	"github.com/spf13/viper"
)

type Ledger struct {
	// Unlock amounts linearly over the vesting period.
	// When disabled the whole amount unlocks only once the full vesting
	// period elapsed, matching the original contract arithmetic.
	LinearUnlock bool

	// Size of the notification output channel buffer
	NotificationBufferSize int
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.LinearUnlock", "false")
	viper.SetDefault("Ledger.NotificationBufferSize", "100")
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

type Token struct {
	// JSON-RPC endpoint of the chain the vested tokens live on
	RpcProviderUrl string

	ChainId int64

	// Private key of the account holding escrowed tokens.
	// Grantors approve it before calling create.
	CustodianPrivateKey string

	// Gas limit for ERC20 transfer calls
	GasLimit uint64

	// Max time to wait until a transfer transaction is mined
	MiningTimeout time.Duration
}

func setTokenDefaults() {
	viper.SetDefault("Token.RpcProviderUrl", "http://127.0.0.1:8545")
	viper.SetDefault("Token.ChainId", "1337")
	viper.SetDefault("Token.CustodianPrivateKey", "")
	viper.SetDefault("Token.GasLimit", "100000")
	viper.SetDefault("Token.MiningTimeout", "2m")
}

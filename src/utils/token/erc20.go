package token

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/vestlock/vestd/src/utils/config"
	"github.com/vestlock/vestd/src/utils/logger"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

const erc20AbiJson = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"transferFrom","type":"function","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// Transferor implementation that moves ERC20 tokens held by the ledger
// custodian account. Grantors approve the custodian before create.
type Erc20 struct {
	log *logrus.Entry

	client *ethclient.Client
	abi    abi.ABI

	key       *ecdsa.PrivateKey
	custodian common.Address
	chainId   *big.Int

	gasLimit      uint64
	miningTimeout time.Duration
}

func NewErc20(config *config.Config) (self *Erc20, err error) {
	self = new(Erc20)
	self.log = logger.NewSublogger("erc20")

	self.abi, err = abi.JSON(strings.NewReader(erc20AbiJson))
	if err != nil {
		return
	}

	key := strings.TrimPrefix(config.Token.CustodianPrivateKey, "0x")
	self.key, err = crypto.HexToECDSA(key)
	if err != nil {
		return
	}
	self.custodian = crypto.PubkeyToAddress(self.key.PublicKey)
	self.chainId = big.NewInt(config.Token.ChainId)
	self.gasLimit = config.Token.GasLimit
	self.miningTimeout = config.Token.MiningTimeout

	self.client, err = ethclient.Dial(config.Token.RpcProviderUrl)
	if err != nil {
		return
	}

	self.log.WithField("custodian", self.custodian.Hex()).Info("Connected to token RPC")

	return
}

func (self *Erc20) Custodian() string {
	return strings.ToLower(self.custodian.Hex())
}

func (self *Erc20) TransferIn(ctx context.Context, asset, from string, amount uint64) (err error) {
	data, err := self.abi.Pack("transferFrom", common.HexToAddress(from), self.custodian, new(big.Int).SetUint64(amount))
	if err != nil {
		return
	}
	return self.send(ctx, common.HexToAddress(asset), data)
}

func (self *Erc20) TransferOut(ctx context.Context, asset, to string, amount uint64) (err error) {
	data, err := self.abi.Pack("transfer", common.HexToAddress(to), new(big.Int).SetUint64(amount))
	if err != nil {
		return
	}
	return self.send(ctx, common.HexToAddress(asset), data)
}

func (self *Erc20) send(ctx context.Context, asset common.Address, data []byte) (err error) {
	nonce, err := self.client.PendingNonceAt(ctx, self.custodian)
	if err != nil {
		return
	}

	gasPrice, err := self.client.SuggestGasPrice(ctx)
	if err != nil {
		return
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &asset,
		Value:    big.NewInt(0),
		Gas:      self.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(self.chainId), self.key)
	if err != nil {
		return
	}

	err = self.client.SendTransaction(ctx, signed)
	if err != nil {
		return
	}

	mineCtx, cancel := context.WithTimeout(ctx, self.miningTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(mineCtx, self.client, signed)
	if err != nil {
		return
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		self.log.WithField("tx", signed.Hash().Hex()).Error("Token transfer reverted")
		return errors.New("token transfer reverted")
	}

	self.log.WithField("tx", signed.Hash().Hex()).WithField("asset", asset.Hex()).Debug("Token transfer mined")

	return
}

func (self *Erc20) Close() {
	self.client.Close()
}

var _ Transferor = (*Erc20)(nil)

// IsHexAddress reports whether the string can be used as an account or
// asset identifier.
func IsHexAddress(s string) bool {
	return common.IsHexAddress(s)
}

// Normalize lowercases a hex address so identities compare bytewise.
func Normalize(s string) string {
	if !common.IsHexAddress(s) {
		return strings.ToLower(s)
	}
	return strings.ToLower(common.HexToAddress(s).Hex())
}

// The zero address is rejected as a beneficiary.
func IsZeroAddress(s string) bool {
	return common.HexToAddress(s) == (common.Address{})
}

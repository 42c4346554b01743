package token

import (
	"context"
)

// Moves the vested fungible asset between the ledger custodian and the
// grant parties. Called exactly once per create/claim/revoke, its error
// gates the whole operation.
type Transferor interface {
	// Pulls amount of asset from the given account into ledger custody
	TransferIn(ctx context.Context, asset, from string, amount uint64) error

	// Pays amount of asset out of ledger custody to the given account
	TransferOut(ctx context.Context, asset, to string, amount uint64) error
}

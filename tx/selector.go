package tx

import (
	"fmt"

	"github.com/bitfsorg/txchain-go/network"
)

// Selector picks the input for a run from the node's unspent listing.
type Selector func(utxos []network.UTXO) (OutputReference, error)

// FirstSpendable selects the first entry of the listing, in node order, that
// the node reports as spendable. It does not weigh value or age, so the same
// listing always yields the same reference.
func FirstSpendable(utxos []network.UTXO) (OutputReference, error) {
	for _, u := range utxos {
		if !u.Spendable {
			continue
		}
		return OutputReference{TxID: u.TxID, Index: u.Vout}, nil
	}
	if len(utxos) == 0 {
		return OutputReference{}, ErrNoSpendableOutput
	}
	return OutputReference{}, fmt.Errorf("%w: %d listed, none spendable", ErrNoSpendableOutput, len(utxos))
}

package tx

import (
	"fmt"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// Build composes one input and one payment into an unsigned transaction
// request. The destination must belong to params and the amount must be
// positive. Build makes no remote call.
func Build(input OutputReference, dest btcutil.Address, amount btcutil.Amount, params *chaincfg.Params) (*UnsignedTransaction, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: network params", ErrNilParam)
	}
	if amount <= 0 || amount > btcutil.MaxSatoshi {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if err := network.CheckAddress(dest, params); err != nil {
		return nil, err
	}

	return &UnsignedTransaction{
		Inputs:      []OutputReference{input},
		Outputs:     map[string]btcutil.Amount{dest.EncodeAddress(): amount},
		Destination: dest,
		Amount:      amount,
	}, nil
}

package network

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// predefined maps network names to their chain parameters.
var predefined = map[string]*chaincfg.Params{
	"mainnet":  &chaincfg.MainNetParams,
	"testnet":  &chaincfg.TestNet3Params,
	"testnet3": &chaincfg.TestNet3Params,
	"signet":   &chaincfg.SigNetParams,
	"regtest":  &chaincfg.RegressionNetParams,
	"simnet":   &chaincfg.SimNetParams,
}

// knownNetworks is the detection order used when classifying an address that
// does not belong to the configured network.
var knownNetworks = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.SigNetParams,
	&chaincfg.RegressionNetParams,
	&chaincfg.SimNetParams,
}

// GetNetwork returns the chain parameters for a predefined network name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*chaincfg.Params, error) {
	if params, ok := predefined[name]; ok {
		return params, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

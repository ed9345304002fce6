package network

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// ParseAddress decodes addr and requires it to belong to params.
//
// An address that decodes for another known network fails with
// ErrNetworkMismatch; one that decodes for none fails with ErrInvalidAddress.
// Regtest and testnet share base58 version bytes, so legacy addresses of the
// two networks cannot be told apart; bech32 addresses can.
func ParseAddress(addr string, params *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err == nil && decoded.IsForNet(params) {
		return decoded, nil
	}
	if other := detectNetwork(addr, params); other != nil {
		return nil, fmt.Errorf("%w: %s is a %s address, expected %s",
			ErrNetworkMismatch, addr, other.Name, params.Name)
	}
	if err == nil {
		err = fmt.Errorf("not a %s address", params.Name)
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
}

// CheckAddress verifies that an already decoded address belongs to params.
func CheckAddress(addr btcutil.Address, params *chaincfg.Params) error {
	if addr == nil {
		return fmt.Errorf("%w: nil address", ErrInvalidAddress)
	}
	if addr.IsForNet(params) {
		return nil
	}
	name := "another network"
	for _, p := range knownNetworks {
		if addr.IsForNet(p) {
			name = p.Name
			break
		}
	}
	return fmt.Errorf("%w: %s is a %s address, expected %s",
		ErrNetworkMismatch, addr.EncodeAddress(), name, params.Name)
}

// detectNetwork returns the first known network, other than params, that addr
// decodes for.
func detectNetwork(addr string, params *chaincfg.Params) *chaincfg.Params {
	for _, p := range knownNetworks {
		if p.Name == params.Name {
			continue
		}
		decoded, err := btcutil.DecodeAddress(addr, p)
		if err == nil && decoded.IsForNet(p) {
			return p
		}
	}
	return nil
}

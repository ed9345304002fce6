package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
)

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates authentication (e.g., RPC credentials) was rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrNetworkMismatch indicates an address belongs to a different network
	// than the one the client is configured for.
	ErrNetworkMismatch = errors.New("network: address network mismatch")

	// ErrInvalidAddress indicates an address could not be decoded for any known network.
	ErrInvalidAddress = errors.New("network: invalid address")

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("network: invalid network name")

	// ErrFundingFailed indicates the node refused to fund a raw transaction.
	ErrFundingFailed = errors.New("network: funding failed")

	// ErrBroadcastRejected indicates the node rejected the broadcast transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")
)

// RPC error codes returned by Bitcoin Core that the client inspects.
const (
	CodeWalletError         btcjson.RPCErrorCode = -4
	CodeWalletAlreadyLoaded btcjson.RPCErrorCode = -35
)

// RemoteError is an error object returned by the node in a JSON-RPC response.
type RemoteError struct {
	Code    btcjson.RPCErrorCode
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("network: rpc error %d: %s", e.Code, e.Message)
}

// IsWalletExists reports whether err is the node telling us the wallet
// already exists or is already loaded.
func IsWalletExists(err error) bool {
	var remote *RemoteError
	if !errors.As(err, &remote) {
		return false
	}
	switch remote.Code {
	case CodeWalletAlreadyLoaded:
		return true
	case CodeWalletError:
		return strings.Contains(remote.Message, "already exists")
	}
	return false
}

// wrapRemote tags err with kind unless the failure happened below the RPC
// layer, in which case the transport error is returned unchanged.
func wrapRemote(kind, err error) error {
	if errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrInvalidResponse) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"regtest\", \"testnet\", \"signet\", \"simnet\" or \"mainnet\")")

	// ErrInvalidRPCURL indicates the RPC endpoint is not an http(s) URL.
	ErrInvalidRPCURL = errors.New("config: invalid RPC URL")

	// ErrEmptyWallet indicates the wallet name is empty.
	ErrEmptyWallet = errors.New("config: wallet name must not be empty")

	// ErrInvalidAmount indicates a payment amount that is not a positive BTC
	// value with at most 8 decimal places.
	ErrInvalidAmount = errors.New("config: invalid amount")

	// ErrInvalidFeeRate indicates a fee rate that is not a positive BTC/kvB value.
	ErrInvalidFeeRate = errors.New("config: invalid fee rate")

	// ErrInvalidBlockCount indicates a negative maturity or a confirmation
	// count below one.
	ErrInvalidBlockCount = errors.New("config: invalid block count")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidLogFormat indicates the log format is not recognized.
	ErrInvalidLogFormat = errors.New("config: invalid log format (must be \"console\" or \"json\")")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the configuration file could not be parsed.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")
)

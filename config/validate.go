// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bitfsorg/txchain-go/network"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats lists the accepted log encodings.
var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if _, err := network.GetNetwork(cfg.Network); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidNetwork, cfg.Network)
	}

	if cfg.RPC.URL != "" {
		if err := validateURL(cfg.RPC.URL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRPCURL, err)
		}
	}

	if strings.TrimSpace(cfg.Wallet) == "" {
		return ErrEmptyWallet
	}

	if _, err := ParseAmount(cfg.Plan.FirstAmount); err != nil {
		return fmt.Errorf("first amount: %w", err)
	}
	if _, err := ParseAmount(cfg.Plan.SecondAmount); err != nil {
		return fmt.Errorf("second amount: %w", err)
	}
	if _, err := ParseFeeRate(cfg.Plan.FeeRate); err != nil {
		return err
	}

	if cfg.Plan.MaturityBlocks < 0 {
		return fmt.Errorf("%w: maturity blocks %d", ErrInvalidBlockCount, cfg.Plan.MaturityBlocks)
	}
	if cfg.Plan.IntermediateBlocks < 1 {
		return fmt.Errorf("%w: intermediate blocks %d", ErrInvalidBlockCount, cfg.Plan.IntermediateBlocks)
	}
	if cfg.Plan.FinalBlocks < 1 {
		return fmt.Errorf("%w: final blocks %d", ErrInvalidBlockCount, cfg.Plan.FinalBlocks)
	}

	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return ErrInvalidLogLevel
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return ErrInvalidLogFormat
	}

	return nil
}

// validateURL checks that raw is an absolute http or https URL with a host.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

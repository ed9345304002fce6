package network

import "fmt"

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url" mapstructure:"url"`
	User     string `json:"user" mapstructure:"user"`
	Password string `json:"password" mapstructure:"password"`
	Network  string `json:"network" mapstructure:"-"`
	Wallet   string `json:"wallet" mapstructure:"-"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "vasu", Password: "password"},
	"testnet": {URL: "http://localhost:18332"},
	"signet":  {URL: "http://localhost:38332"},
}

// ResolveConfig merges RPC configuration from two sources with decreasing priority:
//  1. Explicit overrides (flags, environment and config file, already merged by the caller)
//  2. Network presets (regtest/testnet/signet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(overrides *RPCConfig, network string) (*RPCConfig, error) {
	if _, err := GetNetwork(network); err != nil {
		return nil, err
	}
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if overrides != nil {
		if overrides.URL != "" {
			result.URL = overrides.URL
		}
		if overrides.User != "" {
			result.User = overrides.User
		}
		if overrides.Password != "" {
			result.Password = overrides.Password
		}
		result.Wallet = overrides.Wallet
	}

	// URL must be set (mainnet has no preset, so this catches unconfigured mainnet).
	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set --rpc-url, TXCHAIN_RPC_URL, or config file)", network)
	}

	return &result, nil
}

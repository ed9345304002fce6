// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/pipeline"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TXCHAIN"

// Config is the full configuration of a txchain process.
type Config struct {
	Network     string            `mapstructure:"network"`
	RPC         network.RPCConfig `mapstructure:"rpc"`
	Wallet      string            `mapstructure:"wallet"`
	Plan        PlanConfig        `mapstructure:"plan"`
	Log         LogConfig         `mapstructure:"log"`
	MetricsFile string            `mapstructure:"metrics_file"`
}

// PlanConfig holds the chain parameters. Amounts are BTC and the fee rate is
// BTC/kvB, all as decimal strings so no precision is lost before they are
// converted to satoshis.
type PlanConfig struct {
	FirstAmount        string `mapstructure:"first_amount"`
	SecondAmount       string `mapstructure:"second_amount"`
	FeeRate            string `mapstructure:"fee_rate"`
	MaturityBlocks     int64  `mapstructure:"maturity_blocks"`
	IntermediateBlocks int64  `mapstructure:"intermediate_blocks"`
	FinalBlocks        int64  `mapstructure:"final_blocks"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the regtest defaults. The RPC endpoint is left empty
// and filled from the network preset by RPCConfig.
func DefaultConfig() Config {
	return Config{
		Network: "regtest",
		Wallet:  "testwallet_p2pool",
		Plan: PlanConfig{
			FirstAmount:        "10",
			SecondAmount:       "5",
			FeeRate:            "0.1",
			MaturityBlocks:     101,
			IntermediateBlocks: 1,
			FinalBlocks:        101,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("network", d.Network)
	v.SetDefault("rpc.url", d.RPC.URL)
	v.SetDefault("rpc.user", d.RPC.User)
	v.SetDefault("rpc.password", d.RPC.Password)
	v.SetDefault("wallet", d.Wallet)
	v.SetDefault("plan.first_amount", d.Plan.FirstAmount)
	v.SetDefault("plan.second_amount", d.Plan.SecondAmount)
	v.SetDefault("plan.fee_rate", d.Plan.FeeRate)
	v.SetDefault("plan.maturity_blocks", d.Plan.MaturityBlocks)
	v.SetDefault("plan.intermediate_blocks", d.Plan.IntermediateBlocks)
	v.SetDefault("plan.final_blocks", d.Plan.FinalBlocks)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics_file", d.MetricsFile)
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"network":      "network",
	"rpc-url":      "rpc.url",
	"rpc-user":     "rpc.user",
	"rpc-pass":     "rpc.password",
	"wallet":       "wallet",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-file": "metrics_file",
}

// Load merges, in increasing priority, the defaults, the YAML file at path,
// TXCHAIN_* environment variables and the flags that were set on the command
// line.
// An empty path looks for txchain.yaml in the working directory and skips
// it when absent; an explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// TXCHAIN_RPC_PASS is accepted as a short form of TXCHAIN_RPC_PASSWORD.
	if err := v.BindEnv("rpc.password", EnvPrefix+"_RPC_PASSWORD", EnvPrefix+"_RPC_PASS"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("txchain")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return &cfg, nil
}

// ParseAmount converts a BTC decimal string to satoshis.
func ParseAmount(s string) (btcutil.Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	sat := d.Shift(8)
	if !sat.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than 8 decimal places", ErrInvalidAmount, s)
	}
	if sat.GreaterThan(decimal.NewFromInt(btcutil.MaxSatoshi)) {
		return 0, fmt.Errorf("%w: %q exceeds the money supply", ErrInvalidAmount, s)
	}
	return btcutil.Amount(sat.IntPart()), nil
}

// ParseFeeRate parses a positive BTC/kvB fee rate.
func ParseFeeRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %w", ErrInvalidFeeRate, s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be positive", ErrInvalidFeeRate, s)
	}
	return d, nil
}

// PipelinePlan converts the plan section into the orchestrator's plan.
func (c *Config) PipelinePlan() (pipeline.Plan, error) {
	first, err := ParseAmount(c.Plan.FirstAmount)
	if err != nil {
		return pipeline.Plan{}, fmt.Errorf("first amount: %w", err)
	}
	second, err := ParseAmount(c.Plan.SecondAmount)
	if err != nil {
		return pipeline.Plan{}, fmt.Errorf("second amount: %w", err)
	}
	rate, err := ParseFeeRate(c.Plan.FeeRate)
	if err != nil {
		return pipeline.Plan{}, err
	}
	return pipeline.Plan{
		Wallet:             c.Wallet,
		FirstAmount:        first,
		SecondAmount:       second,
		FeeRate:            rate,
		MaturityBlocks:     c.Plan.MaturityBlocks,
		IntermediateBlocks: c.Plan.IntermediateBlocks,
		FinalBlocks:        c.Plan.FinalBlocks,
	}, nil
}

// RPCConfig resolves the node connection, filling unset fields from the
// network preset.
func (c *Config) RPCConfig() (*network.RPCConfig, error) {
	overrides := c.RPC
	overrides.Wallet = ""
	return network.ResolveConfig(&overrides, c.Network)
}

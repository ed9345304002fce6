package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfsorg/txchain-go/config"
	"github.com/bitfsorg/txchain-go/logger"
	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd runs the full chain when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "txchain",
	Short: "Chain two wallet-funded transactions on a regtest node",
	Long: `txchain creates a wallet on a Bitcoin Core regtest node, mines its coinbase
to maturity, then builds, funds, signs, broadcasts and confirms a payment.
A second payment spends the first one's output and is confirmed the same way.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChain,
}

var flagRoot struct {
	ConfigFile string
}

// Execute runs the command line and exits non-zero on failure. SIGINT and
// SIGTERM cancel the in-flight remote call.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	d := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagRoot.ConfigFile, "config", "c", "", "YAML configuration file (default ./txchain.yaml if present)")
	flags.String("network", d.Network, "Chain network: regtest, testnet, signet, simnet or mainnet")
	flags.String("rpc-url", "", "Node RPC URL (default from the network preset)")
	flags.String("rpc-user", "", "Node RPC user")
	flags.String("rpc-pass", "", "Node RPC password")
	flags.String("wallet", d.Wallet, "Wallet to create and spend from")
	flags.String("log-level", d.Log.Level, "Log level: debug, info, warn or error")
	flags.String("log-format", d.Log.Format, "Log encoding: console or json")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file after the run")
}

// setup loads and validates the configuration and builds the logger and the
// node client.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *network.RPCClient, error) {
	cfg, err := config.Load(flagRoot.ConfigFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.ValidateConfig(*cfg); err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}

	rpcCfg, err := cfg.RPCConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	client := network.NewRPCClient(*rpcCfg)
	log.Debug("node client ready",
		zap.String("url", client.URL()),
		zap.String("network", client.Params().Name))

	return cfg, log, client, nil
}

// reportError prints the failure line: run, stage and kind for pipeline
// failures, the plain error otherwise. The run is omitted outside the chain.
func reportError(w io.Writer, err error) {
	var se *pipeline.StageError
	if errors.As(err, &se) {
		run := ""
		if se.Run > 0 {
			run = fmt.Sprintf("run=%d ", se.Run)
		}
		fmt.Fprintf(w, "pipeline failed: %sstage=%s kind=%s: %v\n", run, se.Stage, se.Kind, se.Err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

package cmd

import (
	"fmt"
	"io"

	"github.com/bitfsorg/txchain-go/logger"
	"github.com/bitfsorg/txchain-go/pipeline"
	"github.com/bitfsorg/txchain-go/tx"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap the wallet and run the two-transaction chain",
	Args:  cobra.NoArgs,
	RunE:  runChain,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, log, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	plan, err := cfg.PipelinePlan()
	if err != nil {
		return err
	}

	metrics := pipeline.NewMetrics()
	orch := pipeline.NewOrchestrator(client, plan,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics))

	report, runErr := orch.Run(cmd.Context())

	if cfg.MetricsFile != "" {
		if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
			log.Warn("writing metrics failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

// formatBTC renders an amount with no trailing zeros, e.g. "12.5 BTC".
func formatBTC(a btcutil.Amount) string {
	return decimal.New(int64(a), -8).String() + " BTC"
}

func printReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintf(w, "Wallet %s balance after maturity: %s\n", r.Wallet, formatBTC(r.Balance))
	printResult(w, "First", r.First)
	printResult(w, "Second", r.Second)
}

func printResult(w io.Writer, label string, res *tx.PipelineResult) {
	fmt.Fprintf(w, "%s transaction ID: %s (output %d, fee %s, confirmed by %d blocks)\n",
		label, res.TxID, res.OutputIndex, formatBTC(res.Fee), len(res.ConfirmingBlocks))
}

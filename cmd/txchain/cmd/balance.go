package cmd

import (
	"fmt"
	"io"

	"github.com/bitfsorg/txchain-go/logger"
	"github.com/bitfsorg/txchain-go/network"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet balance and its unspent outputs",
	Args:  cobra.NoArgs,
	RunE:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, log, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	wallet := client.Wallet(cfg.Wallet)
	balance, err := wallet.GetBalance(cmd.Context())
	if err != nil {
		return err
	}
	utxos, err := wallet.ListUnspent(cmd.Context())
	if err != nil {
		return err
	}

	printBalance(cmd.OutOrStdout(), cfg.Wallet, balance, utxos)
	return nil
}

func printBalance(w io.Writer, wallet string, balance btcutil.Amount, utxos []network.UTXO) {
	fmt.Fprintf(w, "Wallet %s balance: %s\n", wallet, formatBTC(balance))
	fmt.Fprintf(w, "Unspent outputs: %d\n", len(utxos))
	for _, u := range utxos {
		flag := ""
		if !u.Spendable {
			flag = " (not spendable)"
		}
		fmt.Fprintf(w, "  %s:%d  %s  %d conf%s\n", u.TxID, u.Vout, formatBTC(u.Amount), u.Confirmations, flag)
	}
}

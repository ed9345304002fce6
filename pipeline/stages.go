package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/tx"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/shopspring/decimal"
)

// paymentIndex is where funding keeps the caller's payment output.
const paymentIndex uint32 = 0

// Build validates the payment against the node's network and asks the node
// to serialize the unsigned transaction. A destination on another network
// fails before any remote call.
func Build(ctx context.Context, node network.NodeService, input tx.OutputReference, dest btcutil.Address, amount btcutil.Amount) (*tx.UnsignedTransaction, error) {
	unsigned, err := tx.Build(input, dest, amount, node.Params())
	if err != nil {
		return nil, err
	}
	rawHex, err := node.CreateRawTransaction(ctx, unsigned.OutPoints(), unsigned.Outputs)
	if err != nil {
		return nil, err
	}
	return unsigned.Serialized(rawHex), nil
}

// Fund asks the node to add fee and change at feeRate (BTC/kvB). Change is
// placed after the payment so the payment stays at index 0, and the funded
// transaction is decoded to confirm it.
func Fund(ctx context.Context, node network.NodeService, unsigned *tx.UnsignedTransaction, feeRate decimal.Decimal) (*tx.FundedTransaction, error) {
	if unsigned == nil || unsigned.Hex == "" {
		return nil, fmt.Errorf("%w: unsigned transaction", tx.ErrNilParam)
	}
	if !feeRate.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFeeRate, feeRate)
	}

	opts := network.FundOptions{FeeRate: feeRate, ChangePosition: -1}
	if len(unsigned.Outputs) > 0 {
		opts.ChangePosition = len(unsigned.Outputs)
	}
	res, err := node.FundRawTransaction(ctx, unsigned.Hex, opts)
	if err != nil {
		return nil, err
	}
	if err := tx.VerifyOutput(res.Hex, paymentIndex, unsigned.Destination, unsigned.Amount); err != nil {
		return nil, err
	}

	return &tx.FundedTransaction{
		Hex:            res.Hex,
		Fee:            res.Fee,
		FeeRate:        feeRate.String(),
		ChangePosition: res.ChangePosition,
		PaymentIndex:   paymentIndex,
		Funded:         true,
	}, nil
}

// Sign asks the wallet to sign a funded transaction. A partial signature
// fails with ErrIncompleteSignature and carries the node's per-input errors.
func Sign(ctx context.Context, node network.NodeService, funded *tx.FundedTransaction) (*tx.SignedTransaction, error) {
	if funded == nil || !funded.Funded {
		return nil, fmt.Errorf("%w: funded transaction", tx.ErrNilParam)
	}
	res, err := node.SignRawTransactionWithWallet(ctx, funded.Hex)
	if err != nil {
		return nil, err
	}
	if !res.Complete {
		if len(res.Errors) == 0 {
			return nil, ErrIncompleteSignature
		}
		return nil, fmt.Errorf("%w: %s", ErrIncompleteSignature, signErrors(res.Errors))
	}
	return &tx.SignedTransaction{Hex: res.Hex, Complete: true, PaymentIndex: funded.PaymentIndex}, nil
}

func signErrors(errs []btcjson.SignRawTransactionError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("input %s:%d: %s", e.TxID, e.Vout, e.Error)
	}
	return strings.Join(parts, "; ")
}

// Broadcast submits a completely signed transaction and returns its txid.
// Rejections are returned as is; nothing is retried.
func Broadcast(ctx context.Context, node network.NodeService, signed *tx.SignedTransaction) (*chainhash.Hash, error) {
	if signed == nil {
		return nil, fmt.Errorf("%w: signed transaction", tx.ErrNilParam)
	}
	if !signed.Complete {
		return nil, ErrIncompleteSignature
	}
	return node.SendRawTransaction(ctx, signed.Hex)
}

// Confirm mines n blocks to addr and returns their hashes in order.
func Confirm(ctx context.Context, node network.NodeService, addr btcutil.Address, n int64) ([]chainhash.Hash, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBlockCount, n)
	}
	hashes, err := node.GenerateToAddress(ctx, n, addr)
	if err != nil {
		return nil, err
	}
	if int64(len(hashes)) != n {
		return nil, fmt.Errorf("%w: requested %d blocks, node produced %d",
			network.ErrInvalidResponse, n, len(hashes))
	}
	return hashes, nil
}

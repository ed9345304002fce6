package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/tx"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentNode fails the test on any remote call.
func silentNode(t *testing.T) *network.MockNodeService {
	fail := func(method string) { t.Errorf("unexpected remote call: %s", method) }
	return &network.MockNodeService{
		FundRawTransactionFn: func(ctx context.Context, rawTxHex string, opts network.FundOptions) (*network.FundResult, error) {
			fail("fundrawtransaction")
			return nil, errors.New("unexpected")
		},
		SignRawTransactionWithWalletFn: func(ctx context.Context, rawTxHex string) (*network.SignResult, error) {
			fail("signrawtransactionwithwallet")
			return nil, errors.New("unexpected")
		},
		SendRawTransactionFn: func(ctx context.Context, signedTxHex string) (*chainhash.Hash, error) {
			fail("sendrawtransaction")
			return nil, errors.New("unexpected")
		},
		GenerateToAddressFn: func(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error) {
			fail("generatetoaddress")
			return nil, errors.New("unexpected")
		},
	}
}

func TestBuildStage(t *testing.T) {
	ledger := newFakeLedger(t)
	coin := ledger.coinbase(0x01, 50)
	dest := regtestAddress(t, 0x22)

	unsigned, err := Build(context.Background(), ledger.node(), coin, dest, btc(10))
	require.NoError(t, err)
	assert.NotEmpty(t, unsigned.Hex)
	assert.Equal(t, []tx.OutputReference{coin}, unsigned.Inputs)
	require.NoError(t, tx.VerifyOutput(unsigned.Hex, 0, dest, btc(10)))
}

func TestFundRejectsNonPositiveFeeRate(t *testing.T) {
	node := silentNode(t)
	unsigned := &tx.UnsignedTransaction{Hex: "0200", Destination: regtestAddress(t, 0x22), Amount: 1}

	for _, rate := range []string{"0", "-0.1"} {
		_, err := Fund(context.Background(), node, unsigned, decimal.RequireFromString(rate))
		assert.ErrorIs(t, err, ErrInvalidFeeRate, rate)
		assert.Equal(t, KindInvalidAmount, KindOf(err))
	}
}

func TestFundRequiresSerializedTransaction(t *testing.T) {
	node := silentNode(t)
	_, err := Fund(context.Background(), node, &tx.UnsignedTransaction{}, feeRate)
	assert.ErrorIs(t, err, tx.ErrNilParam)
	_, err = Fund(context.Background(), node, nil, feeRate)
	assert.ErrorIs(t, err, tx.ErrNilParam)
}

func TestFundStage(t *testing.T) {
	ledger := newFakeLedger(t)
	coin := ledger.coinbase(0x01, 50)
	dest := regtestAddress(t, 0x22)
	node := ledger.node()

	unsigned, err := Build(context.Background(), node, coin, dest, btc(10))
	require.NoError(t, err)

	funded, err := Fund(context.Background(), node, unsigned, feeRate)
	require.NoError(t, err)
	assert.True(t, funded.Funded)
	assert.Equal(t, ledger.fee, funded.Fee)
	assert.Equal(t, "0.1", funded.FeeRate)
	assert.Equal(t, 1, funded.ChangePosition)
	assert.Equal(t, uint32(0), funded.PaymentIndex)

	msg, err := tx.DecodeTx(funded.Hex)
	require.NoError(t, err)
	require.Len(t, msg.TxOut, 2)
	assert.Equal(t, int64(btc(50)-btc(10)-ledger.fee), msg.TxOut[1].Value)

	assert.NotEqual(t, funded.Hex, unsigned.Hex, "unsigned input is not modified")
}

func TestSignStage(t *testing.T) {
	node := &network.MockNodeService{
		SignRawTransactionWithWalletFn: func(ctx context.Context, rawTxHex string) (*network.SignResult, error) {
			assert.Equal(t, "funded", rawTxHex)
			return &network.SignResult{Hex: "signed", Complete: true}, nil
		},
	}
	signed, err := Sign(context.Background(), node, &tx.FundedTransaction{Hex: "funded", Funded: true})
	require.NoError(t, err)
	assert.Equal(t, &tx.SignedTransaction{Hex: "signed", Complete: true}, signed)
}

func TestSignStageRequiresFunded(t *testing.T) {
	_, err := Sign(context.Background(), silentNode(t), &tx.FundedTransaction{Hex: "raw"})
	assert.ErrorIs(t, err, tx.ErrNilParam)
}

func TestSignStageIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		errs    []btcjson.SignRawTransactionError
		wantMsg string
	}{
		{"no details", nil, "pipeline: incomplete signature"},
		{"with details", []btcjson.SignRawTransactionError{
			{TxID: "ab", Vout: 1, Error: "Unable to sign input"},
			{TxID: "cd", Vout: 0, Error: "Input not found"},
		}, "input ab:1: Unable to sign input; input cd:0: Input not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &network.MockNodeService{
				SignRawTransactionWithWalletFn: func(ctx context.Context, rawTxHex string) (*network.SignResult, error) {
					return &network.SignResult{Hex: rawTxHex, Complete: false, Errors: tt.errs}, nil
				},
			}
			signed, err := Sign(context.Background(), node, &tx.FundedTransaction{Hex: "funded", Funded: true})
			assert.Nil(t, signed)
			assert.ErrorIs(t, err, ErrIncompleteSignature)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBroadcastRejectsIncomplete(t *testing.T) {
	_, err := Broadcast(context.Background(), silentNode(t), &tx.SignedTransaction{Hex: "partial", Complete: false})
	assert.ErrorIs(t, err, ErrIncompleteSignature)

	_, err = Broadcast(context.Background(), silentNode(t), nil)
	assert.ErrorIs(t, err, tx.ErrNilParam)
}

func TestBroadcastStage(t *testing.T) {
	want := chainhash.Hash{0x01}
	node := &network.MockNodeService{
		SendRawTransactionFn: func(ctx context.Context, signedTxHex string) (*chainhash.Hash, error) {
			return &want, nil
		},
	}
	txid, err := Broadcast(context.Background(), node, &tx.SignedTransaction{Hex: "signed", Complete: true})
	require.NoError(t, err)
	assert.Equal(t, want, *txid)
}

func TestConfirmStage(t *testing.T) {
	ledger := newFakeLedger(t)
	dest := regtestAddress(t, 0x22)

	hashes, err := Confirm(context.Background(), ledger.node(), dest, 1)
	require.NoError(t, err)
	assert.Len(t, hashes, 1)

	hashes, err = Confirm(context.Background(), ledger.node(), dest, 3)
	require.NoError(t, err)
	require.Len(t, hashes, 3)
	assert.Equal(t, byte(2), hashes[0][0], "hashes are returned in mining order")
	assert.Equal(t, byte(4), hashes[2][0])
}

func TestConfirmInvalidBlockCount(t *testing.T) {
	for _, n := range []int64{0, -1} {
		_, err := Confirm(context.Background(), silentNode(t), regtestAddress(t, 0x22), n)
		assert.ErrorIs(t, err, ErrInvalidBlockCount)
		assert.Equal(t, KindInvalidBlockCount, KindOf(err))
	}
}

func TestConfirmShortResult(t *testing.T) {
	node := &network.MockNodeService{
		GenerateToAddressFn: func(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error) {
			return []chainhash.Hash{{0x01}}, nil
		},
	}
	_, err := Confirm(context.Background(), node, regtestAddress(t, 0x22), 2)
	assert.ErrorIs(t, err, network.ErrInvalidResponse)
}

func TestKindOf(t *testing.T) {
	remote := &network.RemoteError{Code: -8, Message: "bad param"}
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{errors.New("something"), KindUnknown},
		{context.Canceled, KindUnknown},
		{fmt.Errorf("network: getbalance: %w", context.DeadlineExceeded), KindUnknown},
		{fmt.Errorf("%w: refused", network.ErrConnectionFailed), KindConnectionFailed},
		{fmt.Errorf("%w: %w", network.ErrConnectionFailed, network.ErrAuthFailed), KindConnectionFailed},
		{fmt.Errorf("%w: bc1", network.ErrNetworkMismatch), KindNetworkMismatch},
		{tx.ErrNoSpendableOutput, KindNoSpendableOutput},
		{tx.ErrInvalidAmount, KindInvalidAmount},
		{ErrInvalidFeeRate, KindInvalidAmount},
		{fmt.Errorf("%w: %w", network.ErrFundingFailed, remote), KindFundingFailed},
		{ErrIncompleteSignature, KindIncompleteSignature},
		{fmt.Errorf("%w: %w", network.ErrBroadcastRejected, remote), KindBroadcastRejected},
		{ErrInvalidBlockCount, KindInvalidBlockCount},
		{tx.ErrOutputIndexMismatch, KindOutputIndexMismatch},
		{remote, KindRemoteError},
		{fmt.Errorf("listunspent: %w", remote), KindRemoteError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "FundingFailed", KindFundingFailed.String())
	assert.Equal(t, "RemoteError", KindRemoteError.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

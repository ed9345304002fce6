package pipeline

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/tx"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory regtest node behind network.MockNodeService.
// It serializes real transactions so funding output checks and txids behave
// as they would against a node.
type fakeLedger struct {
	t      *testing.T
	params *chaincfg.Params
	utxos  []network.UTXO
	values map[wire.OutPoint]int64

	fee    btcutil.Amount
	change btcutil.Address

	walletExists    bool
	changeFirst     bool
	incompleteSign  bool
	rejectBroadcast bool

	calls   []string
	wallets []string
	created [][]wire.OutPoint
	funded  []network.FundOptions
	sent    []chainhash.Hash
	mined   []int64

	nextAddr  byte
	nextBlock byte
}

func newFakeLedger(t *testing.T) *fakeLedger {
	t.Helper()
	return &fakeLedger{
		t:         t,
		params:    &chaincfg.RegressionNetParams,
		values:    make(map[wire.OutPoint]int64),
		fee:       14100,
		change:    regtestAddress(t, 0xcc),
		nextAddr:  0x40,
		nextBlock: 1,
	}
}

func regtestAddress(t *testing.T, seed byte) btcutil.Address {
	t.Helper()
	addr, err := btcutil.NewAddressWitnessPubKeyHash(bytes.Repeat([]byte{seed}, 20), &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	return addr
}

func mainnetAddress(t *testing.T, seed byte) btcutil.Address {
	t.Helper()
	addr, err := btcutil.NewAddressWitnessPubKeyHash(bytes.Repeat([]byte{seed}, 20), &chaincfg.MainNetParams)
	require.NoError(t, err)
	return addr
}

// coinbase adds a spendable output worth btc to the listing.
func (f *fakeLedger) coinbase(seed byte, btc int64) tx.OutputReference {
	var h chainhash.Hash
	h[0], h[31] = seed, 0xcb
	op := wire.OutPoint{Hash: h, Index: 0}
	f.values[op] = btc * btcutil.SatoshiPerBitcoin
	f.utxos = append(f.utxos, network.UTXO{
		TxID:          h,
		Vout:          0,
		Amount:        btcutil.Amount(btc * btcutil.SatoshiPerBitcoin),
		Confirmations: 101,
		Spendable:     true,
	})
	return tx.OutputReference{TxID: h, Index: 0}
}

// writes counts calls that create, change or submit transactions or blocks.
func (f *fakeLedger) writes() int {
	n := 0
	for _, c := range f.calls {
		switch c {
		case "createrawtransaction", "fundrawtransaction", "signrawtransactionwithwallet",
			"sendrawtransaction", "generatetoaddress":
			n++
		}
	}
	return n
}

func (f *fakeLedger) count(method string) int {
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeLedger) serialize(msg *wire.MsgTx) string {
	var buf bytes.Buffer
	require.NoError(f.t, msg.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes())
}

func (f *fakeLedger) script(addr btcutil.Address) []byte {
	script, err := txscript.PayToAddrScript(addr)
	require.NoError(f.t, err)
	return script
}

func (f *fakeLedger) node() *network.MockNodeService {
	return &network.MockNodeService{
		CreateWalletFn: func(ctx context.Context, name string) (*network.WalletInfo, error) {
			f.calls = append(f.calls, "createwallet")
			if f.walletExists {
				return nil, &network.RemoteError{Code: network.CodeWalletError, Message: "Wallet file verification failed. Database already exists."}
			}
			return &network.WalletInfo{Name: name}, nil
		},
		WalletFn: func(name string) network.NodeService {
			f.wallets = append(f.wallets, name)
			return f.node()
		},
		GetNewAddressFn: func(ctx context.Context) (btcutil.Address, error) {
			f.calls = append(f.calls, "getnewaddress")
			f.nextAddr++
			return regtestAddress(f.t, f.nextAddr), nil
		},
		GenerateToAddressFn: func(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error) {
			f.calls = append(f.calls, "generatetoaddress")
			if err := network.CheckAddress(addr, f.params); err != nil {
				return nil, err
			}
			f.mined = append(f.mined, count)
			hashes := make([]chainhash.Hash, count)
			for i := range hashes {
				hashes[i][0], hashes[i][1] = f.nextBlock, 0xbb
				f.nextBlock++
			}
			return hashes, nil
		},
		GetBalanceFn: func(ctx context.Context) (btcutil.Amount, error) {
			f.calls = append(f.calls, "getbalance")
			var sum int64
			for _, v := range f.values {
				sum += v
			}
			return btcutil.Amount(sum), nil
		},
		ListUnspentFn: func(ctx context.Context) ([]network.UTXO, error) {
			f.calls = append(f.calls, "listunspent")
			return f.utxos, nil
		},
		CreateRawTransactionFn: func(ctx context.Context, inputs []wire.OutPoint, outputs map[string]btcutil.Amount) (string, error) {
			f.calls = append(f.calls, "createrawtransaction")
			f.created = append(f.created, inputs)
			msg := wire.NewMsgTx(2)
			for i := range inputs {
				msg.AddTxIn(wire.NewTxIn(&inputs[i], nil, nil))
			}
			for encoded, amt := range outputs {
				addr, err := network.ParseAddress(encoded, f.params)
				if err != nil {
					return "", err
				}
				msg.AddTxOut(wire.NewTxOut(int64(amt), f.script(addr)))
			}
			return f.serialize(msg), nil
		},
		FundRawTransactionFn: func(ctx context.Context, rawTxHex string, opts network.FundOptions) (*network.FundResult, error) {
			f.calls = append(f.calls, "fundrawtransaction")
			f.funded = append(f.funded, opts)
			msg, err := tx.DecodeTx(rawTxHex)
			require.NoError(f.t, err)

			var in, out int64
			for _, txIn := range msg.TxIn {
				in += f.values[txIn.PreviousOutPoint]
			}
			for _, txOut := range msg.TxOut {
				out += txOut.Value
			}
			need := out + int64(f.fee)
			if in < need {
				return nil, fmt.Errorf("%w: %w", network.ErrFundingFailed,
					&network.RemoteError{Code: network.CodeWalletError, Message: "Insufficient funds"})
			}

			pos := opts.ChangePosition
			if pos < 0 || f.changeFirst {
				pos = 0
			}
			outs := make([]*wire.TxOut, 0, len(msg.TxOut)+1)
			outs = append(outs, msg.TxOut[:pos]...)
			outs = append(outs, wire.NewTxOut(in-need, f.script(f.change)))
			outs = append(outs, msg.TxOut[pos:]...)
			msg.TxOut = outs

			return &network.FundResult{Hex: f.serialize(msg), Fee: f.fee, ChangePosition: pos}, nil
		},
		SignRawTransactionWithWalletFn: func(ctx context.Context, rawTxHex string) (*network.SignResult, error) {
			f.calls = append(f.calls, "signrawtransactionwithwallet")
			if f.incompleteSign {
				return &network.SignResult{
					Hex:      rawTxHex,
					Complete: false,
					Errors: []btcjson.SignRawTransactionError{
						{TxID: "aa", Vout: 0, Error: "Input not found or already spent"},
					},
				}, nil
			}
			return &network.SignResult{Hex: rawTxHex, Complete: true}, nil
		},
		SendRawTransactionFn: func(ctx context.Context, signedTxHex string) (*chainhash.Hash, error) {
			f.calls = append(f.calls, "sendrawtransaction")
			if f.rejectBroadcast {
				return nil, fmt.Errorf("%w: %w", network.ErrBroadcastRejected,
					&network.RemoteError{Code: -26, Message: "min relay fee not met"})
			}
			msg, err := tx.DecodeTx(signedTxHex)
			require.NoError(f.t, err)
			for _, txIn := range msg.TxIn {
				delete(f.values, txIn.PreviousOutPoint)
			}
			txid := msg.TxHash()
			for i, txOut := range msg.TxOut {
				f.values[wire.OutPoint{Hash: txid, Index: uint32(i)}] = txOut.Value
			}
			f.sent = append(f.sent, txid)
			return &txid, nil
		},
	}
}

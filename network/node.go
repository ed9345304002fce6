package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"
)

// Compile-time interface check.
var _ NodeService = (*RPCClient)(nil)

// btcNumber renders a satoshi amount as an exact BTC JSON number.
func btcNumber(amt btcutil.Amount) json.Number {
	return json.Number(decimal.New(int64(amt), -8).String())
}

// CreateWallet calls `createwallet "name"`. An existing wallet is reported as
// a *RemoteError; see IsWalletExists.
func (c *RPCClient) CreateWallet(ctx context.Context, name string) (*WalletInfo, error) {
	var result btcjson.CreateWalletResult
	if err := c.Call(ctx, "createwallet", []interface{}{name}, &result); err != nil {
		return nil, err
	}
	return &WalletInfo{Name: result.Name, Warning: result.Warning}, nil
}

// GetNewAddress calls `getnewaddress` and decodes the result against the
// client's network.
func (c *RPCClient) GetNewAddress(ctx context.Context) (btcutil.Address, error) {
	var addr string
	if err := c.Call(ctx, "getnewaddress", nil, &addr); err != nil {
		return nil, err
	}
	return ParseAddress(addr, c.params)
}

// GenerateToAddress calls `generatetoaddress count "address"`. The address is
// checked against the client's network before the request is sent.
func (c *RPCClient) GenerateToAddress(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error) {
	if err := CheckAddress(addr, c.params); err != nil {
		return nil, err
	}
	var hexHashes []string
	if err := c.Call(ctx, "generatetoaddress", []interface{}{count, addr.EncodeAddress()}, &hexHashes); err != nil {
		return nil, err
	}
	hashes := make([]chainhash.Hash, len(hexHashes))
	for i, h := range hexHashes {
		hash, err := chainhash.NewHashFromStr(h)
		if err != nil {
			return nil, fmt.Errorf("%w: block hash %q: %w", ErrInvalidResponse, h, err)
		}
		hashes[i] = *hash
	}
	return hashes, nil
}

// GetBalance calls `getbalance` and converts the BTC amount to satoshis.
func (c *RPCClient) GetBalance(ctx context.Context) (btcutil.Amount, error) {
	var btc float64
	if err := c.Call(ctx, "getbalance", nil, &btc); err != nil {
		return 0, err
	}
	amt, err := btcutil.NewAmount(btc)
	if err != nil {
		return 0, fmt.Errorf("%w: balance: %w", ErrInvalidResponse, err)
	}
	return amt, nil
}

// ListUnspent calls `listunspent` with the node's default confirmation range
// and keeps the node's ordering.
func (c *RPCClient) ListUnspent(ctx context.Context) ([]UTXO, error) {
	var results []btcjson.ListUnspentResult
	if err := c.Call(ctx, "listunspent", nil, &results); err != nil {
		return nil, err
	}

	utxos := make([]UTXO, len(results))
	for i, r := range results {
		txid, err := chainhash.NewHashFromStr(r.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo txid %q: %w", ErrInvalidResponse, r.TxID, err)
		}
		amt, err := btcutil.NewAmount(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo amount: %w", ErrInvalidResponse, err)
		}
		utxos[i] = UTXO{
			TxID:          *txid,
			Vout:          r.Vout,
			Address:       r.Address,
			Amount:        amt,
			Confirmations: r.Confirmations,
			Spendable:     r.Spendable,
		}
	}
	return utxos, nil
}

// CreateRawTransaction calls `createrawtransaction [inputs] {outputs}`.
// Every output address must belong to the client's network; a mismatch fails
// with ErrNetworkMismatch without contacting the node.
func (c *RPCClient) CreateRawTransaction(ctx context.Context, inputs []wire.OutPoint, outputs map[string]btcutil.Amount) (string, error) {
	outs := make(map[string]json.Number, len(outputs))
	for addr, amt := range outputs {
		if _, err := ParseAddress(addr, c.params); err != nil {
			return "", err
		}
		outs[addr] = btcNumber(amt)
	}
	ins := make([]btcjson.TransactionInput, len(inputs))
	for i, op := range inputs {
		ins[i] = btcjson.TransactionInput{Txid: op.Hash.String(), Vout: op.Index}
	}

	var rawHex string
	if err := c.Call(ctx, "createrawtransaction", []interface{}{ins, outs}, &rawHex); err != nil {
		return "", err
	}
	return rawHex, nil
}

// fundResult maps the JSON fields returned by fundrawtransaction.
type fundResult struct {
	Hex       string  `json:"hex"`
	Fee       float64 `json:"fee"`
	ChangePos int     `json:"changepos"`
}

// FundRawTransaction calls `fundrawtransaction "hex" {options}` with the fee
// rate in BTC/kvB. Node rejections are wrapped with ErrFundingFailed.
func (c *RPCClient) FundRawTransaction(ctx context.Context, rawTxHex string, opts FundOptions) (*FundResult, error) {
	options := map[string]interface{}{
		"feeRate": json.Number(opts.FeeRate.String()),
	}
	if opts.ChangePosition >= 0 {
		options["changePosition"] = opts.ChangePosition
	}

	var result fundResult
	if err := c.Call(ctx, "fundrawtransaction", []interface{}{rawTxHex, options}, &result); err != nil {
		return nil, wrapRemote(ErrFundingFailed, err)
	}
	fee, err := btcutil.NewAmount(result.Fee)
	if err != nil {
		return nil, fmt.Errorf("%w: fee: %w", ErrInvalidResponse, err)
	}
	return &FundResult{Hex: result.Hex, Fee: fee, ChangePosition: result.ChangePos}, nil
}

// SignRawTransactionWithWallet calls `signrawtransactionwithwallet "hex"`.
// An incomplete signature is not an error at this layer; callers must check
// SignResult.Complete.
func (c *RPCClient) SignRawTransactionWithWallet(ctx context.Context, rawTxHex string) (*SignResult, error) {
	var result btcjson.SignRawTransactionWithWalletResult
	if err := c.Call(ctx, "signrawtransactionwithwallet", []interface{}{rawTxHex}, &result); err != nil {
		return nil, err
	}
	return &SignResult{Hex: result.Hex, Complete: result.Complete, Errors: result.Errors}, nil
}

// SendRawTransaction calls `sendrawtransaction "hex"` and returns the txid.
// Node rejections are wrapped with ErrBroadcastRejected.
func (c *RPCClient) SendRawTransaction(ctx context.Context, signedTxHex string) (*chainhash.Hash, error) {
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", []interface{}{signedTxHex}, &txid); err != nil {
		return nil, wrapRemote(ErrBroadcastRejected, err)
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("%w: txid %q: %w", ErrInvalidResponse, txid, err)
	}
	return hash, nil
}

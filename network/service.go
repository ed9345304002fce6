package network

import (
	"context"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"
)

// NodeService is the narrow view of a Bitcoin node used by the pipeline.
// Each method is a single remote call; none of them retry.
type NodeService interface {
	// CreateWallet creates and loads a wallet with the given name.
	CreateWallet(ctx context.Context, name string) (*WalletInfo, error)

	// Wallet returns a service bound to the named wallet's endpoint.
	Wallet(name string) NodeService

	// GetNewAddress returns a fresh receiving address from the wallet.
	GetNewAddress(ctx context.Context) (btcutil.Address, error)

	// GenerateToAddress mines count blocks paying the coinbase to addr and
	// returns the block hashes in the order they were produced.
	GenerateToAddress(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error)

	// GetBalance returns the wallet's trusted balance.
	GetBalance(ctx context.Context) (btcutil.Amount, error)

	// ListUnspent returns the wallet's unspent outputs in node order.
	ListUnspent(ctx context.Context) ([]UTXO, error)

	// CreateRawTransaction serializes an unsigned transaction spending inputs
	// and paying outputs (encoded address -> amount).
	CreateRawTransaction(ctx context.Context, inputs []wire.OutPoint, outputs map[string]btcutil.Amount) (string, error)

	// FundRawTransaction adds inputs, change and fee to an unsigned transaction.
	FundRawTransaction(ctx context.Context, rawTxHex string, opts FundOptions) (*FundResult, error)

	// SignRawTransactionWithWallet signs the inputs the wallet holds keys for.
	SignRawTransactionWithWallet(ctx context.Context, rawTxHex string) (*SignResult, error)

	// SendRawTransaction submits a signed transaction and returns its txid.
	SendRawTransaction(ctx context.Context, signedTxHex string) (*chainhash.Hash, error)

	// Params returns the network addresses are checked against.
	Params() *chaincfg.Params
}

// WalletInfo is the result of createwallet.
type WalletInfo struct {
	Name    string `json:"name"`
	Warning string `json:"warning"`
}

// UTXO represents an unspent transaction output as listed by the node.
type UTXO struct {
	TxID          chainhash.Hash `json:"txid"`
	Vout          uint32         `json:"vout"`
	Address       string         `json:"address"`
	Amount        btcutil.Amount `json:"amount"`
	Confirmations int64          `json:"confirmations"`
	Spendable     bool           `json:"spendable"`
}

// FundOptions are the fundrawtransaction options the pipeline sets.
type FundOptions struct {
	// FeeRate is in BTC per kvB and must be positive.
	FeeRate decimal.Decimal

	// ChangePosition pins the change output; negative lets the node choose.
	ChangePosition int
}

// FundResult is the result of fundrawtransaction.
type FundResult struct {
	Hex            string
	Fee            btcutil.Amount
	ChangePosition int
}

// SignResult is the result of signrawtransactionwithwallet.
type SignResult struct {
	Hex      string
	Complete bool
	Errors   []btcjson.SignRawTransactionError
}

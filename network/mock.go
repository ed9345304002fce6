package network

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// MockNodeService is a test double for NodeService.
// Function fields must be set before the corresponding method is called,
// except WalletFn and ParamsValue: a nil WalletFn returns the mock itself and
// a nil ParamsValue means regtest.
type MockNodeService struct {
	CreateWalletFn                 func(ctx context.Context, name string) (*WalletInfo, error)
	WalletFn                       func(name string) NodeService
	GetNewAddressFn                func(ctx context.Context) (btcutil.Address, error)
	GenerateToAddressFn            func(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error)
	GetBalanceFn                   func(ctx context.Context) (btcutil.Amount, error)
	ListUnspentFn                  func(ctx context.Context) ([]UTXO, error)
	CreateRawTransactionFn         func(ctx context.Context, inputs []wire.OutPoint, outputs map[string]btcutil.Amount) (string, error)
	FundRawTransactionFn           func(ctx context.Context, rawTxHex string, opts FundOptions) (*FundResult, error)
	SignRawTransactionWithWalletFn func(ctx context.Context, rawTxHex string) (*SignResult, error)
	SendRawTransactionFn           func(ctx context.Context, signedTxHex string) (*chainhash.Hash, error)
	ParamsValue                    *chaincfg.Params
}

var _ NodeService = (*MockNodeService)(nil)

func (m *MockNodeService) CreateWallet(ctx context.Context, name string) (*WalletInfo, error) {
	return m.CreateWalletFn(ctx, name)
}
func (m *MockNodeService) Wallet(name string) NodeService {
	if m.WalletFn == nil {
		return m
	}
	return m.WalletFn(name)
}
func (m *MockNodeService) GetNewAddress(ctx context.Context) (btcutil.Address, error) {
	return m.GetNewAddressFn(ctx)
}
func (m *MockNodeService) GenerateToAddress(ctx context.Context, count int64, addr btcutil.Address) ([]chainhash.Hash, error) {
	return m.GenerateToAddressFn(ctx, count, addr)
}
func (m *MockNodeService) GetBalance(ctx context.Context) (btcutil.Amount, error) {
	return m.GetBalanceFn(ctx)
}
func (m *MockNodeService) ListUnspent(ctx context.Context) ([]UTXO, error) {
	return m.ListUnspentFn(ctx)
}
func (m *MockNodeService) CreateRawTransaction(ctx context.Context, inputs []wire.OutPoint, outputs map[string]btcutil.Amount) (string, error) {
	return m.CreateRawTransactionFn(ctx, inputs, outputs)
}
func (m *MockNodeService) FundRawTransaction(ctx context.Context, rawTxHex string, opts FundOptions) (*FundResult, error) {
	return m.FundRawTransactionFn(ctx, rawTxHex, opts)
}
func (m *MockNodeService) SignRawTransactionWithWallet(ctx context.Context, rawTxHex string) (*SignResult, error) {
	return m.SignRawTransactionWithWalletFn(ctx, rawTxHex)
}
func (m *MockNodeService) SendRawTransaction(ctx context.Context, signedTxHex string) (*chainhash.Hash, error) {
	return m.SendRawTransactionFn(ctx, signedTxHex)
}
func (m *MockNodeService) Params() *chaincfg.Params {
	if m.ParamsValue == nil {
		return &chaincfg.RegressionNetParams
	}
	return m.ParamsValue
}

//go:build e2e

package network

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regtestClient() *RPCClient {
	preset := NetworkPresets["regtest"]
	preset.Network = "regtest"
	return NewRPCClient(preset)
}

func skipIfUnavailable(t *testing.T, client *RPCClient) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var height uint64
	if err := client.Call(ctx, "getblockcount", nil, &height); err != nil {
		t.Skip("regtest node unavailable:", err)
	}
}

// e2eWallet creates a fresh wallet and mines enough blocks to make its
// coinbase outputs spendable.
func e2eWallet(t *testing.T, client *RPCClient) (NodeService, btcutil.Address) {
	t.Helper()
	ctx := context.Background()
	name := fmt.Sprintf("e2e_%s_%d", t.Name(), time.Now().UnixNano())
	_, err := client.CreateWallet(ctx, name)
	require.NoError(t, err)
	wallet := client.Wallet(name)

	addr, err := wallet.GetNewAddress(ctx)
	require.NoError(t, err)
	_, err = wallet.GenerateToAddress(ctx, 101, addr)
	require.NoError(t, err)
	return wallet, addr
}

func TestE2E_WalletBootstrap(t *testing.T) {
	client := regtestClient()
	skipIfUnavailable(t, client)

	wallet, _ := e2eWallet(t, client)
	balance, err := wallet.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Greater(t, balance, btcutil.Amount(0))
}

func TestE2E_CreateWalletTwice(t *testing.T) {
	client := regtestClient()
	skipIfUnavailable(t, client)

	ctx := context.Background()
	name := fmt.Sprintf("e2e_twice_%d", time.Now().UnixNano())
	_, err := client.CreateWallet(ctx, name)
	require.NoError(t, err)
	_, err = client.CreateWallet(ctx, name)
	require.Error(t, err)
	assert.True(t, IsWalletExists(err), "got %v", err)
}

func TestE2E_SpendChain(t *testing.T) {
	client := regtestClient()
	skipIfUnavailable(t, client)

	ctx := context.Background()
	wallet, _ := e2eWallet(t, client)

	utxos, err := wallet.ListUnspent(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, utxos)

	dest, err := wallet.GetNewAddress(ctx)
	require.NoError(t, err)

	in := wire.OutPoint{Hash: utxos[0].TxID, Index: utxos[0].Vout}
	raw, err := wallet.CreateRawTransaction(ctx, []wire.OutPoint{in},
		map[string]btcutil.Amount{dest.EncodeAddress(): btcutil.Amount(5 * btcutil.SatoshiPerBitcoin)})
	require.NoError(t, err)

	funded, err := wallet.FundRawTransaction(ctx, raw, FundOptions{
		FeeRate:        decimal.RequireFromString("0.0001"),
		ChangePosition: 1,
	})
	require.NoError(t, err)
	assert.Greater(t, funded.Fee, btcutil.Amount(0))
	assert.Equal(t, 1, funded.ChangePosition)

	signed, err := wallet.SignRawTransactionWithWallet(ctx, funded.Hex)
	require.NoError(t, err)
	require.True(t, signed.Complete, "sign errors: %v", signed.Errors)

	txid, err := wallet.SendRawTransaction(ctx, signed.Hex)
	require.NoError(t, err)
	assert.NotNil(t, txid)

	_, err = wallet.SendRawTransaction(ctx, "00")
	assert.ErrorIs(t, err, ErrBroadcastRejected)
}

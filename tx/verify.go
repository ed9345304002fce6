package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// DecodeTx parses a hex-encoded transaction as returned by the node.
func DecodeTx(rawHex string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	msg := wire.NewMsgTx(wire.TxVersion)
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	return msg, nil
}

// VerifyOutput checks that output index of the transaction pays amount to
// dest.
func VerifyOutput(rawHex string, index uint32, dest btcutil.Address, amount btcutil.Amount) error {
	if dest == nil {
		return fmt.Errorf("%w: destination", ErrNilParam)
	}
	msg, err := DecodeTx(rawHex)
	if err != nil {
		return err
	}
	if int(index) >= len(msg.TxOut) {
		return fmt.Errorf("%w: index %d, transaction has %d outputs",
			ErrOutputIndexMismatch, index, len(msg.TxOut))
	}

	script, err := txscript.PayToAddrScript(dest)
	if err != nil {
		return fmt.Errorf("%w: destination script: %w", ErrInvalidTx, err)
	}
	out := msg.TxOut[index]
	if !bytes.Equal(out.PkScript, script) {
		return fmt.Errorf("%w: output %d does not pay %s", ErrOutputIndexMismatch, index, dest)
	}
	if btcutil.Amount(out.Value) != amount {
		return fmt.Errorf("%w: output %d pays %s, expected %s",
			ErrOutputIndexMismatch, index, btcutil.Amount(out.Value), amount)
	}
	return nil
}

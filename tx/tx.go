// Package tx holds the transaction values passed between pipeline stages and
// the pure steps that need no node: output selection, request building and
// output verification.
package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// OutputReference identifies a spendable output.
type OutputReference struct {
	TxID  chainhash.Hash `json:"txid"`
	Index uint32         `json:"vout"`
}

// OutPoint converts the reference to its wire form.
func (r OutputReference) OutPoint() wire.OutPoint {
	return wire.OutPoint{Hash: r.TxID, Index: r.Index}
}

func (r OutputReference) String() string {
	return fmt.Sprintf("%s:%d", r.TxID, r.Index)
}

// UnsignedTransaction is a transaction request before funding: exactly one
// input and one payment output.
type UnsignedTransaction struct {
	Inputs  []OutputReference         // spent outputs, in order
	Outputs map[string]btcutil.Amount // encoded address -> amount

	// Destination and Amount repeat the single output entry in decoded form
	// so the funded transaction can be checked against it.
	Destination btcutil.Address
	Amount      btcutil.Amount

	// Hex is the node's serialization, empty until createrawtransaction.
	Hex string
}

// Serialized returns a copy of t carrying the node's serialization.
func (t *UnsignedTransaction) Serialized(hex string) *UnsignedTransaction {
	out := *t
	out.Inputs = append([]OutputReference(nil), t.Inputs...)
	out.Outputs = make(map[string]btcutil.Amount, len(t.Outputs))
	for addr, amt := range t.Outputs {
		out.Outputs[addr] = amt
	}
	out.Hex = hex
	return &out
}

// OutPoints returns the inputs in wire form.
func (t *UnsignedTransaction) OutPoints() []wire.OutPoint {
	ops := make([]wire.OutPoint, len(t.Inputs))
	for i, in := range t.Inputs {
		ops[i] = in.OutPoint()
	}
	return ops
}

// FundedTransaction is an unsigned transaction with fee and change applied.
type FundedTransaction struct {
	Hex            string
	Fee            btcutil.Amount
	FeeRate        string // BTC/kvB, as sent to the node
	ChangePosition int    // -1 when the node added no change output
	PaymentIndex   uint32 // verified index of the payment output
	Funded         bool
}

// SignedTransaction is the wallet-signed serialization. Only a Complete
// transaction may be broadcast.
type SignedTransaction struct {
	Hex          string
	Complete     bool
	PaymentIndex uint32
}

// PipelineResult is the outcome of one completed pipeline run.
type PipelineResult struct {
	TxID             chainhash.Hash
	OutputIndex      uint32 // index of the payment output in TxID
	Fee              btcutil.Amount
	ConfirmingBlocks []chainhash.Hash
}

// Spend returns the reference to the run's payment output, the input of a
// chained run.
func (r *PipelineResult) Spend() OutputReference {
	return OutputReference{TxID: r.TxID, Index: r.OutputIndex}
}

package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrNoSpendableOutput indicates the unspent listing has no usable entry.
	ErrNoSpendableOutput = errors.New("tx: no spendable output")

	// ErrInvalidAmount indicates a payment amount that is zero, negative or
	// above the maximum money supply.
	ErrInvalidAmount = errors.New("tx: invalid amount")

	// ErrInvalidTx indicates a serialized transaction could not be decoded.
	ErrInvalidTx = errors.New("tx: invalid transaction")

	// ErrOutputIndexMismatch indicates the output at the expected index does
	// not pay the expected destination and amount.
	ErrOutputIndexMismatch = errors.New("tx: output index mismatch")
)

package pipeline

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/tx"
)

var (
	// ErrIncompleteSignature indicates the wallet could not sign every input.
	ErrIncompleteSignature = errors.New("pipeline: incomplete signature")

	// ErrInvalidBlockCount indicates a confirmation request for fewer than one block.
	ErrInvalidBlockCount = errors.New("pipeline: block count must be at least 1")

	// ErrInvalidFeeRate indicates a fee rate that is zero or negative.
	ErrInvalidFeeRate = errors.New("pipeline: fee rate must be positive")
)

// Kind classifies the error that ended a pipeline run.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnectionFailed
	KindNetworkMismatch
	KindNoSpendableOutput
	KindInvalidAmount
	KindFundingFailed
	KindIncompleteSignature
	KindBroadcastRejected
	KindRemoteError
	KindInvalidBlockCount
	KindOutputIndexMismatch
)

var kindNames = map[Kind]string{
	KindUnknown:             "Unknown",
	KindConnectionFailed:    "ConnectionFailed",
	KindNetworkMismatch:     "NetworkMismatch",
	KindNoSpendableOutput:   "NoSpendableOutput",
	KindInvalidAmount:       "InvalidAmount",
	KindFundingFailed:       "FundingFailed",
	KindIncompleteSignature: "IncompleteSignature",
	KindBroadcastRejected:   "BroadcastRejected",
	KindRemoteError:         "RemoteError",
	KindInvalidBlockCount:   "InvalidBlockCount",
	KindOutputIndexMismatch: "OutputIndexMismatch",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// KindOf classifies err. Stage-specific sentinels are checked before the
// generic transport and remote categories they may wrap.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, network.ErrNetworkMismatch):
		return KindNetworkMismatch
	case errors.Is(err, tx.ErrNoSpendableOutput):
		return KindNoSpendableOutput
	case errors.Is(err, tx.ErrInvalidAmount), errors.Is(err, ErrInvalidFeeRate):
		return KindInvalidAmount
	case errors.Is(err, network.ErrFundingFailed):
		return KindFundingFailed
	case errors.Is(err, ErrIncompleteSignature):
		return KindIncompleteSignature
	case errors.Is(err, network.ErrBroadcastRejected):
		return KindBroadcastRejected
	case errors.Is(err, ErrInvalidBlockCount):
		return KindInvalidBlockCount
	case errors.Is(err, tx.ErrOutputIndexMismatch):
		return KindOutputIndexMismatch
	case errors.Is(err, network.ErrConnectionFailed):
		return KindConnectionFailed
	}
	var remote *network.RemoteError
	if errors.As(err, &remote) {
		return KindRemoteError
	}
	return KindUnknown
}

// StageError is the terminal Failed state of a run: the stage that failed,
// the classified kind and the underlying error.
type StageError struct {
	Run   int // 1-based run number, 0 outside a run
	Stage State
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	if e.Run > 0 {
		return fmt.Sprintf("run=%d stage=%s kind=%s: %v", e.Run, e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("stage=%s kind=%s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

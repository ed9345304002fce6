// Package pipeline sequences the stages that take a transaction from an
// unspent output to a confirmed block, and chains two such runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/tx"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type options struct {
	log      *zap.Logger
	metrics  *Metrics
	selector tx.Selector
}

// Option configures a Pipeline or an Orchestrator.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records stage timings and outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSelector replaces the input selection rule. The default is
// tx.FirstSpendable.
func WithSelector(s tx.Selector) Option {
	return func(o *options) {
		if s != nil {
			o.selector = s
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop(), selector: tx.FirstSpendable}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Request parameterizes one pipeline run.
type Request struct {
	// Input is the output to spend. When nil the run starts at Selecting
	// and picks one from the node's unspent listing.
	Input *tx.OutputReference

	Destination btcutil.Address
	Amount      btcutil.Amount
	FeeRate     decimal.Decimal // BTC/kvB

	// ConfirmTo receives the coinbase of the ConfirmBlocks mined after
	// broadcast.
	ConfirmTo     btcutil.Address
	ConfirmBlocks int64
}

// Pipeline runs Select, Build, Fund, Sign, Broadcast and Confirm in order
// against one node. It is not safe for concurrent use.
type Pipeline struct {
	options
	node network.NodeService

	state   State
	entered time.Time
	history []State
}

// New creates a pipeline bound to node.
func New(node network.NodeService, opts ...Option) *Pipeline {
	return &Pipeline{options: newOptions(opts), node: node}
}

// State returns the current state.
func (p *Pipeline) State() State {
	return p.state
}

// History returns the states entered by the last run, in order.
func (p *Pipeline) History() []State {
	return append([]State(nil), p.history...)
}

// Run executes one pipeline run. On failure the returned error is a
// *StageError naming the stage and kind, and the pipeline is left in
// StateFailed.
func (p *Pipeline) Run(ctx context.Context, req Request) (*tx.PipelineResult, error) {
	p.state = StateIdle
	p.history = p.history[:0]

	if req.ConfirmBlocks < 1 {
		return nil, p.fail(fmt.Errorf("%w: got %d", ErrInvalidBlockCount, req.ConfirmBlocks))
	}
	// Mining is the last step; a bad reward address must not surface after
	// the payment is already broadcast.
	if err := network.CheckAddress(req.ConfirmTo, p.node.Params()); err != nil {
		return nil, p.fail(fmt.Errorf("confirmation address: %w", err))
	}

	var input tx.OutputReference
	if req.Input == nil {
		p.transition(StateSelecting)
		utxos, err := p.node.ListUnspent(ctx)
		if err != nil {
			return nil, p.fail(err)
		}
		if input, err = p.selector(utxos); err != nil {
			return nil, p.fail(err)
		}
		p.log.Info("selected input", zap.Stringer("outpoint", input), zap.Int("listed", len(utxos)))
	} else {
		input = *req.Input
	}

	p.transition(StateBuilding)
	unsigned, err := Build(ctx, p.node, input, req.Destination, req.Amount)
	if err != nil {
		return nil, p.fail(err)
	}
	p.log.Info("raw transaction created",
		zap.Stringer("input", input),
		zap.Stringer("destination", req.Destination),
		zap.Stringer("amount", req.Amount))

	p.transition(StateFunding)
	funded, err := Fund(ctx, p.node, unsigned, req.FeeRate)
	if err != nil {
		return nil, p.fail(err)
	}
	p.log.Info("transaction funded",
		zap.Stringer("fee", funded.Fee),
		zap.String("fee_rate", funded.FeeRate),
		zap.Int("change_position", funded.ChangePosition))

	p.transition(StateSigning)
	signed, err := Sign(ctx, p.node, funded)
	if err != nil {
		return nil, p.fail(err)
	}
	p.log.Info("transaction signed")

	p.transition(StateBroadcasting)
	txid, err := Broadcast(ctx, p.node, signed)
	if err != nil {
		return nil, p.fail(err)
	}
	p.metrics.broadcast(funded.Fee)
	p.log.Info("transaction broadcast", zap.Stringer("txid", txid))

	p.transition(StateConfirming)
	blocks, err := Confirm(ctx, p.node, req.ConfirmTo, req.ConfirmBlocks)
	if err != nil {
		return nil, p.fail(err)
	}
	p.metrics.mined(len(blocks))
	p.log.Info("transaction confirmed",
		zap.Stringer("txid", txid),
		zap.Int("blocks", len(blocks)),
		zap.Stringer("tip", blocks[len(blocks)-1]))

	p.transition(StateDone)
	return &tx.PipelineResult{
		TxID:             *txid,
		OutputIndex:      signed.PaymentIndex,
		Fee:              funded.Fee,
		ConfirmingBlocks: blocks,
	}, nil
}

// transition moves to s, closing the timing of the state being left.
func (p *Pipeline) transition(s State) {
	if !CanTransition(p.state, s) {
		p.log.DPanic("invalid state transition", zap.Stringer("from", p.state), zap.Stringer("to", s))
	}
	now := time.Now()
	if p.state != StateIdle {
		p.metrics.observeStage(p.state, now.Sub(p.entered))
	}
	p.log.Debug("state transition", zap.Stringer("from", p.state), zap.Stringer("to", s))
	p.state = s
	p.entered = now
	p.history = append(p.history, s)
}

// fail records err against the current stage and moves to StateFailed.
func (p *Pipeline) fail(err error) error {
	se := &StageError{Stage: p.state, Kind: KindOf(err), Err: err}
	p.metrics.failure(se.Stage, se.Kind)
	p.log.Error("pipeline failed",
		zap.Stringer("stage", se.Stage),
		zap.Stringer("kind", se.Kind),
		zap.Error(err))
	p.transition(StateFailed)
	return se
}

package pipeline

import (
	"context"
	"errors"

	"github.com/bitfsorg/txchain-go/network"
	"github.com/bitfsorg/txchain-go/tx"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Plan holds the parameters of a two-run chain.
type Plan struct {
	Wallet         string
	FirstAmount    btcutil.Amount
	SecondAmount   btcutil.Amount
	FeeRate        decimal.Decimal // BTC/kvB
	MaturityBlocks int64           // mined before run 1; 0 skips mining

	IntermediateBlocks int64 // confirm run 1 before run 2 spends it
	FinalBlocks        int64
}

// Report is the outcome of a completed chain.
type Report struct {
	Wallet  string
	Balance btcutil.Amount // after bootstrap mining
	First   *tx.PipelineResult
	Second  *tx.PipelineResult
}

// Orchestrator prepares a wallet and runs the pipeline twice, spending the
// first run's payment output in the second run.
type Orchestrator struct {
	options
	node network.NodeService
	plan Plan
	opts []Option
}

// NewOrchestrator creates an orchestrator that owns node for the whole chain.
func NewOrchestrator(node network.NodeService, plan Plan, opts ...Option) *Orchestrator {
	return &Orchestrator{options: newOptions(opts), node: node, plan: plan, opts: opts}
}

// Run bootstraps the wallet, then runs the pipeline from the wallet's unspent
// listing and again from the first run's payment output. The first error is
// returned as a *StageError; nothing is rolled back.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{Wallet: o.plan.Wallet}

	wallet, first, second, err := o.bootstrap(ctx, report)
	if err != nil {
		se := &StageError{Stage: StateBootstrapping, Kind: KindOf(err), Err: err}
		o.metrics.failure(se.Stage, se.Kind)
		o.log.Error("bootstrap failed", zap.Stringer("kind", se.Kind), zap.Error(err))
		return nil, se
	}

	p := New(wallet, o.opts...)

	o.log.Info("starting run", zap.Int("run", 1))
	r1, err := p.Run(ctx, Request{
		Destination:   first,
		Amount:        o.plan.FirstAmount,
		FeeRate:       o.plan.FeeRate,
		ConfirmTo:     first,
		ConfirmBlocks: o.plan.IntermediateBlocks,
	})
	if err != nil {
		return nil, withRun(err, 1)
	}
	report.First = r1
	o.log.Info("first transaction", zap.Stringer("txid", r1.TxID))

	spend := r1.Spend()
	o.log.Info("starting run", zap.Int("run", 2), zap.Stringer("input", spend))
	r2, err := p.Run(ctx, Request{
		Input:         &spend,
		Destination:   second,
		Amount:        o.plan.SecondAmount,
		FeeRate:       o.plan.FeeRate,
		ConfirmTo:     first,
		ConfirmBlocks: o.plan.FinalBlocks,
	})
	if err != nil {
		return nil, withRun(err, 2)
	}
	report.Second = r2
	o.log.Info("second transaction", zap.Stringer("txid", r2.TxID))

	return report, nil
}

// bootstrap creates and loads the wallet, derives the two payment addresses
// and mines the first address's coinbase to maturity.
func (o *Orchestrator) bootstrap(ctx context.Context, report *Report) (network.NodeService, btcutil.Address, btcutil.Address, error) {
	info, err := o.node.CreateWallet(ctx, o.plan.Wallet)
	switch {
	case network.IsWalletExists(err):
		o.log.Warn("wallet already exists, reusing it", zap.String("wallet", o.plan.Wallet), zap.Error(err))
	case err != nil:
		return nil, nil, nil, err
	default:
		o.log.Info("wallet created", zap.String("wallet", info.Name))
		if info.Warning != "" {
			o.log.Warn("createwallet warning", zap.String("wallet", info.Name), zap.String("warning", info.Warning))
		}
	}

	wallet := o.node.Wallet(o.plan.Wallet)
	first, err := wallet.GetNewAddress(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	second, err := wallet.GetNewAddress(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	o.log.Info("addresses generated", zap.Stringer("first", first), zap.Stringer("second", second))

	if o.plan.MaturityBlocks > 0 {
		blocks, err := Confirm(ctx, wallet, first, o.plan.MaturityBlocks)
		if err != nil {
			return nil, nil, nil, err
		}
		o.metrics.mined(len(blocks))
		o.log.Info("coinbase matured", zap.Int("blocks", len(blocks)))
	}

	balance, err := wallet.GetBalance(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	report.Balance = balance
	o.log.Info("wallet balance", zap.Stringer("balance", balance))

	return wallet, first, second, nil
}

func withRun(err error, run int) error {
	var se *StageError
	if errors.As(err, &se) {
		se.Run = run
	}
	return err
}

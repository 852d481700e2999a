package account

import (
	"fmt"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/log"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
	"github.com/CollinsJawar/aztec-nr/types"
)

// Phase is the sequencer's execution phase. Setup is initial; Completed
// and Rejected are terminal.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseApp
	PhaseCompleted
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseApp:
		return "app"
	case PhaseCompleted:
		return "completed"
	case PhaseRejected:
		return "rejected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// IsValidFn is the account's authorization scheme: it decides whether
// the account consents to a message hash being executed. Each concrete
// account implementation supplies its own (single key signature,
// multisig, whatever); the sequencer never implements one.
type IsValidFn func(ctx types.ExecutionContext, messageHash common.Hash) bool

// Account sequences an account's entrypoint execution and verifies
// authorization witnesses, polymorphic over the injected predicate.
// One Account serves one attempt: once the phase is terminal the
// entrypoint cannot run again.
type Account struct {
	ctx     types.ExecutionContext
	isValid IsValidFn
	phase   Phase
}

func NewAccount(ctx types.ExecutionContext, isValid IsValidFn) *Account {
	return &Account{ctx: ctx, isValid: isValid, phase: PhaseSetup}
}

func (a *Account) Phase() Phase {
	return a.phase
}

// Entrypoint runs the fee payload under the setup phase, signals end of
// setup, then runs the app payload under the app phase. Each phase's
// payload hash must pass the validity predicate before any of its calls
// execute; the first failure rejects the whole attempt with no side
// effects from the unexecuted remainder.
func (a *Account) Entrypoint(appPayload *types.AppPayload, feePayload *types.FeePayload) error {
	if a.isValid == nil {
		return nrerrors.ErrWNoValidityPredicate
	}
	if a.phase != PhaseSetup {
		return fmt.Errorf("%w: phase %s", nrerrors.ErrWEntrypointConsumed, a.phase)
	}

	feeHash := feePayload.Hash()
	if !a.isValid(a.ctx, feeHash) {
		a.phase = PhaseRejected
		return fmt.Errorf("%w: %s", nrerrors.ErrWFeeNotAuthorized, feeHash.StringShort())
	}
	if err := a.execute(feePayload.Calls); err != nil {
		a.phase = PhaseRejected
		return err
	}
	a.ctx.EndSetup()
	a.phase = PhaseApp
	log.Debug(log.AccountMonitoring, "setup phase done", "account", a.ctx.ThisAddress().StringShort(), "fee_hash", feeHash.StringShort())

	appHash := appPayload.Hash()
	if !a.isValid(a.ctx, appHash) {
		a.phase = PhaseRejected
		return fmt.Errorf("%w: %s", nrerrors.ErrWAppNotAuthorized, appHash.StringShort())
	}
	if err := a.execute(appPayload.Calls); err != nil {
		a.phase = PhaseRejected
		return err
	}
	a.phase = PhaseCompleted
	log.Debug(log.AccountMonitoring, "app phase done", "account", a.ctx.ThisAddress().StringShort(), "app_hash", appHash.StringShort())
	return nil
}

func (a *Account) execute(calls []types.FunctionCall) error {
	for i := range calls {
		if err := a.ctx.Call(calls[i]); err != nil {
			return fmt.Errorf("%w: call %d to %s: %v", nrerrors.ErrWCallFailed, i, calls[i].Target.StringShort(), err)
		}
	}
	return nil
}

// VerifyPrivateAuthwit checks that the current caller is entitled to
// have innerHash executed on this account's behalf, and returns the
// fixed success selector. The message hash is siloed by caller
// identity, chain and version: a witness granted to one consumer cannot
// be replayed by another consumer of the same inner hash.
func (a *Account) VerifyPrivateAuthwit(innerHash common.Hash) (types.Selector, error) {
	if a.isValid == nil {
		return 0, nrerrors.ErrWNoValidityPredicate
	}
	messageHash := ComputeAuthwitMessageHash(a.ctx.MsgSender(), a.ctx.ChainID(), a.ctx.Version(), innerHash)
	if !a.isValid(a.ctx, messageHash) {
		return 0, fmt.Errorf("%w: inner %s consumer %s", nrerrors.ErrWNotAuthorized, innerHash.StringShort(), a.ctx.MsgSender().StringShort())
	}
	return types.AuthwitValidSelector, nil
}

// ComputeAuthwitMessageHash domain-separates an inner action hash by
// the consuming caller, the chain and the protocol version.
func ComputeAuthwitMessageHash(consumer common.Address, chainID uint64, version uint64, innerHash common.Hash) common.Hash {
	return common.DomainHash(types.GenAuthwitMessage,
		consumer.Bytes(),
		common.Uint64ToBytes(chainID),
		common.Uint64ToBytes(version),
		innerHash.Bytes(),
	)
}

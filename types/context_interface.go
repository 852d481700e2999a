package types

import (
	"github.com/CollinsJawar/aztec-nr/common"
)

// ExecutionContext is the mutable environment of one proof-construction
// attempt. One context exists per attempt and is exclusively owned by
// the sequencing logic for the attempt's duration; execution within an
// attempt is single-threaded and either completes fully or aborts
// atomically at the first failure.
type ExecutionContext interface {
	// SetMaxBlockNumber instructs the verifying environment to reject
	// the attempt if it is included against a block newer than n. Calls
	// only ever tighten the bound; a later call with a larger n is a
	// no-op.
	SetMaxBlockNumber(n uint64)

	// EndSetup marks the end of the setup (fee) phase. Resource
	// accounting for everything after this point belongs to the app
	// phase. Must be signaled exactly once per attempt.
	EndSetup()

	// ThisAddress is the account the attempt executes as.
	ThisAddress() common.Address

	// MsgSender is the calling contract, or the zero address at the top
	// of the call stack.
	MsgSender() common.Address

	// ChainID returns the chain identifier the attempt is bound to.
	ChainID() uint64

	// Version returns the protocol version the attempt is bound to.
	Version() uint64

	// GetHeader returns the previously-agreed historical header the
	// attempt anchors its reads to.
	GetHeader() *BlockHeader

	// Call executes one entry of a payload call list. An error aborts
	// the attempt; no further calls of the list run.
	Call(call FunctionCall) error
}

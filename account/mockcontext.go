package account

import (
	"fmt"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
	"github.com/CollinsJawar/aztec-nr/types"
)

// MockContext implements types.ExecutionContext with recorded side
// effects, for tests across the module.
type MockContext struct {
	Address common.Address
	Sender  common.Address
	Chain   uint64
	Vers    uint64
	Header  *types.BlockHeader

	// MaxBlockNumber is the tightest bound seen so far; MaxBlockSet
	// records whether any bound was set at all.
	MaxBlockNumber uint64
	MaxBlockSet    bool

	// Calls records every executed call in order. SetupEndCalls counts
	// EndSetup signals; SetupEndIndex is the call count at the first
	// signal.
	Calls         []types.FunctionCall
	SetupEndCalls int
	SetupEndIndex int

	// FailSelector makes Call fail for matching calls.
	FailSelector types.Selector
}

func NewMockContext(header *types.BlockHeader) *MockContext {
	return &MockContext{
		Chain:  1,
		Vers:   1,
		Header: header,
	}
}

func (mc *MockContext) SetMaxBlockNumber(n uint64) {
	if !mc.MaxBlockSet || n < mc.MaxBlockNumber {
		mc.MaxBlockNumber = n
		mc.MaxBlockSet = true
	}
}

func (mc *MockContext) EndSetup() {
	if mc.SetupEndCalls == 0 {
		mc.SetupEndIndex = len(mc.Calls)
	}
	mc.SetupEndCalls++
}

func (mc *MockContext) ThisAddress() common.Address {
	return mc.Address
}

func (mc *MockContext) MsgSender() common.Address {
	return mc.Sender
}

func (mc *MockContext) ChainID() uint64 {
	return mc.Chain
}

func (mc *MockContext) Version() uint64 {
	return mc.Vers
}

func (mc *MockContext) GetHeader() *types.BlockHeader {
	return mc.Header
}

func (mc *MockContext) Call(call types.FunctionCall) error {
	if mc.FailSelector != 0 && call.Selector == mc.FailSelector {
		return fmt.Errorf("selector %08x configured to fail", uint32(call.Selector))
	}
	mc.Calls = append(mc.Calls, call)
	return nil
}

// ValidateInclusion is what the verifying environment does with the
// max-block bound: reject the attempt when included past it.
func (mc *MockContext) ValidateInclusion(atBlock uint64) error {
	if mc.MaxBlockSet && atBlock > mc.MaxBlockNumber {
		return fmt.Errorf("%w: included at %d, max usable %d", nrerrors.ErrKStaleProof, atBlock, mc.MaxBlockNumber)
	}
	return nil
}

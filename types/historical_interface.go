package types

import (
	"github.com/CollinsJawar/aztec-nr/common"
)

// HistoricalReader is a constrained point lookup into a versioned
// key-value store addressed by (owner, slot) as of a header's block.
// The read is bound to the header's commitment: an implementation must
// refuse to answer for a header whose state root does not match the
// committed root for that block, so a verifier can trust the value
// reflects real state.
type HistoricalReader interface {
	ReadAt(header *BlockHeader, owner common.Address, slot common.Hash) ([]byte, error)
}

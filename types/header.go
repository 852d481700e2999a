package types

import (
	"bytes"
	"encoding/json"

	"github.com/CollinsJawar/aztec-nr/common"
)

// BlockHeader is a previously-agreed block descriptor: a block number
// plus the commitment data needed to authorize a historical read as of
// that block. Produced by the execution environment, consumed and never
// mutated by resolvers.
type BlockHeader struct {
	ParentHash  common.Hash `json:"parent"`
	StateRoot   common.Hash `json:"state_root"`
	BlockNumber uint64      `json:"block_number"`
	Timestamp   uint64      `json:"timestamp"`
}

// Encode returns the canonical byte representation of the header.
func (h *BlockHeader) Encode() []byte {
	var buffer bytes.Buffer
	buffer.Write(h.ParentHash.Bytes())
	buffer.Write(h.StateRoot.Bytes())
	buffer.Write(common.Uint64ToBytes(h.BlockNumber))
	buffer.Write(common.Uint64ToBytes(h.Timestamp))
	return buffer.Bytes()
}

// Hash returns the header hash.
func (h *BlockHeader) Hash() common.Hash {
	return common.Blake2Hash(h.Encode())
}

func (h *BlockHeader) String() string {
	jsonByte, _ := json.Marshal(h)
	return string(jsonByte)
}

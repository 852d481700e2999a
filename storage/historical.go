package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/log"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
	"github.com/CollinsJawar/aztec-nr/types"
)

// Key schema. Block numbers are big-endian so lexicographic key order
// matches numeric order, which GetFloor relies on.
var (
	prefixRoot   = []byte("r|")
	prefixHeader = []byte("h|")
	prefixValue  = []byte("v|")
)

func blockSuffix(block uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, block)
	return b
}

func valuePrefix(owner common.Address, slot common.Hash) []byte {
	key := make([]byte, 0, len(prefixValue)+64)
	key = append(key, prefixValue...)
	key = append(key, owner.Bytes()...)
	key = append(key, slot.Bytes()...)
	return key
}

type pendingWrite struct {
	owner common.Address
	slot  common.Hash
	value []byte
}

// HistoricalStore is a versioned key-value store: values are addressed
// by (owner, slot) and committed per block, each block sealed under a
// state root carried by its header. Reads through a header are
// constrained - the header's state root must match the committed root
// for its block - so a resolver can treat the returned value as real
// state as of that block.
type HistoricalStore struct {
	db      *PersistenceStore
	pending []pendingWrite
}

// NewHistoricalStore opens a HistoricalStore at path, or in memory when
// path is empty.
func NewHistoricalStore(path string) (*HistoricalStore, error) {
	db, err := NewPersistenceStore(path)
	if err != nil {
		return nil, err
	}
	return &HistoricalStore{db: db}, nil
}

// NewMemoryHistoricalStore creates an in-memory store for testing.
func NewMemoryHistoricalStore() *HistoricalStore {
	db, _ := NewMemoryPersistenceStore()
	return &HistoricalStore{db: db}
}

// Put stages a write of value at (owner, slot). Staged writes become
// readable once CommitBlock seals them under a block.
func (hs *HistoricalStore) Put(owner common.Address, slot common.Hash, value []byte) {
	hs.pending = append(hs.pending, pendingWrite{owner: owner, slot: slot, value: append([]byte{}, value...)})
}

// CommitBlock seals all staged writes under blockNumber and returns the
// block's header. The new state root folds the previous root, the block
// number and a digest of the sorted writes, so any header holding it
// commits to the full write history up to that block.
func (hs *HistoricalStore) CommitBlock(blockNumber uint64, timestamp uint64) (*types.BlockHeader, error) {
	prevRoot, prevHash, err := hs.tipAt(blockNumber)
	if err != nil {
		return nil, err
	}

	writes := make([]pendingWrite, len(hs.pending))
	copy(writes, hs.pending)
	sort.Slice(writes, func(i, j int) bool {
		ki := append(writes[i].owner.Bytes(), writes[i].slot.Bytes()...)
		kj := append(writes[j].owner.Bytes(), writes[j].slot.Bytes()...)
		return bytes.Compare(ki, kj) < 0
	})

	var digest bytes.Buffer
	for _, w := range writes {
		digest.Write(w.owner.Bytes())
		digest.Write(w.slot.Bytes())
		digest.Write(common.Uint32ToBytes(uint32(len(w.value))))
		digest.Write(w.value)

		key := append(valuePrefix(w.owner, w.slot), blockSuffix(blockNumber)...)
		if err := hs.db.Put(key, w.value); err != nil {
			return nil, err
		}
	}

	var rootInput bytes.Buffer
	rootInput.Write(prevRoot.Bytes())
	rootInput.Write(blockSuffix(blockNumber))
	rootInput.Write(digest.Bytes())
	root := common.Blake2Hash(rootInput.Bytes())

	header := &types.BlockHeader{
		ParentHash:  prevHash,
		StateRoot:   root,
		BlockNumber: blockNumber,
		Timestamp:   timestamp,
	}
	if err := hs.db.Put(append(prefixRoot, blockSuffix(blockNumber)...), root.Bytes()); err != nil {
		return nil, err
	}
	if err := hs.db.Put(append(prefixHeader, blockSuffix(blockNumber)...), header.Encode()); err != nil {
		return nil, err
	}
	hs.pending = hs.pending[:0]
	log.Debug(log.StorageMonitoring, "committed block", "block", blockNumber, "writes", len(writes), "root", root.StringShort())
	return header, nil
}

// tipAt returns the root and header hash of the newest block strictly
// before blockNumber, or zero values for a fresh store.
func (hs *HistoricalStore) tipAt(blockNumber uint64) (common.Hash, common.Hash, error) {
	if blockNumber == 0 {
		return common.Hash{}, common.Hash{}, nil
	}
	raw, ok, err := hs.db.GetFloor(prefixHeader, blockSuffix(blockNumber-1))
	if err != nil || !ok {
		return common.Hash{}, common.Hash{}, err
	}
	header, err := decodeHeader(raw)
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	return header.StateRoot, header.Hash(), nil
}

// HeaderAt returns the header of the newest committed block at or
// before blockNumber.
func (hs *HistoricalStore) HeaderAt(blockNumber uint64) (*types.BlockHeader, error) {
	raw, ok, err := hs.db.GetFloor(prefixHeader, blockSuffix(blockNumber))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: block %d", nrerrors.ErrSUnknownBlock, blockNumber)
	}
	return decodeHeader(raw)
}

// ReadAt performs a constrained historical read: the value committed at
// (owner, slot) as of header's block. Absent entries read as nil, which
// callers treat as a zero value - "proof of emptiness" goes through the
// same header binding as a proof of presence.
func (hs *HistoricalStore) ReadAt(header *types.BlockHeader, owner common.Address, slot common.Hash) ([]byte, error) {
	rootRaw, ok, err := hs.db.Get(append(prefixRoot, blockSuffix(header.BlockNumber)...))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: block %d", nrerrors.ErrSUnknownBlock, header.BlockNumber)
	}
	if common.BytesToHash(rootRaw) != header.StateRoot {
		return nil, fmt.Errorf("%w: block %d", nrerrors.ErrSHeaderMismatch, header.BlockNumber)
	}
	return hs.readFloor(owner, slot, header.BlockNumber)
}

// ReadLatest returns the newest value at (owner, slot) committed at or
// before blockNumber, with no header binding. This is the unconstrained
// data path hint sources use; nothing read this way may be trusted
// without an independent recheck.
func (hs *HistoricalStore) ReadLatest(owner common.Address, slot common.Hash, blockNumber uint64) ([]byte, error) {
	return hs.readFloor(owner, slot, blockNumber)
}

func (hs *HistoricalStore) readFloor(owner common.Address, slot common.Hash, blockNumber uint64) ([]byte, error) {
	value, ok, err := hs.db.GetFloor(valuePrefix(owner, slot), blockSuffix(blockNumber))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return value, nil
}

// Close releases the underlying database. Staged writes that were
// never sealed by CommitBlock are lost; closing over them is an error.
func (hs *HistoricalStore) Close() error {
	if n := len(hs.pending); n > 0 {
		hs.pending = nil
		hs.db.Close()
		return fmt.Errorf("%w: %d staged writes discarded", nrerrors.ErrSNotCommitted, n)
	}
	return hs.db.Close()
}

func decodeHeader(raw []byte) (*types.BlockHeader, error) {
	if len(raw) != 32+32+8+8 {
		return nil, fmt.Errorf("%w: malformed header record", nrerrors.ErrSUnknownBlock)
	}
	return &types.BlockHeader{
		ParentHash:  common.BytesToHash(raw[0:32]),
		StateRoot:   common.BytesToHash(raw[32:64]),
		BlockNumber: common.BytesToUint64(raw[64:72]),
		Timestamp:   common.BytesToUint64(raw[72:80]),
	}, nil
}

package registry

import (
	"github.com/holiman/uint256"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/types"
)

// CanonicalRegistryAddress is the well-known address of the key
// registry contract. Every deployment of the protocol shares it.
var CanonicalRegistryAddress = common.HexToAddress("0x000000000000000000000000000000000000000000000000000000000000000a")

// DeriveMapSlot combines a base map slot with an account identifier
// into the entry's base storage slot.
func DeriveMapSlot(baseSlot uint64, account common.Address) *uint256.Int {
	h := common.DomainHash(types.GenMapSlot, common.Uint64ToBytes(baseSlot), account.Bytes())
	return new(uint256.Int).SetBytes(h.Bytes())
}

// SlotAt returns base + offset as a storage slot key.
func SlotAt(base *uint256.Int, offset uint64) common.Hash {
	slot := new(uint256.Int).AddUint64(base, offset)
	b := slot.Bytes32()
	return common.BytesToHash(b[:])
}

// EntrySlots returns the storage slots of an account's registry entry:
// one slot per serialized key field, then the trailing commitment slot
// immediately after the array.
func EntrySlots(account common.Address) (fields [types.NumKeyFields]common.Hash, commitment common.Hash) {
	base := DeriveMapSlot(types.KeyRegistryBaseSlot, account)
	for i := uint64(0); i < types.NumKeyFields; i++ {
		fields[i] = SlotAt(base, i)
	}
	commitment = SlotAt(base, types.NumKeyFields)
	return fields, commitment
}

package types

import (
	"github.com/CollinsJawar/aztec-nr/common"
)

// PartialAddress is the portion of an account address derivation that
// does not depend on key material (contract class, initialization
// arguments and deployment salt, pre-hashed by the deployer).
type PartialAddress common.Hash

func (p PartialAddress) Bytes() []byte {
	return common.Hash(p).Bytes()
}

func (p PartialAddress) Hex() string {
	return common.Hash(p).Hex()
}

// DeriveAddress computes the account identifier from a key set and a
// partial address: hash(key set commitment, partial address). The key
// set bound this way is the account's canonical set; it exists for the
// lifetime of the account and serves as the resolution fallback until
// the first rotation is recorded.
func DeriveAddress(keys *PublicKeys, partial PartialAddress) common.Address {
	h := common.DomainHash(GenAddress, keys.Commitment().Bytes(), partial.Bytes())
	return common.BytesToAddress(h.Bytes())
}

// CompleteAddress carries everything needed to re-derive an account
// identifier: the canonical key set, the partial address and the
// derived address itself.
type CompleteAddress struct {
	Address common.Address `json:"address"`
	Keys    PublicKeys     `json:"public_keys"`
	Partial PartialAddress `json:"partial_address"`
}

// NewCompleteAddress derives the address for the given canonical key
// set and partial address.
func NewCompleteAddress(keys *PublicKeys, partial PartialAddress) *CompleteAddress {
	return &CompleteAddress{
		Address: DeriveAddress(keys, partial),
		Keys:    *keys,
		Partial: partial,
	}
}

// Verify re-derives the address and reports whether it matches.
func (ca *CompleteAddress) Verify() bool {
	return DeriveAddress(&ca.Keys, ca.Partial) == ca.Address
}

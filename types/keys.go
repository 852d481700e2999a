package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
)

// PublicKeys is an account's key set: four public key points associated
// one-to-one with the account. A key set is immutable once computed for
// a rotation epoch; a rotation produces a whole new set.
type PublicKeys struct {
	// Npk is the master nullifying public key.
	Npk bn254.G1Affine
	// Ivpk is the master incoming-viewing public key.
	Ivpk bn254.G1Affine
	// Ovpk is the master outgoing-viewing public key.
	Ovpk bn254.G1Affine
	// Tpk is the tagging public key.
	Tpk bn254.G1Affine
}

// Points returns the key points in registry field order.
func (pk *PublicKeys) Points() [NumKeyFields]*bn254.G1Affine {
	return [NumKeyFields]*bn254.G1Affine{&pk.Npk, &pk.Ivpk, &pk.Ovpk, &pk.Tpk}
}

// Serialize returns the fixed-shape registry representation: four
// uncompressed points, KeyFieldLen bytes each.
func (pk *PublicKeys) Serialize() []byte {
	var buffer bytes.Buffer
	for _, p := range pk.Points() {
		raw := p.RawBytes()
		buffer.Write(raw[:])
	}
	return buffer.Bytes()
}

// SerializeFields returns the registry entry as its individual key
// fields, in storage layout order.
func (pk *PublicKeys) SerializeFields() [NumKeyFields][]byte {
	var fields [NumKeyFields][]byte
	for i, p := range pk.Points() {
		raw := p.RawBytes()
		fields[i] = append([]byte{}, raw[:]...)
	}
	return fields
}

// DeserializePublicKeys parses the fixed-shape representation produced
// by Serialize.
func DeserializePublicKeys(data []byte) (*PublicKeys, error) {
	if len(data) != int(NumKeyFields)*KeyFieldLen {
		return nil, fmt.Errorf("%w: got %d bytes", nrerrors.ErrKMalformedKeySet, len(data))
	}
	pk := &PublicKeys{}
	for i, p := range pk.Points() {
		if _, err := p.SetBytes(data[i*KeyFieldLen : (i+1)*KeyFieldLen]); err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", nrerrors.ErrKMalformedKeySet, i, err)
		}
	}
	return pk, nil
}

// Commitment returns the collision-resistant hash binding the full key
// set. The registry stores this hash in place of the key set itself;
// the address derivation consumes it as well. Hashing all four keys at
// once keeps both the historical read and the hint verification down to
// a single commitment each.
func (pk *PublicKeys) Commitment() common.Hash {
	return common.DomainHash(GenKeySetCommitment, pk.Serialize())
}

// Equal reports whether both key sets contain the same four points.
func (pk *PublicKeys) Equal(other *PublicKeys) bool {
	return pk.Npk.Equal(&other.Npk) && pk.Ivpk.Equal(&other.Ivpk) &&
		pk.Ovpk.Equal(&other.Ovpk) && pk.Tpk.Equal(&other.Tpk)
}

func (pk *PublicKeys) String() string {
	return pk.Commitment().StringShort()
}

// MarshalJSON encodes the key set as hex of its serialized form.
func (pk PublicKeys) MarshalJSON() ([]byte, error) {
	return json.Marshal(common.Bytes2Hex(pk.Serialize()))
}

// UnmarshalJSON decodes the hex serialized form.
func (pk *PublicKeys) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := DeserializePublicKeys(common.Hex2Bytes(hexStr))
	if err != nil {
		return err
	}
	*pk = *decoded
	return nil
}

package logs

import (
	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Event is a private event payload with a declared fixed shape. The
// ciphertext size for an event type is fully determined by its declared
// length, so emitted logs do not leak payload-dependent sizes.
type Event interface {
	// Encode returns the canonical byte representation.
	Encode() []byte
	// EncodedLength returns the declared byte length of the shape.
	// Encode must always produce exactly this many bytes.
	EncodedLength() int
}

// RawEvent is an Event over an opaque fixed-size byte payload.
type RawEvent []byte

func (e RawEvent) Encode() []byte {
	return []byte(e)
}

func (e RawEvent) EncodedLength() int {
	return len(e)
}

// EncryptedLogRecord is the product of one build: immutable after
// construction, ownership passes to the raw log emission interface.
type EncryptedLogRecord struct {
	Contract        common.Address
	Randomness      fr.Element
	Ciphertext      []byte
	BindingHash     common.Hash
	MaskedRecipient common.Hash
}

// Emitter is the raw log emission interface: a side-effecting append to
// a per-execution log collection.
type Emitter interface {
	Emit(randomness fr.Element, ciphertext []byte, bindingHash common.Hash)
}

// Collector is an in-memory Emitter, one per execution attempt.
type Collector struct {
	Logs []CollectedLog
}

type CollectedLog struct {
	Randomness  fr.Element
	Ciphertext  []byte
	BindingHash common.Hash
}

func (c *Collector) Emit(randomness fr.Element, ciphertext []byte, bindingHash common.Hash) {
	c.Logs = append(c.Logs, CollectedLog{
		Randomness:  randomness,
		Ciphertext:  append([]byte{}, ciphertext...),
		BindingHash: bindingHash,
	})
}

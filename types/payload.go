package types

import (
	"bytes"
	"encoding/json"

	"github.com/CollinsJawar/aztec-nr/common"
)

// FunctionCall is one entry of a payload call list: a target contract,
// a function selector and the hash of the packed arguments.
type FunctionCall struct {
	Target   common.Address `json:"target"`
	Selector Selector       `json:"selector"`
	ArgsHash common.Hash    `json:"args_hash"`
}

// Encode returns the canonical byte representation of the call.
func (fc *FunctionCall) Encode() []byte {
	var buffer bytes.Buffer
	buffer.Write(fc.Target.Bytes())
	buffer.Write(common.Uint32ToBytes(uint32(fc.Selector)))
	buffer.Write(fc.ArgsHash.Bytes())
	return buffer.Bytes()
}

// Payload is an ordered call list plus a nonce binding the whole list
// into a single authorizable action.
type Payload struct {
	Calls []FunctionCall `json:"calls"`
	Nonce common.Hash    `json:"nonce"`
}

// Encode returns the canonical byte representation of the payload.
func (p *Payload) Encode() []byte {
	var buffer bytes.Buffer
	buffer.Write(common.Uint32ToBytes(uint32(len(p.Calls))))
	for i := range p.Calls {
		buffer.Write(p.Calls[i].Encode())
	}
	buffer.Write(p.Nonce.Bytes())
	return buffer.Bytes()
}

func (p *Payload) String() string {
	jsonByte, _ := json.Marshal(p)
	return string(jsonByte)
}

// AppPayload is the call list executed in the app phase.
type AppPayload struct {
	Payload
}

// Hash returns the domain-separated payload hash submitted to the
// account's validity predicate for the app phase.
func (p *AppPayload) Hash() common.Hash {
	return common.DomainHash(GenAppPayload, p.Encode())
}

// FeePayload is the call list executed in the setup (fee) phase.
type FeePayload struct {
	Payload
}

// Hash returns the domain-separated payload hash submitted to the
// account's validity predicate for the fee phase.
func (p *FeePayload) Hash() common.Hash {
	return common.DomainHash(GenFeePayload, p.Encode())
}

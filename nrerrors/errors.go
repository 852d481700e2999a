package nrerrors

import (
	"errors"
	"strings"
)

// Key registry / resolution (K) Errors
var (
	ErrKInvalidPublicKeysHint = errors.New("K1|InvalidPublicKeysHint: invalid public keys hint for address")
	ErrKRegistryHintMismatch  = errors.New("K2|RegistryHintMismatch: hinted key set commitment does not match the on-chain commitment")
	ErrKStaleProof            = errors.New("K3|StaleProof: header block is beyond the maximum usable block number")
	ErrKMalformedKeySet       = errors.New("K4|MalformedKeySet: serialized key set has the wrong shape")
)

// Authorization witness / sequencing (W) Errors
var (
	ErrWNotAuthorized       = errors.New("W1|MessageNotAuthorized: message not authorized by account")
	ErrWFeeNotAuthorized    = errors.New("W2|FeePayloadNotAuthorized: fee payload hash not authorized by account")
	ErrWAppNotAuthorized    = errors.New("W3|AppPayloadNotAuthorized: app payload hash not authorized by account")
	ErrWEntrypointConsumed  = errors.New("W4|EntrypointConsumed: entrypoint already ran for this attempt")
	ErrWCallFailed          = errors.New("W5|CallFailed: payload call failed during execution")
	ErrWNoValidityPredicate = errors.New("W6|NoValidityPredicate: account constructed without an is-valid predicate")
)

// Historical storage (S) Errors
var (
	ErrSUnknownBlock   = errors.New("S1|UnknownBlock: no committed state for the requested block")
	ErrSHeaderMismatch = errors.New("S2|HeaderMismatch: header commitment does not match the committed state root")
	ErrSNotCommitted   = errors.New("S3|NotCommitted: block has pending writes that were never committed")
)

// Encrypted event log (L) Errors
var (
	ErrLEventShapeMismatch = errors.New("L1|EventShapeMismatch: event payload does not match its declared length")
	ErrLCiphertextTooShort = errors.New("L2|CiphertextTooShort: ciphertext shorter than the ephemeral key prefix")
	ErrLDecryptionFailed   = errors.New("L3|DecryptionFailed: ciphertext did not authenticate under the derived key")
	ErrLNoRandomness       = errors.New("L4|NoRandomness: randomness neither supplied nor generated")
)

// Code returns the short code prefix ("K1", "W3", ...) of one of the
// errors above, or "" for foreign errors.
func Code(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	idx := strings.Index(msg, "|")
	if idx <= 0 || idx > 3 {
		return ""
	}
	return msg[:idx]
}

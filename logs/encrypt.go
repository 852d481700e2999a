package logs

import (
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
)

// Key schedule labels. Stable: changing one is a protocol break.
const (
	labelIncoming = "aznr/log/incoming/v1"
	labelOutgoing = "aznr/log/outgoing/v1"
)

const (
	ephemeralKeyLen = 64 // uncompressed bn254 point
	aeadOverhead    = 16 // poly1305 tag
	outgoingBodyLen = 32 + 32 // esk || recipient
)

func hkdfExpand(ikm []byte, label string, outLen int) []byte {
	h := hkdf.New(sha256.New, ikm, nil, []byte(label))
	out := make([]byte, outLen)
	_, _ = io.ReadFull(h, out)
	return out
}

// aeadFor derives a fresh-per-ephemeral (key, nonce) pair from ikm and
// builds the AEAD. The nonce is derived, not random: ikm already folds
// in the ephemeral key, which never repeats across logs.
func aeadFor(ikm []byte, label string) (cipher.AEAD, []byte, error) {
	okm := hkdfExpand(ikm, label, chacha20poly1305.KeySize+chacha20poly1305.NonceSizeX)
	a, err := chacha20poly1305.NewX(okm[:chacha20poly1305.KeySize])
	if err != nil {
		return nil, nil, err
	}
	return a, okm[chacha20poly1305.KeySize:], nil
}

// incomingIKM is the ECDH secret between the ephemeral key and the
// recipient's incoming-viewing key: esk * Ivpk on the sender side,
// ivsk * Epk on the recipient side.
func incomingIKM(point *bn254.G1Affine, scalar *fr.Element) []byte {
	var s big.Int
	scalar.BigInt(&s)
	var shared bn254.G1Affine
	shared.ScalarMultiplication(point, &s)
	raw := shared.RawBytes()
	return raw[:]
}

// outgoingIKM binds the sender's outgoing app secret to the ephemeral
// key, so only the sender (or whoever it hands the secret to) can
// recover its own outgoing record.
func outgoingIKM(ovskApp *fr.Element, epkRaw []byte) []byte {
	sk := ovskApp.Bytes()
	ikm := make([]byte, 0, len(sk)+len(epkRaw))
	ikm = append(ikm, sk[:]...)
	ikm = append(ikm, epkRaw...)
	return ikm
}

// encrypt produces the fixed-shape ciphertext for an event:
//
//	epk (64) || le4(len ct_in) || ct_in || ct_out
//
// ct_in is the event body sealed to the recipient's incoming-viewing
// key; ct_out is (esk || recipient) sealed under the sender's outgoing
// app secret. Every length is determined by the event's declared shape.
func encrypt(esk *fr.Element, ivpk *bn254.G1Affine, ovskApp *fr.Element, recipient common.Address, event Event) ([]byte, error) {
	body := event.Encode()
	if len(body) != event.EncodedLength() {
		return nil, fmt.Errorf("%w: encoded %d declared %d", nrerrors.ErrLEventShapeMismatch, len(body), event.EncodedLength())
	}

	epk := ephemeralPublicKey(esk)
	epkRaw := epk.RawBytes()

	aeadIn, nonceIn, err := aeadFor(incomingIKM(ivpk, esk), labelIncoming)
	if err != nil {
		return nil, err
	}
	ctIn := aeadIn.Seal(nil, nonceIn, body, epkRaw[:])

	eskBytes := esk.Bytes()
	outBody := make([]byte, 0, outgoingBodyLen)
	outBody = append(outBody, eskBytes[:]...)
	outBody = append(outBody, recipient.Bytes()...)
	aeadOut, nonceOut, err := aeadFor(outgoingIKM(ovskApp, epkRaw[:]), labelOutgoing)
	if err != nil {
		return nil, err
	}
	ctOut := aeadOut.Seal(nil, nonceOut, outBody, epkRaw[:])

	ciphertext := make([]byte, 0, ephemeralKeyLen+4+len(ctIn)+len(ctOut))
	ciphertext = append(ciphertext, epkRaw[:]...)
	ciphertext = append(ciphertext, common.Uint32ToBytes(uint32(len(ctIn)))...)
	ciphertext = append(ciphertext, ctIn...)
	ciphertext = append(ciphertext, ctOut...)
	return ciphertext, nil
}

func ephemeralPublicKey(esk *fr.Element) bn254.G1Affine {
	var s big.Int
	esk.BigInt(&s)
	var epk bn254.G1Affine
	epk.ScalarMultiplicationBase(&s)
	return epk
}

func splitCiphertext(ciphertext []byte) (epk bn254.G1Affine, ctIn []byte, ctOut []byte, err error) {
	if len(ciphertext) < ephemeralKeyLen+4 {
		return epk, nil, nil, nrerrors.ErrLCiphertextTooShort
	}
	if _, err := epk.SetBytes(ciphertext[:ephemeralKeyLen]); err != nil {
		return epk, nil, nil, fmt.Errorf("%w: %v", nrerrors.ErrLCiphertextTooShort, err)
	}
	inLen := int(common.BytesToUint32(ciphertext[ephemeralKeyLen : ephemeralKeyLen+4]))
	rest := ciphertext[ephemeralKeyLen+4:]
	if len(rest) < inLen {
		return epk, nil, nil, nrerrors.ErrLCiphertextTooShort
	}
	return epk, rest[:inLen], rest[inLen:], nil
}

// DecryptIncoming recovers the event body with the recipient's
// incoming viewing secret. A wrong secret fails authentication; it
// never yields the original payload.
func DecryptIncoming(ciphertext []byte, ivsk *fr.Element) ([]byte, error) {
	epk, ctIn, _, err := splitCiphertext(ciphertext)
	if err != nil {
		return nil, err
	}
	epkRaw := epk.RawBytes()
	aeadIn, nonceIn, err := aeadFor(incomingIKM(&epk, ivsk), labelIncoming)
	if err != nil {
		return nil, err
	}
	body, err := aeadIn.Open(nil, nonceIn, ctIn, epkRaw[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", nrerrors.ErrLDecryptionFailed, err)
	}
	return body, nil
}

// DecryptOutgoing recovers (esk, recipient) with the sender's outgoing
// app secret, letting the sender reconstruct its own sent records.
func DecryptOutgoing(ciphertext []byte, ovskApp *fr.Element) (fr.Element, common.Address, error) {
	epk, _, ctOut, err := splitCiphertext(ciphertext)
	if err != nil {
		return fr.Element{}, common.Address{}, err
	}
	epkRaw := epk.RawBytes()
	aeadOut, nonceOut, err := aeadFor(outgoingIKM(ovskApp, epkRaw[:]), labelOutgoing)
	if err != nil {
		return fr.Element{}, common.Address{}, err
	}
	body, err := aeadOut.Open(nil, nonceOut, ctOut, epkRaw[:])
	if err != nil {
		return fr.Element{}, common.Address{}, fmt.Errorf("%w: %v", nrerrors.ErrLDecryptionFailed, err)
	}
	if len(body) != outgoingBodyLen {
		return fr.Element{}, common.Address{}, nrerrors.ErrLDecryptionFailed
	}
	var esk fr.Element
	esk.SetBytes(body[:32])
	return esk, common.BytesToAddress(body[32:]), nil
}

package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// SigAlg names a signature algorithm this module can produce and verify,
// shared across the XMLDSig, JWS, and hybrid engines so a caller picks one
// tag and every strategy understands it.
type SigAlg string

const (
	SigAlgRS256 SigAlg = "RS256" // RSASSA-PKCS1-v1_5 using SHA-256
	SigAlgES256 SigAlg = "ES256" // ECDSA using P-256 and SHA-256
	SigAlgEdDSA SigAlg = "EdDSA" // Ed25519
)

// HashAlg names a digest algorithm the Crypto Primitives Adapter supports.
type HashAlg string

const (
	HashSHA256 HashAlg = "SHA-256"
	// HashSHA3_256 wires in the "SHA-3 candidate" hash family §4.7 names as
	// an Adapter concern, via golang.org/x/crypto/sha3.
	HashSHA3_256 HashAlg = "SHA3-256"
)

// Digest computes the hash of data under the named algorithm.
func Digest(alg HashAlg, data []byte) ([]byte, error) {
	switch alg {
	case HashSHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	case HashSHA3_256:
		sum := sha3.Sum256(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("%w: unknown hash algorithm %q", ErrUnsupportedAlgorithm, alg)
	}
}

// SignatureFamily abstracts one signature algorithm: signing and verifying
// over an already-computed digest (or, for algorithms like EdDSA that do not
// pre-hash, over the full message). New families — including future
// post-quantum ones such as Dilithium, Falcon, or SPHINCS+ — register
// themselves with RegisterSignatureFamily rather than requiring changes to
// the engines that consume them (§4.7, §9).
type SignatureFamily interface {
	// ID is the algorithm tag used in the JOSE header / XMLDSig
	// SignatureMethod for this family.
	ID() SigAlg
	// PreHashed reports whether Sign/Verify operate on a digest (true) or
	// the raw signing input (false, as with Ed25519).
	PreHashed() bool
	Sign(key crypto.Signer, input []byte) ([]byte, error)
	Verify(pub crypto.PublicKey, input []byte, sig []byte) error
}

var signatureFamilies = map[SigAlg]SignatureFamily{
	SigAlgRS256: rs256Family{},
	SigAlgES256: es256Family{},
	SigAlgEdDSA: eddsaFamily{},
}

// RegisterSignatureFamily adds or replaces a signature family, letting a
// caller extend the Crypto Primitives Adapter with an algorithm this module
// does not ship (see §9's quantum-safe extension point).
func RegisterSignatureFamily(f SignatureFamily) {
	signatureFamilies[f.ID()] = f
}

func lookupSignatureFamily(alg SigAlg) (SignatureFamily, error) {
	f, ok := signatureFamilies[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	return f, nil
}

// SignWith signs input (a digest, unless alg is EdDSA) with key under alg.
func SignWith(alg SigAlg, key crypto.Signer, input []byte) ([]byte, error) {
	f, err := lookupSignatureFamily(alg)
	if err != nil {
		return nil, err
	}
	sig, err := f.Sign(key, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	return sig, nil
}

// VerifyWith verifies sig over input against pub under alg. It returns a
// plain bool per §7 (verification does not distinguish failure causes in
// its return value) plus an error only for an unknown algorithm. A public
// key of the wrong type for alg yields (false, nil) like any other failed
// verification.
func VerifyWith(alg SigAlg, pub crypto.PublicKey, input []byte, sig []byte) (bool, error) {
	f, err := lookupSignatureFamily(alg)
	if err != nil {
		return false, err
	}
	if err := f.Verify(pub, input, sig); err != nil {
		return false, nil
	}
	return true, nil
}

type rs256Family struct{}

func (rs256Family) ID() SigAlg     { return SigAlgRS256 }
func (rs256Family) PreHashed() bool { return true }

func (rs256Family) Sign(key crypto.Signer, digest []byte) ([]byte, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("RS256 requires an *rsa.PrivateKey, got %T", key)
	}
	return rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.SHA256, digest)
}

func (rs256Family) Verify(pub crypto.PublicKey, digest []byte, sig []byte) error {
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("RS256 requires an *rsa.PublicKey, got %T", pub)
	}
	return rsa.VerifyPKCS1v15(rsaPub, crypto.SHA256, digest, sig)
}

type es256Family struct{}

func (es256Family) ID() SigAlg     { return SigAlgES256 }
func (es256Family) PreHashed() bool { return true }

func (es256Family) Sign(key crypto.Signer, digest []byte) ([]byte, error) {
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ES256 requires an *ecdsa.PrivateKey, got %T", key)
	}
	return ecdsa.SignASN1(rand.Reader, ecKey, digest)
}

func (es256Family) Verify(pub crypto.PublicKey, digest []byte, sig []byte) error {
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("ES256 requires an *ecdsa.PublicKey, got %T", pub)
	}
	if !ecdsa.VerifyASN1(ecPub, digest, sig) {
		return fmt.Errorf("ECDSA signature verification failed")
	}
	return nil
}

type eddsaFamily struct{}

func (eddsaFamily) ID() SigAlg     { return SigAlgEdDSA }
func (eddsaFamily) PreHashed() bool { return false }

func (eddsaFamily) Sign(key crypto.Signer, message []byte) ([]byte, error) {
	edKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("EdDSA requires an ed25519.PrivateKey, got %T", key)
	}
	return ed25519.Sign(edKey, message), nil
}

func (eddsaFamily) Verify(pub crypto.PublicKey, message []byte, sig []byte) error {
	edPub, ok := pub.(ed25519.PublicKey)
	if !ok {
		return fmt.Errorf("EdDSA requires an ed25519.PublicKey, got %T", pub)
	}
	if !ed25519.Verify(edPub, message, sig) {
		return fmt.Errorf("EdDSA signature verification failed")
	}
	return nil
}

// Standard base64 codec, centralized so every engine encodes signature and
// digest material the same way.
func b64Encode(b []byte) string    { return base64.StdEncoding.EncodeToString(b) }
func b64Decode(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

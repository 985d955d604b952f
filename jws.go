package isomsgsign

// SPDX-License-Identifier: MIT
// Grounded on github.com/go-jose/go-jose/v4, the canonical successor of the
// fork this module's reference corpus carries a go.mod for
// (github.com/unravelin/go-jose); the compact-serialization, Signer/Verifier
// shape mirrors what that corpus's own jose packages expose.

import (
	"crypto"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/l-d-t/isomsgsign/jsoncanon"
)

var sigAlgToJOSE = map[SigAlg]jose.SignatureAlgorithm{
	SigAlgRS256: jose.RS256,
	SigAlgES256: jose.ES256,
	SigAlgEdDSA: jose.EdDSA,
}

// joseAllowedAlgorithms lists every algorithm VerifyJSON will accept from an
// incoming compact JWS header; go-jose/v4 requires verification to name its
// allowed algorithm set explicitly rather than trusting the header's alg.
var joseAllowedAlgorithms = []jose.SignatureAlgorithm{jose.RS256, jose.ES256, jose.EdDSA}

// SignJSON implements §4.4's sign: it canonicalizes msg in signing mode (the
// Signature member is stripped from AppHdr, at every depth, before the JCS
// payload is computed), produces a compact JWS over that payload, and embeds
// the result in AppHdr.Signature.
func SignJSON(msg *Message, alg SigAlg, key crypto.Signer) (*Message, error) {
	if msg.Format != FormatJSON {
		return nil, fmt.Errorf("%w: SignJSON requires a JSON message", ErrInvalidFormat)
	}
	joseAlg, ok := sigAlgToJOSE[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}

	appHdr, err := msg.FindAppHdrJSON()
	if err != nil {
		return nil, err
	}
	if _, exists := appHdr[SignatureSlotName]; exists {
		return nil, ErrAmbiguousSignature
	}

	payload, err := jsoncanon.Canonicalize(msg.JSON, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: joseAlg, Key: key}, (&jose.SignerOptions{}).WithType("JOSE"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	object, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	compact, err := object.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	signed := msg.Clone()
	signedAppHdr, err := signed.FindAppHdrJSON()
	if err != nil {
		return nil, err
	}
	signedAppHdr[SignatureSlotName] = compact

	return signed, nil
}

// StripJSONSignature removes AppHdr.Signature, if present, returning a new
// Message. Re-signing a Signed message is only legal after this call.
func StripJSONSignature(msg *Message) (*Message, error) {
	if msg.Format != FormatJSON {
		return nil, fmt.Errorf("%w: StripJSONSignature requires a JSON message", ErrInvalidFormat)
	}
	out := msg.Clone()
	appHdr, err := out.FindAppHdrJSON()
	if err != nil {
		return nil, err
	}
	delete(appHdr, SignatureSlotName)
	return out, nil
}

// VerifyJSON implements §4.4's verify: it extracts the compact JWS from
// AppHdr.Signature, recomputes the JCS signing-mode payload with the
// Signature member stripped, and checks that the JWS both verifies under pub
// and carries exactly that payload. As with VerifyXML, a structural problem
// is an error; a cryptographic or content mismatch is (false, nil).
func VerifyJSON(msg *Message, pub crypto.PublicKey) (bool, error) {
	if msg.Format != FormatJSON {
		return false, fmt.Errorf("%w: VerifyJSON requires a JSON message", ErrInvalidFormat)
	}

	appHdr, err := msg.FindAppHdrJSON()
	if err != nil {
		return false, err
	}
	raw, ok := appHdr[SignatureSlotName]
	if !ok {
		return false, nil
	}
	compact, ok := raw.(string)
	if !ok || compact == "" {
		return false, fmt.Errorf("%w: AppHdr.Signature is not a compact JWS string", ErrInvalidFormat)
	}

	object, err := jose.ParseSigned(compact, joseAllowedAlgorithms)
	if err != nil {
		return false, fmt.Errorf("%w: malformed JWS: %v", ErrInvalidFormat, err)
	}

	expectedPayload, err := jsoncanon.Canonicalize(msg.JSON, true)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	actualPayload, err := object.Verify(pub)
	if err != nil {
		return false, nil
	}
	if string(actualPayload) != string(expectedPayload) {
		return false, nil
	}
	return true, nil
}

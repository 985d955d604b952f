package isomsgsign

// SPDX-License-Identifier: MIT
// The detached-hash slot itself has no analogue in the teacher corpus; its
// digest/signDigest/embed/extract/verify split follows the same shape as
// this module's XMLDSig and JWS engines (canonicalize, hash, sign
// out-of-band) so the three strategies read as one family rather than three
// unrelated designs.

import (
	"crypto"
	"fmt"

	"github.com/beevik/etree"
	"github.com/l-d-t/isomsgsign/jsoncanon"
)

const (
	hashAlgorithmTag = "HashAlgorithm"
	hashValueTag     = "HashValue"
)

// HybridDigest computes the content digest the hybrid detached-hash strategy
// (§4.5) signs: a hash, under hashAlg, of msg canonicalized with both its
// MsgDgst and Signature slots excluded. Unlike the XMLDSig and JWS
// strategies, no signature material is ever embedded in the message itself —
// only this digest is, via HybridEmbedDigest — so the signature produced
// over it is delivered out-of-band.
func HybridDigest(msg *Message, hashAlg HashAlg) ([]byte, error) {
	canonical, err := hybridCanonicalize(msg)
	if err != nil {
		return nil, err
	}
	return Digest(hashAlg, canonical)
}

// HybridSignDigest signs a digest produced by HybridDigest under alg. It is
// a thin wrapper over SignWith kept distinct so the hybrid engine's call
// sequence mirrors its name: digest, then signDigest.
func HybridSignDigest(digest []byte, alg SigAlg, key crypto.Signer) ([]byte, error) {
	return SignWith(alg, key, digest)
}

// HybridEmbedDigest returns a new Message with digest (base64-encoded)
// embedded at AppHdr.MsgDgst under hashAlg, replacing any digest already
// there.
func HybridEmbedDigest(msg *Message, hashAlg HashAlg, digest []byte) (*Message, error) {
	out := msg.Clone()
	switch out.Format {
	case FormatXML:
		appHdr, err := out.FindAppHdr()
		if err != nil {
			return nil, err
		}
		for _, existing := range appHdr.SelectElements(MsgDigestSlotName) {
			appHdr.RemoveChild(existing)
		}
		el := etree.NewElement(MsgDigestSlotName)
		el.CreateElement(hashAlgorithmTag).SetText(string(hashAlg))
		el.CreateElement(hashValueTag).SetText(b64Encode(digest))
		appHdr.AddChild(el)
	case FormatJSON:
		appHdr, err := out.FindAppHdrJSON()
		if err != nil {
			return nil, err
		}
		appHdr[MsgDigestSlotName] = map[string]interface{}{
			hashAlgorithmTag: string(hashAlg),
			hashValueTag:     b64Encode(digest),
		}
	default:
		return nil, fmt.Errorf("%w: unknown message format", ErrInvalidFormat)
	}
	return out, nil
}

// HybridExtractDigest reads back the hash algorithm and raw digest bytes
// embedded by HybridEmbedDigest.
func HybridExtractDigest(msg *Message) (HashAlg, []byte, error) {
	switch msg.Format {
	case FormatXML:
		appHdr, err := msg.FindAppHdr()
		if err != nil {
			return "", nil, err
		}
		slots := appHdr.SelectElements(MsgDigestSlotName)
		if len(slots) == 0 {
			return "", nil, fmt.Errorf("%w: no MsgDgst slot present", ErrReferenceMismatch)
		}
		if len(slots) > 1 {
			return "", nil, fmt.Errorf("%w: multiple MsgDgst slots", ErrAmbiguousSignature)
		}
		algEl := slots[0].SelectElement(hashAlgorithmTag)
		valEl := slots[0].SelectElement(hashValueTag)
		if algEl == nil || valEl == nil {
			return "", nil, fmt.Errorf("%w: malformed MsgDgst slot", ErrInvalidFormat)
		}
		digest, err := b64Decode(valEl.Text())
		if err != nil {
			return "", nil, fmt.Errorf("%w: malformed HashValue: %v", ErrInvalidFormat, err)
		}
		return HashAlg(algEl.Text()), digest, nil
	case FormatJSON:
		appHdr, err := msg.FindAppHdrJSON()
		if err != nil {
			return "", nil, err
		}
		raw, ok := appHdr[MsgDigestSlotName]
		if !ok {
			return "", nil, fmt.Errorf("%w: no MsgDgst slot present", ErrReferenceMismatch)
		}
		slot, ok := raw.(map[string]interface{})
		if !ok {
			return "", nil, fmt.Errorf("%w: malformed MsgDgst slot", ErrInvalidFormat)
		}
		algRaw, _ := slot[hashAlgorithmTag].(string)
		valRaw, _ := slot[hashValueTag].(string)
		if algRaw == "" || valRaw == "" {
			return "", nil, fmt.Errorf("%w: malformed MsgDgst slot", ErrInvalidFormat)
		}
		digest, err := b64Decode(valRaw)
		if err != nil {
			return "", nil, fmt.Errorf("%w: malformed HashValue: %v", ErrInvalidFormat, err)
		}
		return HashAlg(algRaw), digest, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown message format", ErrInvalidFormat)
	}
}

// HybridVerifyDigestSignature implements §4.5's verify: it recomputes the
// content digest over msg (with MsgDgst and Signature excluded), checks it
// against the digest embedded in AppHdr.MsgDgst, and checks sig against that
// embedded digest under pub. Both checks must pass for a true result. As
// with VerifyXML/VerifyJSON, structural problems are reported as errors; a
// content or cryptographic mismatch is (false, nil).
func HybridVerifyDigestSignature(msg *Message, pub crypto.PublicKey, alg SigAlg, sig []byte) (bool, error) {
	embeddedAlg, embeddedDigest, err := HybridExtractDigest(msg)
	if err != nil {
		return false, err
	}

	recomputed, err := HybridDigest(msg, embeddedAlg)
	if err != nil {
		return false, err
	}
	if !bytesEqual(recomputed, embeddedDigest) {
		return false, nil
	}

	return VerifyWith(alg, pub, embeddedDigest, sig)
}

func hybridCanonicalize(msg *Message) ([]byte, error) {
	switch msg.Format {
	case FormatXML:
		root := msg.XML.Root().Copy()
		if appHdr := findAppHdrIn(root); appHdr != nil {
			for _, tag := range []string{MsgDigestSlotName, SignatureSlotName} {
				for _, el := range appHdr.SelectElements(tag) {
					appHdr.RemoveChild(el)
				}
			}
		}
		canonicalizer := MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
		return canonicalizer.Canonicalize(root)
	case FormatJSON:
		return jsoncanon.CanonicalizeExcluding(msg.JSON, MsgDigestSlotName, jsoncanon.SignatureMember)
	default:
		return nil, fmt.Errorf("%w: unknown message format", ErrInvalidFormat)
	}
}

package isomsgsign

// SPDX-License-Identifier: MIT

import "errors"

// Sentinel errors forming the taxonomy every engine in this module surfaces.
// Callers match with errors.Is; engines never retry internally.
var (
	// ErrInvalidFormat is returned when input is not well-formed XML/JSON or
	// does not match the expected ISO 20022 envelope shape.
	ErrInvalidFormat = errors.New("isomsgsign: invalid format")

	// ErrAppHdrNotFound is returned when the required AppHdr element/property
	// cannot be located by namespace-qualified lookup or its fallback.
	ErrAppHdrNotFound = errors.New("isomsgsign: AppHdr not found")

	// ErrAmbiguousSignature is returned when a message already carries more
	// than one populated signature slot.
	ErrAmbiguousSignature = errors.New("isomsgsign: ambiguous signature")

	// ErrUnsupportedAlgorithm is returned when a requested algorithm tag is
	// unknown.
	ErrUnsupportedAlgorithm = errors.New("isomsgsign: unsupported algorithm")

	// ErrCryptoFailure is returned for digest mismatches, bad padding,
	// invalid signature bytes, or key rejection, including a signing key
	// whose type does not match the requested algorithm.
	ErrCryptoFailure = errors.New("isomsgsign: crypto failure")

	// ErrReferenceMismatch is returned when an XMLDSig reference URI cannot
	// be resolved, or its transform chain fails to reproduce the digest.
	ErrReferenceMismatch = errors.New("isomsgsign: reference mismatch")
)

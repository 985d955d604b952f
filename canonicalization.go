// SPDX-License-Identifier: Apache-2.0
// Exclusive-C14N machinery only: the inclusive (C14N 1.0/1.1) and
// null canonicalizers the wider goxmldsig lineage carries are dropped here
// since nothing in this module's enveloped-signature path (xmldsig.go,
// hybrid.go) ever selects them — ISO 20022's AppHdr is always the
// exclusive-C14N + enveloped-signature transform chain, never inclusive.
package isomsgsign

import (
	"github.com/beevik/etree"
	"github.com/l-d-t/isomsgsign/etreeutils"
)

// XMLDSig element/attribute names this package's engines build and parse.
const (
	DefaultPrefix = "ds"
	Namespace     = "http://www.w3.org/2000/09/xmldsig#"

	SignatureTag              = "Signature"
	SignedInfoTag             = "SignedInfo"
	CanonicalizationMethodTag = "CanonicalizationMethod"
	SignatureMethodTag        = "SignatureMethod"
	ReferenceTag              = "Reference"
	TransformsTag             = "Transforms"
	TransformTag              = "Transform"
	DigestMethodTag           = "DigestMethod"
	DigestValueTag            = "DigestValue"
	SignatureValueTag         = "SignatureValue"
	KeyInfoTag                = "KeyInfo"
	X509DataTag               = "X509Data"
	X509CertificateTag        = "X509Certificate"

	AlgorithmAttr = "Algorithm"
	URIAttr       = "URI"
	DefaultIdAttr = "Id"
)

// AlgorithmID names an algorithm by its XMLDSig/XML-C14N URI.
type AlgorithmID string

func (id AlgorithmID) String() string { return string(id) }

const (
	CanonicalXML10ExclusiveAlgorithmId AlgorithmID = "http://www.w3.org/2001/10/xml-exc-c14n#"
	EnvelopedSignatureAltorithmId      AlgorithmID = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
	RSASHA256SignatureMethod                       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	ECDSASHA256SignatureMethod                     = "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256"
	SHA256DigestAlgorithm                          = "http://www.w3.org/2001/04/xmlenc#sha256"
)

const nsSpace = "xmlns"

// Canonicalizer is the single algorithm this module's engines canonicalize
// AppHdr/Document subtrees under before hashing or signing them. It stays
// an interface, not a bare function, so a future canonicalization method
// (e.g. a C14N2.0 transform) can be added without changing xmldsig.go or
// hybrid.go's call sites.
type Canonicalizer interface {
	Canonicalize(el *etree.Element) ([]byte, error)
	Algorithm() AlgorithmID
}

type c14N10ExclusiveCanonicalizer struct {
	prefixList string
}

// MakeC14N10ExclusiveCanonicalizerWithPrefixList constructs the exclusive
// C14N canonicalizer XMLDSig's CanonicalizationMethod names, honoring an
// InclusiveNamespaces PrefixList given in NMTOKENS form (a whitespace
// separated list of prefixes to render even when exclusive C14N would
// otherwise drop them).
func MakeC14N10ExclusiveCanonicalizerWithPrefixList(prefixList string) Canonicalizer {
	return &c14N10ExclusiveCanonicalizer{prefixList: prefixList}
}

func (c *c14N10ExclusiveCanonicalizer) Canonicalize(el *etree.Element) ([]byte, error) {
	if err := etreeutils.TransformExcC14n(el, c.prefixList, false); err != nil {
		return nil, err
	}
	return canonicalSerialize(el)
}

func (c *c14N10ExclusiveCanonicalizer) Algorithm() AlgorithmID {
	return CanonicalXML10ExclusiveAlgorithmId
}

func canonicalSerialize(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	doc.WriteSettings = etree.WriteSettings{
		CanonicalAttrVal: true,
		CanonicalEndTags: true,
		CanonicalText:    true,
	}
	return doc.WriteToBytes()
}

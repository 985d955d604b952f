package isomsgsign

// SPDX-License-Identifier: Apache-2.0

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

func runCanonicalizationTest(t *testing.T, canonicalizer Canonicalizer, xmlstr string, canonicalXmlstr string) {
	t.Helper()
	raw := etree.NewDocument()
	err := raw.ReadFromString(xmlstr)
	require.NoError(t, err)

	canonicalized, err := canonicalizer.Canonicalize(raw.Root())
	require.NoError(t, err)
	require.Equal(t, canonicalXmlstr, string(canonicalized))
}

func TestExcC14NAppHdrAttributeSorting(t *testing.T) {
	input := `<AppHdr xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02" Id="hdr1" MsgDefIdr="pacs.008.001.09"><BizMsgIdr>MSGID00001</BizMsgIdr></AppHdr>`
	expected := `<AppHdr xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02" Id="hdr1" MsgDefIdr="pacs.008.001.09"><BizMsgIdr>MSGID00001</BizMsgIdr></AppHdr>`
	runCanonicalizationTest(t, MakeC14N10ExclusiveCanonicalizerWithPrefixList(""), input, expected)
}

func TestExcC14NDropsUnusedInheritedNamespace(t *testing.T) {
	// SignedInfo declares the pacs.008 default namespace alongside ds, but
	// every element inside it is ds:-prefixed; exclusive C14N must drop the
	// unused default declaration and keep only ds.
	input := `<ds:SignedInfo xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09" xmlns:ds="http://www.w3.org/2000/09/xmldsig#"><ds:CanonicalizationMethod Algorithm="http://www.w3.org/2001/10/xml-exc-c14n#"></ds:CanonicalizationMethod></ds:SignedInfo>`
	expected := `<ds:SignedInfo xmlns:ds="http://www.w3.org/2000/09/xmldsig#"><ds:CanonicalizationMethod Algorithm="http://www.w3.org/2001/10/xml-exc-c14n#"></ds:CanonicalizationMethod></ds:SignedInfo>`
	runCanonicalizationTest(t, MakeC14N10ExclusiveCanonicalizerWithPrefixList(""), input, expected)
}

func TestExcC14NWithPrefixListRetainsDeclaredPrefix(t *testing.T) {
	// A pacs.008 Document carrying an xsi:schemaLocation hint: the xsi
	// prefix is never referenced inside FIToFICstmrCdtTrf, so plain
	// exclusive C14N would drop it; InclusiveNamespaces PrefixList="xsi"
	// forces it to render anyway, as XMLDSig allows.
	input := `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><FIToFICstmrCdtTrf xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><GrpHdr><MsgId>GRPID00001</MsgId></GrpHdr></FIToFICstmrCdtTrf></Document>`
	// FIToFICstmrCdtTrf's own xmlns:xsi redeclares a prefix already rendered
	// on Document with the same URI, so exclusive C14N drops it there too.
	expected := `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><FIToFICstmrCdtTrf><GrpHdr><MsgId>GRPID00001</MsgId></GrpHdr></FIToFICstmrCdtTrf></Document>`
	canonicalizer := MakeC14N10ExclusiveCanonicalizerWithPrefixList("xsi")
	runCanonicalizationTest(t, canonicalizer, input, expected)
}

func TestExcC14NRedeclaredDefaultNamespacePreserved(t *testing.T) {
	// BizMsgEnvlp/Header declares head.001's default namespace; Body
	// re-declares the pacs.008 default namespace for Document. Exclusive
	// C14N must keep both declarations since each is genuinely in effect
	// on its own subtree, not redundant.
	input := `<Header xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02"><Body xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09"></Body></Header>`
	expected := `<Header xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02"><Body xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09"></Body></Header>`
	canonicalizer := MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	runCanonicalizationTest(t, canonicalizer, input, expected)
}

func TestExcC14NRendersPrefixAtFirstUseNotAtDeclaration(t *testing.T) {
	// Fr declares xmlns:a but never uses it itself; exclusive C14N renders
	// "a" on a:FIId instead, where it is first actually referenced, and
	// likewise "b" on b:LEI rather than on the ancestor that declared it.
	input := `<Fr xmlns:a="urn:a"><a:FIId xmlns:a="urn:a" xmlns:b="urn:b"><b:LEI xmlns:b="urn:b">12345678901234567888</b:LEI></a:FIId></Fr>`
	expected := `<Fr><a:FIId xmlns:a="urn:a"><b:LEI xmlns:b="urn:b">12345678901234567888</b:LEI></a:FIId></Fr>`
	runCanonicalizationTest(t, MakeC14N10ExclusiveCanonicalizerWithPrefixList(""), input, expected)
}

func TestExcC14NIsIdempotent(t *testing.T) {
	raw := etree.NewDocument()
	require.NoError(t, raw.ReadFromString(samplePacsXML))

	canonicalizer := MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	first, err := canonicalizer.Canonicalize(raw.Root().Copy())
	require.NoError(t, err)

	reparsed := etree.NewDocument()
	require.NoError(t, reparsed.ReadFromBytes(first))
	second, err := canonicalizer.Canonicalize(reparsed.Root())
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestCanonicalizerAlgorithmIdentifiesExclusiveC14N(t *testing.T) {
	canonicalizer := MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	require.Equal(t, CanonicalXML10ExclusiveAlgorithmId, canonicalizer.Algorithm())
}

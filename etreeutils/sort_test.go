package etreeutils

// SPDX-License-Identifier: Apache-2.0

import (
	"sort"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

func sortedAttrString(t *testing.T, input string) string {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(input))

	el := doc.Root().Copy()
	sort.Sort(SortedAttrs(el.Attr))

	out := etree.NewDocument()
	out.SetRoot(el)
	out.WriteSettings = etree.WriteSettings{CanonicalEndTags: true}

	s, err := out.WriteToString()
	require.NoError(t, err)
	return s
}

// A FIId carrying prefixed attributes alongside unprefixed Id/MsgDefIdr
// attributes (Id is the attribute xmldsig.go adds to the document root):
// default namespace decl first, prefixed decls next in prefix order, then
// ordinary attributes ordered by (namespace URI, name).
func TestSortedAttrsOrdersNamespacesBeforeOrdinaryAttrs(t *testing.T) {
	input := `<FIId a:attr="out" b:attr="sorted" MsgDefIdr="pacs.008.001.09" Id="hdr1" xmlns:b="urn:b" xmlns:a="urn:a" xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02"></FIId>`
	expected := `<FIId xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02" xmlns:a="urn:a" xmlns:b="urn:b" Id="hdr1" MsgDefIdr="pacs.008.001.09" a:attr="out" b:attr="sorted"></FIId>`
	require.Equal(t, expected, sortedAttrString(t, input))
}

// Two namespace declarations with no default namespace present: the prefix
// comparison alone must decide the order.
func TestSortedAttrsOrdersPrefixedNamespacesLexicographically(t *testing.T) {
	input := `<Signature xmlns:ds="http://www.w3.org/2000/09/xmldsig#" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"></Signature>`
	expected := `<Signature xmlns:ds="http://www.w3.org/2000/09/xmldsig#" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"></Signature>`
	require.Equal(t, expected, sortedAttrString(t, input))
}

// An attribute whose prefix is declared on an ancestor, not on the element
// itself, has no xmlns:<prefix> to resolve against within its own attribute
// slice; resolveURI must fall back to the raw prefix string rather than
// panicking or treating it as unprefixed.
func TestSortedAttrsFallsBackToRawPrefixWhenNamespaceUndeclaredLocally(t *testing.T) {
	input := `<LEI a:Scheme="ISO17442" Id="lei1"></LEI>`
	expected := `<LEI Id="lei1" a:Scheme="ISO17442"></LEI>`
	require.Equal(t, expected, sortedAttrString(t, input))
}

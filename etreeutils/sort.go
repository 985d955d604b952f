// SPDX-License-Identifier: Apache-2.0
// This file is adapted from the github.com/russellhaering/goxmldsig project.
package etreeutils

import "github.com/beevik/etree"

// SortedAttrs sorts an *etree.Element's attributes into the order the XML
// canonicalization algorithms (C14N 1.0/1.1 and exclusive C14N) require:
// namespace declarations first (default namespace, then prefixed namespaces
// in lexicographic order of prefix), followed by ordinary attributes sorted
// by (namespace-URI, local-name).
//
// Namespace URIs for prefixed attributes are resolved against the
// xmlns:prefix declarations present in the same attribute slice; an attribute
// whose namespace is declared on an ancestor rather than the element itself
// falls back to sorting by its raw prefix.
type SortedAttrs []etree.Attr

func (a SortedAttrs) Len() int      { return len(a) }
func (a SortedAttrs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

func (a SortedAttrs) Less(i, j int) bool {
	iNS := isNamespaceAttr(a[i])
	jNS := isNamespaceAttr(a[j])

	if iNS != jNS {
		return iNS
	}

	if iNS && jNS {
		return namespacePrefixOf(a[i]) < namespacePrefixOf(a[j])
	}

	uriI := a.resolveURI(a[i])
	uriJ := a.resolveURI(a[j])
	if uriI != uriJ {
		return uriI < uriJ
	}

	return a[i].Key < a[j].Key
}

func isNamespaceAttr(attr etree.Attr) bool {
	return attr.Space == nsSpace || (attr.Space == "" && attr.Key == nsSpace)
}

// namespacePrefixOf returns the declared prefix of a namespace attribute, or
// "" for the default namespace declaration, which must sort first.
func namespacePrefixOf(attr etree.Attr) string {
	if attr.Space == nsSpace {
		return attr.Key
	}
	return ""
}

// resolveURI looks up the namespace URI bound to attr's prefix within the
// same attribute slice. Unprefixed attributes have no namespace (empty URI).
func (a SortedAttrs) resolveURI(attr etree.Attr) string {
	if attr.Space == "" {
		return ""
	}
	for _, cand := range a {
		if cand.Space == nsSpace && cand.Key == attr.Space {
			return cand.Value
		}
	}
	return attr.Space
}

const nsSpace = "xmlns"

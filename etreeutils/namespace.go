// SPDX-License-Identifier: Apache-2.0
// This file is adapted from the github.com/russellhaering/goxmldsig project.
package etreeutils

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// NSContext carries the namespace prefix bindings in scope at some point in
// an XML tree (the union of every ancestor's xmlns declarations). It lets
// code reason about a detached subtree's namespace scope without re-walking
// the full document each time.
type NSContext struct {
	Prefixes map[string]string // prefix ("" = default) -> namespace URI
}

// RootNSContext returns the namespace bindings inherited from el's ancestors,
// not including any declarations on el itself.
func RootNSContext(el *etree.Element) NSContext {
	prefixes := make(map[string]string)

	var ancestors []*etree.Element
	for p := el.Parent(); p != nil; p = p.Parent() {
		ancestors = append(ancestors, p)
	}

	for i := len(ancestors) - 1; i >= 0; i-- {
		applyDecls(ancestors[i], prefixes)
	}

	return NSContext{Prefixes: prefixes}
}

// Subcontext returns a new NSContext with el's own namespace declarations
// layered on top of ctx.
func (ctx NSContext) Subcontext(el *etree.Element) NSContext {
	merged := make(map[string]string, len(ctx.Prefixes))
	for k, v := range ctx.Prefixes {
		merged[k] = v
	}
	applyDecls(el, merged)
	return NSContext{Prefixes: merged}
}

func applyDecls(el *etree.Element, into map[string]string) {
	for _, attr := range el.Attr {
		switch {
		case attr.Space == nsSpace:
			into[attr.Key] = attr.Value
		case attr.Space == "" && attr.Key == nsSpace:
			into[""] = attr.Value
		}
	}
}

// NSDetatch returns a copy of el, suitable for standalone serialization, with
// every namespace prefix it (or its subtree) might rely on from ctx
// materialized as an explicit xmlns declaration on the copy's root. This lets
// encoding/xml.Unmarshal resolve namespaces correctly for an element lifted
// out of its parent document (see NSUnmarshalElement).
func NSDetatch(ctx NSContext, el *etree.Element) (*etree.Element, error) {
	sub := ctx.Subcontext(el)
	detached := el.Copy()

	existing := make(map[string]bool)
	for _, attr := range detached.Attr {
		switch {
		case attr.Space == nsSpace:
			existing[attr.Key] = true
		case attr.Space == "" && attr.Key == nsSpace:
			existing[""] = true
		}
	}

	for prefix, uri := range sub.Prefixes {
		if existing[prefix] {
			continue
		}
		if prefix == "" {
			detached.CreateAttr("xmlns", uri)
		} else {
			detached.CreateAttr("xmlns:"+prefix, uri)
		}
	}

	return detached, nil
}

// TransformExcC14n applies the W3C Exclusive XML Canonicalization namespace
// rules to el in place: each element ends up declaring exactly the namespace
// prefixes it visibly utilizes (its own element prefix, its attributes'
// prefixes, and any prefix named in prefixList that is in scope) that were
// not already rendered by an element above it in the same output subtree.
// Unlike inclusive C14N, prefixes inherited from outside the subtree but
// never referenced inside it are dropped rather than carried along.
func TransformExcC14n(el *etree.Element, prefixList string, withComments bool) error {
	inclusive := make(map[string]bool)
	for _, p := range strings.Fields(prefixList) {
		inclusive[p] = true
	}

	scope := RootNSContext(el).Prefixes
	return transformExcC14n(el, scope, make(map[string]string), inclusive, withComments)
}

func transformExcC14n(el *etree.Element, scope, rendered map[string]string, inclusive map[string]bool, withComments bool) error {
	localScope := make(map[string]string, len(scope))
	for k, v := range scope {
		localScope[k] = v
	}
	applyDecls(el, localScope)

	utilized := make(map[string]bool)
	if el.Space != "" {
		utilized[el.Space] = true
	} else if uri := localScope[""]; uri != "" {
		utilized[""] = true
	}
	for _, attr := range el.Attr {
		if attr.Space != "" && attr.Space != nsSpace {
			utilized[attr.Space] = true
		}
	}
	for p := range inclusive {
		if _, ok := localScope[p]; ok {
			utilized[p] = true
		}
	}

	stripNamespaceDecls(el)

	newRendered := make(map[string]string, len(rendered))
	for k, v := range rendered {
		newRendered[k] = v
	}
	for p := range utilized {
		uri := localScope[p]
		if r, ok := rendered[p]; ok && r == uri {
			continue
		}
		if p == "" {
			el.CreateAttr("xmlns", uri)
		} else {
			el.CreateAttr("xmlns:"+p, uri)
		}
		newRendered[p] = uri
	}

	sort.Sort(SortedAttrs(el.Attr))

	if !withComments {
		stripComments(el)
	}

	for _, child := range el.ChildElements() {
		if err := transformExcC14n(child, localScope, newRendered, inclusive, withComments); err != nil {
			return err
		}
	}

	return nil
}

func stripNamespaceDecls(el *etree.Element) {
	n := 0
	for _, attr := range el.Attr {
		if attr.Space == nsSpace || (attr.Space == "" && attr.Key == nsSpace) {
			continue
		}
		el.Attr[n] = attr
		n++
	}
	el.Attr = el.Attr[:n]
}

func stripComments(el *etree.Element) {
	c := 0
	for c < len(el.Child) {
		if _, ok := el.Child[c].(*etree.Comment); ok {
			el.RemoveChildAt(c)
		} else {
			c++
		}
	}
}

package etreeutils

// SPDX-License-Identifier: Apache-2.0
// This file is adapted from the github.com/russellhaering/goxmldsig project,
// generalized from that project's signature-element parsing to the
// AppHdr/Document unmarshal path message.go's ParseAppHdr/ParseDocument use.

import (
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
)

// ElementKeeper is implemented by a destination type that wants to retain a
// reference to the etree.Element it was unmarshaled from, so later code can
// go back to the live tree (e.g. to mutate or re-canonicalize it) instead of
// only having the detached encoding/xml view.
type ElementKeeper interface {
	SetUnderlyingElement(*etree.Element)
	UnderlyingElement() *etree.Element
}

// NSUnmarshalElement decodes el into v via encoding/xml, first detaching el
// from its parent document with ctx's namespace bindings materialized onto
// the copy (see NSDetatch) so encoding/xml can resolve namespace-qualified
// fields correctly even though el no longer has its original ancestors. If v
// implements ElementKeeper, SetUnderlyingElement is called afterward with
// the original (non-detached) element.
func NSUnmarshalElement(ctx NSContext, el *etree.Element, v interface{}) error {
	detached, err := NSDetatch(ctx, el)
	if err != nil {
		return fmt.Errorf("detaching element for unmarshal: %w", err)
	}

	doc := etree.NewDocument()
	doc.AddChild(detached)
	serialized, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing detached element: %w", err)
	}

	if err := xml.Unmarshal(serialized, v); err != nil {
		return fmt.Errorf("unmarshaling element: %w", err)
	}

	if keeper, ok := v.(ElementKeeper); ok {
		keeper.SetUnderlyingElement(el)
	}

	return nil
}

package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/beevik/etree"
	"github.com/l-d-t/isomsgsign/etreeutils"
)

// ISO 20022 namespaces this module knows how to locate structural elements
// in. Document namespaces beyond pacs.008.001.09 are accepted for the
// un-namespaced fallback lookup but are not otherwise special-cased.
const (
	PacsDocumentNamespace = "urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09"
	HeadAppHdrNamespace   = "urn:iso:std:iso:20022:tech:xsd:head.001.001.02"
)

// Structural element/property names. These never surface as KVP keys (§4.2)
// and are used by the AppHdr/Document locators below.
const (
	tagBizMsgEnvlp     = "BizMsgEnvlp"
	tagHeader          = "Header"
	tagBody            = "Body"
	tagDocument        = "Document"
	tagAppHdr          = "AppHdr"
	tagFIToFICstmrTrf  = "FIToFICstmrCdtTrf"
	tagGrpHdr          = "GrpHdr"
	tagCdtTrfTxInf     = "CdtTrfTxInf"
	SignatureSlotName  = "Signature"
	MsgDigestSlotName  = "MsgDgst"
)

// StructuralNames is the fixed set of element/property names the Key-Value
// Extractor suppresses: they organize the tree but never carry business
// data themselves.
var StructuralNames = map[string]bool{
	tagBizMsgEnvlp:    true,
	tagHeader:         true,
	tagBody:           true,
	tagDocument:       true,
	tagAppHdr:         true,
	tagFIToFICstmrTrf: true,
	tagGrpHdr:         true,
	tagCdtTrfTxInf:    true,
}

// Format tags the format of a Message.
type Format int

const (
	// FormatXML marks a message as a well-formed XML document.
	FormatXML Format = iota
	// FormatJSON marks a message as a parsed JSON object tree.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Message is the tagged union of XmlMessage and JsonMessage from §3: a
// BizMsgEnvlp wrapping a head.001 AppHdr and a pacs.008 Document, available
// in exactly one representation at a time. Messages are treated as
// immutable: every signing operation in this module returns a new Message
// rather than mutating the one it was given.
type Message struct {
	Format Format
	XML    *etree.Document
	JSON   map[string]interface{}
}

// NewXMLMessage parses data as an XML document and wraps it as a Message.
func NewXMLMessage(data []byte) (*Message, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: empty XML document", ErrInvalidFormat)
	}
	return &Message{Format: FormatXML, XML: doc}, nil
}

// NewJSONMessage parses data as a JSON object tree and wraps it as a Message.
func NewJSONMessage(data []byte) (*Message, error) {
	var tree map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return &Message{Format: FormatJSON, JSON: tree}, nil
}

// Clone returns a deep copy of m, so callers can mutate the result of a sign
// operation without perturbing the input the caller still holds.
func (m *Message) Clone() *Message {
	switch m.Format {
	case FormatXML:
		doc := etree.NewDocument()
		doc.SetRoot(m.XML.Root().Copy())
		doc.WriteSettings = m.XML.WriteSettings
		return &Message{Format: FormatXML, XML: doc}
	case FormatJSON:
		return &Message{Format: FormatJSON, JSON: cloneJSONObject(m.JSON)}
	default:
		return &Message{Format: m.Format}
	}
}

// Bytes serializes m back to its wire representation.
func (m *Message) Bytes() ([]byte, error) {
	switch m.Format {
	case FormatXML:
		return m.XML.WriteToBytes()
	case FormatJSON:
		return json.Marshal(m.JSON)
	default:
		return nil, fmt.Errorf("%w: unknown message format", ErrInvalidFormat)
	}
}

// FindAppHdr locates the AppHdr element of an XML message by
// namespace-qualified lookup (head.001.001.02), falling back to an
// un-namespaced search by local name when no namespaced match exists.
func (m *Message) FindAppHdr() (*etree.Element, error) {
	if m.Format != FormatXML {
		return nil, fmt.Errorf("%w: FindAppHdr requires an XML message", ErrInvalidFormat)
	}
	root := m.XML.Root()

	var namespaced, fallback []*etree.Element
	walkElements(root, func(el *etree.Element) {
		if el.Tag != tagAppHdr {
			return
		}
		if el.NamespaceURI() == HeadAppHdrNamespace {
			namespaced = append(namespaced, el)
		} else {
			fallback = append(fallback, el)
		}
	})

	switch {
	case len(namespaced) == 1:
		return namespaced[0], nil
	case len(namespaced) > 1:
		return nil, fmt.Errorf("%w: multiple namespaced AppHdr elements", ErrInvalidFormat)
	case len(fallback) == 1:
		return fallback[0], nil
	case len(fallback) > 1:
		return nil, fmt.Errorf("%w: multiple AppHdr elements", ErrInvalidFormat)
	default:
		return nil, ErrAppHdrNotFound
	}
}

// ParseAppHdr locates and unmarshals m's AppHdr into the typed AppHdr
// struct, resolving the namespace declarations it inherits from its
// ancestors (BizMsgEnvlp/Header) via etreeutils.NSUnmarshalElement before
// handing the detached element to encoding/xml.
func (m *Message) ParseAppHdr() (*AppHdr, error) {
	el, err := m.FindAppHdr()
	if err != nil {
		return nil, err
	}
	ctx := etreeutils.RootNSContext(el)
	var hdr AppHdr
	if err := etreeutils.NSUnmarshalElement(ctx, el, &hdr); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling AppHdr: %v", ErrInvalidFormat, err)
	}
	return &hdr, nil
}

// FindDocument locates the pacs.008 Document element of an XML message by
// namespace-qualified lookup, mirroring FindAppHdr.
func (m *Message) FindDocument() (*etree.Element, error) {
	if m.Format != FormatXML {
		return nil, fmt.Errorf("%w: FindDocument requires an XML message", ErrInvalidFormat)
	}
	root := m.XML.Root()

	var namespaced, fallback []*etree.Element
	walkElements(root, func(el *etree.Element) {
		if el.Tag != tagDocument {
			return
		}
		if el.NamespaceURI() == PacsDocumentNamespace {
			namespaced = append(namespaced, el)
		} else {
			fallback = append(fallback, el)
		}
	})

	switch {
	case len(namespaced) == 1:
		return namespaced[0], nil
	case len(namespaced) > 1:
		return nil, fmt.Errorf("%w: multiple namespaced Document elements", ErrInvalidFormat)
	case len(fallback) == 1:
		return fallback[0], nil
	case len(fallback) > 1:
		return nil, fmt.Errorf("%w: multiple Document elements", ErrInvalidFormat)
	default:
		return nil, fmt.Errorf("%w: Document not found", ErrInvalidFormat)
	}
}

// ParseDocument locates and unmarshals m's pacs.008 Document into the typed
// Document struct, the Document-side analogue of ParseAppHdr.
func (m *Message) ParseDocument() (*Document, error) {
	el, err := m.FindDocument()
	if err != nil {
		return nil, err
	}
	ctx := etreeutils.RootNSContext(el)
	var doc Document
	if err := etreeutils.NSUnmarshalElement(ctx, el, &doc); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling Document: %v", ErrInvalidFormat, err)
	}
	return &doc, nil
}

// FindAppHdrJSON locates the AppHdr property of a JSON message tree,
// searching recursively since JSON carries no namespace qualification.
func (m *Message) FindAppHdrJSON() (map[string]interface{}, error) {
	if m.Format != FormatJSON {
		return nil, fmt.Errorf("%w: FindAppHdrJSON requires a JSON message", ErrInvalidFormat)
	}
	found := findJSONObject(m.JSON, tagAppHdr)
	if found == nil {
		return nil, ErrAppHdrNotFound
	}
	return found, nil
}

func walkElements(el *etree.Element, visit func(*etree.Element)) {
	if el == nil {
		return
	}
	visit(el)
	for _, child := range el.ChildElements() {
		walkElements(child, visit)
	}
}

func findJSONObject(node interface{}, key string) map[string]interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		if inner, ok := v[key]; ok {
			if obj, ok := inner.(map[string]interface{}); ok {
				return obj
			}
		}
		for _, val := range v {
			if found := findJSONObject(val, key); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, item := range v {
			if found := findJSONObject(item, key); found != nil {
				return found
			}
		}
	}
	return nil
}

func cloneJSONObject(v map[string]interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		// v was already decoded from JSON; re-encoding it cannot fail.
		panic(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

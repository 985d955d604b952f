package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// KVPSet is an unordered mapping from canonical business key name to string
// value (§3 "KVP set"). Equality is set equality of (key, value) pairs, so
// KVPSet is comparable with reflect.DeepEqual or the Equal method below.
type KVPSet map[string]string

// Equal reports whether a and b contain exactly the same (key, value) pairs.
func (a KVPSet) Equal(b KVPSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Keys returns a sorted slice of a's keys, useful for diffing two sets in
// test failure messages.
func (a KVPSet) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonicalTagNames maps an ISO 20022 leaf tag name (XML element or JSON
// property) to the canonical business key name used in a KVPSet, per the
// fixed mapping table named in spec §4.2. Tags not present here fall back to
// their own name, so arbitrary leaf data is still captured — only the
// structural names in StructuralNames are ever suppressed outright.
var canonicalTagNames = map[string]string{
	"BizMsgIdr":      "BusinessMessageIdentifier",
	"MsgDefIdr":      "MessageDefinitionIdentifier",
	"MsgId":          "GroupHeader_MessageId",
	"CtrlSum":        "GroupHeader_ControlSum",
	"IntrBkSttlmDt":  "GroupHeader_InterbankSettlementDate",
	"EndToEndId":     "Payment_EndToEndId",
	"UETR":           "Payment_UETR",
	"IntrBkSttlmAmt": "Payment_InterbankSettlementAmount",
}

// currencyAmountTags names the leaf tags that carry a currency-qualified
// amount: a numeric value plus an ISO 4217 currency code (the Ccy XML
// attribute, or the Ccy sibling JSON property), per §4.2's
// currency-amount handling.
var currencyAmountTags = map[string]bool{
	"IntrBkSttlmAmt": true,
	"Amt":            true,
}

// leiTag is the leaf tag whose canonical name depends on which side of the
// payment it appears under (Fr or To).
const leiTag = "LEI"

// ExtractKVP lifts the canonical set of business key/value pairs from an XML
// or JSON Message, suppressing structural element names and applying the
// positional-suffix disambiguation rule so the same extractor logic agrees
// across formats (§8 property 6, cross-format KVP equality).
func ExtractKVP(m *Message) (KVPSet, error) {
	var set KVPSet
	var err error
	switch m.Format {
	case FormatXML:
		set, err = extractKVPFromXML(m.XML.Root())
	case FormatJSON:
		set, err = extractKVPFromJSON(m.JSON)
	default:
		return nil, fmt.Errorf("%w: unknown message format", ErrInvalidFormat)
	}
	if err != nil {
		return nil, err
	}
	if verr := validateKVP(set); verr != nil {
		return nil, verr
	}
	return set, nil
}

// validateKVP checks the business-data quality invariants the KVP extractor
// is positioned to enforce: any LEI it pulled out must carry a valid ISO
// 17442 check digit, and any currency amount must be a syntactically valid
// ActiveCurrencyAndAmount decimal string.
func validateKVP(set KVPSet) error {
	for key, value := range set {
		switch {
		case strings.HasSuffix(key, "_LEI"):
			if value != "" && !ValidateLEI(value) {
				return fmt.Errorf("%w: %s %q fails the ISO 17442 check digit", ErrInvalidFormat, key, value)
			}
		case strings.HasSuffix(key, "_Amount"):
			if value != "" && !IsValidAmountFormat(value) {
				return fmt.Errorf("%w: %s %q is not a valid amount", ErrInvalidFormat, key, value)
			}
		}
	}
	return nil
}

type kvpCollector struct {
	set      KVPSet
	seen     map[string]int
	pathSide []string // ancestor tags currently open, for Fr/To disambiguation
}

func newKVPCollector() *kvpCollector {
	return &kvpCollector{set: KVPSet{}, seen: map[string]int{}}
}

func (c *kvpCollector) emit(baseKey, value string) {
	key := baseKey
	n, ok := c.seen[baseKey]
	if ok {
		key = fmt.Sprintf("%s_%d", baseKey, n)
	}
	c.seen[baseKey] = n + 1
	c.set[key] = value
}

func (c *kvpCollector) sideOf() string {
	for i := len(c.pathSide) - 1; i >= 0; i-- {
		switch c.pathSide[i] {
		case "Fr":
			return "From"
		case "To":
			return "To"
		}
	}
	return ""
}

func (c *kvpCollector) canonicalName(tag string) string {
	if tag == leiTag {
		switch c.sideOf() {
		case "From":
			return "From_LEI"
		case "To":
			return "To_LEI"
		}
	}
	if name, ok := canonicalTagNames[tag]; ok {
		return name
	}
	return tag
}

func extractKVPFromXML(root *etree.Element) (KVPSet, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}
	c := newKVPCollector()
	walkXMLForKVP(c, root)
	return c.set, nil
}

func walkXMLForKVP(c *kvpCollector, el *etree.Element) {
	// Skip the signature carrier entirely: it is never business data.
	if el.Tag == SignatureSlotName {
		return
	}

	children := el.ChildElements()

	if currencyAmountTags[el.Tag] {
		if ccy := el.SelectAttrValue("Ccy", ""); ccy != "" {
			base := c.canonicalName(el.Tag)
			c.emit(base+"_Amount", strings.TrimSpace(el.Text()))
			c.emit(base+"_Currency", ccy)
			return
		}
	}

	if len(children) == 0 {
		if StructuralNames[el.Tag] {
			return
		}
		text := strings.TrimSpace(el.Text())
		if text == "" && len(el.Attr) == 0 {
			return
		}
		c.emit(c.canonicalName(el.Tag), text)
		return
	}

	pushed := false
	if el.Tag == "Fr" || el.Tag == "To" {
		c.pathSide = append(c.pathSide, el.Tag)
		pushed = true
	}
	for _, child := range children {
		walkXMLForKVP(c, child)
	}
	if pushed {
		c.pathSide = c.pathSide[:len(c.pathSide)-1]
	}
}

func extractKVPFromJSON(tree map[string]interface{}) (KVPSet, error) {
	c := newKVPCollector()
	walkJSONForKVP(c, tree)
	return c.set, nil
}

func walkJSONForKVP(c *kvpCollector, node interface{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for _, key := range sortedJSONKeys(v) {
			if key == SignatureSlotName || key == MsgDigestSlotName {
				continue
			}
			val := v[key]
			if currencyAmountTags[key] {
				if obj, ok := val.(map[string]interface{}); ok {
					base := c.canonicalName(key)
					c.emit(base+"_Amount", jsonScalarString(obj["Amt"]))
					c.emit(base+"_Currency", jsonScalarString(obj["Ccy"]))
					continue
				}
			}
			pushed := false
			if key == "Fr" || key == "To" {
				c.pathSide = append(c.pathSide, key)
				pushed = true
			}
			switch inner := val.(type) {
			case map[string]interface{}:
				if StructuralNames[key] {
					walkJSONForKVP(c, inner)
				} else if len(inner) == 0 {
					// empty object: nothing to extract
				} else {
					walkJSONForKVP(c, inner)
				}
			case []interface{}:
				for _, item := range inner {
					walkJSONForKVP(c, item)
				}
			default:
				if !StructuralNames[key] {
					c.emit(c.canonicalName(key), jsonScalarString(val))
				}
			}
			if pushed {
				c.pathSide = c.pathSide[:len(c.pathSide)-1]
			}
		}
	case []interface{}:
		for _, item := range v {
			walkJSONForKVP(c, item)
		}
	}
}

// sortedJSONKeys gives deterministic traversal order over a decoded JSON
// object so that positional suffixing (_0, _1, ...) is reproducible; map
// iteration order in Go is randomized and would otherwise make repeated
// extractions of the same message disagree with each other.
func sortedJSONKeys(v map[string]interface{}) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonScalarString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
